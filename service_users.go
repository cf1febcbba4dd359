package starbook

import (
	"context"
	"fmt"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// IDENTITY & FOLLOW EDGES
// ============================================================================

// CreateUser registers a user record. Email must be unique; a duplicate is
// reported as an invalid request.
func (s *Service) CreateUser(ctx context.Context, email, nickname string) (*User, error) {
	user := &User{
		Email:    email,
		Nickname: nickname,
	}
	result, err := s.db.NewInsert().Model(user).Exec(ctx)
	err = dbkit.WithErr(result, err, "CreateUser").Err()
	if err != nil {
		if dbkit.IsDuplicate(err) {
			return nil, NewError(ErrInvalidRequest, fmt.Sprintf("email:%s is duplicated", email)).WithActorEmail(email)
		}
		return nil, NewError(ErrDatabaseError, "failed to create user").WithActorEmail(email)
	}
	return user, nil
}

// UserByEmail resolves an actor identity to a user record.
func (s *Service) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.userByEmail(ctx, email)
}

// UserByID resolves a numeric user id to a user record.
func (s *Service) UserByID(ctx context.Context, userID int64) (*User, error) {
	return s.userByID(ctx, userID)
}

// FollowUser creates a directed follow edge from the actor to the target
// user. Following yourself is rejected; an existing edge is left untouched.
func (s *Service) FollowUser(ctx context.Context, actorEmail string, targetUserID int64) error {
	actor, err := s.userByEmail(ctx, actorEmail)
	if err != nil {
		return err
	}
	target, err := s.userByID(ctx, targetUserID)
	if err != nil {
		return err
	}
	if actor.ID == target.ID {
		return NewError(ErrInvalidRequest, "self following is invalid").WithActor(actor.ID)
	}

	exists, err := s.followExists(ctx, actor.ID, target.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	follow := &Follow{FromUserID: actor.ID, ToUserID: target.ID}
	result, err := s.db.NewInsert().Model(follow).Exec(ctx)
	err = dbkit.WithErr(result, err, "CreateFollow").Err()
	if err != nil {
		return NewError(ErrDatabaseError, "failed to create follow").
			WithActor(actor.ID).
			WithUser(target.ID)
	}
	return nil
}

// UnfollowUser removes the actor's follow edge to the target user. Removing
// an edge that does not exist is an invalid request.
func (s *Service) UnfollowUser(ctx context.Context, actorEmail string, targetUserID int64) error {
	actor, err := s.userByEmail(ctx, actorEmail)
	if err != nil {
		return err
	}

	result, err := s.db.NewDelete().Table("follows").
		Where("from_user_id = ? AND to_user_id = ?", actor.ID, targetUserID).Exec(ctx)
	err = dbkit.WithErr(result, err, "DeleteFollow").Err()
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewError(ErrInvalidRequest, fmt.Sprintf("follow to userId:%d not found", targetUserID)).
			WithActor(actor.ID).
			WithUser(targetUserID)
	}
	return nil
}
