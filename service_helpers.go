package starbook

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

// userByEmail resolves an actor identity to a user record.
func (s *Service) userByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := dbkit.WithErr1(s.db.NewSelect().Model(&user).Where("email = ?", email).Limit(1).Scan(ctx), "GetUserByEmail").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrUserNotFound, fmt.Sprintf("email:%s not found", email)).WithActorEmail(email)
		}
		return nil, err
	}
	return &user, nil
}

// userByID resolves a target user id to a user record.
func (s *Service) userByID(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := dbkit.WithErr1(s.db.NewSelect().Model(&user).Where("id = ?", userID).Limit(1).Scan(ctx), "GetUserByID").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrUserNotFound, fmt.Sprintf("userId:%d not found", userID)).WithUser(userID)
		}
		return nil, err
	}
	return &user, nil
}

// articleByID resolves an article id, trashed or not.
func (s *Service) articleByID(ctx context.Context, articleID int64) (*Article, error) {
	var article Article
	err := dbkit.WithErr1(s.db.NewSelect().Model(&article).Where("id = ?", articleID).Limit(1).Scan(ctx), "GetArticleByID").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrArticleNotFound, fmt.Sprintf("articleId:%d not found", articleID)).WithArticle(articleID)
		}
		return nil, err
	}
	return &article, nil
}

// constellationByID resolves a constellation id.
func (s *Service) constellationByID(ctx context.Context, constellationID int64) (*Constellation, error) {
	var constellation Constellation
	err := dbkit.WithErr1(s.db.NewSelect().Model(&constellation).Where("id = ?", constellationID).Limit(1).Scan(ctx), "GetConstellationByID").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrConstellationNotFound, fmt.Sprintf("constellationId:%d not found", constellationID)).WithConstellation(constellationID)
		}
		return nil, err
	}
	return &constellation, nil
}

// roster loads the full membership of a constellation. When forUpdate is set
// the rows are locked for the duration of the enclosing transaction, which
// serializes concurrent admin handoffs on the same constellation.
func (s *Service) roster(ctx context.Context, constellationID int64, forUpdate bool) (*ConstellationRoster, error) {
	var members []ConstellationMember
	q := s.db.NewSelect().Model(&members).Where("constellation_id = ?", constellationID).Order("id ASC")
	if forUpdate {
		q = q.For("UPDATE")
	}
	err := dbkit.WithErr1(q.Scan(ctx), "GetConstellationRoster").Err()
	if err != nil {
		return nil, err
	}
	return NewConstellationRoster(constellationID, members), nil
}

// articleOwnedBy resolves an article and verifies the actor owns it.
func (s *Service) articleOwnedBy(ctx context.Context, articleID int64, actor *User) (*Article, error) {
	article, err := s.articleByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if d := CanMutateArticle(actor.ID, article); !d.Allowed {
		s.log.Debug().
			Str("check", "mutate_article").
			Int64("actor", actor.ID).
			Int64("article", articleID).
			Str("reason", string(d.Reason)).
			Msg("denied")
		return nil, NewError(d.Err(), fmt.Sprintf("email:%s has no permission with articleId:%d", actor.Email, articleID)).
			WithActor(actor.ID).
			WithArticle(articleID)
	}
	return article, nil
}

// constellationIfAdmin resolves a constellation and verifies the actor is its
// admin. Reports ErrInvalidRequest when the one-admin invariant is broken.
func (s *Service) constellationIfAdmin(ctx context.Context, constellationID int64, actor *User) (*Constellation, *ConstellationRoster, error) {
	constellation, err := s.constellationByID(ctx, constellationID)
	if err != nil {
		return nil, nil, err
	}
	roster, err := s.roster(ctx, constellationID, false)
	if err != nil {
		return nil, nil, err
	}
	if d := CanAdministerConstellation(actor.ID, roster); !d.Allowed {
		s.log.Debug().
			Str("check", "administer_constellation").
			Int64("actor", actor.ID).
			Int64("constellation", constellationID).
			Str("reason", string(d.Reason)).
			Msg("denied")
		if d.Reason == DenyNoAdmin {
			return nil, nil, NewError(d.Err(), fmt.Sprintf("constellationId:%d has no admin", constellationID)).
				WithConstellation(constellationID)
		}
		return nil, nil, NewError(d.Err(), fmt.Sprintf("email:%s has no permission with constellationId:%d", actor.Email, constellationID)).
			WithActor(actor.ID).
			WithConstellation(constellationID)
	}
	return constellation, roster, nil
}

// membershipExists checks the full membership set, not a page window.
func (s *Service) membershipExists(ctx context.Context, constellationID, userID int64) (bool, error) {
	return dbkit.Exists[ConstellationMember](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("constellation_id = ? AND user_id = ?", constellationID, userID)
	})
}

// followExists checks for a directed follow edge.
func (s *Service) followExists(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	return dbkit.Exists[Follow](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID)
	})
}

// logAudit writes a membership audit entry, best effort.
func (s *Service) logAudit(ctx context.Context, entry *AuditEntry) error {
	_, err := s.db.NewInsert().Model(entry.ToModel()).Exec(ctx)
	return dbkit.WithErr1(err, "LogAudit").Err()
}

// pageOf runs a paginated select for model T, applying the caller's
// predicates, and returns the window plus the total count.
func pageOf[T any](ctx context.Context, db dbkit.IDB, req PageRequest, operation string, apply func(q *bun.SelectQuery) *bun.SelectQuery) (Page[T], error) {
	var items []T
	q := apply(db.NewSelect().Model(&items))
	total, err := q.Limit(req.Limit()).Offset(req.Offset()).ScanAndCount(ctx)
	if err = dbkit.WithErr1(err, operation).Err(); err != nil {
		return Page[T]{}, err
	}
	return NewPage(items, req, total), nil
}
