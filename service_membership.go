package starbook

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// CONSTELLATION MEMBERSHIP
// ============================================================================

// AddConstellationMember adds a user to a constellation the actor
// administers, with the plain USER role. Adding a user who is already a
// member is an invalid request.
func (s *Service) AddConstellationMember(ctx context.Context, constellationID, targetUserID int64, actorEmail string) error {
	return s.Transaction(ctx, func(tx *Service) error {
		target, err := tx.userByID(ctx, targetUserID)
		if err != nil {
			return err
		}
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		constellation, roster, err := tx.constellationIfAdmin(ctx, constellationID, actor)
		if err != nil {
			return err
		}

		if roster.HasMember(target.ID) {
			return NewError(ErrInvalidRequest, fmt.Sprintf("userId:%d has already been added", targetUserID)).
				WithUser(target.ID).
				WithConstellation(constellationID)
		}

		member := &ConstellationMember{
			ConstellationID: constellation.ID,
			UserID:          target.ID,
			Role:            RoleUser,
		}
		result, err := tx.db.NewInsert().Model(member).Exec(ctx)
		if err = dbkit.WithErr(result, err, "AddConstellationMember").Err(); err != nil {
			return NewError(ErrDatabaseError, "failed to add member").
				WithUser(target.ID).
				WithConstellation(constellationID)
		}

		audit := GetAuditContext(ctx)
		_ = tx.logAudit(ctx, &AuditEntry{ // Log error but don't fail the addition
			ActorID:         actor.ID,
			Action:          AuditActionMemberAdded,
			TargetUserID:    target.ID,
			ConstellationID: constellation.ID,
			NewRole:         RoleUser,
			IPAddress:       audit.IPAddress,
			UserAgent:       audit.UserAgent,
			RequestID:       audit.RequestID,
		})
		return nil
	})
}

// RemoveConstellationMember removes a member from a constellation the actor
// administers. The admin cannot remove itself; removing a non-member is an
// invalid request. Membership is tested against the full set, not a page
// window.
func (s *Service) RemoveConstellationMember(ctx context.Context, constellationID, targetUserID int64, actorEmail string) error {
	return s.Transaction(ctx, func(tx *Service) error {
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		_, err = tx.constellationByID(ctx, constellationID)
		if err != nil {
			return err
		}
		roster, err := tx.roster(ctx, constellationID, false)
		if err != nil {
			return err
		}

		if d := CanAdministerConstellation(actor.ID, roster); !d.Allowed {
			tx.log.Debug().
				Str("check", "remove_member").
				Int64("actor", actor.ID).
				Int64("constellation", constellationID).
				Str("reason", string(d.Reason)).
				Msg("denied")
			if d.Reason == DenyNoAdmin {
				return NewError(d.Err(), fmt.Sprintf("constellationId:%d has no admin", constellationID)).
					WithConstellation(constellationID)
			}
			return NewError(d.Err(), fmt.Sprintf("email:%s has no permission", actorEmail)).
				WithActor(actor.ID).
				WithConstellation(constellationID)
		}

		target, err := tx.userByID(ctx, targetUserID)
		if err != nil {
			return err
		}
		if target.ID == actor.ID {
			return NewError(ErrInvalidRequest, "you cannot delete yourself").
				WithActor(actor.ID).
				WithConstellation(constellationID)
		}

		member := roster.Member(target.ID)
		if member == nil {
			return NewError(ErrInvalidRequest, fmt.Sprintf("userId:%d does not belong to constellationId:%d", targetUserID, constellationID)).
				WithUser(target.ID).
				WithConstellation(constellationID)
		}

		result, err := tx.db.NewDelete().Table("constellation_members").
			Where("constellation_id = ? AND user_id = ?", constellationID, target.ID).Exec(ctx)
		if err = dbkit.WithErr(result, err, "RemoveConstellationMember").Err(); err != nil {
			return err
		}

		audit := GetAuditContext(ctx)
		_ = tx.logAudit(ctx, &AuditEntry{
			ActorID:         actor.ID,
			Action:          AuditActionMemberRemoved,
			TargetUserID:    target.ID,
			ConstellationID: constellationID,
			PreviousRole:    member.Role,
			IPAddress:       audit.IPAddress,
			UserAgent:       audit.UserAgent,
			RequestID:       audit.RequestID,
		})
		return nil
	})
}

// ListSharedMembers pages through a constellation's member users. A SHARED
// constellation exposes its member list to anyone; a NONSHARED one only to
// its own members. Viewer membership is tested against the full set, not a
// page window.
func (s *Service) ListSharedMembers(ctx context.Context, constellationID int64, actorEmail string, page PageRequest) (Page[User], error) {
	constellation, err := s.constellationByID(ctx, constellationID)
	if err != nil {
		return Page[User]{}, err
	}

	if constellation.Shared != SharedTypeShared {
		viewer, err := s.userByEmail(ctx, actorEmail)
		if err != nil {
			return Page[User]{}, err
		}
		isMember, err := s.membershipExists(ctx, constellationID, viewer.ID)
		if err != nil {
			return Page[User]{}, err
		}
		if !isMember {
			return Page[User]{}, NewError(ErrPermissionDenied, fmt.Sprintf("email:%s has no permission", actorEmail)).
				WithActor(viewer.ID).
				WithConstellation(constellationID)
		}
	}

	return pageOf[User](ctx, s.db, page, "ListSharedMembers", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Join("JOIN constellation_members AS cm ON cm.user_id = u.id").
			Where("cm.constellation_id = ?", constellationID).
			Order("u.id ASC")
	})
}

// TransferAdmin hands the sole ADMIN role of a constellation from the acting
// admin to another member. Handing the role to yourself is an invalid
// request. The protocol runs two role writes: promote the
// target, then demote the actor. A failed demotion runs one named,
// idempotent compensation (revert the target to USER) so a failure leaves
// the role set exactly as it was. The membership rows are locked for the
// duration of the transaction, so concurrent handoffs on the same
// constellation serialize instead of racing to zero or two admins.
func (s *Service) TransferAdmin(ctx context.Context, constellationID, targetUserID int64, actorEmail string) error {
	return s.Transaction(ctx, func(tx *Service) error {
		target, err := tx.userByID(ctx, targetUserID)
		if err != nil {
			return err
		}
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		_, err = tx.constellationByID(ctx, constellationID)
		if err != nil {
			return err
		}

		roster, err := tx.roster(ctx, constellationID, true)
		if err != nil {
			return err
		}
		if d := CanAdministerConstellation(actor.ID, roster); !d.Allowed {
			tx.log.Debug().
				Str("check", "transfer_admin").
				Int64("actor", actor.ID).
				Int64("constellation", constellationID).
				Str("reason", string(d.Reason)).
				Msg("denied")
			if d.Reason == DenyNoAdmin {
				return NewError(d.Err(), fmt.Sprintf("constellationId:%d has no admin", constellationID)).
					WithConstellation(constellationID)
			}
			return NewError(d.Err(), fmt.Sprintf("email:%s has no permission with constellationId:%d", actorEmail, constellationID)).
				WithActor(actor.ID).
				WithConstellation(constellationID)
		}

		// A self-handoff would promote and then demote the same row, leaving
		// the constellation with no admin at all.
		if target.ID == actor.ID {
			return NewError(ErrInvalidRequest, "you cannot hand the admin role to yourself").
				WithActor(actor.ID).
				WithConstellation(constellationID)
		}

		// Forward step 1: promote the target.
		if err := tx.changeMemberRole(ctx, constellationID, target.ID, RoleAdmin); err != nil {
			return err
		}
		tx.log.Debug().
			Int64("constellation", constellationID).
			Int64("target", target.ID).
			Msg("handoff: target promoted")

		// Forward step 2: demote the acting admin. With the roster locked and
		// both memberships verified, this fails only on a hard storage error.
		// The compensating step matters when the two writes did not share a
		// transaction (autocommit storage); inside one, the rollback covers
		// it. Either way the original error surfaces to the caller.
		if err := tx.changeMemberRole(ctx, constellationID, actor.ID, RoleUser); err != nil {
			tx.log.Warn().
				Err(err).
				Int64("constellation", constellationID).
				Int64("target", target.ID).
				Msg("handoff: demotion failed, reverting promotion")
			if revertErr := tx.revertPromotion(ctx, constellationID, target.ID); revertErr != nil {
				tx.log.Error().
					Err(revertErr).
					Int64("constellation", constellationID).
					Int64("target", target.ID).
					Msg("handoff: compensation failed")
			}
			return err
		}

		audit := GetAuditContext(ctx)
		_ = tx.logAudit(ctx, &AuditEntry{
			ActorID:         actor.ID,
			Action:          AuditActionAdminHandoff,
			TargetUserID:    target.ID,
			ConstellationID: constellationID,
			PreviousRole:    RoleUser,
			NewRole:         RoleAdmin,
			IPAddress:       audit.IPAddress,
			UserAgent:       audit.UserAgent,
			RequestID:       audit.RequestID,
		})
		return nil
	})
}

// changeMemberRole sets the role on one membership row. A missing row is
// reported as ErrMembershipNotFound.
func (s *Service) changeMemberRole(ctx context.Context, constellationID, userID int64, role MemberRole) error {
	result, err := s.db.NewUpdate().Model((*ConstellationMember)(nil)).
		Set("role = ?", role).
		Set("updated_at = ?", time.Now()).
		Where("constellation_id = ? AND user_id = ?", constellationID, userID).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "ChangeMemberRole").Err(); err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewError(ErrMembershipNotFound, fmt.Sprintf("userId:%d has no membership in constellationId:%d", userID, constellationID)).
			WithUser(userID).
			WithConstellation(constellationID)
	}
	return nil
}

// revertPromotion is the compensating step of TransferAdmin: put the target
// back to USER. Idempotent, so a retry after partial failure is harmless.
func (s *Service) revertPromotion(ctx context.Context, constellationID, targetUserID int64) error {
	return s.changeMemberRole(ctx, constellationID, targetUserID, RoleUser)
}
