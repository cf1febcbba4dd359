package starbook

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// CONSTELLATION LIFECYCLE
// ============================================================================

// CreateConstellation persists a constellation and its creator's ADMIN
// membership as one transaction. Either both rows land or neither does.
func (s *Service) CreateConstellation(ctx context.Context, actorEmail, name string, shared SharedType, description string) (*Constellation, error) {
	if !shared.Valid() {
		return nil, NewError(ErrInvalidRequest, fmt.Sprintf("shared type %q is invalid", shared)).WithActorEmail(actorEmail)
	}

	var constellation *Constellation
	err := s.Transaction(ctx, func(tx *Service) error {
		owner, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}

		constellation = &Constellation{
			Name:        name,
			Shared:      shared,
			Description: description,
		}
		result, err := tx.db.NewInsert().Model(constellation).Exec(ctx)
		if err = dbkit.WithErr(result, err, "CreateConstellation").Err(); err != nil {
			return NewError(ErrDatabaseError, "failed to create constellation").WithActor(owner.ID)
		}

		member := &ConstellationMember{
			ConstellationID: constellation.ID,
			UserID:          owner.ID,
			Role:            RoleAdmin,
		}
		result, err = tx.db.NewInsert().Model(member).Exec(ctx)
		if err = dbkit.WithErr(result, err, "CreateAdminMembership").Err(); err != nil {
			return NewError(ErrDatabaseError, "failed to create admin membership").
				WithActor(owner.ID).
				WithConstellation(constellation.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return constellation, nil
}

// ModifyConstellation updates a constellation the actor administers. Name and
// shared type change only when provided; the description is always
// overwritten, empty included.
func (s *Service) ModifyConstellation(ctx context.Context, constellationID int64, actorEmail string, name *string, shared *SharedType, description string) (*Constellation, error) {
	if shared != nil && !shared.Valid() {
		return nil, NewError(ErrInvalidRequest, fmt.Sprintf("shared type %q is invalid", *shared)).WithConstellation(constellationID)
	}

	var constellation *Constellation
	err := s.Transaction(ctx, func(tx *Service) error {
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		constellation, _, err = tx.constellationIfAdmin(ctx, constellationID, actor)
		if err != nil {
			return err
		}

		if name != nil {
			constellation.Name = *name
		}
		if shared != nil {
			constellation.Shared = *shared
		}
		constellation.Description = description

		result, err := tx.db.NewUpdate().Model(constellation).
			Column("name", "shared", "description").
			WherePK().Exec(ctx)
		return dbkit.WithErr(result, err, "ModifyConstellation").Err()
	})
	if err != nil {
		return nil, err
	}
	return constellation, nil
}

// DeleteConstellation removes a constellation the actor administers.
// Membership rows cascade away and assigned articles fall back to unassigned
// at the storage level.
func (s *Service) DeleteConstellation(ctx context.Context, constellationID int64, actorEmail string) error {
	return s.Transaction(ctx, func(tx *Service) error {
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		constellation, _, err := tx.constellationIfAdmin(ctx, constellationID, actor)
		if err != nil {
			return err
		}

		result, err := tx.db.NewDelete().Model(constellation).WherePK().Exec(ctx)
		return dbkit.WithErr(result, err, "DeleteConstellation").Err()
	})
}

// ListConstellations pages through the constellations the actor belongs to.
func (s *Service) ListConstellations(ctx context.Context, actorEmail string, page PageRequest) (Page[Constellation], error) {
	actor, err := s.userByEmail(ctx, actorEmail)
	if err != nil {
		return Page[Constellation]{}, err
	}
	return pageOf[Constellation](ctx, s.db, page, "ListConstellations", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Join("JOIN constellation_members AS cm ON cm.constellation_id = c.id").
			Where("cm.user_id = ?", actor.ID).
			Order("c.id DESC")
	})
}

// ListUserConstellations pages through one user's constellations as seen by
// the actor: the user themselves sees all of them, anyone else only the
// SHARED ones.
func (s *Service) ListUserConstellations(ctx context.Context, targetUserID int64, actorEmail string, page PageRequest) (Page[Constellation], error) {
	owner, err := s.userByID(ctx, targetUserID)
	if err != nil {
		return Page[Constellation]{}, err
	}
	actor, err := s.userByEmail(ctx, actorEmail)
	if err != nil {
		return Page[Constellation]{}, err
	}

	return pageOf[Constellation](ctx, s.db, page, "ListUserConstellations", func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Join("JOIN constellation_members AS cm ON cm.constellation_id = c.id").
			Where("cm.user_id = ?", owner.ID)
		if actor.ID != owner.ID {
			q = q.Where("c.shared = ?", SharedTypeShared)
		}
		return q.Order("c.id DESC")
	})
}

// ConstellationDetail returns one constellation visible to the actor and
// counts the hit. Members always see it; non-members only when it is SHARED.
func (s *Service) ConstellationDetail(ctx context.Context, constellationID int64, actorEmail string) (*Constellation, error) {
	var constellation *Constellation
	err := s.Transaction(ctx, func(tx *Service) error {
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		constellation, err = tx.constellationByID(ctx, constellationID)
		if err != nil {
			return err
		}
		roster, err := tx.roster(ctx, constellationID, false)
		if err != nil {
			return err
		}

		if d := CanViewConstellation(actor.ID, constellation, roster); !d.Allowed {
			tx.log.Debug().
				Str("check", "view_constellation").
				Int64("actor", actor.ID).
				Int64("constellation", constellationID).
				Str("reason", string(d.Reason)).
				Msg("denied")
			return NewError(d.Err(), fmt.Sprintf("email:%s has no permission with constellationId:%d", actorEmail, constellationID)).
				WithActor(actor.ID).
				WithConstellation(constellationID)
		}

		result, err := tx.db.NewUpdate().Model((*Constellation)(nil)).
			Set("hits = hits + 1").
			Where("id = ?", constellationID).Exec(ctx)
		if err = dbkit.WithErr(result, err, "CountConstellationHit").Err(); err != nil {
			return err
		}
		constellation.Hits++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return constellation, nil
}
