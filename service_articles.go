package starbook

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// ARTICLE LIFECYCLE
// ============================================================================

// CreateArticle persists a new active article owned by the actor, assigned to
// no constellation. Creation is always self-owned, so no visibility check
// runs.
func (s *Service) CreateArticle(ctx context.Context, actorEmail, title, tag, description string, disclosure Disclosure) (*Article, error) {
	if !disclosure.Valid() {
		return nil, NewError(ErrInvalidRequest, fmt.Sprintf("disclosure %q is invalid", disclosure)).WithActorEmail(actorEmail)
	}
	owner, err := s.userByEmail(ctx, actorEmail)
	if err != nil {
		return nil, err
	}

	article := &Article{
		Title:       title,
		Tag:         tag,
		Description: description,
		Disclosure:  disclosure,
		OwnerID:     owner.ID,
	}
	result, err := s.db.NewInsert().Model(article).Exec(ctx)
	err = dbkit.WithErr(result, err, "CreateArticle").Err()
	if err != nil {
		return nil, NewError(ErrDatabaseError, "failed to create article").WithActor(owner.ID)
	}
	return article, nil
}

// ModifyArticle updates title, tag, description and disclosure of an article
// the actor owns and returns the updated view.
func (s *Service) ModifyArticle(ctx context.Context, articleID int64, actorEmail, title, tag, description string, disclosure Disclosure) (*Article, error) {
	if !disclosure.Valid() {
		return nil, NewError(ErrInvalidRequest, fmt.Sprintf("disclosure %q is invalid", disclosure)).WithArticle(articleID)
	}

	var article *Article
	err := s.Transaction(ctx, func(tx *Service) error {
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		article, err = tx.articleOwnedBy(ctx, articleID, actor)
		if err != nil {
			return err
		}

		article.Title = title
		article.Tag = tag
		article.Description = description
		article.Disclosure = disclosure
		article.UpdatedAt = time.Now()

		result, err := tx.db.NewUpdate().Model(article).
			Column("title", "tag", "description", "disclosure", "updated_at").
			WherePK().Exec(ctx)
		return dbkit.WithErr(result, err, "ModifyArticle").Err()
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

// DeleteArticle moves an article the actor owns to the trash. The article
// stays in storage with a deletion timestamp and disappears from every list
// and detail view except the owner's trash.
func (s *Service) DeleteArticle(ctx context.Context, articleID int64, actorEmail string) error {
	return s.Transaction(ctx, func(tx *Service) error {
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		article, err := tx.articleOwnedBy(ctx, articleID, actor)
		if err != nil {
			return err
		}

		now := time.Now()
		article.DeletedAt = &now
		result, err := tx.db.NewUpdate().Model(article).
			Column("deleted_at").
			WherePK().Exec(ctx)
		return dbkit.WithErr(result, err, "DeleteArticle").Err()
	})
}

// RestoreArticle takes an article out of the actor's trash. The ownership
// check is explicit here rather than via the mutation decision so a foreign
// trashed article reports permission, not absence. Restoring an article that
// is not trashed is an invalid request.
func (s *Service) RestoreArticle(ctx context.Context, articleID int64, actorEmail string) (*Article, error) {
	var article *Article
	err := s.Transaction(ctx, func(tx *Service) error {
		var err error
		article, err = tx.articleByID(ctx, articleID)
		if err != nil {
			return err
		}
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}

		if article.OwnerID != actor.ID {
			return NewError(ErrPermissionDenied, fmt.Sprintf("email:%s has no permission", actorEmail)).
				WithActor(actor.ID).
				WithArticle(articleID)
		}

		if !article.Trashed() {
			return NewError(ErrInvalidRequest, fmt.Sprintf("articleId:%d is not abandoned", articleID)).
				WithArticle(articleID)
		}

		article.DeletedAt = nil
		result, err := tx.db.NewUpdate().Model((*Article)(nil)).
			Set("deleted_at = NULL").
			Where("id = ?", articleID).Exec(ctx)
		return dbkit.WithErr(result, err, "RestoreArticle").Err()
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

// ListTrash pages through the actor's own trashed articles.
func (s *Service) ListTrash(ctx context.Context, actorEmail string, page PageRequest) (Page[Article], error) {
	actor, err := s.userByEmail(ctx, actorEmail)
	if err != nil {
		return Page[Article]{}, err
	}
	return pageOf[Article](ctx, s.db, page, "ListTrash", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("owner_id = ?", actor.ID).
			Where("deleted_at IS NOT NULL").
			Order("deleted_at DESC")
	})
}

// ListArticles pages through all active articles visible to the actor: their
// own plus everyone's VISIBLE ones.
func (s *Service) ListArticles(ctx context.Context, actorEmail string, page PageRequest) (Page[Article], error) {
	actor, err := s.userByEmail(ctx, actorEmail)
	if err != nil {
		return Page[Article]{}, err
	}
	return pageOf[Article](ctx, s.db, page, "ListArticles", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("deleted_at IS NULL").
			Where("(owner_id = ? OR disclosure = ?)", actor.ID, DisclosureVisible).
			Order("id DESC")
	})
}

// ListUserArticles pages through one user's active articles as seen by the
// actor. The filter branch comes from VisibleArticlesFor; see access.go for
// the follow-edge caveat.
func (s *Service) ListUserArticles(ctx context.Context, targetEmail, actorEmail string, page PageRequest) (Page[Article], error) {
	actor, err := s.userByEmail(ctx, actorEmail)
	if err != nil {
		return Page[Article]{}, err
	}
	owner, err := s.userByEmail(ctx, targetEmail)
	if err != nil {
		return Page[Article]{}, err
	}

	follows := false
	if actor.ID != owner.ID {
		follows, err = s.followExists(ctx, actor.ID, owner.ID)
		if err != nil {
			return Page[Article]{}, err
		}
	}
	filter := VisibleArticlesFor(actor.ID, owner.ID, follows)

	return pageOf[Article](ctx, s.db, page, "ListUserArticles", func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("owner_id = ?", filter.OwnerID).Where("deleted_at IS NULL")
		if filter.VisibleOnly {
			q = q.Where("disclosure = ?", DisclosureVisible)
		}
		return q.Order("id DESC")
	})
}

// ArticleDetail returns one article visible to the actor and counts the hit.
// The increment happens in the same transaction as the visibility check, so
// a denied view never bumps the counter.
func (s *Service) ArticleDetail(ctx context.Context, articleID int64, actorEmail string) (*Article, error) {
	var article *Article
	err := s.Transaction(ctx, func(tx *Service) error {
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		article, err = tx.articleByID(ctx, articleID)
		if err != nil {
			return err
		}

		if d := CanViewArticle(actor.ID, article); !d.Allowed {
			tx.log.Debug().
				Str("check", "view_article").
				Int64("actor", actor.ID).
				Int64("article", articleID).
				Str("reason", string(d.Reason)).
				Msg("denied")
			if d.Reason == DenyArticleDeleted {
				return NewError(d.Err(), fmt.Sprintf("articleId:%d deleted", articleID)).
					WithArticle(articleID)
			}
			return NewError(d.Err(), fmt.Sprintf("email:%s has no permission with articleId:%d", actorEmail, articleID)).
				WithActor(actor.ID).
				WithArticle(articleID)
		}

		result, err := tx.db.NewUpdate().Model((*Article)(nil)).
			Set("hits = hits + 1").
			Where("id = ?", articleID).Exec(ctx)
		if err = dbkit.WithErr(result, err, "CountArticleHit").Err(); err != nil {
			return err
		}
		article.Hits++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

// AssignArticleToConstellation assigns or re-assigns an article the actor
// owns to a constellation. Re-selecting the current constellation is an
// invalid request; the transition from unassigned is always allowed.
func (s *Service) AssignArticleToConstellation(ctx context.Context, articleID, constellationID int64, actorEmail string) error {
	return s.Transaction(ctx, func(tx *Service) error {
		actor, err := tx.userByEmail(ctx, actorEmail)
		if err != nil {
			return err
		}
		article, err := tx.articleOwnedBy(ctx, articleID, actor)
		if err != nil {
			return err
		}
		constellation, err := tx.constellationByID(ctx, constellationID)
		if err != nil {
			return err
		}

		if article.AssignedTo(constellation.ID) {
			return NewError(ErrInvalidRequest, fmt.Sprintf("articleId:%d is already in constellationId:%d", articleID, constellationID)).
				WithArticle(articleID).
				WithConstellation(constellationID)
		}

		article.ConstellationID = &constellation.ID
		result, err := tx.db.NewUpdate().Model(article).
			Column("constellation_id").
			WherePK().Exec(ctx)
		return dbkit.WithErr(result, err, "AssignArticleToConstellation").Err()
	})
}

// ArticlesInConstellation pages through a constellation's active articles
// that are visible to the actor. The constellation's own shared type does not
// gate this listing; only per-article disclosure applies.
func (s *Service) ArticlesInConstellation(ctx context.Context, constellationID int64, actorEmail string, page PageRequest) (Page[Article], error) {
	actor, err := s.userByEmail(ctx, actorEmail)
	if err != nil {
		return Page[Article]{}, err
	}
	if _, err := s.constellationByID(ctx, constellationID); err != nil {
		return Page[Article]{}, err
	}

	return pageOf[Article](ctx, s.db, page, "ArticlesInConstellation", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("constellation_id = ?", constellationID).
			Where("deleted_at IS NULL").
			Where("(owner_id = ? OR disclosure = ?)", actor.ID, DisclosureVisible).
			Order("id DESC")
	})
}
