package starbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestArticleLifecycle tests create, modify, trash and restore
func TestArticleLifecycle(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	owner := helper.CreateTestUser("article-owner")
	stranger := helper.CreateTestUser("article-stranger")

	t.Run("Create article", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "First Light", DisclosureVisible)
		assert.NotZero(t, article.ID)
		assert.Equal(t, owner.ID, article.OwnerID)
		assert.False(t, article.Trashed())
		assert.Nil(t, article.ConstellationID)
	})

	t.Run("Create with invalid disclosure", func(t *testing.T) {
		_, err := service.CreateArticle(ctx, owner.Email, "Bad", "tag", "desc", Disclosure("PUBLICISH"))
		require.Error(t, err)
		assert.True(t, IsInvalidRequest(err))
	})

	t.Run("Modify by owner", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Draft", DisclosureInvisible)

		updated, err := service.ModifyArticle(ctx, article.ID, owner.Email, "Published", "stars", "now public", DisclosureVisible)
		require.NoError(t, err)
		assert.Equal(t, "Published", updated.Title)
		assert.Equal(t, DisclosureVisible, updated.Disclosure)
	})

	t.Run("Modify by non-owner denied", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Mine", DisclosureVisible)

		_, err := service.ModifyArticle(ctx, article.ID, stranger.Email, "Stolen", "", "", DisclosureVisible)
		require.Error(t, err)
		assert.True(t, IsPermissionDenied(err))
	})

	t.Run("Delete moves to trash and restore brings back", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Ephemeral", DisclosureVisible)

		require.NoError(t, service.DeleteArticle(ctx, article.ID, owner.Email))

		trash, err := service.ListTrash(ctx, owner.Email, NewPageRequest(0))
		require.NoError(t, err)
		found := false
		for _, a := range trash.Items {
			if a.ID == article.ID {
				found = true
				assert.True(t, a.Trashed())
			}
		}
		assert.True(t, found, "deleted article should appear in the owner's trash")

		restored, err := service.RestoreArticle(ctx, article.ID, owner.Email)
		require.NoError(t, err)
		assert.False(t, restored.Trashed())
	})

	t.Run("Restore of active article is invalid", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Active", DisclosureVisible)

		_, err := service.RestoreArticle(ctx, article.ID, owner.Email)
		require.Error(t, err)
		assert.True(t, IsInvalidRequest(err))
	})

	t.Run("Restore of foreign trashed article is permission denied", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Not Yours", DisclosureVisible)
		require.NoError(t, service.DeleteArticle(ctx, article.ID, owner.Email))

		_, err := service.RestoreArticle(ctx, article.ID, stranger.Email)
		require.Error(t, err)
		assert.True(t, IsPermissionDenied(err))
	})

	t.Run("Delete by non-owner denied", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Guarded", DisclosureVisible)

		err := service.DeleteArticle(ctx, article.ID, stranger.Email)
		require.Error(t, err)
		assert.True(t, IsPermissionDenied(err))
	})
}

// TestArticleDetail tests the visibility gate and the hit counter
func TestArticleDetail(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	owner := helper.CreateTestUser("detail-owner")
	viewer := helper.CreateTestUser("detail-viewer")

	t.Run("Visible article counts hits for any viewer", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Open", DisclosureVisible)

		seen, err := service.ArticleDetail(ctx, article.ID, viewer.Email)
		require.NoError(t, err)
		assert.Equal(t, int64(1), seen.Hits)

		seen, err = service.ArticleDetail(ctx, article.ID, owner.Email)
		require.NoError(t, err)
		assert.Equal(t, int64(2), seen.Hits)
	})

	t.Run("Invisible article denied without counting", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Hidden", DisclosureInvisible)

		_, err := service.ArticleDetail(ctx, article.ID, viewer.Email)
		require.Error(t, err)
		assert.True(t, IsPermissionDenied(err))

		// Owner still sees it, and the denied view must not have counted.
		seen, err := service.ArticleDetail(ctx, article.ID, owner.Email)
		require.NoError(t, err)
		assert.Equal(t, int64(1), seen.Hits)
	})

	t.Run("Trashed article reads as deleted for others", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Gone", DisclosureVisible)
		require.NoError(t, service.DeleteArticle(ctx, article.ID, owner.Email))

		_, err := service.ArticleDetail(ctx, article.ID, viewer.Email)
		require.Error(t, err)
		assert.True(t, IsArticleDeleted(err))

		// The owner can still open their own trashed article.
		seen, err := service.ArticleDetail(ctx, article.ID, owner.Email)
		require.NoError(t, err)
		assert.Equal(t, article.ID, seen.ID)
	})

	t.Run("Missing article", func(t *testing.T) {
		_, err := service.ArticleDetail(ctx, int64(1<<60), owner.Email)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

// TestArticleListings tests the visibility filters of the list operations
func TestArticleListings(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	author := helper.CreateTestUser("list-author")
	reader := helper.CreateTestUser("list-reader")

	visible := helper.CreateTestArticle(author, "Seen", DisclosureVisible)
	invisible := helper.CreateTestArticle(author, "Unseen", DisclosureInvisible)
	trashed := helper.CreateTestArticle(author, "Trashed", DisclosureVisible)
	require.NoError(t, service.DeleteArticle(ctx, trashed.ID, author.Email))

	contains := func(page Page[Article], id int64) bool {
		for _, a := range page.Items {
			if a.ID == id {
				return true
			}
		}
		return false
	}

	t.Run("ListArticles hides foreign invisible and all trashed", func(t *testing.T) {
		page, err := service.ListArticles(ctx, reader.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		assert.True(t, contains(page, visible.ID))
		assert.False(t, contains(page, invisible.ID))
		assert.False(t, contains(page, trashed.ID))
	})

	t.Run("ListArticles shows own invisible", func(t *testing.T) {
		page, err := service.ListArticles(ctx, author.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		assert.True(t, contains(page, invisible.ID))
		assert.False(t, contains(page, trashed.ID))
	})

	t.Run("ListUserArticles for a stranger is visible-only", func(t *testing.T) {
		page, err := service.ListUserArticles(ctx, author.Email, reader.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		assert.True(t, contains(page, visible.ID))
		assert.False(t, contains(page, invisible.ID))
	})

	t.Run("ListUserArticles for the owner includes everything active", func(t *testing.T) {
		page, err := service.ListUserArticles(ctx, author.Email, author.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		assert.True(t, contains(page, visible.ID))
		assert.True(t, contains(page, invisible.ID))
		assert.False(t, contains(page, trashed.ID))
	})
}

// TestArticleConstellationAssignment tests moving articles into constellations
func TestArticleConstellationAssignment(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	owner := helper.CreateTestUser("assign-owner")
	viewer := helper.CreateTestUser("assign-viewer")
	constellation := helper.CreateTestConstellation(owner, "Orion", SharedTypeShared)

	t.Run("Assign and re-assign", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Belt", DisclosureVisible)

		require.NoError(t, service.AssignArticleToConstellation(ctx, article.ID, constellation.ID, owner.Email))

		// Re-selecting the constellation the article already belongs to.
		err := service.AssignArticleToConstellation(ctx, article.ID, constellation.ID, owner.Email)
		require.Error(t, err)
		assert.True(t, IsInvalidRequest(err))

		other := helper.CreateTestConstellation(owner, "Lyra", SharedTypeNonShared)
		require.NoError(t, service.AssignArticleToConstellation(ctx, article.ID, other.ID, owner.Email))
	})

	t.Run("Assign requires ownership", func(t *testing.T) {
		article := helper.CreateTestArticle(owner, "Locked", DisclosureVisible)

		err := service.AssignArticleToConstellation(ctx, article.ID, constellation.ID, viewer.Email)
		require.Error(t, err)
		assert.True(t, IsPermissionDenied(err))
	})

	t.Run("Listing applies per-article disclosure", func(t *testing.T) {
		bucket := helper.CreateTestConstellation(owner, "Cygnus", SharedTypeShared)
		open := helper.CreateTestArticle(owner, "Open Wing", DisclosureVisible)
		closed := helper.CreateTestArticle(owner, "Closed Wing", DisclosureInvisible)
		require.NoError(t, service.AssignArticleToConstellation(ctx, open.ID, bucket.ID, owner.Email))
		require.NoError(t, service.AssignArticleToConstellation(ctx, closed.ID, bucket.ID, owner.Email))

		page, err := service.ArticlesInConstellation(ctx, bucket.ID, viewer.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, open.ID, page.Items[0].ID)

		page, err = service.ArticlesInConstellation(ctx, bucket.ID, owner.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
	})
}
