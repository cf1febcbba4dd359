package starbook

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrorWrapping tests the Error wrapper
func TestErrorWrapping(t *testing.T) {
	t.Run("Message formatting", func(t *testing.T) {
		err := NewError(ErrPermissionDenied, "email:a@b.c has no permission")
		assert.Equal(t, "starbook: permission denied: email:a@b.c has no permission", err.Error())
	})

	t.Run("No message", func(t *testing.T) {
		err := NewError(ErrArticleNotFound, "")
		assert.Equal(t, ErrArticleNotFound.Error(), err.Error())
	})

	t.Run("Unwrap and Is", func(t *testing.T) {
		err := NewError(ErrInvalidRequest, "duplicate membership")
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.NotErrorIs(t, err, ErrPermissionDenied)
		assert.Equal(t, ErrInvalidRequest, errors.Unwrap(err))
	})

	t.Run("Wrapped further", func(t *testing.T) {
		err := fmt.Errorf("operation failed: %w", NewError(ErrArticleDeleted, "articleId:9 deleted"))
		assert.ErrorIs(t, err, ErrArticleDeleted)
	})

	t.Run("Fluent context", func(t *testing.T) {
		err := NewError(ErrMembershipNotFound, "no membership").
			WithUser(11).
			WithActor(10).
			WithActorEmail("admin@test.invalid").
			WithConstellation(5)
		assert.Equal(t, int64(11), err.UserID)
		assert.Equal(t, int64(10), err.ActorID)
		assert.Equal(t, "admin@test.invalid", err.ActorEmail)
		assert.Equal(t, int64(5), err.ConstellationID)
	})

	t.Run("WithArticle", func(t *testing.T) {
		err := NewError(ErrArticleNotFound, "gone").WithArticle(9)
		assert.Equal(t, int64(9), err.ArticleID)
	})
}

// TestCategorize tests the transport category mapping
func TestCategorize(t *testing.T) {
	tests := []struct {
		err      error
		category Category
	}{
		{ErrUserNotFound, CategoryNotFound},
		{ErrArticleNotFound, CategoryNotFound},
		{ErrConstellationNotFound, CategoryNotFound},
		{ErrMembershipNotFound, CategoryNotFound},
		{ErrPermissionDenied, CategoryPermissionDenied},
		{ErrInvalidRequest, CategoryInvalidRequest},
		{ErrArticleDeleted, CategoryEntityDeleted},
		{ErrDatabaseError, CategoryInternal},
		{errors.New("unknown"), CategoryInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.category, Categorize(tt.err), "error: %v", tt.err)
	}

	t.Run("Wrapped errors keep their category", func(t *testing.T) {
		err := NewError(ErrArticleDeleted, "articleId:9 deleted").WithArticle(9)
		assert.Equal(t, CategoryEntityDeleted, err.Category())
		assert.Equal(t, CategoryEntityDeleted, Categorize(err))
	})
}

// TestErrorPredicates tests the helper predicates
func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewError(ErrUserNotFound, "")))
	assert.True(t, IsNotFound(ErrConstellationNotFound))
	assert.False(t, IsNotFound(ErrPermissionDenied))

	assert.True(t, IsPermissionDenied(NewError(ErrPermissionDenied, "nope")))
	assert.False(t, IsPermissionDenied(ErrInvalidRequest))

	assert.True(t, IsInvalidRequest(NewError(ErrInvalidRequest, "self removal")))
	assert.True(t, IsArticleDeleted(NewError(ErrArticleDeleted, "")))
	assert.False(t, IsArticleDeleted(ErrArticleNotFound))
}
