package starbook

import (
	"errors"
	"fmt"
)

// Sentinel errors for starbook operations.
var (
	// ErrUserNotFound is returned when an actor or target user cannot be resolved.
	ErrUserNotFound = errors.New("starbook: user not found")

	// ErrArticleNotFound is returned when an article id resolves to nothing.
	ErrArticleNotFound = errors.New("starbook: article not found")

	// ErrConstellationNotFound is returned when a constellation id resolves to nothing.
	ErrConstellationNotFound = errors.New("starbook: constellation not found")

	// ErrMembershipNotFound is returned when a user has no membership row in a
	// constellation but the operation requires one.
	ErrMembershipNotFound = errors.New("starbook: constellation membership not found")

	// ErrPermissionDenied is returned when the actor is not allowed to perform
	// the operation on the target entity.
	ErrPermissionDenied = errors.New("starbook: permission denied")

	// ErrInvalidRequest is returned for requests that are well-formed but
	// nonsensical in the current state: duplicate membership, admin removing
	// itself, restoring an article that is not trashed, re-assigning an
	// article to its current constellation, a constellation with no admin.
	ErrInvalidRequest = errors.New("starbook: invalid request")

	// ErrArticleDeleted is returned when a trashed article is viewed by
	// someone other than its owner.
	ErrArticleDeleted = errors.New("starbook: article deleted")

	// ErrDatabaseError is returned when a storage operation fails.
	ErrDatabaseError = errors.New("starbook: database error")
)

// Category is a transport-agnostic classification of an error, meant for the
// (external) transport layer to map onto status codes.
type Category string

const (
	CategoryNotFound         Category = "not_found"
	CategoryPermissionDenied Category = "permission_denied"
	CategoryInvalidRequest   Category = "invalid_request"
	CategoryEntityDeleted    Category = "entity_deleted"
	CategoryInternal         Category = "internal"
)

// Categorize maps an error to its canonical category.
func Categorize(err error) Category {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrArticleNotFound),
		errors.Is(err, ErrConstellationNotFound),
		errors.Is(err, ErrMembershipNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrPermissionDenied):
		return CategoryPermissionDenied
	case errors.Is(err, ErrInvalidRequest):
		return CategoryInvalidRequest
	case errors.Is(err, ErrArticleDeleted):
		return CategoryEntityDeleted
	default:
		return CategoryInternal
	}
}

// Error wraps a sentinel error with additional context.
type Error struct {
	Err             error  // Underlying sentinel error
	Message         string // Additional context
	UserID          int64  // Target user involved (if applicable)
	ActorID         int64  // Actor who triggered the error (if applicable)
	ActorEmail      string // Actor identity as supplied by the caller
	ArticleID       int64  // Article involved (if applicable)
	ConstellationID int64  // Constellation involved (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// Category returns the canonical category of the wrapped error.
func (e *Error) Category() Category {
	return Categorize(e.Err)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithUser adds target user information to the error.
func (e *Error) WithUser(userID int64) *Error {
	e.UserID = userID
	return e
}

// WithActor adds actor information to the error.
func (e *Error) WithActor(actorID int64) *Error {
	e.ActorID = actorID
	return e
}

// WithActorEmail adds the caller-supplied actor identity to the error.
func (e *Error) WithActorEmail(email string) *Error {
	e.ActorEmail = email
	return e
}

// WithArticle adds article information to the error.
func (e *Error) WithArticle(articleID int64) *Error {
	e.ArticleID = articleID
	return e
}

// WithConstellation adds constellation information to the error.
func (e *Error) WithConstellation(constellationID int64) *Error {
	e.ConstellationID = constellationID
	return e
}

// IsNotFound checks if an error is any of the not-found errors.
func IsNotFound(err error) bool {
	return Categorize(err) == CategoryNotFound
}

// IsPermissionDenied checks if an error is an authorization error.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsInvalidRequest checks if an error is due to a state-invalid request.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsArticleDeleted checks if an error is due to viewing a trashed article.
func IsArticleDeleted(err error) bool {
	return errors.Is(err, ErrArticleDeleted)
}
