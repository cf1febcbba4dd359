package starbook

import "time"

const (
	// DefaultPageSize is used when a page request carries no size.
	DefaultPageSize = 20

	// MaxPageSize caps caller-supplied page sizes.
	MaxPageSize = 100
)

// PageRequest is an opaque "page number + size" token. Page numbers start
// at 0. It is passed through to the storage queries unmodified.
type PageRequest struct {
	Number int
	Size   int
}

// NewPageRequest creates a page request with the default size.
func NewPageRequest(number int) PageRequest {
	return PageRequest{Number: number, Size: DefaultPageSize}
}

// WithSize sets the page size.
func (p PageRequest) WithSize(size int) PageRequest {
	p.Size = size
	return p
}

// Limit returns the effective page size, clamped to [1, MaxPageSize].
func (p PageRequest) Limit() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	if p.Size > MaxPageSize {
		return MaxPageSize
	}
	return p.Size
}

// Offset returns the row offset of the page.
func (p PageRequest) Offset() int {
	if p.Number <= 0 {
		return 0
	}
	return p.Number * p.Limit()
}

// Page is one window of a paginated result set, along with the total count
// reported by the storage layer.
type Page[T any] struct {
	Items         []T
	Number        int
	Size          int
	TotalElements int
}

// NewPage builds a page from a result window and the total count.
func NewPage[T any](items []T, req PageRequest, total int) Page[T] {
	return Page[T]{
		Items:         items,
		Number:        req.Number,
		Size:          req.Limit(),
		TotalElements: total,
	}
}

// IsEmpty reports whether the page holds no items.
func (p Page[T]) IsEmpty() bool {
	return len(p.Items) == 0
}

// TotalPages returns the number of pages the full result set spans.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 || p.TotalElements == 0 {
		return 0
	}
	return (p.TotalElements + p.Size - 1) / p.Size
}

// AuditLogFilter provides options for filtering membership audit log queries.
type AuditLogFilter struct {
	// Filter by actor who performed the action
	ActorID int64

	// Filter by target user of the action
	TargetUserID int64

	// Filter by constellation
	ConstellationID int64

	// Filter by action type
	Action string

	// Filter by time range
	Since time.Time
	Until time.Time

	// Pagination
	Limit  int
	Offset int
}

// NewAuditLogFilter creates a new AuditLogFilter with default values.
func NewAuditLogFilter() AuditLogFilter {
	return AuditLogFilter{
		Limit: 100,
	}
}

// WithActor sets the actor ID filter.
func (f AuditLogFilter) WithActor(actorID int64) AuditLogFilter {
	f.ActorID = actorID
	return f
}

// WithTargetUser sets the target user ID filter.
func (f AuditLogFilter) WithTargetUser(userID int64) AuditLogFilter {
	f.TargetUserID = userID
	return f
}

// WithConstellation sets the constellation filter.
func (f AuditLogFilter) WithConstellation(constellationID int64) AuditLogFilter {
	f.ConstellationID = constellationID
	return f
}

// WithAction sets the action filter.
func (f AuditLogFilter) WithAction(action AuditAction) AuditLogFilter {
	f.Action = string(action)
	return f
}

// WithTimeRange sets the time range filter.
func (f AuditLogFilter) WithTimeRange(since, until time.Time) AuditLogFilter {
	f.Since = since
	f.Until = until
	return f
}

// WithPagination sets both limit and offset.
func (f AuditLogFilter) WithPagination(limit, offset int) AuditLogFilter {
	f.Limit = limit
	f.Offset = offset
	return f
}
