package starbook

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"github.com/rs/zerolog"
)

// Service is the decision core of the social-content backend: article
// lifecycle, constellation membership, and the visibility rules tying them
// together. It integrates with the database through dbkit.
//
// Every public operation takes the actor's identity (email) plus target ids,
// and returns either a value or a typed failure from errors.go. Identity and
// target resolution happen up front; the pure decision functions in access.go
// are consulted before any mutation.
//
// Example error handling:
//
//	article, err := service.ArticleDetail(ctx, articleID, actorEmail)
//	if err != nil {
//	    switch starbook.Categorize(err) {
//	    case starbook.CategoryNotFound:
//	        // 404
//	    case starbook.CategoryPermissionDenied:
//	        // 401/403
//	    case starbook.CategoryEntityDeleted:
//	        // the article is in someone else's trash
//	    }
//	}
type Service struct {
	db        dbkit.IDB
	log       zerolog.Logger
	txMonitor *transactionMonitor
}

// NewService creates a new starbook service. Diagnostics are discarded until
// a logger is attached with SetLogger.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := starbook.NewService(db)
func NewService(db dbkit.IDB) *Service {
	return &Service{
		db:        db,
		log:       zerolog.Nop(),
		txMonitor: newTransactionMonitor(),
	}
}

// SetLogger attaches a zerolog logger for decision and protocol diagnostics.
func (s *Service) SetLogger(log zerolog.Logger) {
	s.log = log
}

// withDB returns a copy of the service bound to a different database handle,
// sharing the logger and transaction monitor. Used to scope operations to a
// transaction.
func (s *Service) withDB(db dbkit.IDB) *Service {
	return &Service{
		db:        db,
		log:       s.log,
		txMonitor: s.txMonitor,
	}
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves membership audit log entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]MembershipAuditLog, error) {
	var logs []MembershipAuditLog
	q := s.db.NewSelect().Model(&logs)
	if filter.ActorID != 0 {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.TargetUserID != 0 {
		q = q.Where("target_user_id = ?", filter.TargetUserID)
	}
	if filter.ConstellationID != 0 {
		q = q.Where("constellation_id = ?", filter.ConstellationID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err()
	if err != nil {
		return nil, err
	}

	return logs, nil
}
