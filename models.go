package starbook

import (
	"time"

	"github.com/uptrace/bun"
)

// Disclosure controls who may see an individual article.
type Disclosure string

const (
	DisclosureVisible   Disclosure = "VISIBLE"
	DisclosureInvisible Disclosure = "INVISIBLE"
)

// Valid reports whether the disclosure is one of the defined values.
func (d Disclosure) Valid() bool {
	return d == DisclosureVisible || d == DisclosureInvisible
}

// SharedType controls who may see a constellation and its member list.
type SharedType string

const (
	SharedTypeShared    SharedType = "SHARED"
	SharedTypeNonShared SharedType = "NONSHARED"
)

// Valid reports whether the shared type is one of the defined values.
func (s SharedType) Valid() bool {
	return s == SharedTypeShared || s == SharedTypeNonShared
}

// MemberRole is the role a user holds inside a constellation.
// Exactly one member of a constellation holds RoleAdmin at any time.
type MemberRole string

const (
	RoleAdmin MemberRole = "ADMIN"
	RoleUser  MemberRole = "USER"
)

// Valid reports whether the role is one of the defined values.
func (r MemberRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account resolved by email or by numeric id.
// Ownership and membership always compare the numeric id, never the struct.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Email     string    `bun:"email,notnull,unique"`
	Nickname  string    `bun:"nickname"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Follow is a directed edge between two users. It is only ever tested for
// existence; no graph traversal happens in this package.
type Follow struct {
	bun.BaseModel `bun:"table:follows,alias:f"`

	ID         int64     `bun:"id,pk,autoincrement"`
	FromUserID int64     `bun:"from_user_id,notnull"`
	ToUserID   int64     `bun:"to_user_id,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Article is a user-authored post. DeletedAt == nil means the article is
// active; a non-nil DeletedAt moves it to the owner's trash, where only the
// owner can see or restore it.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID              int64      `bun:"id,pk,autoincrement"`
	Title           string     `bun:"title,notnull"`
	Tag             string     `bun:"tag"`
	Description     string     `bun:"description"`
	Disclosure      Disclosure `bun:"disclosure,notnull"`
	OwnerID         int64      `bun:"owner_id,notnull"`
	ConstellationID *int64     `bun:"constellation_id"`
	Hits            int64      `bun:"hits,notnull,default:0"`
	DeletedAt       *time.Time `bun:"deleted_at"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Trashed reports whether the article is soft deleted.
func (a *Article) Trashed() bool {
	return a.DeletedAt != nil
}

// AssignedTo reports whether the article currently belongs to the given
// constellation.
func (a *Article) AssignedTo(constellationID int64) bool {
	return a.ConstellationID != nil && *a.ConstellationID == constellationID
}

// Constellation is a shareable collection of articles. Its admin is derived
// from the membership rows, not stored on the row itself.
type Constellation struct {
	bun.BaseModel `bun:"table:constellations,alias:c"`

	ID          int64      `bun:"id,pk,autoincrement"`
	Name        string     `bun:"name,notnull"`
	Shared      SharedType `bun:"shared,notnull"`
	Description string     `bun:"description"`
	Hits        int64      `bun:"hits,notnull,default:0"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// ConstellationMember is one (constellation, user) membership row.
// At most one row exists per pair.
type ConstellationMember struct {
	bun.BaseModel `bun:"table:constellation_members,alias:cm"`

	ID              int64      `bun:"id,pk,autoincrement"`
	ConstellationID int64      `bun:"constellation_id,notnull"`
	UserID          int64      `bun:"user_id,notnull"`
	Role            MemberRole `bun:"role,notnull"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// ConstellationRoster holds the full membership of one constellation,
// indexed for lookup by user id.
type ConstellationRoster struct {
	ConstellationID int64
	Members         []ConstellationMember

	byUser map[int64]*ConstellationMember
}

// NewConstellationRoster builds a roster from membership rows.
func NewConstellationRoster(constellationID int64, members []ConstellationMember) *ConstellationRoster {
	r := &ConstellationRoster{
		ConstellationID: constellationID,
		Members:         members,
		byUser:          make(map[int64]*ConstellationMember, len(members)),
	}
	for i := range members {
		r.byUser[members[i].UserID] = &members[i]
	}
	return r
}

// Member returns the membership row for a user, or nil if the user does not
// belong to the constellation.
func (r *ConstellationRoster) Member(userID int64) *ConstellationMember {
	return r.byUser[userID]
}

// HasMember reports whether the user belongs to the constellation.
func (r *ConstellationRoster) HasMember(userID int64) bool {
	return r.byUser[userID] != nil
}

// Admin returns the member holding RoleAdmin, or nil if the invariant of
// exactly one admin has been violated and none exists.
func (r *ConstellationRoster) Admin() *ConstellationMember {
	for i := range r.Members {
		if r.Members[i].Role == RoleAdmin {
			return &r.Members[i]
		}
	}
	return nil
}

// Size returns the number of members.
func (r *ConstellationRoster) Size() int {
	return len(r.Members)
}

// MembershipAuditLog records membership changes (add, remove, admin handoff)
// for compliance and debugging.
type MembershipAuditLog struct {
	bun.BaseModel `bun:"table:membership_audit_log,alias:mal"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the action
	ActorID int64 `bun:"actor_id,notnull"`

	// What action was performed
	Action string `bun:"action,notnull"` // "member_added", "member_removed", "admin_handoff"

	// Target of the action
	TargetUserID    int64 `bun:"target_user_id,notnull"`
	ConstellationID int64 `bun:"constellation_id,notnull"`

	// Role transition, empty when not applicable
	PreviousRole string `bun:"previous_role"`
	NewRole      string `bun:"new_role"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`
}

// AuditAction represents the type of action in the membership audit log.
type AuditAction string

const (
	AuditActionMemberAdded   AuditAction = "member_added"
	AuditActionMemberRemoved AuditAction = "member_removed"
	AuditActionAdminHandoff  AuditAction = "admin_handoff"
)

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	ActorID         int64
	Action          AuditAction
	TargetUserID    int64
	ConstellationID int64
	PreviousRole    MemberRole
	NewRole         MemberRole
	IPAddress       string
	UserAgent       string
	RequestID       string
}

// ToModel converts an AuditEntry to a MembershipAuditLog model.
func (e *AuditEntry) ToModel() *MembershipAuditLog {
	return &MembershipAuditLog{
		ActorID:         e.ActorID,
		Action:          string(e.Action),
		TargetUserID:    e.TargetUserID,
		ConstellationID: e.ConstellationID,
		PreviousRole:    string(e.PreviousRole),
		NewRole:         string(e.NewRole),
		IPAddress:       e.IPAddress,
		UserAgent:       e.UserAgent,
		RequestID:       e.RequestID,
		Timestamp:       time.Now(),
	}
}
