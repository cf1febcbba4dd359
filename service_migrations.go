package starbook

import (
	"github.com/fernandezvara/dbkit"
)

// Migrations returns all database migrations required for starbook.
// Run them with db.Migrate(ctx, service.Migrations()).
func (s *Service) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "starbook-001",
			Description: "Create users table",
			SQL: `
                CREATE TABLE IF NOT EXISTS users (
                    id BIGSERIAL PRIMARY KEY,
                    email TEXT NOT NULL UNIQUE,
                    nickname TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "starbook-002",
			Description: "Create follows table",
			SQL: `
                CREATE TABLE IF NOT EXISTS follows (
                    id BIGSERIAL PRIMARY KEY,
                    from_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                    to_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    UNIQUE (from_user_id, to_user_id)
                )`,
		},
		{
			ID:          "starbook-003",
			Description: "Create constellations table",
			SQL: `
                CREATE TABLE IF NOT EXISTS constellations (
                    id BIGSERIAL PRIMARY KEY,
                    name TEXT NOT NULL,
                    shared TEXT NOT NULL,
                    description TEXT,
                    hits BIGINT NOT NULL DEFAULT 0,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "starbook-004",
			Description: "Create articles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS articles (
                    id BIGSERIAL PRIMARY KEY,
                    title TEXT NOT NULL,
                    tag TEXT,
                    description TEXT,
                    disclosure TEXT NOT NULL,
                    owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                    constellation_id BIGINT REFERENCES constellations(id) ON DELETE SET NULL,
                    hits BIGINT NOT NULL DEFAULT 0,
                    deleted_at TIMESTAMPTZ,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "starbook-005",
			Description: "Create constellation_members table",
			SQL: `
                CREATE TABLE IF NOT EXISTS constellation_members (
                    id BIGSERIAL PRIMARY KEY,
                    constellation_id BIGINT NOT NULL REFERENCES constellations(id) ON DELETE CASCADE,
                    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                    role TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    UNIQUE (constellation_id, user_id)
                )`,
		},
		{
			ID:          "starbook-006",
			Description: "Create membership_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS membership_audit_log (
                    id BIGSERIAL PRIMARY KEY,
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id BIGINT NOT NULL,
                    action TEXT NOT NULL,
                    target_user_id BIGINT NOT NULL,
                    constellation_id BIGINT NOT NULL,
                    previous_role TEXT,
                    new_role TEXT,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT
                )`,
		},
		{
			ID:          "starbook-007",
			Description: "Index articles by owner and constellation",
			SQL: `
                CREATE INDEX IF NOT EXISTS idx_articles_owner ON articles (owner_id);
                CREATE INDEX IF NOT EXISTS idx_articles_constellation ON articles (constellation_id)`,
		},
	}
}
