// Package starbook is the authorization and lifecycle core of a
// social-content backend: users publish articles, group them into
// constellations (shareable collections), follow each other, and grant
// articles and collections varying visibility.
//
// # Core Concepts
//
// Article: a user-authored post with a per-article Disclosure flag. VISIBLE
// articles are world-readable, INVISIBLE ones are owner-only. Deleting an
// article moves it to the owner's trash (soft delete); only the owner sees
// trashed articles and only the owner can restore them.
//
// Constellation: a collection of articles with a SharedType flag. SHARED
// constellations and their member lists are visible to anyone, NONSHARED
// ones to members only. Every constellation has exactly one ADMIN member;
// the admin manages the collection, its membership, and can hand the admin
// role to another member through a two-step transfer with a compensating
// rollback.
//
// Decision: access checks are pure functions returning Allow or Deny with a
// reason (see access.go). Managers resolve the actor and target entities,
// consult the decision, and only then mutate state inside a transaction.
//
// # Key Features
//
//   - Soft-delete trash with owner-only restore
//   - Per-article disclosure and per-constellation shared visibility
//   - Single-admin membership invariant with a compensated handoff protocol
//   - Follow edges consumed by the per-user article listing filter
//   - Membership audit logging with request metadata from context
//   - DBKit integration: bring your own database connection
//
// # Basic Usage
//
//	db, err := dbkit.New(dbkit.Config{URL: cfg.Database.DSN})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	service := starbook.NewService(db)
//	if _, err := db.Migrate(ctx, service.Migrations()); err != nil {
//	    log.Fatal(err)
//	}
//
//	article, err := service.CreateArticle(ctx, "ada@example.com",
//	    "Deneb", "summer-triangle", "brightest in Cygnus",
//	    starbook.DisclosureVisible)
//
// Transport concerns (routing, request binding, pagination tokens, status
// code mapping) live outside this package; errors carry a Category for the
// transport layer to map.
package starbook
