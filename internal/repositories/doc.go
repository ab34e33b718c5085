// Package repositories implements SQLite persistence for the directory entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Repositories run against a [Querier], so the same code serves a plain connection pool and an open
// transaction; [Directory] hands out repositories bound to either.
//
// Key Implementations:
//   - [FounderRepository] : founder profiles with case-insensitive email lookups, soft deletes and tag sets
//   - [StartupRepository] : startups with name lookups
//   - [TagRepository] : skills and hobbies, unique by normalized name
//   - [HelpRequestRepository] : founder help requests
//   - [EventRepository] : community events
//   - [ImportRunRepository] : history of bulk imports
//   - [ImportAdapter] : the importer's unit-of-work store
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
