// Package models defines the entities of the founders directory and the persistence interfaces over them.
//
// Persistent entities:
//   - [Founder] : a founder profile, keyed case-insensitively by email, linked to one [Startup] and many tags
//   - [Startup] : a company, matched by name during imports
//   - [Tag] : a skill or hobby ([TagKind]), unique by name within its kind
//   - [HelpRequest] : a founder asking the community for help
//   - [Event] : a community event
//   - [ImportRun] : the audit record of one bulk import
//
// [ImportResult] is the per-row report of an import and is never stored.
//
// All persistent entities implement [Model], which exposes ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
