// Package breakdown persists the production state in SQLite and exposes
// helpers for driving the extraction lifecycle.
//
// The Store manages database connections, schema initialization, the
// authoritative scene and character tables, continuity records, and the
// per-day status transitions used by the extraction pipeline. Shoot days
// carry a generation counter; stage work is only committed when the
// generation it started from is still current, so a re-upload cleanly
// supersedes in-flight extraction.
//
// Treat this package as the single source of truth for persistence
// semantics; when you add new statuses or columns, update schema.sql and
// bump schemaVersion.
package breakdown
