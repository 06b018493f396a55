// Package production defines the canonical data model shared by the
// reconciliation engine: scenes, shooting days, cast entries, characters,
// and continuity records.
//
// A Snapshot is a complete normalized view of one artifact (a script or a
// shooting schedule) at one point in time. Snapshots are transient; the
// breakdown store is the only durable state. Scene numbers are unique within
// a snapshot but the same real-world scene may carry a different number in a
// later revision, which is why continuity records are re-keyed rather than
// deleted when identities shift.
package production
