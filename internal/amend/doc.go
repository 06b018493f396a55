// Package amend classifies the differences between two snapshots of the same
// artifact into an amendment result: added, removed, modified, and moved
// scenes plus cast and timing changes. The result is what a reviewer accepts
// or rejects category by category before the merge applier writes it into
// the breakdown store; it is produced once per comparison and consumed once.
//
// Classification is deterministic: identical inputs always produce identical,
// stably ordered output, and comparing a snapshot against itself produces an
// empty result.
package amend
