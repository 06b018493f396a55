// Package pipeline drives the two-stage extraction of an uploaded schedule.
//
// Stage one validates and normalizes each shoot day's scene skeleton; stage
// two sends the day's raw text to the extraction model and merges the
// returned detail. Days advance independently, so one failed day never
// blocks the rest, and every transition is guarded by the day's generation
// counter so a re-upload or retry supersedes stale in-flight work.
package pipeline
