// Package services defines the shared error taxonomy for the reconciliation
// engine and hosts clients for external collaborators (the per-day AI
// extraction service).
//
// The taxonomy mirrors how failures are recovered: parse anomalies and
// extraction failures are recovered locally and reported inside results,
// while validation, configuration, and store errors propagate to the caller.
package services
