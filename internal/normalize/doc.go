// Package normalize converts raw parser and extraction-service output into
// the canonical production model. It is the boundary that enforces record
// shape: required identifiers are validated, whitespace and casing are
// normalized, non-numeric cast numbers are dropped, and malformed records are
// excluded and reported as anomalies rather than failing the upload.
//
// Normalization is a pure transform; callers decide what to do with the
// returned anomalies (typically log them and surface counts to the user).
package normalize
