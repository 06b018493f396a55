package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParseAnomaly tags malformed input records. Always recoverable by
	// excluding the record; never fatal past the normalizer boundary.
	ErrParseAnomaly = errors.New("parse anomaly")
	// ErrExtraction tags a per-day AI extraction failure. Isolated to the
	// day and retryable; the pipeline continues with the remaining days.
	ErrExtraction = errors.New("extraction failure")
	// ErrMergeConflict tags a continuity record whose scene key no longer
	// resolves during a merge. The record is soft-orphaned, not dropped.
	ErrMergeConflict = errors.New("merge conflict")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrStore         = errors.New("store unavailable")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrStore
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether an error is recovered locally and surfaced as
// part of a result rather than propagated to the caller.
func Recoverable(err error) bool {
	return errors.Is(err, ErrParseAnomaly) ||
		errors.Is(err, ErrExtraction) ||
		errors.Is(err, ErrMergeConflict)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
