// Package extract talks to the extraction model that turns a shoot day's raw
// schedule text into structured scene detail. Stage two of the pipeline runs
// one request per day so a failed day can be retried in isolation.
package extract

import (
	"context"

	"callsheet/internal/production"
)

// DayRequest is the input for one day's extraction: the skeleton scenes from
// stage one plus the raw text they were parsed from.
type DayRequest struct {
	DayNumber int
	Date      string
	Location  string
	Scenes    []production.Scene
	RawText   string
}

// DayResult carries the extracted scene detail for one day.
type DayResult struct {
	Scenes []production.Scene
}

// DayExtractor extracts structured scene detail for a single shoot day. The
// pipeline depends on this interface so tests can substitute a stub.
type DayExtractor interface {
	ExtractDay(ctx context.Context, req DayRequest) (DayResult, error)
}
