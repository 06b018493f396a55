package breakdown

import (
	"encoding/json"
	"fmt"
	"time"

	"callsheet/internal/production"
)

// DayStatus represents the extraction lifecycle of a shoot day.
type DayStatus string

const (
	StatusPending          DayStatus = "pending"
	StatusStage1Parsing    DayStatus = "stage1_parsing"
	StatusStage1Done       DayStatus = "stage1_done"
	StatusStage2Processing DayStatus = "stage2_processing"
	StatusStage2Done       DayStatus = "stage2_done"
	StatusStage2Error      DayStatus = "stage2_error"
)

var allStatuses = []DayStatus{
	StatusPending,
	StatusStage1Parsing,
	StatusStage1Done,
	StatusStage2Processing,
	StatusStage2Done,
	StatusStage2Error,
}

var statusSet = func() map[DayStatus]struct{} {
	set := make(map[DayStatus]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[DayStatus]struct{}{
	StatusStage1Parsing:    {},
	StatusStage2Processing: {},
}

// ValidStatus reports whether status is a known lifecycle value.
func ValidStatus(status DayStatus) bool {
	_, ok := statusSet[status]
	return ok
}

// Processing reports whether a status marks in-flight stage work.
func (s DayStatus) Processing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// Terminal reports whether a status will not advance without new input.
func (s DayStatus) Terminal() bool {
	return s == StatusStage2Done || s == StatusStage2Error
}

// Schedule is one uploaded schedule document.
type Schedule struct {
	ID        int64
	Title     string
	CastJSON  string
	CreatedAt time.Time
}

// Cast decodes the schedule's cast list.
func (sc *Schedule) Cast() ([]production.CastEntry, error) {
	if sc == nil || sc.CastJSON == "" {
		return nil, nil
	}
	var cast []production.CastEntry
	if err := json.Unmarshal([]byte(sc.CastJSON), &cast); err != nil {
		return nil, fmt.Errorf("decode cast list: %w", err)
	}
	return cast, nil
}

// DayRecord is a shoot day persisted in SQLite, carrying both the parsed
// scene payload and the extraction progress for that day.
type DayRecord struct {
	ID              int64
	ScheduleID      int64
	DayNumber       int
	Date            string
	Location        string
	NotesJSON       string
	RawText         string
	ScenesJSON      string
	Status          DayStatus
	Generation      int64
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	ErrorMessage    string
	RequestID       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Scenes decodes the day's scene payload.
func (d *DayRecord) Scenes() ([]production.Scene, error) {
	if d == nil || d.ScenesJSON == "" {
		return nil, nil
	}
	var scenes []production.Scene
	if err := json.Unmarshal([]byte(d.ScenesJSON), &scenes); err != nil {
		return nil, fmt.Errorf("decode day %d scenes: %w", d.DayNumber, err)
	}
	return scenes, nil
}

// Notes decodes the day's notes list.
func (d *DayRecord) Notes() ([]string, error) {
	if d == nil || d.NotesJSON == "" {
		return nil, nil
	}
	var notes []string
	if err := json.Unmarshal([]byte(d.NotesJSON), &notes); err != nil {
		return nil, fmt.Errorf("decode day %d notes: %w", d.DayNumber, err)
	}
	return notes, nil
}

// ShootDay converts the record to the domain shape.
func (d *DayRecord) ShootDay() (production.ShootDay, error) {
	scenes, err := d.Scenes()
	if err != nil {
		return production.ShootDay{}, err
	}
	notes, err := d.Notes()
	if err != nil {
		return production.ShootDay{}, err
	}
	return production.ShootDay{
		DayNumber: d.DayNumber,
		Date:      d.Date,
		Location:  d.Location,
		Notes:     notes,
		Scenes:    scenes,
		RawText:   d.RawText,
	}, nil
}

// HealthSummary describes aggregated day counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Done       int
	Errored    int
}
