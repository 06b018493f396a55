package breakdown

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const dayColumns = "id, schedule_id, day_number, date, location, notes_json, raw_text, scenes_json, status, generation, progress_stage, progress_percent, progress_message, error_message, request_id, created_at, updated_at"

// GetDay fetches a shoot day by identifier.
func (s *Store) GetDay(ctx context.Context, id int64) (*DayRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dayColumns+` FROM shoot_days WHERE id = ?`, id)
	day, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get day: %w", err)
	}
	return day, nil
}

// DayByNumber fetches one shoot day within a schedule.
func (s *Store) DayByNumber(ctx context.Context, scheduleID int64, dayNumber int) (*DayRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+dayColumns+` FROM shoot_days WHERE schedule_id = ? AND day_number = ?`,
		scheduleID,
		dayNumber,
	)
	day, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("day by number: %w", err)
	}
	return day, nil
}

// DaysBySchedule returns a schedule's days in day-number order.
func (s *Store) DaysBySchedule(ctx context.Context, scheduleID int64) ([]*DayRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+dayColumns+` FROM shoot_days WHERE schedule_id = ? ORDER BY day_number`,
		scheduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query schedule days: %w", err)
	}
	defer rows.Close()

	var days []*DayRecord
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// DaysByStatus returns days matching any of the provided statuses ordered by
// schedule, then day number.
func (s *Store) DaysByStatus(ctx context.Context, statuses ...DayStatus) ([]*DayRecord, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+dayColumns+` FROM shoot_days WHERE status IN (`+placeholders+`) ORDER BY schedule_id, day_number`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query days by status: %w", err)
	}
	defer rows.Close()

	var days []*DayRecord
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// ClaimDay transitions a day from one of the given statuses into an in-flight
// status, but only when the generation the caller observed is still current.
// Returns false when another worker claimed it first or a re-upload
// superseded it.
func (s *Store) ClaimDay(ctx context.Context, id int64, generation int64, requestID string, from []DayStatus, to DayStatus) (bool, error) {
	if len(from) == 0 {
		return false, errors.New("no source statuses")
	}
	if !ValidStatus(to) {
		return false, fmt.Errorf("unknown day status %q", to)
	}
	placeholders := makePlaceholders(len(from))
	args := make([]any, 0, len(from)+4)
	args = append(args,
		to,
		nullableString(requestID),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		generation,
	)
	for _, status := range from {
		args = append(args, status)
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shoot_days
         SET status = ?, request_id = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND generation = ? AND status IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("claim day: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// FinishDay moves a claimed day into a settled status, guarded by the same
// generation the stage started from. A superseded result is silently dropped.
func (s *Store) FinishDay(ctx context.Context, id int64, generation int64, status DayStatus, errorMessage string) (bool, error) {
	if !ValidStatus(status) {
		return false, fmt.Errorf("unknown day status %q", status)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shoot_days
         SET status = ?, error_message = ?, progress_percent = 100, updated_at = ?
         WHERE id = ? AND generation = ?`,
		status,
		nullableString(errorMessage),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		generation,
	)
	if err != nil {
		return false, fmt.Errorf("finish day: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateDayProgress persists progress fields for an in-flight day.
func (s *Store) UpdateDayProgress(ctx context.Context, id int64, stage string, percent float64, message string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE shoot_days
         SET progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(stage),
		percent,
		nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update day progress: %w", err)
	}
	return nil
}

// UpdateDayScenes replaces a day's scene payload, guarded by generation so a
// superseded stage result never overwrites fresher data.
func (s *Store) UpdateDayScenes(ctx context.Context, id int64, generation int64, scenesJSON string) (bool, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shoot_days SET scenes_json = ?, updated_at = ? WHERE id = ? AND generation = ?`,
		nullableString(scenesJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		generation,
	)
	if err != nil {
		return false, fmt.Errorf("update day scenes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ResetDay bumps the generation and returns a day to pending, invalidating
// any in-flight stage work for it.
func (s *Store) ResetDay(ctx context.Context, id int64) (*DayRecord, error) {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE shoot_days
         SET status = ?, generation = generation + 1, progress_stage = NULL,
             progress_percent = 0, progress_message = NULL, error_message = NULL,
             request_id = NULL, updated_at = ?
         WHERE id = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("reset day: %w", err)
	}
	return s.GetDay(ctx, id)
}

// ResetStuckProcessing returns days stuck in in-flight statuses to their
// stage entry points. Used on startup after an unclean shutdown.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE shoot_days
         SET status = CASE status WHEN ? THEN ? ELSE ? END,
             progress_stage = 'Reset from stuck processing',
             progress_percent = 0, progress_message = NULL, updated_at = ?
         WHERE status IN (?, ?)`,
		StatusStage1Parsing,
		StatusPending,
		StatusStage1Done,
		now,
		StatusStage1Parsing,
		StatusStage2Processing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck days: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of days grouped by status.
func (s *Store) Stats(ctx context.Context) (map[DayStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM shoot_days GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("day stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[DayStatus]int)
	for rows.Next() {
		var status DayStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates day state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending, StatusStage1Done:
			health.Pending += count
		case StatusStage2Done:
			health.Done += count
		case StatusStage2Error:
			health.Errored += count
		default:
			if status.Processing() {
				health.Processing += count
			}
		}
	}
	return health, nil
}

func scanDay(scanner interface{ Scan(dest ...any) error }) (*DayRecord, error) {
	var (
		id              int64
		scheduleID      int64
		dayNumber       int
		date            sql.NullString
		location        sql.NullString
		notesJSON       sql.NullString
		rawText         sql.NullString
		scenesJSON      sql.NullString
		statusStr       string
		generation      int64
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		errorMessage    sql.NullString
		requestID       sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&scheduleID,
		&dayNumber,
		&date,
		&location,
		&notesJSON,
		&rawText,
		&scenesJSON,
		&statusStr,
		&generation,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&errorMessage,
		&requestID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	day := &DayRecord{
		ID:              id,
		ScheduleID:      scheduleID,
		DayNumber:       dayNumber,
		Date:            date.String,
		Location:        location.String,
		NotesJSON:       notesJSON.String,
		RawText:         rawText.String,
		ScenesJSON:      scenesJSON.String,
		Status:          DayStatus(statusStr),
		Generation:      generation,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		ErrorMessage:    errorMessage.String,
		RequestID:       requestID.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		day.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		day.UpdatedAt = updated
	}
	return day, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
