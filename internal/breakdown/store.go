package breakdown

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"callsheet/internal/config"
	"callsheet/internal/production"
)

// Store manages production persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the breakdown database and verifies the
// schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the database at an explicit path. Tests use this with a
// temporary directory.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CreateSchedule inserts a schedule header and its shoot days in a single
// transaction, with every day starting at pending.
func (s *Store) CreateSchedule(ctx context.Context, title string, snapshot production.Snapshot) (*Schedule, error) {
	castJSON, err := json.Marshal(snapshot.Cast)
	if err != nil {
		return nil, fmt.Errorf("marshal cast list: %w", err)
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin schedule tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO schedules (title, cast_json, created_at) VALUES (?, ?, ?)`,
		title,
		nullableString(string(castJSON)),
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}
	scheduleID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, day := range snapshot.Days {
		scenesJSON, err := json.Marshal(day.Scenes)
		if err != nil {
			return nil, fmt.Errorf("marshal day %d scenes: %w", day.DayNumber, err)
		}
		notesJSON, err := json.Marshal(day.Notes)
		if err != nil {
			return nil, fmt.Errorf("marshal day %d notes: %w", day.DayNumber, err)
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO shoot_days (
                schedule_id, day_number, date, location, notes_json, raw_text,
                scenes_json, status, generation, progress_percent, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, 0, ?, ?)`,
			scheduleID,
			day.DayNumber,
			nullableString(day.Date),
			nullableString(day.Location),
			nullableString(string(notesJSON)),
			nullableString(day.RawText),
			nullableString(string(scenesJSON)),
			StatusPending,
			timestamp,
			timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("insert day %d: %w", day.DayNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit schedule: %w", err)
	}
	return s.GetSchedule(ctx, scheduleID)
}

// GetSchedule fetches a schedule header by identifier.
func (s *Store) GetSchedule(ctx context.Context, id int64) (*Schedule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, cast_json, created_at FROM schedules WHERE id = ?`, id)
	schedule, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return schedule, nil
}

// LatestSchedule returns the most recently uploaded schedule, or nil when
// none exists.
func (s *Store) LatestSchedule(ctx context.Context) (*Schedule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, cast_json, created_at FROM schedules ORDER BY id DESC LIMIT 1`)
	schedule, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest schedule: %w", err)
	}
	return schedule, nil
}

// ListSchedules returns all schedules ordered by upload time.
func (s *Store) ListSchedules(ctx context.Context) ([]*Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, cast_json, created_at FROM schedules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

// Snapshot assembles the full domain snapshot for a schedule from its day
// records and cast list.
func (s *Store) Snapshot(ctx context.Context, scheduleID int64) (production.Snapshot, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return production.Snapshot{}, err
	}
	if schedule == nil {
		return production.Snapshot{}, fmt.Errorf("schedule %d not found", scheduleID)
	}

	cast, err := schedule.Cast()
	if err != nil {
		return production.Snapshot{}, err
	}

	days, err := s.DaysBySchedule(ctx, scheduleID)
	if err != nil {
		return production.Snapshot{}, err
	}

	snapshot := production.Snapshot{Cast: cast}
	for _, day := range days {
		shootDay, err := day.ShootDay()
		if err != nil {
			return production.Snapshot{}, err
		}
		snapshot.Days = append(snapshot.Days, shootDay)
	}
	return snapshot, nil
}

func scanSchedule(scanner interface{ Scan(dest ...any) error }) (*Schedule, error) {
	var (
		id         int64
		title      string
		castJSON   sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &title, &castJSON, &createdRaw); err != nil {
		return nil, err
	}
	schedule := &Schedule{ID: id, Title: title, CastJSON: castJSON.String}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		schedule.CreatedAt = created
	}
	return schedule, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
