package breakdown

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"callsheet/internal/production"
)

const sceneColumns = "scene_number, slugline, int_ext, day_night, synopsis, script_content, pages, cast_json, day_number"

// GetScene fetches one breakdown scene by normalized number.
func (s *Store) GetScene(ctx context.Context, sceneNumber string) (*production.Scene, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+sceneColumns+` FROM scenes WHERE scene_number = ?`,
		production.NormalizeSceneNumber(sceneNumber),
	)
	scene, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scene: %w", err)
	}
	return scene, nil
}

// ListScenes returns the authoritative breakdown scene set in scene-number
// order.
func (s *Store) ListScenes(ctx context.Context) ([]production.Scene, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sceneColumns+` FROM scenes`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var scenes []production.Scene
	for rows.Next() {
		scene, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, *scene)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	production.SortScenes(scenes)
	return scenes, nil
}

// ListCharacters returns the project's character roster.
func (s *Store) ListCharacters(ctx context.Context) ([]production.Character, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, initials, avatar_colour, actor_number, confirmed FROM characters ORDER BY actor_number, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var characters []production.Character
	for rows.Next() {
		var (
			ch        production.Character
			initials  sql.NullString
			colour    sql.NullString
			confirmed int
		)
		if err := rows.Scan(&ch.ID, &ch.Name, &initials, &colour, &ch.ActorNumber, &confirmed); err != nil {
			return nil, err
		}
		ch.Initials = initials.String
		ch.AvatarColour = colour.String
		ch.Confirmed = confirmed != 0
		characters = append(characters, ch)
	}
	return characters, rows.Err()
}

// ListContinuity returns continuity records for one scene, or all records
// when sceneNumber is empty.
func (s *Store) ListContinuity(ctx context.Context, sceneNumber string) ([]production.ContinuityRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	query := `SELECT scene_number, character_id, data_json, orphaned FROM continuity_records`
	if sceneNumber == "" {
		rows, err = s.db.QueryContext(ctx, query+` ORDER BY scene_number, character_id`)
	} else {
		rows, err = s.db.QueryContext(
			ctx,
			query+` WHERE scene_number = ? ORDER BY character_id`,
			production.NormalizeSceneNumber(sceneNumber),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list continuity: %w", err)
	}
	defer rows.Close()
	return collectContinuity(rows)
}

// ListOrphans returns continuity records whose scene left the breakdown,
// kept for review rather than deleted.
func (s *Store) ListOrphans(ctx context.Context) ([]production.ContinuityRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT scene_number, character_id, data_json, orphaned FROM continuity_records WHERE orphaned = 1 ORDER BY scene_number, character_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list orphans: %w", err)
	}
	defer rows.Close()
	return collectContinuity(rows)
}

func collectContinuity(rows *sql.Rows) ([]production.ContinuityRecord, error) {
	var records []production.ContinuityRecord
	for rows.Next() {
		var (
			rec      production.ContinuityRecord
			data     sql.NullString
			orphaned int
		)
		if err := rows.Scan(&rec.SceneNumber, &rec.CharacterID, &data, &orphaned); err != nil {
			return nil, err
		}
		rec.Data = data.String
		rec.Orphaned = orphaned != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanScene(scanner interface{ Scan(dest ...any) error }) (*production.Scene, error) {
	var (
		scene         production.Scene
		slugline      sql.NullString
		intExt        sql.NullString
		dayNight      sql.NullString
		synopsis      sql.NullString
		scriptContent sql.NullString
		pages         sql.NullString
		castJSON      sql.NullString
	)
	if err := scanner.Scan(
		&scene.SceneNumber,
		&slugline,
		&intExt,
		&dayNight,
		&synopsis,
		&scriptContent,
		&pages,
		&castJSON,
		&scene.DayNumber,
	); err != nil {
		return nil, err
	}
	scene.Slugline = slugline.String
	scene.IntExt = production.IntExt(intExt.String)
	scene.DayNight = dayNight.String
	scene.Synopsis = synopsis.String
	scene.ScriptContent = scriptContent.String
	scene.Pages = pages.String
	if castJSON.Valid && castJSON.String != "" {
		if err := json.Unmarshal([]byte(castJSON.String), &scene.CastRefs); err != nil {
			return nil, fmt.Errorf("decode scene %s cast: %w", scene.SceneNumber, err)
		}
	}
	return &scene, nil
}
