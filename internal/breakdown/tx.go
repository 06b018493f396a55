package breakdown

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"callsheet/internal/production"
)

// Tx wraps a database transaction with breakdown mutation helpers. All merge
// writes go through one Tx so a failed merge leaves the breakdown untouched.
type Tx struct {
	tx  *sql.Tx
	ctx context.Context
}

// Apply runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) Apply(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	wrapped := &Tx{tx: tx, ctx: ctx}
	if err := fn(wrapped); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// UpsertScene inserts or replaces a breakdown scene keyed by normalized
// scene number.
func (t *Tx) UpsertScene(scene production.Scene) error {
	castJSON, err := json.Marshal(scene.CastRefs)
	if err != nil {
		return fmt.Errorf("marshal scene %s cast: %w", scene.SceneNumber, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = t.tx.ExecContext(
		t.ctx,
		`INSERT INTO scenes (
            scene_number, slugline, int_ext, day_night, synopsis, script_content,
            pages, cast_json, day_number, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(scene_number) DO UPDATE SET
            slugline = excluded.slugline,
            int_ext = excluded.int_ext,
            day_night = excluded.day_night,
            synopsis = excluded.synopsis,
            script_content = excluded.script_content,
            pages = excluded.pages,
            cast_json = excluded.cast_json,
            day_number = excluded.day_number,
            updated_at = excluded.updated_at`,
		production.NormalizeSceneNumber(scene.SceneNumber),
		nullableString(scene.Slugline),
		nullableString(string(scene.IntExt)),
		nullableString(scene.DayNight),
		nullableString(scene.Synopsis),
		nullableString(scene.ScriptContent),
		nullableString(scene.Pages),
		string(castJSON),
		scene.DayNumber,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert scene %s: %w", scene.SceneNumber, err)
	}
	return nil
}

// UpdateSceneDay moves a scene to a different shoot day without touching its
// content.
func (t *Tx) UpdateSceneDay(sceneNumber string, dayNumber int) error {
	_, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE scenes SET day_number = ?, updated_at = ? WHERE scene_number = ?`,
		dayNumber,
		time.Now().UTC().Format(time.RFC3339Nano),
		production.NormalizeSceneNumber(sceneNumber),
	)
	if err != nil {
		return fmt.Errorf("update scene %s day: %w", sceneNumber, err)
	}
	return nil
}

// UpdateSceneCast replaces a scene's cast refs.
func (t *Tx) UpdateSceneCast(sceneNumber string, castRefs []int) error {
	castJSON, err := json.Marshal(castRefs)
	if err != nil {
		return fmt.Errorf("marshal scene %s cast: %w", sceneNumber, err)
	}
	_, err = t.tx.ExecContext(
		t.ctx,
		`UPDATE scenes SET cast_json = ?, updated_at = ? WHERE scene_number = ?`,
		string(castJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
		production.NormalizeSceneNumber(sceneNumber),
	)
	if err != nil {
		return fmt.Errorf("update scene %s cast: %w", sceneNumber, err)
	}
	return nil
}

// UpdateScenePages replaces a scene's page count.
func (t *Tx) UpdateScenePages(sceneNumber, pages string) error {
	_, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE scenes SET pages = ?, updated_at = ? WHERE scene_number = ?`,
		nullableString(pages),
		time.Now().UTC().Format(time.RFC3339Nano),
		production.NormalizeSceneNumber(sceneNumber),
	)
	if err != nil {
		return fmt.Errorf("update scene %s pages: %w", sceneNumber, err)
	}
	return nil
}

// RenumberScene re-keys a scene and its continuity records to a new scene
// number in one step, so captured continuity follows the scene identity.
func (t *Tx) RenumberScene(oldNumber, newNumber string) error {
	oldNumber = production.NormalizeSceneNumber(oldNumber)
	newNumber = production.NormalizeSceneNumber(newNumber)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE scenes SET scene_number = ?, updated_at = ? WHERE scene_number = ?`,
		newNumber, now, oldNumber,
	); err != nil {
		return fmt.Errorf("renumber scene %s to %s: %w", oldNumber, newNumber, err)
	}
	// A record for the same character may already exist under the new number
	// (left behind by an earlier removal). That one wins; the record that
	// cannot be re-keyed is orphaned for review instead of dropped.
	if _, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE OR IGNORE continuity_records SET scene_number = ?, updated_at = ? WHERE scene_number = ?`,
		newNumber, now, oldNumber,
	); err != nil {
		return fmt.Errorf("re-key continuity %s to %s: %w", oldNumber, newNumber, err)
	}
	if _, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE continuity_records SET orphaned = 1, updated_at = ? WHERE scene_number = ?`,
		now, oldNumber,
	); err != nil {
		return fmt.Errorf("orphan unmoved continuity for %s: %w", oldNumber, err)
	}
	return nil
}

// DeleteScene removes a scene from the breakdown and orphans its continuity
// records instead of deleting them.
func (t *Tx) DeleteScene(sceneNumber string) error {
	sceneNumber = production.NormalizeSceneNumber(sceneNumber)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := t.tx.ExecContext(
		t.ctx,
		`DELETE FROM scenes WHERE scene_number = ?`,
		sceneNumber,
	); err != nil {
		return fmt.Errorf("delete scene %s: %w", sceneNumber, err)
	}
	if _, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE continuity_records SET orphaned = 1, updated_at = ? WHERE scene_number = ?`,
		now, sceneNumber,
	); err != nil {
		return fmt.Errorf("orphan continuity for %s: %w", sceneNumber, err)
	}
	return nil
}

// ReviveContinuity clears the orphan flag for a scene's records when the
// scene re-enters the breakdown.
func (t *Tx) ReviveContinuity(sceneNumber string) error {
	_, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE continuity_records SET orphaned = 0, updated_at = ? WHERE scene_number = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		production.NormalizeSceneNumber(sceneNumber),
	)
	if err != nil {
		return fmt.Errorf("revive continuity for %s: %w", sceneNumber, err)
	}
	return nil
}

// InsertContinuity adds or replaces the continuity record for a
// (scene, character) pair. The pair is the record's identity; a second
// capture for the same pair updates the existing record.
func (t *Tx) InsertContinuity(record production.ContinuityRecord) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := t.tx.ExecContext(
		t.ctx,
		`INSERT INTO continuity_records (scene_number, character_id, data_json, orphaned, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(scene_number, character_id) DO UPDATE SET
            data_json = excluded.data_json,
            orphaned = excluded.orphaned,
            updated_at = excluded.updated_at`,
		production.NormalizeSceneNumber(record.SceneNumber),
		record.CharacterID,
		nullableString(record.Data),
		boolToInt(record.Orphaned),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert continuity for %s: %w", record.SceneNumber, err)
	}
	return nil
}

// UpsertCharacter inserts or updates a character by identity.
func (t *Tx) UpsertCharacter(ch production.Character) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := t.tx.ExecContext(
		t.ctx,
		`INSERT INTO characters (id, name, initials, avatar_colour, actor_number, confirmed, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            initials = excluded.initials,
            avatar_colour = excluded.avatar_colour,
            actor_number = excluded.actor_number,
            confirmed = excluded.confirmed,
            updated_at = excluded.updated_at`,
		ch.ID,
		ch.Name,
		nullableString(ch.Initials),
		nullableString(ch.AvatarColour),
		ch.ActorNumber,
		boolToInt(ch.Confirmed),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert character %s: %w", ch.ID, err)
	}
	return nil
}
