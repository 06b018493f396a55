package breakdown_test

import (
	"context"
	"path/filepath"
	"testing"

	"callsheet/internal/breakdown"
	"callsheet/internal/production"
)

func newStore(t *testing.T) *breakdown.Store {
	t.Helper()
	store, err := breakdown.OpenPath(filepath.Join(t.TempDir(), "breakdown.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSnapshot() production.Snapshot {
	return production.Snapshot{
		Days: []production.ShootDay{
			{
				DayNumber: 1,
				Date:      "2026-03-02",
				Location:  "Stage 4",
				Scenes: []production.Scene{
					{SceneNumber: "1", Slugline: "INT. KITCHEN - DAY", CastRefs: []int{1}},
					{SceneNumber: "2", Slugline: "EXT. STREET - NIGHT", CastRefs: []int{1, 2}},
				},
			},
			{DayNumber: 2, Date: "2026-03-03"},
		},
		Cast: []production.CastEntry{
			{Number: 1, Name: "Alice Smith"},
			{Number: 2, Name: "Bob Jones"},
		},
	}
}

func TestCreateScheduleAndSnapshotRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	schedule, err := store.CreateSchedule(ctx, "White Shooting Schedule", sampleSnapshot())
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	if schedule.ID == 0 {
		t.Fatal("expected schedule id")
	}

	days, err := store.DaysBySchedule(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("days by schedule: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	for _, day := range days {
		if day.Status != breakdown.StatusPending {
			t.Fatalf("day %d status = %s, want pending", day.DayNumber, day.Status)
		}
		if day.Generation != 1 {
			t.Fatalf("day %d generation = %d, want 1", day.DayNumber, day.Generation)
		}
	}

	snapshot, err := store.Snapshot(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Days) != 2 || len(snapshot.Cast) != 2 {
		t.Fatalf("unexpected snapshot shape: %d days, %d cast", len(snapshot.Days), len(snapshot.Cast))
	}
	if got := snapshot.Days[0].Scenes[1].SceneNumber; got != "2" {
		t.Fatalf("unexpected scene round trip: %q", got)
	}
}

func TestClaimDayGenerationGuard(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	schedule, err := store.CreateSchedule(ctx, "Schedule", sampleSnapshot())
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	days, err := store.DaysBySchedule(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	day := days[0]

	claimed, err := store.ClaimDay(ctx, day.ID, day.Generation, "req-1",
		[]breakdown.DayStatus{breakdown.StatusPending}, breakdown.StatusStage1Parsing)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	// A second claim against the same status must lose.
	claimed, err = store.ClaimDay(ctx, day.ID, day.Generation, "req-2",
		[]breakdown.DayStatus{breakdown.StatusPending}, breakdown.StatusStage1Parsing)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if claimed {
		t.Fatal("expected second claim to fail")
	}

	// A reset bumps the generation; the stale finish must be dropped.
	reset, err := store.ResetDay(ctx, day.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset.Generation != day.Generation+1 {
		t.Fatalf("generation = %d, want %d", reset.Generation, day.Generation+1)
	}
	finished, err := store.FinishDay(ctx, day.ID, day.Generation, breakdown.StatusStage1Done, "")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finished {
		t.Fatal("stale finish must not apply after reset")
	}

	got, err := store.GetDay(ctx, day.ID)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if got.Status != breakdown.StatusPending {
		t.Fatalf("status = %s, want pending after reset", got.Status)
	}

	// Unknown lifecycle values are rejected before touching the row.
	if _, err := store.ClaimDay(ctx, day.ID, reset.Generation, "req-3",
		[]breakdown.DayStatus{breakdown.StatusPending}, breakdown.DayStatus("shipping")); err == nil {
		t.Fatal("expected error for unknown claim status")
	}
	if _, err := store.FinishDay(ctx, day.ID, reset.Generation, breakdown.DayStatus("shipping"), ""); err == nil {
		t.Fatal("expected error for unknown finish status")
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	schedule, err := store.CreateSchedule(ctx, "Schedule", sampleSnapshot())
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	days, err := store.DaysBySchedule(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("days: %v", err)
	}

	if _, err := store.ClaimDay(ctx, days[0].ID, days[0].Generation, "req",
		[]breakdown.DayStatus{breakdown.StatusPending}, breakdown.StatusStage1Parsing); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := store.ClaimDay(ctx, days[1].ID, days[1].Generation, "req",
		[]breakdown.DayStatus{breakdown.StatusPending}, breakdown.StatusStage2Processing); err != nil {
		t.Fatalf("claim: %v", err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("reset stuck: %v", err)
	}
	if reset != 2 {
		t.Fatalf("reset %d days, want 2", reset)
	}

	first, _ := store.GetDay(ctx, days[0].ID)
	second, _ := store.GetDay(ctx, days[1].ID)
	if first.Status != breakdown.StatusPending {
		t.Fatalf("stage1 day reset to %s, want pending", first.Status)
	}
	if second.Status != breakdown.StatusStage1Done {
		t.Fatalf("stage2 day reset to %s, want stage1_done", second.Status)
	}
}

func TestSceneAndContinuityMutations(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		if err := tx.UpsertScene(production.Scene{SceneNumber: "7", Slugline: "INT. CELLAR - NIGHT", DayNumber: 1}); err != nil {
			return err
		}
		return tx.InsertContinuity(production.ContinuityRecord{
			SceneNumber: "7",
			CharacterID: "cast-1",
			Data:        `{"costume":"torn jacket"}`,
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Renumber re-keys continuity with the scene.
	if err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		return tx.RenumberScene("7", "7A")
	}); err != nil {
		t.Fatalf("renumber: %v", err)
	}
	records, err := store.ListContinuity(ctx, "7A")
	if err != nil {
		t.Fatalf("list continuity: %v", err)
	}
	if len(records) != 1 || records[0].Orphaned {
		t.Fatalf("expected 1 live record at 7A, got %+v", records)
	}

	// Deleting the scene orphans the record instead of removing it.
	if err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		return tx.DeleteScene("7A")
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	orphans, err := store.ListOrphans(ctx)
	if err != nil {
		t.Fatalf("list orphans: %v", err)
	}
	if len(orphans) != 1 || orphans[0].SceneNumber != "7A" {
		t.Fatalf("expected orphan at 7A, got %+v", orphans)
	}

	// Re-adding the scene revives its continuity.
	if err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		if err := tx.UpsertScene(production.Scene{SceneNumber: "7A", DayNumber: 2}); err != nil {
			return err
		}
		return tx.ReviveContinuity("7A")
	}); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	records, err = store.ListContinuity(ctx, "7A")
	if err != nil {
		t.Fatalf("list continuity: %v", err)
	}
	if len(records) != 1 || records[0].Orphaned {
		t.Fatalf("expected revived record, got %+v", records)
	}
}

func TestContinuityKeyedBySceneAndCharacter(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// A second capture for the same (scene, character) pair updates the
	// record instead of accumulating a duplicate.
	err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		if err := tx.InsertContinuity(production.ContinuityRecord{
			SceneNumber: "12A", CharacterID: "cast-1", Data: `{"hair":"wet"}`,
		}); err != nil {
			return err
		}
		return tx.InsertContinuity(production.ContinuityRecord{
			SceneNumber: "12A", CharacterID: "cast-1", Data: `{"hair":"dry"}`,
		})
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	records, err := store.ListContinuity(ctx, "12A")
	if err != nil {
		t.Fatalf("list continuity: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record for the pair, got %+v", records)
	}
	if records[0].Data != `{"hair":"dry"}` {
		t.Fatalf("expected latest capture kept, got %q", records[0].Data)
	}

	// Distinct characters on the same scene are distinct records.
	if err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		return tx.InsertContinuity(production.ContinuityRecord{
			SceneNumber: "12A", CharacterID: "cast-2", Data: `{}`,
		})
	}); err != nil {
		t.Fatalf("second character: %v", err)
	}
	records, err = store.ListContinuity(ctx, "12A")
	if err != nil {
		t.Fatalf("list continuity: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %+v", records)
	}
}

func TestRenumberOntoExistingContinuityOrphansLoser(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// Scene 8 already holds a cast-1 record; scene 7 is renumbered to 8
	// while carrying its own cast-1 record.
	err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		if err := tx.InsertContinuity(production.ContinuityRecord{
			SceneNumber: "8", CharacterID: "cast-1", Data: `{"old":"capture"}`,
		}); err != nil {
			return err
		}
		if err := tx.UpsertScene(production.Scene{SceneNumber: "7", DayNumber: 1}); err != nil {
			return err
		}
		return tx.InsertContinuity(production.ContinuityRecord{
			SceneNumber: "7", CharacterID: "cast-1", Data: `{"new":"capture"}`,
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		return tx.RenumberScene("7", "8")
	}); err != nil {
		t.Fatalf("renumber: %v", err)
	}

	// Neither record was deleted: the pre-existing one stays keyed to 8 and
	// the one that could not move is orphaned for review.
	all, err := store.ListContinuity(ctx, "")
	if err != nil {
		t.Fatalf("list continuity: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both records kept, got %+v", all)
	}
	orphans, err := store.ListOrphans(ctx)
	if err != nil {
		t.Fatalf("list orphans: %v", err)
	}
	if len(orphans) != 1 || orphans[0].SceneNumber != "7" || orphans[0].Data != `{"new":"capture"}` {
		t.Fatalf("expected the unmoved record orphaned at 7, got %+v", orphans)
	}
}

func TestApplyRollsBackOnError(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	wantErr := context.Canceled
	err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		if err := tx.UpsertScene(production.Scene{SceneNumber: "1"}); err != nil {
			return err
		}
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}

	scenes, err := store.ListScenes(ctx)
	if err != nil {
		t.Fatalf("list scenes: %v", err)
	}
	if len(scenes) != 0 {
		t.Fatalf("expected rollback, found %d scenes", len(scenes))
	}
}

func TestListScenesOrdered(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		for _, number := range []string{"10", "2", "2A"} {
			if err := tx.UpsertScene(production.Scene{SceneNumber: number}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	scenes, err := store.ListScenes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var order []string
	for _, scene := range scenes {
		order = append(order, scene.SceneNumber)
	}
	want := []string{"2", "2A", "10"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
