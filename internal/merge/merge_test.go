package merge_test

import (
	"context"
	"path/filepath"
	"testing"

	"callsheet/internal/amend"
	"callsheet/internal/breakdown"
	"callsheet/internal/match"
	"callsheet/internal/merge"
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

func scene(number string, day int) production.Scene {
	return production.Scene{
		SceneNumber: number,
		Slugline:    "INT. KITCHEN - DAY",
		IntExt:      production.IntExtInterior,
		DayNight:    "DAY",
		CastRefs:    []int{1},
		DayNumber:   day,
	}
}

func snapshot(days map[int][]production.Scene) production.Snapshot {
	snap := production.Snapshot{}
	for dayNumber := 1; dayNumber <= len(days)+2; dayNumber++ {
		scenes, ok := days[dayNumber]
		if !ok {
			continue
		}
		snap.Days = append(snap.Days, production.ShootDay{DayNumber: dayNumber, Scenes: scenes})
	}
	return snap
}

func seed(t *testing.T, store *breakdown.Store, snap production.Snapshot) {
	t.Helper()
	if _, err := merge.ApplySnapshot(context.Background(), store, snap); err != nil {
		t.Fatalf("seed breakdown: %v", err)
	}
}

func sceneNumbers(t *testing.T, store *breakdown.Store) []string {
	t.Helper()
	scenes, err := store.ListScenes(context.Background())
	if err != nil {
		t.Fatalf("list scenes: %v", err)
	}
	var numbers []string
	for _, s := range scenes {
		numbers = append(numbers, s.SceneNumber)
	}
	return numbers
}

func TestApplyAllCategoriesReachesNewSnapshot(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	old := snapshot(map[int][]production.Scene{
		1: {scene("1", 1), scene("2", 1), scene("3", 1)},
	})
	new := snapshot(map[int][]production.Scene{
		1: {scene("1", 1), scene("3", 1)},
		2: {scene("2", 2), scene("4", 2)},
	})
	seed(t, store, old)

	result := amend.Classify(old, new, match.DefaultPolicy())
	report, err := merge.Apply(ctx, store, result, merge.AllFlags())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if report.ScenesAdded != 1 || report.ScenesMoved != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	got := sceneNumbers(t, store)
	want := []string{"1", "2", "3", "4"}
	if len(got) != len(want) {
		t.Fatalf("scene set = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scene set = %v, want %v", got, want)
		}
	}

	moved, err := store.GetScene(ctx, "2")
	if err != nil {
		t.Fatalf("get scene: %v", err)
	}
	if moved.DayNumber != 2 {
		t.Fatalf("scene 2 day = %d, want 2", moved.DayNumber)
	}
}

func TestApplyCategoryIsolation(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	added := production.Scene{
		SceneNumber: "5",
		Slugline:    "EXT. QUARRY - NIGHT",
		IntExt:      production.IntExtExterior,
		DayNight:    "NIGHT",
		CastRefs:    []int{3},
		DayNumber:   1,
	}
	old := snapshot(map[int][]production.Scene{1: {scene("1", 1), scene("2", 1)}})
	new := snapshot(map[int][]production.Scene{1: {scene("1", 1), added}})
	seed(t, store, old)

	result := amend.Classify(old, new, match.DefaultPolicy())

	// Apply only additions. The removal of scene 2 must not happen.
	report, err := merge.Apply(ctx, store, result, merge.Flags{Added: true})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if report.ScenesAdded != 1 || report.ScenesRemoved != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	got := sceneNumbers(t, store)
	want := []string{"1", "2", "5"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scene set = %v, want %v", got, want)
		}
	}
}

func TestApplyRemovalOrphansContinuity(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	old := snapshot(map[int][]production.Scene{1: {scene("2", 1)}})
	seed(t, store, old)
	if err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		return tx.InsertContinuity(production.ContinuityRecord{
			SceneNumber: "2", CharacterID: "cast-1", Data: `{"prop":"watch"}`,
		})
	}); err != nil {
		t.Fatalf("insert continuity: %v", err)
	}

	result := amend.Result{RemovedScenes: []production.Scene{scene("2", 1)}}
	report, err := merge.Apply(ctx, store, result, merge.AllFlags())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if report.Orphaned != 1 || len(report.Warnings) != 1 {
		t.Fatalf("expected orphan warning, got %+v", report)
	}

	orphans, err := store.ListOrphans(ctx)
	if err != nil {
		t.Fatalf("list orphans: %v", err)
	}
	if len(orphans) != 1 || orphans[0].SceneNumber != "2" {
		t.Fatalf("unexpected orphans: %+v", orphans)
	}

	// Re-adding the scene revives the record.
	readd := amend.Result{AddedScenes: []production.Scene{scene("2", 2)}}
	report, err = merge.Apply(ctx, store, readd, merge.AllFlags())
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if report.Revived != 1 {
		t.Fatalf("expected 1 revived record, got %+v", report)
	}
	records, err := store.ListContinuity(ctx, "2")
	if err != nil {
		t.Fatalf("list continuity: %v", err)
	}
	if len(records) != 1 || records[0].Orphaned {
		t.Fatalf("expected live record, got %+v", records)
	}
}

func TestApplyRenumberCarriesContinuity(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	seed(t, store, snapshot(map[int][]production.Scene{1: {scene("7", 1)}}))
	if err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		return tx.InsertContinuity(production.ContinuityRecord{
			SceneNumber: "7", CharacterID: "cast-1", Data: `{"costume":"torn jacket"}`,
		})
	}); err != nil {
		t.Fatalf("insert continuity: %v", err)
	}

	renamed := scene("7A", 1)
	result := amend.Result{ModifiedScenes: []amend.SceneChange{{
		Old:        scene("7", 1),
		New:        renamed,
		Fields:     []string{amend.FieldSceneNumber},
		Confidence: 0.9,
	}}}

	if _, err := merge.Apply(ctx, store, result, merge.AllFlags()); err != nil {
		t.Fatalf("apply: %v", err)
	}

	records, err := store.ListContinuity(ctx, "7A")
	if err != nil {
		t.Fatalf("list continuity: %v", err)
	}
	if len(records) != 1 || records[0].Orphaned {
		t.Fatalf("continuity did not follow renumber: %+v", records)
	}
	if got := sceneNumbers(t, store); len(got) != 1 || got[0] != "7A" {
		t.Fatalf("scene set = %v, want [7A]", got)
	}
}

func TestApplyCastAndTimingOnly(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := scene("3", 1)
	base.Pages = "1 2/8"
	seed(t, store, snapshot(map[int][]production.Scene{1: {base}}))

	result := amend.Result{
		CastChanges:   []amend.CastChange{{SceneNumber: "3", OldCast: []int{1}, NewCast: []int{1, 2}}},
		TimingChanges: []amend.TimingChange{{SceneNumber: "3", OldPages: "1 2/8", NewPages: "2 4/8"}},
	}
	report, err := merge.Apply(ctx, store, result, merge.Flags{Cast: true, Timing: true})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if report.CastUpdated != 1 || report.TimingUpdated != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	got, err := store.GetScene(ctx, "3")
	if err != nil {
		t.Fatalf("get scene: %v", err)
	}
	if len(got.CastRefs) != 2 || got.Pages != "2 4/8" {
		t.Fatalf("unexpected scene after merge: %+v", got)
	}
}

func TestApplyNothingSelectedIsNoop(t *testing.T) {
	store := newStore(t)
	seed(t, store, snapshot(map[int][]production.Scene{1: {scene("1", 1)}}))

	result := amend.Result{AddedScenes: []production.Scene{scene("9", 1)}}
	report, err := merge.Apply(context.Background(), store, result, merge.Flags{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if report.Changed() {
		t.Fatalf("expected no-op, got %+v", report)
	}
	if got := sceneNumbers(t, store); len(got) != 1 {
		t.Fatalf("scene set changed: %v", got)
	}
}
