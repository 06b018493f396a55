// Package merge applies a reviewed amendment to the authoritative breakdown.
// The reviewer picks change categories; everything selected is applied in one
// transaction, and continuity records are re-keyed or soft-orphaned, never
// deleted.
package merge

import (
	"context"
	"fmt"

	"callsheet/internal/amend"
	"callsheet/internal/breakdown"
	"callsheet/internal/production"
	"callsheet/internal/services"
)

// Flags selects which change categories a merge applies. Unselected
// categories leave the breakdown untouched.
type Flags struct {
	Added    bool
	Removed  bool
	Modified bool
	Moved    bool
	Cast     bool
	Timing   bool
}

// AllFlags selects every category.
func AllFlags() Flags {
	return Flags{Added: true, Removed: true, Modified: true, Moved: true, Cast: true, Timing: true}
}

// Any reports whether at least one category is selected.
func (f Flags) Any() bool {
	return f.Added || f.Removed || f.Modified || f.Moved || f.Cast || f.Timing
}

// Report summarizes what a merge did.
type Report struct {
	ScenesAdded    int
	ScenesRemoved  int
	ScenesModified int
	ScenesMoved    int
	CastUpdated    int
	TimingUpdated  int
	Orphaned       int
	Revived        int
	Warnings       []string
}

// Changed reports whether the merge wrote anything.
func (r Report) Changed() bool {
	return r.ScenesAdded+r.ScenesRemoved+r.ScenesModified+r.ScenesMoved+r.CastUpdated+r.TimingUpdated > 0
}

// Apply writes the selected categories of an amendment to the breakdown in a
// single transaction. A removed scene's continuity records are orphaned; a
// renumbered scene's records follow it; a re-added scene revives any orphans
// waiting under its number.
func Apply(ctx context.Context, store *breakdown.Store, result amend.Result, flags Flags) (Report, error) {
	report := Report{}
	if !flags.Any() || result.Empty() {
		return report, nil
	}

	// Count continuity affected by removals up front so the report can warn
	// the reviewer before they go looking.
	if flags.Removed {
		for _, scene := range result.RemovedScenes {
			records, err := store.ListContinuity(ctx, scene.SceneNumber)
			if err != nil {
				return report, services.Wrap(services.ErrStore, "merge", "apply", "read continuity", err)
			}
			live := 0
			for _, record := range records {
				if !record.Orphaned {
					live++
				}
			}
			if live > 0 {
				report.Orphaned += live
				report.Warnings = append(report.Warnings, fmt.Sprintf(
					"scene %s has %d continuity record(s); they will be kept as orphans", scene.SceneNumber, live))
			}
		}
	}
	if flags.Added {
		for _, scene := range result.AddedScenes {
			records, err := store.ListContinuity(ctx, scene.SceneNumber)
			if err != nil {
				return report, services.Wrap(services.ErrStore, "merge", "apply", "read continuity", err)
			}
			for _, record := range records {
				if record.Orphaned {
					report.Revived++
				}
			}
		}
	}

	err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		if flags.Added {
			for _, scene := range result.AddedScenes {
				if err := tx.UpsertScene(scene); err != nil {
					return err
				}
				if err := tx.ReviveContinuity(scene.SceneNumber); err != nil {
					return err
				}
				report.ScenesAdded++
			}
		}
		if flags.Modified {
			for _, change := range result.ModifiedScenes {
				if change.Old.SceneNumber != change.New.SceneNumber {
					if err := tx.RenumberScene(change.Old.SceneNumber, change.New.SceneNumber); err != nil {
						return err
					}
				}
				if err := tx.UpsertScene(change.New); err != nil {
					return err
				}
				report.ScenesModified++
			}
		}
		if flags.Moved {
			for _, moved := range result.MovedScenes {
				if err := tx.UpdateSceneDay(moved.Scene.SceneNumber, moved.NewDay); err != nil {
					return err
				}
				report.ScenesMoved++
			}
		}
		if flags.Cast {
			for _, change := range result.CastChanges {
				if err := tx.UpdateSceneCast(change.SceneNumber, change.NewCast); err != nil {
					return err
				}
				report.CastUpdated++
			}
		}
		if flags.Timing {
			for _, change := range result.TimingChanges {
				if err := tx.UpdateScenePages(change.SceneNumber, change.NewPages); err != nil {
					return err
				}
				report.TimingUpdated++
			}
		}
		if flags.Removed {
			for _, scene := range result.RemovedScenes {
				if err := tx.DeleteScene(scene.SceneNumber); err != nil {
					return err
				}
				report.ScenesRemoved++
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, services.Wrap(services.ErrMergeConflict, "merge", "apply", "apply amendment", err)
	}
	return report, nil
}

// ApplySnapshot replaces the breakdown scene set with the given snapshot's
// scenes. Used for the first upload, when there is nothing to diff against.
func ApplySnapshot(ctx context.Context, store *breakdown.Store, snapshot production.Snapshot) (int, error) {
	scenes := snapshot.Scenes()
	err := store.Apply(ctx, func(tx *breakdown.Tx) error {
		for _, scene := range scenes {
			if err := tx.UpsertScene(scene); err != nil {
				return err
			}
			if err := tx.ReviveContinuity(scene.SceneNumber); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, services.Wrap(services.ErrStore, "merge", "apply-snapshot", "seed breakdown", err)
	}
	return len(scenes), nil
}
