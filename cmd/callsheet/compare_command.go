package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"callsheet/internal/amend"
	"callsheet/internal/breakdown"
	"callsheet/internal/config"
	"callsheet/internal/match"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <old-schedule> <new-schedule>",
		Short: "Classify the changes between two schedule revisions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *breakdown.Store) error {
				result, err := classifySchedules(cmd, ctx, store, cfg, args[0], args[1])
				if err != nil {
					return err
				}
				printAmendment(cmd, result)
				return nil
			})
		},
	}
	return cmd
}

func classifySchedules(cmd *cobra.Command, ctx *commandContext, store *breakdown.Store, cfg *config.Config, oldArg, newArg string) (amend.Result, error) {
	oldID, err := resolveScheduleID(cmd.Context(), store, oldArg)
	if err != nil {
		return amend.Result{}, err
	}
	newID, err := resolveScheduleID(cmd.Context(), store, newArg)
	if err != nil {
		return amend.Result{}, err
	}

	oldSnapshot, err := store.Snapshot(cmd.Context(), oldID)
	if err != nil {
		return amend.Result{}, err
	}
	newSnapshot, err := store.Snapshot(cmd.Context(), newID)
	if err != nil {
		return amend.Result{}, err
	}

	return amend.Classify(oldSnapshot, newSnapshot, match.PolicyFromConfig(cfg.Matching)), nil
}

func printAmendment(cmd *cobra.Command, result amend.Result) {
	out := cmd.OutOrStdout()
	if result.Empty() {
		fmt.Fprintln(out, "No changes.")
		return
	}

	if len(result.AddedScenes) > 0 {
		rows := make([][]string, 0, len(result.AddedScenes))
		for _, scene := range result.AddedScenes {
			rows = append(rows, []string{scene.SceneNumber, scene.Slugline, formatInt(scene.DayNumber)})
		}
		fmt.Fprintf(out, "Added:\n%s\n", renderTable([]string{"Scene", "Slugline", "Day"}, rows, nil))
	}
	if len(result.RemovedScenes) > 0 {
		rows := make([][]string, 0, len(result.RemovedScenes))
		for _, scene := range result.RemovedScenes {
			rows = append(rows, []string{scene.SceneNumber, scene.Slugline, formatInt(scene.DayNumber)})
		}
		fmt.Fprintf(out, "Removed:\n%s\n", renderTable([]string{"Scene", "Slugline", "Day"}, rows, nil))
	}
	if len(result.ModifiedScenes) > 0 {
		rows := make([][]string, 0, len(result.ModifiedScenes))
		for _, change := range result.ModifiedScenes {
			scene := change.New.SceneNumber
			if change.Old.SceneNumber != change.New.SceneNumber {
				scene = change.Old.SceneNumber + " -> " + change.New.SceneNumber
			}
			rows = append(rows, []string{
				scene,
				strings.Join(change.Fields, ", "),
				fmt.Sprintf("%.2f", change.Confidence),
			})
		}
		fmt.Fprintf(out, "Modified:\n%s\n", renderTable([]string{"Scene", "Fields", "Confidence"}, rows, nil))
	}
	if len(result.MovedScenes) > 0 {
		rows := make([][]string, 0, len(result.MovedScenes))
		for _, moved := range result.MovedScenes {
			rows = append(rows, []string{
				moved.Scene.SceneNumber,
				fmt.Sprintf("day %d -> day %d", moved.OldDay, moved.NewDay),
			})
		}
		fmt.Fprintf(out, "Moved:\n%s\n", renderTable([]string{"Scene", "Move"}, rows, nil))
	}
	if len(result.CastChanges) > 0 {
		rows := make([][]string, 0, len(result.CastChanges))
		for _, change := range result.CastChanges {
			rows = append(rows, []string{change.SceneNumber, formatCast(change.OldCast), formatCast(change.NewCast)})
		}
		fmt.Fprintf(out, "Cast changes:\n%s\n", renderTable([]string{"Scene", "Old cast", "New cast"}, rows, nil))
	}
	if len(result.TimingChanges) > 0 {
		rows := make([][]string, 0, len(result.TimingChanges))
		for _, change := range result.TimingChanges {
			rows = append(rows, []string{change.SceneNumber, change.OldPages, change.NewPages})
		}
		fmt.Fprintf(out, "Timing changes:\n%s\n", renderTable([]string{"Scene", "Old pages", "New pages"}, rows, nil))
	}
}

func formatCast(refs []int) string {
	if len(refs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, formatInt(ref))
	}
	return strings.Join(parts, ", ")
}
