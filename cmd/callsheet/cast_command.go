package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"callsheet/internal/breakdown"
	"callsheet/internal/castsync"
	"callsheet/internal/config"
)

func newResolveCastCommand(ctx *commandContext) *cobra.Command {
	var scheduleFlag string
	var dryRunFlag bool

	cmd := &cobra.Command{
		Use:   "resolve-cast",
		Short: "Match a schedule's cast list to characters, creating placeholders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *breakdown.Store) error {
				scheduleID, err := resolveScheduleID(cmd.Context(), store, scheduleFlag)
				if err != nil {
					return err
				}
				schedule, err := store.GetSchedule(cmd.Context(), scheduleID)
				if err != nil {
					return err
				}
				if schedule == nil {
					return fmt.Errorf("schedule %d not found", scheduleID)
				}
				entries, err := schedule.Cast()
				if err != nil {
					return err
				}
				existing, err := store.ListCharacters(cmd.Context())
				if err != nil {
					return err
				}

				result := castsync.Resolve(entries, existing, cfg.Cast.Palette)

				if !dryRunFlag {
					err = store.Apply(cmd.Context(), func(tx *breakdown.Tx) error {
						for _, ch := range result.Characters {
							if err := tx.UpsertCharacter(ch); err != nil {
								return err
							}
						}
						return nil
					})
					if err != nil {
						return err
					}
				}

				created := make(map[string]struct{}, len(result.CreatedIDs))
				for _, id := range result.CreatedIDs {
					created[id] = struct{}{}
				}
				rows := make([][]string, 0, len(result.Characters))
				for _, ch := range result.Characters {
					_, isNew := created[ch.ID]
					number := "-"
					if ch.ActorNumber > 0 {
						number = formatInt(ch.ActorNumber)
					}
					rows = append(rows, []string{
						number, ch.Name, ch.Initials, ch.ID, yesNo(ch.Confirmed), yesNo(isNew),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Matched %d, created %d placeholder(s)%s:\n%s\n",
					result.Matched, len(result.CreatedIDs), dryRunSuffix(dryRunFlag),
					renderTable([]string{"No.", "Name", "Initials", "ID", "Confirmed", "New"}, rows,
						[]columnAlignment{alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scheduleFlag, "schedule", "latest", "Schedule id or \"latest\"")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show the resolution without saving it")
	return cmd
}

func dryRunSuffix(dryRun bool) string {
	if dryRun {
		return " (dry run)"
	}
	return ""
}
