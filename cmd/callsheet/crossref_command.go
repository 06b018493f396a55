package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"callsheet/internal/breakdown"
	"callsheet/internal/config"
	"callsheet/internal/crossref"
)

func newCrossrefCommand(ctx *commandContext) *cobra.Command {
	var scheduleFlag string

	cmd := &cobra.Command{
		Use:   "crossref",
		Short: "Cross-reference a schedule against the breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *breakdown.Store) error {
				scheduleID, err := resolveScheduleID(cmd.Context(), store, scheduleFlag)
				if err != nil {
					return err
				}
				snapshot, err := store.Snapshot(cmd.Context(), scheduleID)
				if err != nil {
					return err
				}
				scenes, err := store.ListScenes(cmd.Context())
				if err != nil {
					return err
				}
				characters, err := store.ListCharacters(cmd.Context())
				if err != nil {
					return err
				}

				discrepancies := crossref.Compare(snapshot, scenes, characters)
				if len(discrepancies) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Schedule and breakdown agree.")
					return nil
				}
				rows := make([][]string, 0, len(discrepancies))
				for _, d := range discrepancies {
					rows = append(rows, []string{d.SceneNumber, d.Type, d.Message})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d discrepancies:\n%s\n",
					len(discrepancies),
					renderTable([]string{"Scene", "Type", "Detail"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scheduleFlag, "schedule", "latest", "Schedule id or \"latest\"")
	return cmd
}
