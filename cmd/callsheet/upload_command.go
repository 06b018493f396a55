package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"callsheet/internal/breakdown"
	"callsheet/internal/config"
	"callsheet/internal/merge"
	"callsheet/internal/normalize"
	"callsheet/internal/pipeline"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var titleFlag string
	var runFlag bool

	cmd := &cobra.Command{
		Use:   "upload <schedule.json>",
		Short: "Upload a parsed schedule and register its shoot days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read upload: %w", err)
			}
			raw, err := normalize.DecodeUpload(data)
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *breakdown.Store) error {
				controller, err := ctx.newController(cfg, store)
				if err != nil {
					return err
				}

				schedule, anomalies, err := controller.Upload(cmd.Context(), titleFlag, raw)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded schedule %d (%s)\n", schedule.ID, schedule.Title)
				printAnomalies(cmd, anomalies)

				// The first upload seeds the breakdown; later revisions go
				// through compare/merge instead.
				existing, err := store.ListScenes(cmd.Context())
				if err != nil {
					return err
				}
				if len(existing) == 0 {
					snapshot, err := store.Snapshot(cmd.Context(), schedule.ID)
					if err != nil {
						return err
					}
					seeded, err := merge.ApplySnapshot(cmd.Context(), store, snapshot)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Seeded breakdown with %d scene(s)\n", seeded)
				}

				if !runFlag {
					fmt.Fprintf(cmd.OutOrStdout(), "Run `callsheet resume` to start extraction.\n")
					return nil
				}
				summary, err := controller.Run(cmd.Context(), schedule.ID)
				if err != nil {
					return err
				}
				printSummary(cmd, summary)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&titleFlag, "title", "", "Schedule title (defaults to the upload's own title)")
	cmd.Flags().BoolVar(&runFlag, "run", false, "Run both extraction stages immediately")
	return cmd
}

func printAnomalies(cmd *cobra.Command, anomalies []normalize.Anomaly) {
	if len(anomalies) == 0 {
		return
	}
	rows := make([][]string, 0, len(anomalies))
	for _, anomaly := range anomalies {
		rows = append(rows, []string{anomaly.Kind, anomaly.SceneNumber, anomaly.DayNumber, anomaly.Message})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d parse anomalies:\n%s\n",
		len(anomalies),
		renderTable([]string{"Kind", "Scene", "Day", "Detail"}, rows, nil))
}

func printSummary(cmd *cobra.Command, summary pipeline.Summary) {
	fmt.Fprintf(cmd.OutOrStdout(),
		"Extraction: %d parsed, %d extracted, %d failed, %d skipped\n",
		summary.Stage1Done, summary.Stage2Done, summary.Failed, summary.Skipped)
}

func formatInt(v int) string { return strconv.Itoa(v) }
