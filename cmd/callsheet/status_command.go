package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"callsheet/internal/breakdown"
	"callsheet/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var scheduleFlag string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show extraction progress for a schedule",
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
				days, err := store.DaysBySchedule(cmd.Context(), scheduleID)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(days))
				finished := 0
				for _, day := range days {
					if day.Status.Terminal() {
						finished++
					}
					scenes, err := day.Scenes()
					if err != nil {
						return err
					}
					detail := day.ProgressStage
					if day.ErrorMessage != "" {
						detail = day.ErrorMessage
					}
					rows = append(rows, []string{
						formatInt(day.DayNumber),
						day.Date,
						formatInt(len(scenes)),
						string(day.Status),
						fmt.Sprintf("%.0f%%", day.ProgressPercent),
						detail,
					})
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Schedule %d: %s, %d/%d days finished (uploaded %s)\n%s\n",
					schedule.ID,
					schedule.Title,
					finished,
					len(days),
					schedule.CreatedAt.Format("2006-01-02 15:04"),
					renderTable(
						[]string{"Day", "Date", "Scenes", "Status", "Progress", "Detail"},
						rows,
						[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
					))

				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"All schedules: %d days (%d pending, %d processing, %d done, %d errored)\n",
					health.Total, health.Pending, health.Processing, health.Done, health.Errored)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scheduleFlag, "schedule", "latest", "Schedule id or \"latest\"")
	return cmd
}
