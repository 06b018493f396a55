package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"callsheet/internal/breakdown"
	"callsheet/internal/config"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var scheduleFlag string

	cmd := &cobra.Command{
		Use:   "retry <day-number>",
		Short: "Re-run extraction for one shoot day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dayNumber, err := strconv.Atoi(args[0])
			if err != nil || dayNumber <= 0 {
				return fmt.Errorf("invalid day number %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *breakdown.Store) error {
				scheduleID, err := resolveScheduleID(cmd.Context(), store, scheduleFlag)
				if err != nil {
					return err
				}
				controller, err := ctx.newController(cfg, store)
				if err != nil {
					return err
				}
				if err := controller.RetryDay(cmd.Context(), scheduleID, dayNumber); err != nil {
					return err
				}
				day, err := store.DayByNumber(cmd.Context(), scheduleID, dayNumber)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Day %d: %s\n", dayNumber, day.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scheduleFlag, "schedule", "latest", "Schedule id or \"latest\"")
	return cmd
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Recover interrupted extraction on the latest schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *breakdown.Store) error {
				controller, err := ctx.newController(cfg, store)
				if err != nil {
					return err
				}
				summary, err := controller.Resume(cmd.Context())
				if err != nil {
					return err
				}
				printSummary(cmd, summary)
				return nil
			})
		},
	}
}
