package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"callsheet/internal/breakdown"
	"callsheet/internal/config"
	"callsheet/internal/merge"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var flags merge.Flags
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "merge <old-schedule> <new-schedule>",
		Short: "Apply selected amendment categories to the breakdown",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if allFlag {
				flags = merge.AllFlags()
			}
			if !flags.Any() {
				return errors.New("select at least one category (or pass --all)")
			}
			return ctx.withStore(func(cfg *config.Config, store *breakdown.Store) error {
				result, err := classifySchedules(cmd, ctx, store, cfg, args[0], args[1])
				if err != nil {
					return err
				}
				if result.Empty() {
					fmt.Fprintln(cmd.OutOrStdout(), "No changes to merge.")
					return nil
				}

				report, err := merge.Apply(cmd.Context(), store, result, flags)
				if err != nil {
					return err
				}
				printMergeReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "Apply every category")
	cmd.Flags().BoolVar(&flags.Added, "added", false, "Apply added scenes")
	cmd.Flags().BoolVar(&flags.Removed, "removed", false, "Apply removed scenes")
	cmd.Flags().BoolVar(&flags.Modified, "modified", false, "Apply modified scenes")
	cmd.Flags().BoolVar(&flags.Moved, "moved", false, "Apply day moves")
	cmd.Flags().BoolVar(&flags.Cast, "cast", false, "Apply cast changes")
	cmd.Flags().BoolVar(&flags.Timing, "timing", false, "Apply timing changes")
	return cmd
}

func printMergeReport(cmd *cobra.Command, report merge.Report) {
	out := cmd.OutOrStdout()
	if !report.Changed() {
		fmt.Fprintln(out, "Nothing applied.")
		return
	}
	fmt.Fprintf(out,
		"Merged: %d added, %d removed, %d modified, %d moved, %d cast, %d timing\n",
		report.ScenesAdded, report.ScenesRemoved, report.ScenesModified,
		report.ScenesMoved, report.CastUpdated, report.TimingUpdated)
	if report.Orphaned > 0 {
		fmt.Fprintf(out, "Continuity records orphaned: %d (see `callsheet orphans`)\n", report.Orphaned)
	}
	if report.Revived > 0 {
		fmt.Fprintf(out, "Continuity records revived: %d\n", report.Revived)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
}

func newOrphansCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List continuity records whose scene left the breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *breakdown.Store) error {
				orphans, err := store.ListOrphans(cmd.Context())
				if err != nil {
					return err
				}
				if len(orphans) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No orphaned continuity records.")
					return nil
				}
				rows := make([][]string, 0, len(orphans))
				for _, record := range orphans {
					rows = append(rows, []string{record.SceneNumber, record.CharacterID, record.Data})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n",
					renderTable([]string{"Scene", "Character", "Data"}, rows, nil))
				return nil
			})
		},
	}
}
