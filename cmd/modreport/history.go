package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/csg33k/modreport/internal/adapters/sqlite"
	"github.com/csg33k/modreport/internal/config"
	"github.com/csg33k/modreport/internal/domain"
	"github.com/csg33k/modreport/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List archived runs, or show the groups and rejections of one run",
	Long: `Reads the run archive named by archive_db (MODREPORT_ARCHIVE_DB).
Without arguments every archived run is listed, newest first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ArchiveDB == "" {
		return errors.New("no run archive configured; set " + config.EnvPrefix + "_ARCHIVE_DB")
	}
	archive, err := sqliteadapter.New(ctx, cfg.ArchiveDB)
	if err != nil {
		return err
	}
	defer archive.Close()

	if len(args) == 0 {
		runs, err := archive.ListRuns(ctx)
		if err != nil {
			return err
		}
		return report.PrintRuns(cmd.OutOrStdout(), runs)
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errors.New("invalid run id " + strconv.Quote(args[0]))
	}
	run, err := archive.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if err := report.PrintRuns(cmd.OutOrStdout(), []domain.RunSummary{run}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	groups, err := archive.GetGroups(ctx, id)
	if err != nil {
		return err
	}
	rejections, err := archive.GetRejections(ctx, id)
	if err != nil {
		return err
	}
	return report.PrintRun(cmd.OutOrStdout(), groups, rejections)
}
