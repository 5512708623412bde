package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/csg33k/modreport/internal/adapters/charts"
	"github.com/csg33k/modreport/internal/adapters/dataset"
	"github.com/csg33k/modreport/internal/adapters/html"
	"github.com/csg33k/modreport/internal/adapters/pdf"
	sqliteadapter "github.com/csg33k/modreport/internal/adapters/sqlite"
	"github.com/csg33k/modreport/internal/adapters/xlsx"
	"github.com/csg33k/modreport/internal/classify"
	"github.com/csg33k/modreport/internal/config"
	"github.com/csg33k/modreport/internal/ports"
	"github.com/csg33k/modreport/internal/report"
)

const defaultOutDir = "Plots"

var outDir string

var rootCmd = &cobra.Command{
	Use:   "modreport <dataset.csv>",
	Short: "Chart plant modifications by year, area and plant",
	Long: `Reads a delimited export of the plant modification register, rejects rows
that cannot be classified, and writes charts, a PDF, a workbook, an HTML page
and the rejection log into the output directory.

Configuration comes from modreport.yaml (or MODREPORT_CONFIG) and MODREPORT_*
environment variables; a .env file in the working directory is loaded first.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReport,
}

func init() {
	rootCmd.Flags().StringVarP(&outDir, "out", "o", defaultOutDir, "output directory")
	rootCmd.AddCommand(historyCmd)
}

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(fail(err))
	}
}

// fail reports err once and returns the process exit code for it.
func fail(err error) int {
	slog.Error("modreport failed", "err", err)
	return exitCode(err)
}

// exitCode distinguishes bad input from output failures for scripts.
func exitCode(err error) int {
	var dre *dataset.DatasetReadError
	var oe *report.OutputError
	switch {
	case errors.As(err, &dre):
		return 2
	case errors.As(err, &oe):
		return 3
	default:
		return 1
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func setupLogging(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}

	var opts []report.Option
	if cfg.ArchiveDB != "" {
		archive, err := sqliteadapter.New(ctx, cfg.ArchiveDB)
		if err != nil {
			return fmt.Errorf("open archive %s: %w", cfg.ArchiveDB, err)
		}
		defer archive.Close()
		opts = append(opts, report.WithArchive(archive))
	}

	svc := report.New(
		dataset.New(cfg.Columns.Expected(), []rune(cfg.Delimiter)[0]),
		classify.New(rules),
		charts.New(cfg.Chart.WidthCM, cfg.Chart.HeightCM, cfg.HighlightPlants, cfg.ProjectThreshold),
		[]ports.ReportWriter{
			dataset.RejectionWriter{},
			xlsx.Writer{},
			pdf.Writer{},
			html.Writer{},
		},
		cfg.Years(),
		opts...,
	)

	slog.InfoContext(ctx, "generating report", "input", args[0], "out", outDir)
	r, err := svc.Run(ctx, args[0], outDir)
	if err != nil {
		return err
	}
	return report.PrintSummary(cmd.OutOrStdout(), r)
}
