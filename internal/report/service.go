// Package report runs the pipeline: load, classify, aggregate, then hand the
// result to the chart renderer and every document writer.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/csg33k/modreport/internal/aggregate"
	"github.com/csg33k/modreport/internal/domain"
	"github.com/csg33k/modreport/internal/ports"
)

// OutputError is fatal: the output directory or an artifact could not be written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("write output %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// Classifier turns raw rows into accepted records and rejections.
type Classifier interface {
	ClassifyAll(rows []domain.RawRow) domain.Classification
}

type Service struct {
	loader     ports.DatasetLoader
	classifier Classifier
	charts     ports.ChartRenderer
	writers    []ports.ReportWriter
	archive    ports.RunArchive
	years      domain.YearRange
	now        func() time.Time
}

type Option func(*Service)

// WithArchive stores every successful run in a.
func WithArchive(a ports.RunArchive) Option {
	return func(s *Service) { s.archive = a }
}

// WithClock replaces time.Now for the report timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(loader ports.DatasetLoader, classifier Classifier, charts ports.ChartRenderer,
	writers []ports.ReportWriter, years domain.YearRange, opts ...Option) *Service {
	s := &Service{
		loader:     loader,
		classifier: classifier,
		charts:     charts,
		writers:    writers,
		years:      years,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run produces every artifact for input under outDir and returns the report.
// Rejected rows are reported, not returned as errors; the returned error is
// always fatal (*dataset.DatasetReadError, *OutputError or an archive failure).
func (s *Service) Run(ctx context.Context, input, outDir string) (*domain.Report, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &OutputError{Path: outDir, Err: err}
	}

	ds, err := s.loader.Load(ctx, input)
	if err != nil {
		return nil, err
	}

	cls := s.classifier.ClassifyAll(ds.Rows)
	summary := aggregate.Summarize(cls)
	slog.InfoContext(ctx, "rows classified",
		"input", input, "rows", summary.TotalRows,
		"accepted", summary.Accepted, "rejected", summary.Rejected)
	for _, rj := range cls.Rejected {
		slog.DebugContext(ctx, "row rejected", "row", rj.Row, "line", rj.Line,
			"reason", rj.Reason, "field", rj.Field, "value", rj.Value)
	}

	r := &domain.Report{
		InputPath:   input,
		OutputDir:   outDir,
		GeneratedAt: s.now(),
		Years:       s.years,
		Summary:     summary,
		Table:       aggregate.Aggregate(cls.Accepted, s.years),
		Rejections:  cls.Rejected,
	}

	if s.charts != nil {
		charts, err := s.charts.Render(ctx, r.Table, outDir)
		if err != nil {
			return nil, &OutputError{Path: outDir, Err: err}
		}
		for _, a := range charts {
			slog.DebugContext(ctx, "chart written", "artifact", a.Path)
		}
		r.Artifacts = append(r.Artifacts, charts...)
	}

	for _, w := range s.writers {
		a, err := w.Write(ctx, r, outDir)
		if err != nil {
			return nil, &OutputError{Path: outDir, Err: err}
		}
		slog.InfoContext(ctx, "report written", "artifact", a.Path)
		r.Artifacts = append(r.Artifacts, a)
	}

	if s.archive != nil {
		id, err := s.archive.SaveRun(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("archive run: %w", err)
		}
		slog.InfoContext(ctx, "run archived", "run_id", id)
	}
	return r, nil
}
