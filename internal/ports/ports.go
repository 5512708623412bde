package ports

import (
	"context"

	"github.com/csg33k/modreport/internal/domain"
)

// DatasetLoader reads the raw input table.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*domain.Dataset, error)
}

// ChartRenderer turns an aggregated table into chart images under dir.
type ChartRenderer interface {
	Render(ctx context.Context, t *domain.Table, dir string) ([]domain.Artifact, error)
}

// ReportWriter emits one document for a finished report into dir.
// Writers run after the charts, so r.Artifacts already lists them.
type ReportWriter interface {
	Write(ctx context.Context, r *domain.Report, dir string) (domain.Artifact, error)
}

// RunArchive defines persistence of past runs.
type RunArchive interface {
	SaveRun(ctx context.Context, r *domain.Report) (int64, error)
	ListRuns(ctx context.Context) ([]domain.RunSummary, error)
	// GetRun fails with domain.ErrRunNotFound for an unknown id.
	GetRun(ctx context.Context, runID int64) (domain.RunSummary, error)
	GetGroups(ctx context.Context, runID int64) ([]domain.Group, error)
	GetRejections(ctx context.Context, runID int64) ([]domain.Rejection, error)
	Close() error
}
