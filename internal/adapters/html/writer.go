// Package html writes the standalone HTML report next to the chart images.
package html

import (
	"context"
	"os"
	"path/filepath"

	"github.com/a-h/templ"

	"github.com/csg33k/modreport/internal/domain"
	"github.com/csg33k/modreport/internal/templates"
)

const FileName = "report.html"

// Writer satisfies ports.ReportWriter.
type Writer struct{}

func (Writer) Write(ctx context.Context, r *domain.Report, dir string) (domain.Artifact, error) {
	path := filepath.Join(dir, FileName)
	if err := render(ctx, path, templates.Report(r)); err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{Name: "HTML report", Path: path, Kind: "html"}, nil
}

// render writes a templ component to a file.
func render(ctx context.Context, path string, c templ.Component) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Render(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
