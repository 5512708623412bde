package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/csg33k/modreport/internal/domain"
)

const RejectionsFile = "rejections.csv"

var rejectionHeader = []string{"row", "line", "reason", "field", "value", "detail"}

// WriteRejections writes the rejection log as CSV, one line per rejected row.
func WriteRejections(w io.Writer, rejections []domain.Rejection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rejectionHeader); err != nil {
		return err
	}
	for _, r := range rejections {
		if err := cw.Write([]string{
			strconv.Itoa(r.Row),
			strconv.Itoa(r.Line),
			string(r.Reason),
			r.Field,
			r.Value,
			r.Detail,
		}); err != nil {
			return fmt.Errorf("write rejection for row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RejectionWriter writes rejections.csv into the output directory.
// Satisfies ports.ReportWriter.
type RejectionWriter struct{}

func (RejectionWriter) Write(ctx context.Context, r *domain.Report, dir string) (domain.Artifact, error) {
	path := filepath.Join(dir, RejectionsFile)
	f, err := os.Create(path)
	if err != nil {
		return domain.Artifact{}, err
	}
	if err := WriteRejections(f, r.Rejections); err != nil {
		f.Close()
		return domain.Artifact{}, err
	}
	if err := f.Close(); err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{Name: "Rejected rows", Path: path, Kind: "csv"}, nil
}
