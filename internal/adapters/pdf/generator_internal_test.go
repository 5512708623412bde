package pdf

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/csg33k/modreport/internal/domain"
)

// uncompressed renders r without stream compression so page text can be searched.
func uncompressed(t *testing.T, r *domain.Report) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := generate(r, &buf, false); err != nil {
		t.Fatalf("generate: %v", err)
	}
	return buf.Bytes()
}

func TestRunTextUsesCoreFontEncoding(t *testing.T) {
	r := &domain.Report{
		InputPath:   "exports/München.csv",
		GeneratedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Years:       domain.YearRange{Min: 2006, Max: 2024},
	}
	out := uncompressed(t, r)
	if !bytes.Contains(out, []byte("Input: exports/M\xfcnchen.csv")) {
		t.Error("input path is not translated to cp1252")
	}
	if bytes.Contains(out, []byte("M\xc3\xbcnchen")) {
		t.Error("raw UTF-8 bytes reached the page")
	}
}

func TestContinuedPagesGetHeaderBar(t *testing.T) {
	r := &domain.Report{
		InputPath:   "mods.csv",
		GeneratedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Years:       domain.YearRange{Min: 2006, Max: 2024},
	}
	for i := 0; i < 80; i++ {
		r.Rejections = append(r.Rejections, domain.Rejection{
			Row: i + 1, Line: i + 2, Reason: domain.UnknownPlant, Field: "Plant", Value: fmt.Sprintf("X%d", i),
		})
	}
	out := uncompressed(t, r)
	if !bytes.Contains(out, []byte("REJECTED ROWS, CONTINUED")) {
		t.Error("continuation page has no header bar")
	}
	if n := bytes.Count(out, []byte("(Reason)")); n < 2 {
		t.Errorf("table header drawn %d times, want it repeated after the page break", n)
	}
}
