// Package xlsx exports the aggregated tables and the rejection log as an
// Excel workbook so the numbers behind every chart can be filtered by hand.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/csg33k/modreport/internal/domain"
)

const FileName = "report.xlsx"

// Sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetGroups     = "Groups"
	SheetPlants     = "Plants"
	SheetProjects   = "Projects"
	SheetRejections = "Rejections"
)

// Writer writes report.xlsx into the output directory. Satisfies ports.ReportWriter.
type Writer struct{}

func (Writer) Write(ctx context.Context, r *domain.Report, dir string) (domain.Artifact, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return domain.Artifact{}, err
	}
	if err := Generate(r, f); err != nil {
		f.Close()
		return domain.Artifact{}, err
	}
	if err := f.Close(); err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{Name: "Workbook", Path: path, Kind: "xlsx"}, nil
}

// Generate writes the workbook to w.
func Generate(r *domain.Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1E1E1E"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	sheets := []struct {
		name   string
		header []string
		rows   [][]any
	}{
		{SheetSummary, []string{"Metric", "Value"}, summaryRows(r)},
		{SheetGroups, []string{"Area", "Plant", "Year", "Kind", "Count"}, groupRows(r.Table)},
		{SheetPlants, []string{"Area", "Plant", "Modifications", "Projects", "Mods per year", "Project share"}, plantRows(r.Table)},
		{SheetProjects, []string{"Project", "Modifications"}, projectRows(r.Table)},
		{SheetRejections, []string{"Row", "Line", "Reason", "Field", "Value", "Detail"}, rejectionRows(r.Rejections)},
	}
	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("sheet %s: %w", s.name, err)
			}
		}
		if err := writeSheet(f, s.name, s.header, s.rows, bold); err != nil {
			return fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, style int) error {
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func summaryRows(r *domain.Report) [][]any {
	s := r.Summary
	rows := [][]any{
		{"Input", r.InputPath},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Valid years", fmt.Sprintf("%d-%d", r.Years.Min, r.Years.Max)},
		{"Total rows", s.TotalRows},
		{"Accepted", s.Accepted},
		{"Rejected", s.Rejected},
	}
	for _, k := range domain.Kinds {
		rows = append(rows, []any{"Accepted " + string(k), s.AcceptedByKind[k]})
	}
	for _, reason := range domain.Reasons {
		rows = append(rows, []any{"Rejected " + string(reason), s.RejectedByReason[reason]})
	}
	return rows
}

func groupRows(t *domain.Table) [][]any {
	if t == nil {
		return nil
	}
	rows := make([][]any, len(t.Groups))
	for i, g := range t.Groups {
		var year any = g.Year
		if g.Year == 0 {
			year = "unresolved"
		}
		rows[i] = []any{string(g.Area), g.Plant, year, string(g.Kind), g.Count}
	}
	return rows
}

func plantRows(t *domain.Table) [][]any {
	if t == nil {
		return nil
	}
	rows := make([][]any, len(t.Plants))
	for i, p := range t.Plants {
		rows[i] = []any{string(p.Area), p.Plant, p.Modifications, p.Projects, p.ModsPerYear, p.ProjectShare}
	}
	return rows
}

func projectRows(t *domain.Table) [][]any {
	if t == nil {
		return nil
	}
	rows := make([][]any, len(t.Projects))
	for i, p := range t.Projects {
		rows[i] = []any{p.Project, p.Modifications}
	}
	return rows
}

func rejectionRows(rs []domain.Rejection) [][]any {
	rows := make([][]any, len(rs))
	for i, r := range rs {
		rows[i] = []any{r.Row, r.Line, string(r.Reason), r.Field, r.Value, r.Detail}
	}
	return rows
}
