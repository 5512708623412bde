// Package pdf generates the printable modification report.
// The first page summarises the run (accepted vs. rejected rows, counts per
// area and per plant), each chart gets a landscape page of its own, and the
// rejection log is listed last so the source data can be corrected by row.
package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/modreport/internal/aggregate"
	"github.com/csg33k/modreport/internal/domain"
)

const FileName = "report.pdf"

// Writer writes report.pdf into the output directory. Satisfies ports.ReportWriter.
type Writer struct{}

func (Writer) Write(ctx context.Context, r *domain.Report, dir string) (domain.Artifact, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return domain.Artifact{}, err
	}
	if err := GeneratePDF(r, f); err != nil {
		f.Close()
		return domain.Artifact{}, err
	}
	if err := f.Close(); err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{Name: "Report", Path: path, Kind: "pdf"}, nil
}

// GeneratePDF writes the whole report to w.
func GeneratePDF(r *domain.Report, w io.Writer) error {
	return generate(r, w, true)
}

func generate(r *domain.Report, w io.Writer, compress bool) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() { drawFooter(pdf, r) })

	pdf.AddPage()
	drawSummaryPage(pdf, r)

	for _, c := range r.Charts() {
		pdf.AddPage()
		drawChartPage(pdf, c)
	}

	if len(r.Rejections) > 0 {
		pdf.AddPage()
		drawRejections(pdf, r.Rejections)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func drawSummaryPage(pdf *fpdf.Fpdf, r *domain.Report) {
	marginL, marginT, marginR, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - marginL - marginR

	const title = "PLANT MODIFICATIONS REPORT"
	drawHeaderBar(pdf, title)
	y := marginT + 13

	// ── Run section ──────────────────────────────────────────────────────────
	y = sectionTitle(pdf, y, "RUN")
	colHalf := contentW / 2
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6, fit(pdf, tr(pdf, "Input: "+r.InputPath), colHalf-2), "L", 0, "L", false, 0, "")
	pdf.CellFormat(colHalf, 6, tr(pdf, "Generated: "+r.GeneratedAt.Format("2006-01-02 15:04")), "R", 1, "L", false, 0, "")
	y += 6
	s := r.Summary
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6, fmt.Sprintf("Rows: %d   Accepted: %d   Rejected: %d", s.TotalRows, s.Accepted, s.Rejected), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(colHalf, 6, fmt.Sprintf("Valid years: %d-%d", r.Years.Min, r.Years.Max), "RB", 1, "L", false, 0, "")
	y += 10

	// ── Totals tables ────────────────────────────────────────────────────────
	rows := [][]string{}
	for _, k := range domain.Kinds {
		rows = append(rows, []string{"Accepted " + string(k), strconv.Itoa(s.AcceptedByKind[k])})
	}
	for _, reason := range domain.Reasons {
		if n := s.RejectedByReason[reason]; n > 0 {
			rows = append(rows, []string{"Rejected: " + string(reason), strconv.Itoa(n)})
		}
	}
	half := (contentW - 6) / 2
	yLeft := table(pdf, title, marginL, y, []string{"Outcome", "Rows"}, []float64{half * 0.7, half * 0.3}, rows)

	var areaRows [][]string
	if r.Table != nil {
		for _, c := range aggregate.ByArea(r.Table, domain.Modification) {
			projects := 0
			for _, p := range aggregate.ByArea(r.Table, domain.Project) {
				if p.Label == c.Label {
					projects = p.Count
				}
			}
			areaRows = append(areaRows, []string{c.Label, strconv.Itoa(c.Count), strconv.Itoa(projects)})
		}
	}
	yRight := table(pdf, title, marginL+half+6, y, []string{"Area", "Modifications", "Projects"},
		[]float64{half * 0.4, half * 0.3, half * 0.3}, areaRows)

	y = max(yLeft, yRight) + 6
	if r.Table == nil || len(r.Table.Plants) == 0 {
		return
	}

	// ── Plants table ─────────────────────────────────────────────────────────
	var plantRows [][]string
	for _, p := range r.Table.Plants {
		plantRows = append(plantRows, []string{
			string(p.Area), p.Plant,
			strconv.Itoa(p.Modifications), strconv.Itoa(p.Projects),
			fmt.Sprintf("%.2f", p.ModsPerYear), fmt.Sprintf("%.0f%%", p.ProjectShare*100),
		})
	}
	pdf.SetXY(marginL, y)
	w := contentW / 6
	table(pdf, title, marginL, y, []string{"Area", "Plant", "Modifications", "Projects", "Mods / year", "Project share"},
		[]float64{w, w, w, w, w, w}, plantRows)
}

func drawChartPage(pdf *fpdf.Fpdf, c domain.Artifact) {
	marginL, marginT, marginR, marginB := pdf.GetMargins()
	pageW, pageH := pdf.GetPageSize()
	drawHeaderBar(pdf, c.Name)

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	info := pdf.RegisterImageOptions(c.Path, opts)
	if info == nil {
		return
	}
	maxW := pageW - marginL - marginR
	maxH := pageH - marginT - marginB - 22
	w, h := info.Width(), info.Height()
	scale := min(maxW/w, maxH/h)
	w, h = w*scale, h*scale
	pdf.ImageOptions(c.Path, marginL+(maxW-w)/2, marginT+14, w, h, false, opts, 0, "")
}

func drawRejections(pdf *fpdf.Fpdf, rejections []domain.Rejection) {
	marginL, marginT, marginR, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - marginL - marginR

	const title = "REJECTED ROWS"
	drawHeaderBar(pdf, title)
	rows := make([][]string, len(rejections))
	for i, r := range rejections {
		rows[i] = []string{strconv.Itoa(r.Row), strconv.Itoa(r.Line), string(r.Reason), r.Field, r.Value, r.Detail}
	}
	table(pdf, title, marginL, marginT+13, []string{"Row", "Line", "Reason", "Field", "Value", "Detail"},
		[]float64{contentW * 0.06, contentW * 0.06, contentW * 0.2, contentW * 0.14, contentW * 0.2, contentW * 0.34}, rows)
}

func drawHeaderBar(pdf *fpdf.Fpdf, title string) {
	marginL, marginT, marginR, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - marginL - marginR

	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-40, 7, tr(pdf, title), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(36, 7, "Page "+strconv.Itoa(pdf.PageNo())+" of {nb}", "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func drawFooter(pdf *fpdf.Fpdf, r *domain.Report) {
	marginL, _, marginR, marginB := pdf.GetMargins()
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - marginL - marginR
	pdf.SetXY(marginL, pageH-marginB+4)
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW/2, 5, "Generated by modreport", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, tr(pdf, filepath.Base(r.InputPath)), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func sectionTitle(pdf *fpdf.Fpdf, y float64, title string) float64 {
	marginL, _, marginR, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(pageW-marginL-marginR, 5.5, tr(pdf, title), "LRT", 1, "L", true, 0, "")
	return y + 5.5
}

// table draws a header row and alternating body rows starting at (x, y).
// After a page break the page gets a "title, CONTINUED" bar and the header row
// is repeated. It returns the y below the table.
func table(pdf *fpdf.Fpdf, title string, x, y float64, header []string, widths []float64, rows [][]string) float64 {
	const rowH = 6.0
	_, pageH := pdf.GetPageSize()
	_, marginT, _, marginB := pdf.GetMargins()

	drawHead := func() {
		pdf.SetFillColor(30, 30, 30)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 8.5)
		pdf.SetXY(x, y)
		for i, h := range header {
			pdf.CellFormat(widths[i], 7, tr(pdf, h), "1", 0, "C", true, 0, "")
		}
		y += 7
		pdf.SetTextColor(0, 0, 0)
	}
	drawHead()

	pdf.SetFont("Helvetica", "", 8.5)
	for i, row := range rows {
		if y+rowH > pageH-marginB {
			pdf.AddPage()
			drawHeaderBar(pdf, title+", CONTINUED")
			y = marginT + 13
			drawHead()
			pdf.SetFont("Helvetica", "", 8.5)
		}
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(x, y)
		for c, cell := range row {
			align := "L"
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				align = "R"
			}
			pdf.CellFormat(widths[c], rowH, fit(pdf, tr(pdf, cell), widths[c]-2), "1", 0, align, true, 0, "")
		}
		y += rowH
	}
	return y
}

// tr converts UTF-8 text to the cp1252 encoding of the core fonts.
func tr(pdf *fpdf.Fpdf, s string) string {
	return pdf.UnicodeTranslatorFromDescriptor("")(s)
}

// fit truncates s with an ellipsis so it fits in width mm.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
