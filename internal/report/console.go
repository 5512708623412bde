package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/csg33k/modreport/internal/aggregate"
	"github.com/csg33k/modreport/internal/domain"
)

// styles renders console text for w; colours are dropped when w is not a terminal.
type styles struct {
	title, header, cell, rule, good, bad lipgloss.Style
}

func newStyles(w io.Writer) styles {
	re := lipgloss.NewRenderer(w)
	return styles{
		title:  re.NewStyle().Bold(true).Underline(true),
		header: re.NewStyle().Bold(true).PaddingRight(2),
		cell:   re.NewStyle().PaddingRight(2),
		rule:   re.NewStyle().Foreground(lipgloss.Color("#6b5e4e")),
		good:   re.NewStyle().Foreground(lipgloss.Color("#2c6e49")),
		bad:    re.NewStyle().Foreground(lipgloss.Color("#c0392b")).Bold(true),
	}
}

// table is a borderless table; only the header gets an underline.
func (st styles) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.rule).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return st.cell
		})
}

// PrintSummary writes the end-of-run summary shown on the console.
func PrintSummary(w io.Writer, r *domain.Report) error {
	s := r.Summary
	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render("Modification report"))

	rejected := strconv.Itoa(s.Rejected)
	if s.Rejected > 0 {
		rejected = st.bad.Render(rejected)
	}
	t := st.table().
		Row("Rows read:", strconv.Itoa(s.TotalRows), "").
		Row("Accepted:", st.good.Render(strconv.Itoa(s.Accepted)),
			fmt.Sprintf("(%d modifications, %d projects)", s.AcceptedByKind[domain.Modification], s.AcceptedByKind[domain.Project])).
		Row("Rejected:", rejected, "")
	for _, reason := range domain.Reasons {
		if n := s.RejectedByReason[reason]; n > 0 {
			t.Row("  "+string(reason), strconv.Itoa(n), "")
		}
	}
	fmt.Fprintln(w, t.Render())

	if r.Table != nil {
		if top, ok := aggregate.TopProject(r.Table); ok {
			fmt.Fprintf(w, "There were a total of %d modifications related to %d projects out of the %d total.\n",
				aggregate.LinkedModifications(r.Table), len(r.Table.Projects), s.AcceptedByKind[domain.Modification])
			fmt.Fprintf(w, "The %s project included %d modifications, the most out of all the projects!\n",
				top.Project, top.Modifications)
		}
	}
	if s.Rejected > 0 {
		fmt.Fprintf(w, "See rejections.csv in %s for the rejected rows.\n", r.OutputDir)
	}
	_, err := fmt.Fprintf(w, "%d files written to %s\n", len(r.Artifacts), r.OutputDir)
	return err
}

// PrintRuns lists archived runs for the history command.
func PrintRuns(w io.Writer, runs []domain.RunSummary) error {
	st := newStyles(w)
	t := st.table("ID", "GENERATED", "INPUT", "ROWS", "ACCEPTED", "REJECTED")
	for _, r := range runs {
		t.Row(strconv.FormatInt(r.ID, 10), r.GeneratedAt.Format("2006-01-02 15:04"), r.InputPath,
			strconv.Itoa(r.TotalRows), strconv.Itoa(r.Accepted), strconv.Itoa(r.Rejected))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// PrintRun shows the stored groups and rejections of one archived run.
func PrintRun(w io.Writer, groups []domain.Group, rejections []domain.Rejection) error {
	st := newStyles(w)
	t := st.table("AREA", "PLANT", "YEAR", "KIND", "COUNT")
	for _, g := range groups {
		t.Row(string(g.Area), g.Plant, strconv.Itoa(g.Year), string(g.Kind), strconv.Itoa(g.Count))
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if len(rejections) == 0 {
		return nil
	}
	t = st.table("ROW", "LINE", "REASON", "FIELD", "VALUE")
	for _, r := range rejections {
		t.Row(strconv.Itoa(r.Row), strconv.Itoa(r.Line), string(r.Reason), r.Field, strconv.Quote(r.Value))
	}
	_, err := fmt.Fprintln(w, "\n"+t.Render())
	return err
}
