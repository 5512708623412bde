// Package charts renders the aggregated tables as PNG bar charts with
// gonum/plot. One file is written per chart; series with nothing to show are
// skipped rather than drawn as empty axes.
package charts

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"unicode"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/csg33k/modreport/internal/aggregate"
	"github.com/csg33k/modreport/internal/domain"
)

const yLabel = "Number of modifications"

type Renderer struct {
	width     vg.Length
	height    vg.Length
	highlight []string
	threshold int
}

// New returns a renderer drawing widthCM x heightCM images. highlight names
// plants that get their own yearly chart; threshold is the minimum number of
// modifications (exclusive) a linked project needs to be charted.
func New(widthCM, heightCM float64, highlight []string, threshold int) *Renderer {
	return &Renderer{
		width:     vg.Length(widthCM) * vg.Centimeter,
		height:    vg.Length(heightCM) * vg.Centimeter,
		highlight: highlight,
		threshold: threshold,
	}
}

type chart struct {
	title string
	group string
	build func() (*plot.Plot, error)
}

// Render draws every chart into dir. Satisfies ports.ChartRenderer.
func (r *Renderer) Render(ctx context.Context, t *domain.Table, dir string) ([]domain.Artifact, error) {
	var out []domain.Artifact
	for _, c := range r.plan(t) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		p, err := c.build()
		if err != nil {
			return out, fmt.Errorf("chart %q: %w", c.title, err)
		}
		path := filepath.Join(dir, FileName(c.title))
		if err := p.Save(r.width, r.height, path); err != nil {
			return out, fmt.Errorf("save chart %q: %w", c.title, err)
		}
		out = append(out, domain.Artifact{Name: c.title, Path: path, Kind: "chart", Group: c.group})
	}
	return out, nil
}

// plan lists the charts that have data, in presentation order.
func (r *Renderer) plan(t *domain.Table) []chart {
	var plan []chart
	addSeries := func(title, group, x string, s []aggregate.LabelCount) {
		if aggregate.Empty(s) {
			return
		}
		plan = append(plan, chart{title: title, group: group, build: func() (*plot.Plot, error) {
			return r.bars(title, x, s)
		}})
	}
	addMatrix := func(title, group, x, y string, m aggregate.Matrix, stacked bool) {
		if aggregate.EmptyMatrix(m) {
			return
		}
		plan = append(plan, chart{title: title, group: group, build: func() (*plot.Plot, error) {
			return r.matrix(title, x, y, m, stacked)
		}})
	}

	mod := domain.Modification
	addSeries("Modifications over years", "", "Year", aggregate.ByYear(t, mod))
	addSeries("Modifications in each area", "", "Area", aggregate.ByArea(t, mod))
	for _, a := range domain.Areas {
		addSeries(fmt.Sprintf("Modifications in each %s plant", a), string(a), "Plant", aggregate.ByPlant(t, a, mod))
		addSeries(fmt.Sprintf("Modifications in %s area each year", a), string(a), "Year", aggregate.AreaByYear(t, a, mod))
	}
	areaYears := aggregate.AreaYearMatrix(t, mod)
	addMatrix("Modifications in each area over the years", "", "Year", yLabel, areaYears, true)
	addMatrix("Modifications in each area over the years, normalised", "", "Year", "Share of modifications (%)", aggregate.Percent(areaYears), true)
	for _, plant := range r.highlight {
		addSeries(fmt.Sprintf("Modifications of %s plant over the years", plant), "", "Year", aggregate.PlantByYear(t, plant, mod))
	}

	var linked []aggregate.LabelCount
	for _, p := range aggregate.ProjectsAbove(t, r.threshold) {
		linked = append(linked, aggregate.LabelCount{Label: p.Project, Count: p.Modifications})
	}
	addSeries("Modifications related to projects", "", "Project", linked)
	addMatrix("Projects and modifications per plant", "", "Plant", "Number of records", aggregate.KindByPlant(t), false)
	addMatrix("Temporary and permanent modifications", "", "Year", yLabel, aggregate.TemporaryByYear(t), true)
	return plan
}

func (r *Renderer) bars(title, x string, s []aggregate.LabelCount) (*plot.Plot, error) {
	p := r.newPlot(title, x, yLabel)
	values := make(plotter.Values, len(s))
	names := make([]string, len(s))
	for i, c := range s {
		values[i] = float64(c.Count)
		names[i] = c.Label
	}
	b, err := plotter.NewBarChart(values, r.barWidth(len(s), 1))
	if err != nil {
		return nil, err
	}
	b.Color = plotutil.Color(0)
	b.LineStyle.Width = vg.Length(0)
	p.Add(b)
	r.nominalX(p, names)
	return p, nil
}

// matrix draws one bar series per row, stacked or side by side.
func (r *Renderer) matrix(title, x, y string, m aggregate.Matrix, stacked bool) (*plot.Plot, error) {
	p := r.newPlot(title, x, y)
	groups := len(m.Rows)
	if stacked {
		groups = 1
	}
	w := r.barWidth(len(m.Columns), groups)

	var below *plotter.BarChart
	for i, row := range m.Rows {
		b, err := plotter.NewBarChart(plotter.Values(row.Values), w)
		if err != nil {
			return nil, err
		}
		b.Color = plotutil.Color(i)
		b.LineStyle.Width = vg.Length(0)
		if stacked {
			if below != nil {
				b.StackOn(below)
			}
			below = b
		} else {
			b.Offset = w * vg.Length(float64(i)-float64(groups-1)/2)
		}
		p.Add(b)
		p.Legend.Add(row.Label, b)
	}
	p.Legend.Top = true
	r.nominalX(p, m.Columns)
	return p, nil
}

func (r *Renderer) newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	return p
}

func (r *Renderer) nominalX(p *plot.Plot, names []string) {
	p.NominalX(names...)
	if len(names) > 8 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
}

// barWidth splits the usable plot width between n slots of groups bars each.
func (r *Renderer) barWidth(n, groups int) vg.Length {
	if n < 1 {
		n = 1
	}
	if groups < 1 {
		groups = 1
	}
	w := r.width * 0.7 / vg.Length(n*groups)
	if w > vg.Points(40) {
		w = vg.Points(40)
	}
	return w
}

// FileName turns a chart title into a PNG file name.
func FileName(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-") + ".png"
}
