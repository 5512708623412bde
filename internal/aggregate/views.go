package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/csg33k/modreport/internal/domain"
)

// LabelCount is one bar of a single-series chart.
type LabelCount struct {
	Label string
	Count int
}

// Matrix is a multi-series view: one row per series, one column per label.
type Matrix struct {
	Columns []string
	Rows    []MatrixRow
}

type MatrixRow struct {
	Label  string
	Values []float64
}

// Count returns the group count for k, 0 when absent.
func Count(t *domain.Table, k domain.GroupKey) int {
	i := sort.Search(len(t.Groups), func(i int) bool { return !lessKey(t.Groups[i].GroupKey, k) })
	if i < len(t.Groups) && t.Groups[i].GroupKey == k {
		return t.Groups[i].Count
	}
	return 0
}

// Years returns the distinct resolved years holding records of kind, ascending.
func Years(t *domain.Table, kind domain.Kind) []int {
	seen := make(map[int]bool)
	var out []int
	for _, g := range t.Groups {
		if g.Kind != kind || g.Year == 0 || seen[g.Year] {
			continue
		}
		seen[g.Year] = true
		out = append(out, g.Year)
	}
	sort.Ints(out)
	return out
}

// ByYear counts records of kind per resolved year.
func ByYear(t *domain.Table, kind domain.Kind) []LabelCount {
	return byYear(t, kind, func(domain.Group) bool { return true })
}

// AreaByYear counts records of kind per year within one area.
func AreaByYear(t *domain.Table, area domain.Area, kind domain.Kind) []LabelCount {
	return byYear(t, kind, func(g domain.Group) bool { return g.Area == area })
}

// PlantByYear counts records of kind per year for one plant (case-insensitive).
func PlantByYear(t *domain.Table, plant string, kind domain.Kind) []LabelCount {
	return byYear(t, kind, func(g domain.Group) bool { return strings.EqualFold(g.Plant, plant) })
}

func byYear(t *domain.Table, kind domain.Kind, keep func(domain.Group) bool) []LabelCount {
	per := make(map[int]int)
	for _, g := range t.Groups {
		if g.Kind == kind && g.Year != 0 && keep(g) {
			per[g.Year] += g.Count
		}
	}
	years := make([]int, 0, len(per))
	for y := range per {
		years = append(years, y)
	}
	sort.Ints(years)
	out := make([]LabelCount, len(years))
	for i, y := range years {
		out[i] = LabelCount{Label: strconv.Itoa(y), Count: per[y]}
	}
	return out
}

// ByArea counts records of kind per area, in area order, zero areas included.
func ByArea(t *domain.Table, kind domain.Kind) []LabelCount {
	per := make(map[domain.Area]int)
	for _, g := range t.Groups {
		if g.Kind == kind {
			per[g.Area] += g.Count
		}
	}
	out := make([]LabelCount, len(domain.Areas))
	for i, a := range domain.Areas {
		out[i] = LabelCount{Label: string(a), Count: per[a]}
	}
	return out
}

// ByPlant counts records of kind per plant of an area, by plant name.
func ByPlant(t *domain.Table, area domain.Area, kind domain.Kind) []LabelCount {
	var out []LabelCount
	for _, p := range t.Plants {
		if p.Area != area {
			continue
		}
		n := p.Modifications
		if kind == domain.Project {
			n = p.Projects
		}
		if n > 0 {
			out = append(out, LabelCount{Label: p.Plant, Count: n})
		}
	}
	return out
}

// AreaYearMatrix lays out records of kind with one row per area and one column
// per year seen in any area. Missing cells are zero.
func AreaYearMatrix(t *domain.Table, kind domain.Kind) Matrix {
	years := Years(t, kind)
	col := make(map[int]int, len(years))
	m := Matrix{Columns: make([]string, len(years))}
	for i, y := range years {
		col[y] = i
		m.Columns[i] = strconv.Itoa(y)
	}
	rows := make(map[domain.Area][]float64, len(domain.Areas))
	for _, a := range domain.Areas {
		rows[a] = make([]float64, len(years))
	}
	for _, g := range t.Groups {
		if g.Kind != kind || g.Year == 0 {
			continue
		}
		if r, ok := rows[g.Area]; ok {
			r[col[g.Year]] += float64(g.Count)
		}
	}
	for _, a := range domain.Areas {
		m.Rows = append(m.Rows, MatrixRow{Label: string(a), Values: rows[a]})
	}
	return m
}

// Percent rescales every column of m so its rows sum to 100. Empty columns stay zero.
func Percent(m Matrix) Matrix {
	out := Matrix{Columns: m.Columns, Rows: make([]MatrixRow, len(m.Rows))}
	totals := make([]float64, len(m.Columns))
	for _, r := range m.Rows {
		for i, v := range r.Values {
			totals[i] += v
		}
	}
	for ri, r := range m.Rows {
		vals := make([]float64, len(r.Values))
		for i, v := range r.Values {
			if totals[i] > 0 {
				vals[i] = v / totals[i] * 100
			}
		}
		out.Rows[ri] = MatrixRow{Label: r.Label, Values: vals}
	}
	return out
}

// KindByPlant is the project-versus-modification view: one column per plant,
// one row per kind.
func KindByPlant(t *domain.Table) Matrix {
	m := Matrix{}
	mods := MatrixRow{Label: string(domain.Modification)}
	projects := MatrixRow{Label: string(domain.Project)}
	for _, p := range t.Plants {
		m.Columns = append(m.Columns, p.Plant)
		mods.Values = append(mods.Values, float64(p.Modifications))
		projects.Values = append(projects.Values, float64(p.Projects))
	}
	m.Rows = []MatrixRow{mods, projects}
	return m
}

// TemporaryByYear is the temporary-versus-permanent view, one column per year.
func TemporaryByYear(t *domain.Table) Matrix {
	m := Matrix{}
	perm := MatrixRow{Label: "Permanent"}
	temp := MatrixRow{Label: "Temporary"}
	for _, ts := range t.Temporary {
		m.Columns = append(m.Columns, strconv.Itoa(ts.Year))
		perm.Values = append(perm.Values, float64(ts.Permanent))
		temp.Values = append(temp.Values, float64(ts.Temporary))
	}
	m.Rows = []MatrixRow{perm, temp}
	return m
}

// ProjectsAbove returns the linked projects with more than threshold modifications.
func ProjectsAbove(t *domain.Table, threshold int) []domain.ProjectTally {
	var out []domain.ProjectTally
	for _, p := range t.Projects {
		if p.Modifications > threshold {
			out = append(out, p)
		}
	}
	return out
}

// TopProject returns the linked project with the most modifications.
func TopProject(t *domain.Table) (domain.ProjectTally, bool) {
	if len(t.Projects) == 0 {
		return domain.ProjectTally{}, false
	}
	return t.Projects[0], true
}

// LinkedModifications is the number of modifications booked against any project.
func LinkedModifications(t *domain.Table) int {
	n := 0
	for _, p := range t.Projects {
		n += p.Modifications
	}
	return n
}

// Empty reports whether every value of the series is zero.
func Empty(s []LabelCount) bool {
	for _, c := range s {
		if c.Count != 0 {
			return false
		}
	}
	return true
}

// EmptyMatrix reports whether m has no columns or only zero cells.
func EmptyMatrix(m Matrix) bool {
	for _, r := range m.Rows {
		for _, v := range r.Values {
			if v != 0 {
				return false
			}
		}
	}
	return true
}
