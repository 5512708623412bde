package aggregate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/csg33k/modreport/internal/aggregate"
	"github.com/csg33k/modreport/internal/domain"
)

func TestByYear(t *testing.T) {
	tbl := aggregate.Aggregate(sample(), years)
	want := []aggregate.LabelCount{{Label: "2010", Count: 3}, {Label: "2011", Count: 2}, {Label: "2012", Count: 1}}
	if diff := cmp.Diff(want, aggregate.ByYear(tbl, domain.Modification)); diff != "" {
		t.Errorf("ByYear mismatch (-want +got):\n%s", diff)
	}
	// projects in the sample have no resolved year
	if got := aggregate.ByYear(tbl, domain.Project); len(got) != 0 {
		t.Errorf("ByYear(Project) = %+v, want none", got)
	}
}

func TestByAreaIncludesEmptyAreas(t *testing.T) {
	tbl := aggregate.Aggregate([]domain.Record{modRec("ACH8", domain.MM8, 2012)}, years)
	want := []aggregate.LabelCount{{Label: "Cyanides", Count: 0}, {Label: "Methacrylates", Count: 0}, {Label: "MM8", Count: 1}}
	if diff := cmp.Diff(want, aggregate.ByArea(tbl, domain.Modification)); diff != "" {
		t.Errorf("ByArea mismatch (-want +got):\n%s", diff)
	}
}

func TestByPlantAndAreaByYear(t *testing.T) {
	tbl := aggregate.Aggregate(sample(), years)
	want := []aggregate.LabelCount{{Label: "HCN6", Count: 3}, {Label: "NACN2", Count: 1}}
	if diff := cmp.Diff(want, aggregate.ByPlant(tbl, domain.Cyanides, domain.Modification)); diff != "" {
		t.Errorf("ByPlant mismatch (-want +got):\n%s", diff)
	}
	want = []aggregate.LabelCount{{Label: "2010", Count: 2}, {Label: "2011", Count: 2}}
	if diff := cmp.Diff(want, aggregate.AreaByYear(tbl, domain.Cyanides, domain.Modification)); diff != "" {
		t.Errorf("AreaByYear mismatch (-want +got):\n%s", diff)
	}
	want = []aggregate.LabelCount{{Label: "2010", Count: 2}, {Label: "2011", Count: 1}}
	if diff := cmp.Diff(want, aggregate.PlantByYear(tbl, "hcn6", domain.Modification)); diff != "" {
		t.Errorf("PlantByYear mismatch (-want +got):\n%s", diff)
	}
}

func TestAreaYearMatrixAndPercent(t *testing.T) {
	tbl := aggregate.Aggregate(sample(), years)
	m := aggregate.AreaYearMatrix(tbl, domain.Modification)
	want := aggregate.Matrix{
		Columns: []string{"2010", "2011", "2012"},
		Rows: []aggregate.MatrixRow{
			{Label: "Cyanides", Values: []float64{2, 2, 0}},
			{Label: "Methacrylates", Values: []float64{1, 0, 0}},
			{Label: "MM8", Values: []float64{0, 0, 1}},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("AreaYearMatrix mismatch (-want +got):\n%s", diff)
	}

	p := aggregate.Percent(m)
	for col := range p.Columns {
		sum := 0.0
		for _, r := range p.Rows {
			sum += r.Values[col]
		}
		if sum < 99.999 || sum > 100.001 {
			t.Errorf("column %s sums to %v, want 100", p.Columns[col], sum)
		}
	}
	if got := p.Rows[0].Values[0]; got < 66.66 || got > 66.67 {
		t.Errorf("Cyanides 2010 share = %v, want 66.67", got)
	}
	// the input is not modified
	if m.Rows[0].Values[0] != 2 {
		t.Errorf("Percent modified its input")
	}
}

func TestPercentOfEmptyColumn(t *testing.T) {
	m := aggregate.Matrix{
		Columns: []string{"2010"},
		Rows:    []aggregate.MatrixRow{{Label: "a", Values: []float64{0}}},
	}
	if got := aggregate.Percent(m).Rows[0].Values[0]; got != 0 {
		t.Errorf("empty column share = %v, want 0", got)
	}
}

func TestKindByPlant(t *testing.T) {
	tbl := aggregate.Aggregate(sample(), years)
	m := aggregate.KindByPlant(tbl)
	want := aggregate.Matrix{
		Columns: []string{"HCN6", "NACN2", "MMA3", "ACH8"},
		Rows: []aggregate.MatrixRow{
			{Label: "Modification", Values: []float64{3, 1, 1, 1}},
			{Label: "Project", Values: []float64{1, 0, 0, 1}},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("KindByPlant mismatch (-want +got):\n%s", diff)
	}
}

func TestTemporaryByYear(t *testing.T) {
	tbl := aggregate.Aggregate(sample(), years)
	m := aggregate.TemporaryByYear(tbl)
	if diff := cmp.Diff([]string{"2010", "2011", "2012"}, m.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 1, 0}, m.Rows[1].Values); diff != "" {
		t.Errorf("temporary row mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyMatrix(t *testing.T) {
	if !aggregate.EmptyMatrix(aggregate.Matrix{}) {
		t.Error("zero matrix should be empty")
	}
	m := aggregate.Matrix{Columns: []string{"x"}, Rows: []aggregate.MatrixRow{{Label: "a", Values: []float64{1}}}}
	if aggregate.EmptyMatrix(m) {
		t.Error("matrix with a value should not be empty")
	}
}
