package charts_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/csg33k/modreport/internal/adapters/charts"
	"github.com/csg33k/modreport/internal/aggregate"
	"github.com/csg33k/modreport/internal/domain"
)

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Modifications over years":                              "modifications-over-years.png",
		"Modifications in each area over the years, normalised": "modifications-in-each-area-over-the-years-normalised.png",
		"Modifications of HCN6 plant over the years":            "modifications-of-hcn6-plant-over-the-years.png",
		"  Trailing --- ":                                       "trailing.png",
	}
	for in, want := range tests {
		if got := charts.FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func records() []domain.Record {
	var out []domain.Record
	add := func(plant string, area domain.Area, year, n int, project string) {
		for i := 0; i < n; i++ {
			out = append(out, domain.Record{
				Kind: domain.Modification, Plant: plant, Area: area,
				Year: year, YearResolved: true, LinkedProject: project, Temporary: i%3 == 0,
			})
		}
	}
	add("HCN6", domain.Cyanides, 2010, 4, "5228285")
	add("HCN6", domain.Cyanides, 2011, 3, "5228285")
	add("MMA3", domain.Methacrylates, 2011, 2, "")
	out = append(out, domain.Record{Kind: domain.Project, Plant: "HCN6", Area: domain.Cyanides})
	return out
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	tbl := aggregate.Aggregate(records(), domain.YearRange{Min: 2006, Max: 2024})
	r := charts.New(16, 10, []string{"HCN6", "SAR8"}, 5)

	arts, err := r.Render(context.Background(), tbl, dir)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	byName := make(map[string]domain.Artifact)
	for _, a := range arts {
		if a.Kind != "chart" {
			t.Errorf("%s: kind %q", a.Name, a.Kind)
		}
		info, err := os.Stat(a.Path)
		if err != nil {
			t.Errorf("%s: %v", a.Name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s: empty file", a.Path)
		}
		if filepath.Dir(a.Path) != dir {
			t.Errorf("%s written outside %s", a.Path, dir)
		}
		byName[a.Name] = a
	}

	for _, name := range []string{
		"Modifications over years",
		"Modifications in each area",
		"Modifications in each Cyanides plant",
		"Modifications in Methacrylates area each year",
		"Modifications in each area over the years",
		"Modifications in each area over the years, normalised",
		"Modifications of HCN6 plant over the years",
		"Modifications related to projects",
		"Projects and modifications per plant",
		"Temporary and permanent modifications",
	} {
		if _, ok := byName[name]; !ok {
			t.Errorf("missing chart %q", name)
		}
	}
	// MM8 has no records and SAR8 is not in the data: nothing drawn for either.
	for _, name := range []string{
		"Modifications in each MM8 plant",
		"Modifications in MM8 area each year",
		"Modifications of SAR8 plant over the years",
	} {
		if _, ok := byName[name]; ok {
			t.Errorf("chart %q should have been skipped", name)
		}
	}
	if g := byName["Modifications in each Cyanides plant"].Group; g != "Cyanides" {
		t.Errorf("group = %q, want Cyanides", g)
	}
}

func TestRenderEmptyTable(t *testing.T) {
	tbl := aggregate.Aggregate(nil, domain.YearRange{Min: 2006, Max: 2024})
	arts, err := charts.New(16, 10, nil, 5).Render(context.Background(), tbl, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(arts) != 0 {
		t.Errorf("rendered %d charts for an empty table", len(arts))
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tbl := aggregate.Aggregate(records(), domain.YearRange{Min: 2006, Max: 2024})
	if _, err := charts.New(16, 10, nil, 5).Render(ctx, tbl, t.TempDir()); err == nil {
		t.Fatal("expected context error")
	}
}
