package classify_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/csg33k/modreport/internal/classify"
	"github.com/csg33k/modreport/internal/config"
	"github.com/csg33k/modreport/internal/domain"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const scenarioYAML = `
area_plant_table:
  ACH8: MM8
  HCN6: Cyanides
  MMA3: Methacrylates
valid_year_range:
  min: 2006
  max: 2024
columns:
  identifier: Mod_No
  plant: Plant
  status: Status
  temporary: Temporary Mod
  project: Project No
  date: Date
  other: []
`

func newClassifier(t *testing.T, yaml string) *classify.Classifier {
	t.Helper()
	cfg, err := config.FromYAML([]byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	return classify.New(rules)
}

// row builds a raw row from alternating column/value pairs.
func row(index int, kv ...string) domain.RawRow {
	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return domain.RawRow{Index: index, Line: index + 1, Fields: fields}
}

func mod(index int, id, plant string) domain.RawRow {
	return row(index, "Mod_No", id, "Plant", plant)
}

// ---------------------------------------------------------------------------
// Identifier shapes
// ---------------------------------------------------------------------------

func TestClassifyIdentifier(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	tests := []struct {
		name     string
		id       string
		wantKind domain.Kind
		wantYear int
		reason   domain.Reason
	}{
		{name: "modification", id: "2019-0042", wantKind: domain.Modification, wantYear: 2019},
		{name: "modification padded", id: "  2019-0042 ", wantKind: domain.Modification, wantYear: 2019},
		{name: "project", id: "5228285", wantKind: domain.Project},
		{name: "six digit project", id: "522828", wantKind: domain.Project},
		{name: "letters", id: "abc-123", reason: domain.UnrecognizedIdentifierFormat},
		{name: "empty", id: "", reason: domain.UnrecognizedIdentifierFormat},
		{name: "too short for a project", id: "12345", reason: domain.UnrecognizedIdentifierFormat},
		{name: "year before range", id: "1999-0001", reason: domain.YearOutOfRange},
		{name: "year after range", id: "2031-0001", reason: domain.YearOutOfRange},
		{name: "range start inclusive", id: "2006-0001", wantKind: domain.Modification, wantYear: 2006},
		{name: "range end inclusive", id: "2024-0001", wantKind: domain.Modification, wantYear: 2024},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := c.Classify(mod(1, tc.id, "ACH8"))
			if tc.reason != "" {
				if o.Accepted() {
					t.Fatalf("accepted %+v, want rejection %s", o.Record, tc.reason)
				}
				if o.Rejection.Reason != tc.reason {
					t.Errorf("reason = %s, want %s", o.Rejection.Reason, tc.reason)
				}
				if o.Rejection.Field != "Mod_No" {
					t.Errorf("field = %q, want Mod_No", o.Rejection.Field)
				}
				return
			}
			if !o.Accepted() {
				t.Fatalf("rejected: %+v", o.Rejection)
			}
			if o.Record.Kind != tc.wantKind || o.Record.Year != tc.wantYear {
				t.Errorf("got kind %s year %d, want %s %d", o.Record.Kind, o.Record.Year, tc.wantKind, tc.wantYear)
			}
		})
	}
}

func TestClassifyExactlyOneOutcome(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	for _, r := range []domain.RawRow{
		mod(1, "2019-0042", "ACH8"),
		mod(2, "junk", "ACH8"),
		mod(3, "2019-0042", "NOPE"),
		row(4),
	} {
		o := c.Classify(r)
		if (o.Record == nil) == (o.Rejection == nil) {
			t.Errorf("row %d: outcome must hold exactly one of record and rejection: %+v", r.Index, o)
		}
	}
}

func TestAmbiguousIdentifier(t *testing.T) {
	c := newClassifier(t, scenarioYAML+`
identifier_patterns:
  modification_regex: '^(?P<year>\d{4})-?(?P<seq>\d{3})$'
  project_regex: '^\d{7}$'
`)
	o := c.Classify(mod(1, "2019042", "ACH8"))
	if o.Accepted() || o.Rejection.Reason != domain.AmbiguousIdentifier {
		t.Fatalf("got %+v, want AmbiguousIdentifier", o)
	}
}

func TestUnknownPlant(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	o := c.Classify(mod(7, "2019-0042", "ACH99"))
	want := &domain.Rejection{
		Row:    7,
		Line:   8,
		Reason: domain.UnknownPlant,
		Field:  "Plant",
		Value:  "ACH99",
		Detail: "plant not in the area table",
	}
	if diff := cmp.Diff(want, o.Rejection); diff != "" {
		t.Errorf("rejection mismatch (-want +got):\n%s", diff)
	}
}

func TestPlantLookupIgnoresCaseAndSpace(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	o := c.Classify(mod(1, "2019-0042", " ach8 "))
	if !o.Accepted() {
		t.Fatalf("rejected: %+v", o.Rejection)
	}
	if o.Record.Plant != "ACH8" || o.Record.Area != domain.MM8 {
		t.Errorf("plant %q area %q, want ACH8/MM8", o.Record.Plant, o.Record.Area)
	}
}

// ---------------------------------------------------------------------------
// Scenario
// ---------------------------------------------------------------------------

func TestClassifyAllScenario(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	got := c.ClassifyAll([]domain.RawRow{
		mod(1, "2019-0042", "ACH8"),
		mod(2, "5228285", "ACH8"),
		mod(3, "2019-0043", "UNKNOWN9"),
	})

	want := domain.Classification{
		Accepted: []domain.Record{
			{Row: 1, Line: 2, Identifier: "2019-0042", Kind: domain.Modification, Year: 2019, YearResolved: true,
				Sequence: "0042", Plant: "ACH8", Area: domain.MM8},
			{Row: 2, Line: 3, Identifier: "5228285", Kind: domain.Project, Plant: "ACH8", Area: domain.MM8},
		},
		Rejected: []domain.Rejection{
			{Row: 3, Line: 4, Reason: domain.UnknownPlant, Field: "Plant", Value: "UNKNOWN9", Detail: "plant not in the area table"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("classification mismatch (-want +got):\n%s", diff)
	}
	if got.Total() != 3 {
		t.Errorf("Total = %d, want 3", got.Total())
	}
}

// ---------------------------------------------------------------------------
// Cleaning of secondary columns
// ---------------------------------------------------------------------------

func TestExcludedStatus(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	o := c.Classify(row(1, "Mod_No", "2019-0042", "Plant", "ACH8", "Status", "cancelled"))
	if o.Accepted() || o.Rejection.Reason != domain.ExcludedStatus {
		t.Fatalf("got %+v, want ExcludedStatus", o)
	}
	if o.Rejection.Field != "Status" {
		t.Errorf("field = %q", o.Rejection.Field)
	}

	o = c.Classify(row(2, "Mod_No", "2019-0042", "Plant", "ACH8", "Status", "Complete"))
	if !o.Accepted() || o.Record.Status != "Complete" {
		t.Fatalf("got %+v, want accepted with status", o)
	}
}

func TestLinkedProject(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	tests := []struct {
		in   string
		want string
	}{
		{"5228285", "5228285"},
		{" 5228285 ", "5228285"},
		{"TBC", ""},
		{"various", ""},
		{"N/A", ""},
		{"n.a.", ""},
		{"0", ""},
		{"000", ""},
		{"-", ""},
		{"?", ""},
		{"", ""},
		{"2019-0042", ""}, // the row's own identifier
	}
	for _, tc := range tests {
		o := c.Classify(row(1, "Mod_No", "2019-0042", "Plant", "ACH8", "Project No", tc.in))
		if !o.Accepted() {
			t.Fatalf("%q: rejected %+v", tc.in, o.Rejection)
		}
		if o.Record.LinkedProject != tc.want {
			t.Errorf("project %q -> %q, want %q", tc.in, o.Record.LinkedProject, tc.want)
		}
	}
}

func TestTemporaryFlag(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	for in, want := range map[string]bool{
		"Y": true, "yes": true, "TRUE": true, "1": true, "x": true, "Temporary": true,
		"": false, "N": false, "no": false, "permanent": false,
	} {
		o := c.Classify(row(1, "Mod_No", "2019-0042", "Plant", "ACH8", "Temporary Mod", in))
		if !o.Accepted() {
			t.Fatalf("%q: rejected", in)
		}
		if o.Record.Temporary != want {
			t.Errorf("temporary %q -> %v, want %v", in, o.Record.Temporary, want)
		}
	}
}

func TestProjectYearFromDate(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	tests := []struct {
		date     string
		year     int
		resolved bool
	}{
		{"2018-03-14", 2018, true},
		{"14/03/2017", 2017, true},
		{"14.03.2016", 2016, true},
		{"2015", 2015, true},
		{"", 0, false},
		{"soon", 0, false},
	}
	for _, tc := range tests {
		o := c.Classify(row(1, "Mod_No", "5228285", "Plant", "HCN6", "Date", tc.date))
		if !o.Accepted() {
			t.Fatalf("%q: rejected %+v", tc.date, o.Rejection)
		}
		if o.Record.Year != tc.year || o.Record.YearResolved != tc.resolved {
			t.Errorf("date %q -> year %d resolved %v, want %d %v",
				tc.date, o.Record.Year, o.Record.YearResolved, tc.year, tc.resolved)
		}
	}
}

func TestProjectsIgnoreYearRange(t *testing.T) {
	c := newClassifier(t, scenarioYAML)
	o := c.Classify(row(1, "Mod_No", "5228285", "Plant", "HCN6", "Date", "1990"))
	if !o.Accepted() || o.Record.Year != 1990 {
		t.Fatalf("got %+v, want accepted project dated 1990", o)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  HCN6  ":           "HCN6",
		"a\u00a0\u00a0b":     "a b",
		"\ufeff2019-0042":    "2019-0042",
		"line\tbreak\n here": "line break here",
		"Cafe\u0301":         "Caf\u00e9",
		"zero\u200bwidth":    "zerowidth",
		"":                   "",
	}
	for in, want := range tests {
		if got := classify.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
