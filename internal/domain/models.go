package domain

import (
	"errors"
	"strings"
	"time"
)

// Area is a top-level production grouping of the site.
type Area string

const (
	Cyanides      Area = "Cyanides"
	Methacrylates Area = "Methacrylates"
	MM8           Area = "MM8"
)

// Areas lists the production areas in report order.
var Areas = []Area{Cyanides, Methacrylates, MM8}

// ParseArea matches s against the known areas, ignoring case.
func ParseArea(s string) (Area, bool) {
	for _, a := range Areas {
		if strings.EqualFold(string(a), strings.TrimSpace(s)) {
			return a, true
		}
	}
	return "", false
}

// Rank returns the report position of a, or len(Areas) for unknown values.
func (a Area) Rank() int {
	for i, known := range Areas {
		if a == known {
			return i
		}
	}
	return len(Areas)
}

// Kind tells a genuine modification apart from a project.
type Kind string

const (
	Modification Kind = "Modification"
	Project      Kind = "Project"
)

// Kinds lists record kinds in report order.
var Kinds = []Kind{Modification, Project}

func (k Kind) Rank() int {
	if k == Modification {
		return 0
	}
	return 1
}

// YearRange is an inclusive range of calendar years.
type YearRange struct {
	Min int
	Max int
}

func (r YearRange) Contains(year int) bool { return year >= r.Min && year <= r.Max }

// Span is the number of years covered by the range.
func (r YearRange) Span() int {
	if r.Max < r.Min {
		return 0
	}
	return r.Max - r.Min + 1
}

// RawRow is one data row of the input file, keyed by header name.
// Index is 1-based and does not count the header or blank lines; Line is the
// physical line in the file where the row starts.
type RawRow struct {
	Index  int
	Line   int
	Fields map[string]string
}

// Get returns the raw value of column, or "" when absent.
func (r RawRow) Get(column string) string {
	if column == "" {
		return ""
	}
	return r.Fields[column]
}

// Dataset is the loaded input file.
type Dataset struct {
	Path   string
	Header []string
	Rows   []RawRow
}

// Record is a cleaned, classified modification row.
type Record struct {
	Row        int
	Line       int
	Identifier string
	Kind       Kind
	Year       int // 0 when YearResolved is false
	// YearResolved is false for projects with no usable date.
	YearResolved  bool
	Sequence      string // "nnnn" part of a modification number
	Plant         string // canonical plant name from the area table
	Area          Area
	Status        string
	Temporary     bool
	LinkedProject string // "" when the source held an N/A placeholder
}

// Reason identifies why a row was excluded from aggregation.
type Reason string

const (
	UnrecognizedIdentifierFormat Reason = "UnrecognizedIdentifierFormat"
	AmbiguousIdentifier          Reason = "AmbiguousIdentifier"
	UnknownPlant                 Reason = "UnknownPlant"
	YearOutOfRange               Reason = "YearOutOfRange"
	ExcludedStatus               Reason = "ExcludedStatus"
)

// Reasons lists every rejection reason in report order.
var Reasons = []Reason{
	UnrecognizedIdentifierFormat,
	AmbiguousIdentifier,
	UnknownPlant,
	YearOutOfRange,
	ExcludedStatus,
}

// Rejection is a row-level data-quality finding.
type Rejection struct {
	Row    int
	Line   int
	Reason Reason
	Field  string // source column holding the offending value
	Value  string
	Detail string
}

// Outcome carries exactly one of Record or Rejection.
type Outcome struct {
	Record    *Record
	Rejection *Rejection
}

func (o Outcome) Accepted() bool { return o.Record != nil }

// Classification is the result of cleaning a whole dataset.
type Classification struct {
	Accepted []Record
	Rejected []Rejection
}

func (c Classification) Total() int { return len(c.Accepted) + len(c.Rejected) }

// Summary reports how many rows made it through cleaning.
type Summary struct {
	TotalRows        int
	Accepted         int
	Rejected         int
	AcceptedByKind   map[Kind]int
	RejectedByReason map[Reason]int
}

// Artifact is a file produced by a report stage.
type Artifact struct {
	Name  string // human title, e.g. "Modifications over years"
	Path  string
	Kind  string // chart, pdf, xlsx, html, csv
	Group string // optional grouping, e.g. an area name
}

// Report is everything a single run produced.
type Report struct {
	InputPath   string
	OutputDir   string
	GeneratedAt time.Time
	Years       YearRange
	Summary     Summary
	Table       *Table
	Rejections  []Rejection
	Artifacts   []Artifact
}

// Charts returns the chart artifacts in render order.
func (r *Report) Charts() []Artifact {
	var out []Artifact
	for _, a := range r.Artifacts {
		if a.Kind == "chart" {
			out = append(out, a)
		}
	}
	return out
}

// ErrRunNotFound is returned when the archive holds no run with the requested id.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is an archived run as listed by the history command.
type RunSummary struct {
	ID          int64
	InputPath   string
	GeneratedAt time.Time
	TotalRows   int
	Accepted    int
	Rejected    int
}
