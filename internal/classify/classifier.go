// Package classify cleans raw dataset rows and sorts them into genuine
// modifications and projects. Every row yields exactly one outcome: a
// classified record or a rejection explaining which field failed and why.
// Rejections are data-quality findings and never abort a run.
package classify

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/csg33k/modreport/internal/config"
	"github.com/csg33k/modreport/internal/domain"
)

type Classifier struct {
	rules *config.Rules
}

func New(rules *config.Rules) *Classifier {
	return &Classifier{rules: rules}
}

// ClassifyAll classifies every row, keeping input order in both lists.
func (c *Classifier) ClassifyAll(rows []domain.RawRow) domain.Classification {
	var out domain.Classification
	for _, row := range rows {
		o := c.Classify(row)
		if o.Accepted() {
			out.Accepted = append(out.Accepted, *o.Record)
		} else {
			out.Rejected = append(out.Rejected, *o.Rejection)
		}
	}
	return out
}

// Classify cleans one row. Checks run in a fixed order and the first failure
// wins: status, identifier shape, plant, year range.
func (c *Classifier) Classify(row domain.RawRow) domain.Outcome {
	cols := c.rules.Columns
	id := Normalize(row.Get(cols.Identifier))
	plant := Normalize(row.Get(cols.Plant))
	status := Normalize(row.Get(cols.Status))

	if c.excluded(status) {
		return reject(row, domain.ExcludedStatus, cols.Status, status, "status excluded from analysis")
	}

	rec := &domain.Record{
		Row:        row.Index,
		Line:       row.Line,
		Identifier: id,
		Status:     status,
	}

	isMod := c.rules.Modification.MatchString(id)
	isProject := c.rules.Project.MatchString(id)
	switch {
	case isMod && isProject:
		return reject(row, domain.AmbiguousIdentifier, cols.Identifier, id, "matches both modification and project patterns")
	case isMod:
		m := c.rules.Modification.FindStringSubmatch(id)
		year, ok := atoi(m[c.rules.Modification.SubexpIndex("year")])
		if !ok {
			return reject(row, domain.UnrecognizedIdentifierFormat, cols.Identifier, id, "year group is not numeric")
		}
		rec.Kind = domain.Modification
		rec.Year = year
		rec.YearResolved = true
		if i := c.rules.Modification.SubexpIndex("seq"); i >= 0 {
			rec.Sequence = m[i]
		}
	case isProject:
		rec.Kind = domain.Project
		rec.Year, rec.YearResolved = c.dateYear(Normalize(row.Get(cols.Date)))
	default:
		detail := "neither a modification number nor a project code"
		if id == "" {
			detail = "identifier is empty"
		}
		return reject(row, domain.UnrecognizedIdentifierFormat, cols.Identifier, id, detail)
	}

	p, ok := c.rules.Plants[config.PlantKey(plant)]
	if !ok {
		return reject(row, domain.UnknownPlant, cols.Plant, plant, "plant not in the area table")
	}
	rec.Plant = p.Name
	rec.Area = p.Area

	if rec.Kind == domain.Modification && !c.rules.Years.Contains(rec.Year) {
		return reject(row, domain.YearOutOfRange, cols.Identifier, id, yearDetail(c.rules.Years))
	}

	rec.LinkedProject = c.linkedProject(Normalize(row.Get(cols.Project)), id)
	rec.Temporary = parseFlag(Normalize(row.Get(cols.Temporary)))
	return domain.Outcome{Record: rec}
}

func (c *Classifier) excluded(status string) bool {
	for _, s := range c.rules.ExcludedStatuses {
		if status != "" && strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

// dateYear extracts the year of a date cell using the configured layouts.
func (c *Classifier) dateYear(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	for _, layout := range c.rules.DateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}

// linkedProject returns the cleaned project reference of a row, or "" when the
// cell only holds a placeholder or repeats the row's own identifier.
func (c *Classifier) linkedProject(v, id string) string {
	if v == id {
		return ""
	}
	for _, p := range c.rules.Placeholders {
		if v == p {
			return ""
		}
	}
	for _, p := range c.rules.PlaceholderPatterns {
		if p.Matches(v) {
			return ""
		}
	}
	return v
}

// Normalize canonicalizes a raw cell: NFC, any Unicode space (including NBSP)
// becomes a plain space, runs collapse, ends are trimmed.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\uFEFF' || r == '\u200B':
			return -1
		case unicode.IsSpace(r):
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func parseFlag(v string) bool {
	switch strings.ToLower(v) {
	case "y", "yes", "true", "1", "x", "temporary", "temp":
		return true
	}
	return false
}

func reject(row domain.RawRow, reason domain.Reason, field, value, detail string) domain.Outcome {
	return domain.Outcome{Rejection: &domain.Rejection{
		Row:    row.Index,
		Line:   row.Line,
		Reason: reason,
		Field:  field,
		Value:  value,
		Detail: detail,
	}}
}

func yearDetail(r domain.YearRange) string {
	return "year outside " + itoa(r.Min) + "-" + itoa(r.Max)
}
