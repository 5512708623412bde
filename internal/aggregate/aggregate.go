// Package aggregate groups classified records and derives the per-year,
// per-area and per-plant views the reports are drawn from. All outputs are
// sorted, so the same records in any order give the same table.
package aggregate

import (
	"sort"

	"github.com/csg33k/modreport/internal/domain"
)

// Aggregate groups records by (area, plant, year, kind) and derives plant
// rates, linked-project tallies and the temporary/permanent split. years is
// the valid range, used as the denominator of the per-year rates.
func Aggregate(records []domain.Record, years domain.YearRange) *domain.Table {
	counts := make(map[domain.GroupKey]int)
	plants := make(map[plantKey]*domain.PlantRate)
	projects := make(map[string]int)
	temporary := make(map[int]*domain.TemporarySplit)

	for _, r := range records {
		counts[domain.GroupKey{Area: r.Area, Plant: r.Plant, Year: r.Year, Kind: r.Kind}]++

		pk := plantKey{area: r.Area, plant: r.Plant}
		pr, ok := plants[pk]
		if !ok {
			pr = &domain.PlantRate{Area: r.Area, Plant: r.Plant}
			plants[pk] = pr
		}

		if r.Kind == domain.Project {
			pr.Projects++
			continue
		}
		pr.Modifications++
		if r.LinkedProject != "" {
			projects[r.LinkedProject]++
		}
		ts, ok := temporary[r.Year]
		if !ok {
			ts = &domain.TemporarySplit{Year: r.Year}
			temporary[r.Year] = ts
		}
		if r.Temporary {
			ts.Temporary++
		} else {
			ts.Permanent++
		}
	}

	t := &domain.Table{Years: years}

	for k, n := range counts {
		t.Groups = append(t.Groups, domain.Group{GroupKey: k, Count: n})
	}
	sort.Slice(t.Groups, func(i, j int) bool { return lessKey(t.Groups[i].GroupKey, t.Groups[j].GroupKey) })

	for _, pr := range plants {
		if span := years.Span(); span > 0 {
			pr.ModsPerYear = float64(pr.Modifications) / float64(span)
		}
		if total := pr.Modifications + pr.Projects; total > 0 {
			pr.ProjectShare = float64(pr.Projects) / float64(total)
		}
		t.Plants = append(t.Plants, *pr)
	}
	sort.Slice(t.Plants, func(i, j int) bool {
		a, b := t.Plants[i], t.Plants[j]
		if a.Area != b.Area {
			return a.Area.Rank() < b.Area.Rank()
		}
		return a.Plant < b.Plant
	})

	for code, n := range projects {
		t.Projects = append(t.Projects, domain.ProjectTally{Project: code, Modifications: n})
	}
	sort.Slice(t.Projects, func(i, j int) bool {
		a, b := t.Projects[i], t.Projects[j]
		if a.Modifications != b.Modifications {
			return a.Modifications > b.Modifications
		}
		return a.Project < b.Project
	})

	for _, ts := range temporary {
		t.Temporary = append(t.Temporary, *ts)
	}
	sort.Slice(t.Temporary, func(i, j int) bool { return t.Temporary[i].Year < t.Temporary[j].Year })

	return t
}

// Summarize counts accepted and rejected rows of a classification.
func Summarize(c domain.Classification) domain.Summary {
	s := domain.Summary{
		TotalRows:        c.Total(),
		Accepted:         len(c.Accepted),
		Rejected:         len(c.Rejected),
		AcceptedByKind:   make(map[domain.Kind]int),
		RejectedByReason: make(map[domain.Reason]int),
	}
	for _, r := range c.Accepted {
		s.AcceptedByKind[r.Kind]++
	}
	for _, r := range c.Rejected {
		s.RejectedByReason[r.Reason]++
	}
	return s
}

type plantKey struct {
	area  domain.Area
	plant string
}

func lessKey(a, b domain.GroupKey) bool {
	if a.Area != b.Area {
		return a.Area.Rank() < b.Area.Rank()
	}
	if a.Plant != b.Plant {
		return a.Plant < b.Plant
	}
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Kind.Rank() < b.Kind.Rank()
}
