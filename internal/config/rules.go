package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/csg33k/modreport/internal/domain"
)

// Plant is a canonical plant name and the area it belongs to.
type Plant struct {
	Name string
	Area domain.Area
}

// Placeholder is a compiled project placeholder pattern.
type Placeholder struct {
	Re     *regexp.Regexp
	MaxLen int
}

// Matches reports whether v is a placeholder under this pattern.
func (p Placeholder) Matches(v string) bool {
	if p.MaxLen > 0 && len([]rune(v)) > p.MaxLen {
		return false
	}
	return p.Re.MatchString(v)
}

// Rules is the compiled, immutable form of the cleaning configuration handed
// to the classifier.
type Rules struct {
	// Plants is keyed by the upper-cased plant name.
	Plants              map[string]Plant
	Years               domain.YearRange
	Modification        *regexp.Regexp
	Project             *regexp.Regexp
	Columns             Columns
	ExcludedStatuses    []string
	Placeholders        []string
	PlaceholderPatterns []Placeholder
	DateLayouts         []string
}

// Rules compiles the configuration.
func (c *Config) Rules() (*Rules, error) {
	r := &Rules{
		Plants:           make(map[string]Plant, len(c.AreaPlantTable)),
		Years:            c.Years(),
		Columns:          c.Columns,
		ExcludedStatuses: c.ExcludedStatuses,
		Placeholders:     c.ProjectPlaceholders,
		DateLayouts:      c.DateLayouts,
	}

	// sorted so duplicate errors are reported deterministically
	names := make([]string, 0, len(c.AreaPlantTable))
	for name := range c.AreaPlantTable {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		canonical := strings.TrimSpace(name)
		area, ok := domain.ParseArea(c.AreaPlantTable[name])
		if !ok {
			return nil, fmt.Errorf("plant %q: unknown area %q", name, c.AreaPlantTable[name])
		}
		key := PlantKey(canonical)
		if prev, dup := r.Plants[key]; dup {
			return nil, fmt.Errorf("plant %q listed twice (also as %q)", name, prev.Name)
		}
		r.Plants[key] = Plant{Name: canonical, Area: area}
	}

	var err error
	if r.Modification, err = regexp.Compile(c.IdentifierPatterns.Modification); err != nil {
		return nil, fmt.Errorf("modification pattern: %w", err)
	}
	if r.Modification.SubexpIndex("year") < 0 {
		return nil, fmt.Errorf("modification pattern %q has no (?P<year>...) group", c.IdentifierPatterns.Modification)
	}
	if r.Project, err = regexp.Compile(c.IdentifierPatterns.Project); err != nil {
		return nil, fmt.Errorf("project pattern: %w", err)
	}
	for _, p := range c.ProjectPlaceholderPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("placeholder pattern: %w", err)
		}
		r.PlaceholderPatterns = append(r.PlaceholderPatterns, Placeholder{Re: re, MaxLen: p.MaxLen})
	}
	return r, nil
}

// PlantKey is the lookup key for a plant name.
func PlantKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
