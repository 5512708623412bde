package domain

// GroupKey identifies one aggregation bucket.
type GroupKey struct {
	Area  Area
	Plant string
	Year  int // 0 for projects without a resolved year
	Kind  Kind
}

// Group is the number of accepted records sharing a GroupKey.
type Group struct {
	GroupKey
	Count int
}

// PlantRate holds per-plant totals and derived rates.
type PlantRate struct {
	Area          Area
	Plant         string
	Modifications int
	Projects      int
	// ModsPerYear averages modifications over every year of the valid range.
	ModsPerYear float64
	// ProjectShare is Projects / (Modifications + Projects), 0 for an empty plant.
	ProjectShare float64
}

// ProjectTally counts modifications booked against one linked project.
type ProjectTally struct {
	Project       string
	Modifications int
}

// TemporarySplit counts temporary and permanent modifications of a year.
type TemporarySplit struct {
	Year      int
	Temporary int
	Permanent int
}

// Table is the aggregated view of a classified dataset.
type Table struct {
	Years     YearRange
	Groups    []Group
	Plants    []PlantRate
	Projects  []ProjectTally
	Temporary []TemporarySplit
}
