// Package config loads the report configuration: the plant roster, the valid
// year range, identifier patterns and input column names. Values come from the
// embedded defaults, an optional YAML file and MODREPORT_* environment variables,
// in that order.
package config

import (
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/csg33k/modreport/internal/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const (
	EnvPrefix         = "MODREPORT"
	DefaultConfigFile = "modreport.yaml"
)

type Config struct {
	AreaPlantTable             map[string]string    `yaml:"area_plant_table" validate:"required,min=1,dive,keys,required,endkeys,required"`
	ValidYearRange             YearRange            `yaml:"valid_year_range"`
	IdentifierPatterns         IdentifierPatterns   `yaml:"identifier_patterns"`
	Delimiter                  string               `yaml:"delimiter" validate:"len=1"`
	Columns                    Columns              `yaml:"columns"`
	ExcludedStatuses           []string             `yaml:"excluded_statuses"`
	ProjectPlaceholders        []string             `yaml:"project_placeholders"`
	ProjectPlaceholderPatterns []PlaceholderPattern `yaml:"project_placeholder_patterns" validate:"dive"`
	DateLayouts                []string             `yaml:"date_layouts" validate:"dive,required"`
	ProjectThreshold           int                  `yaml:"project_threshold" validate:"gte=0"`
	HighlightPlants            []string             `yaml:"highlight_plants"`
	Chart                      Chart                `yaml:"chart"`
	LogLevel                   string               `yaml:"log_level" validate:"oneof=debug info warn error"`
	ArchiveDB                  string               `yaml:"archive_db"`
}

type YearRange struct {
	Min int `yaml:"min" validate:"gte=1900,lte=2100"`
	Max int `yaml:"max" validate:"gtefield=Min,lte=2100"`
}

type IdentifierPatterns struct {
	// Modification must define a named group "year"; "seq" is optional.
	Modification string `yaml:"modification_regex" validate:"required"`
	Project      string `yaml:"project_regex" validate:"required"`
}

// UnmarshalYAML also accepts the short keys "modification" and "project";
// the *_regex keys win when both are given. Keys left out keep their value.
func (p *IdentifierPatterns) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		Modification      string `yaml:"modification_regex"`
		Project           string `yaml:"project_regex"`
		ShortModification string `yaml:"modification"`
		ShortProject      string `yaml:"project"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	if v := cmp.Or(raw.Modification, raw.ShortModification); v != "" {
		p.Modification = v
	}
	if v := cmp.Or(raw.Project, raw.ShortProject); v != "" {
		p.Project = v
	}
	return nil
}

// Columns names the input header fields. Every non-empty name, plus Other,
// forms the exact header the loader expects.
type Columns struct {
	Identifier string   `yaml:"identifier" validate:"required"`
	Plant      string   `yaml:"plant" validate:"required"`
	Status     string   `yaml:"status"`
	Temporary  string   `yaml:"temporary"`
	Project    string   `yaml:"project"`
	Date       string   `yaml:"date"`
	Other      []string `yaml:"other" validate:"dive,required"`
}

// Expected returns the header the input file must carry, in declaration order.
func (c Columns) Expected() []string {
	var out []string
	for _, name := range []string{c.Identifier, c.Plant, c.Status, c.Temporary, c.Project, c.Date} {
		if name != "" {
			out = append(out, name)
		}
	}
	return append(out, c.Other...)
}

type PlaceholderPattern struct {
	Pattern string `yaml:"pattern" validate:"required"`
	// MaxLen limits the match to values of at most this many characters; 0 means no limit.
	MaxLen int `yaml:"max_len" validate:"gte=0"`
}

type Chart struct {
	WidthCM  float64 `yaml:"width_cm" validate:"gt=0"`
	HeightCM float64 `yaml:"height_cm" validate:"gt=0"`
}

// env holds the overrides read from MODREPORT_* variables.
type env struct {
	Config           string `envconfig:"CONFIG"`
	YearMin          int    `envconfig:"YEAR_MIN"`
	YearMax          int    `envconfig:"YEAR_MAX"`
	Delimiter        string `envconfig:"DELIMITER"`
	LogLevel         string `envconfig:"LOG_LEVEL"`
	ArchiveDB        string `envconfig:"ARCHIVE_DB"`
	ProjectThreshold string `envconfig:"PROJECT_THRESHOLD"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load builds the effective configuration from defaults, the YAML file named by
// MODREPORT_CONFIG (or ./modreport.yaml when present) and MODREPORT_* variables.
func Load() (*Config, error) {
	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	path := e.Config
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.merge(data); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(e); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromYAML parses data on top of the defaults and validates the result.
func FromYAML(data []byte) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if err := cfg.merge(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge decodes data over cfg. A plant table in data replaces the current one
// instead of being merged into it.
func (c *Config) merge(data []byte) error {
	var head struct {
		Table map[string]string `yaml:"area_plant_table"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Table != nil {
		c.AreaPlantTable = nil
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv(e env) error {
	if e.YearMin != 0 {
		c.ValidYearRange.Min = e.YearMin
	}
	if e.YearMax != 0 {
		c.ValidYearRange.Max = e.YearMax
	}
	if e.Delimiter != "" {
		c.Delimiter = e.Delimiter
	}
	if e.LogLevel != "" {
		c.LogLevel = strings.ToLower(e.LogLevel)
	}
	if e.ArchiveDB != "" {
		c.ArchiveDB = e.ArchiveDB
	}
	if e.ProjectThreshold != "" {
		n, err := strconv.Atoi(e.ProjectThreshold)
		if err != nil {
			return fmt.Errorf("%s_PROJECT_THRESHOLD: %w", EnvPrefix, err)
		}
		c.ProjectThreshold = n
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints, then compiles the rules to catch bad
// patterns and plant tables before any data is read.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Rules(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Years returns the valid year range as a domain value.
func (c *Config) Years() domain.YearRange {
	return domain.YearRange{Min: c.ValidYearRange.Min, Max: c.ValidYearRange.Max}
}
