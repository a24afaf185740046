// Package config provides configuration loading and validation for the profile generator.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/caarlos0/env/v11"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PROFILEGEN_"

// Config is the full configuration. Every field has a default (see Default);
// values from a JSON file replace defaults, environment variables replace both.
type Config struct {
	Paths             Paths          `json:"paths"`
	Matching          Matching       `json:"matching"`
	KPI               KPI            `json:"kpi"`
	Budgets           map[string]int `json:"budgets,omitempty" env:"BUDGETS" validate:"dive,gte=0"`
	Tokens            Tokens         `json:"tokens"`
	DepartmentAliases []Alias        `json:"department_aliases,omitempty" env:"-" validate:"dive"`
	Log               Log            `json:"log"`
	LLM               LLM            `json:"llm"`
}

// Paths locates the static source documents
type Paths struct {
	OrgStructure   string `json:"org_structure,omitempty" env:"ORG_STRUCTURE" validate:"required"`
	KPIDir         string `json:"kpi_dir,omitempty" env:"KPI_DIR" validate:"required"`
	CompanyProfile string `json:"company_profile,omitempty" env:"COMPANY_PROFILE" validate:"required"`
	ITSystems      string `json:"it_systems,omitempty" env:"IT_SYSTEMS" validate:"required"`
	ProfileSchema  string `json:"profile_schema,omitempty" env:"PROFILE_SCHEMA" validate:"required"`
}

// Matching holds the similarity thresholds of every fuzzy lookup
type Matching struct {
	OrgThreshold        float64 `json:"org_threshold,omitempty" env:"ORG_THRESHOLD" validate:"gte=0,lte=1"`
	DepartmentThreshold float64 `json:"department_threshold,omitempty" env:"DEPARTMENT_THRESHOLD" validate:"gte=0,lte=1"`
	PositionThreshold   float64 `json:"position_threshold,omitempty" env:"POSITION_THRESHOLD" validate:"gte=0,lte=1"`
	UnitThreshold       float64 `json:"unit_threshold,omitempty" env:"UNIT_THRESHOLD" validate:"gte=0,lte=1"`
}

// KPI controls KPI parsing and the unresolved-position fallback
type KPI struct {
	CorporateKeywords []string `json:"corporate_keywords,omitempty" env:"KPI_CORPORATE_KEYWORDS" envSeparator:","`
	PersonalKeywords  []string `json:"personal_keywords,omitempty" env:"KPI_PERSONAL_KEYWORDS" envSeparator:","`
	UnresolvedPolicy  string   `json:"unresolved_policy,omitempty" env:"KPI_UNRESOLVED_POLICY" validate:"oneof=corporate_only empty"`
	DisableCache      bool     `json:"disable_cache,omitempty" env:"KPI_DISABLE_CACHE"`
}

// Tokens configures token estimation
type Tokens struct {
	CharsPerToken float64 `json:"chars_per_token,omitempty" env:"CHARS_PER_TOKEN" validate:"gt=0"`
}

// Log configures the logger
type Log struct {
	Level  string `json:"level,omitempty" env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	Format string `json:"format,omitempty" env:"LOG_FORMAT" validate:"oneof=text json"`
}

// LLM configures the generation collaborator
type LLM struct {
	APIKey           string `json:"api_key,omitempty" env:"API_KEY"`
	Tier             string `json:"tier,omitempty" env:"LLM_TIER" validate:"oneof=lite standard advanced"`
	BatchConcurrency int    `json:"batch_concurrency,omitempty" env:"BATCH_CONCURRENCY" validate:"gte=1,lte=32"`
}

// Alias maps department names matching Pattern to a KPI department key
type Alias struct {
	Pattern    string `json:"pattern" validate:"required"`
	Department string `json:"department" validate:"required"`
}

// UnresolvedPolicy returns the KPI fallback policy as a typed value.
func (c *Config) UnresolvedPolicy() types.UnresolvedPolicy {
	return types.UnresolvedPolicy(c.KPI.UnresolvedPolicy)
}

// Load builds the effective configuration: defaults, then the JSON file at
// path (when path is not empty), then environment overrides. The result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides cfg with PROFILEGEN_* variables. GEMINI_API_KEY is
// honoured when no prefixed key is set.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	for i, alias := range c.DepartmentAliases {
		if _, err := regexp.Compile(alias.Pattern); err != nil {
			return fmt.Errorf("config error: 'department_aliases[%d].pattern' is not a valid regular expression: %w", i, err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// Paths
	if result.Paths.OrgStructure == "" {
		result.Paths.OrgStructure = defaults.Paths.OrgStructure
	}
	if result.Paths.KPIDir == "" {
		result.Paths.KPIDir = defaults.Paths.KPIDir
	}
	if result.Paths.CompanyProfile == "" {
		result.Paths.CompanyProfile = defaults.Paths.CompanyProfile
	}
	if result.Paths.ITSystems == "" {
		result.Paths.ITSystems = defaults.Paths.ITSystems
	}
	if result.Paths.ProfileSchema == "" {
		result.Paths.ProfileSchema = defaults.Paths.ProfileSchema
	}

	// Thresholds: zero means "not set"
	if result.Matching.OrgThreshold == 0 {
		result.Matching.OrgThreshold = defaults.Matching.OrgThreshold
	}
	if result.Matching.DepartmentThreshold == 0 {
		result.Matching.DepartmentThreshold = defaults.Matching.DepartmentThreshold
	}
	if result.Matching.PositionThreshold == 0 {
		result.Matching.PositionThreshold = defaults.Matching.PositionThreshold
	}
	if result.Matching.UnitThreshold == 0 {
		result.Matching.UnitThreshold = defaults.Matching.UnitThreshold
	}

	// KPI
	if len(result.KPI.CorporateKeywords) == 0 {
		result.KPI.CorporateKeywords = append([]string(nil), defaults.KPI.CorporateKeywords...)
	}
	if len(result.KPI.PersonalKeywords) == 0 {
		result.KPI.PersonalKeywords = append([]string(nil), defaults.KPI.PersonalKeywords...)
	}
	if result.KPI.UnresolvedPolicy == "" {
		result.KPI.UnresolvedPolicy = defaults.KPI.UnresolvedPolicy
	}

	// Budgets: keys missing from the file keep their default
	budgets := make(map[string]int, len(defaults.Budgets)+len(result.Budgets))
	for k, v := range defaults.Budgets {
		budgets[k] = v
	}
	for k, v := range result.Budgets {
		budgets[k] = v
	}
	result.Budgets = budgets

	if result.Tokens.CharsPerToken == 0 {
		result.Tokens.CharsPerToken = defaults.Tokens.CharsPerToken
	}

	if result.DepartmentAliases == nil {
		result.DepartmentAliases = append([]Alias(nil), defaults.DepartmentAliases...)
	}

	if result.Log.Level == "" {
		result.Log.Level = defaults.Log.Level
	}
	if result.Log.Format == "" {
		result.Log.Format = defaults.Log.Format
	}

	if result.LLM.APIKey == "" {
		result.LLM.APIKey = defaults.LLM.APIKey
	}
	if result.LLM.Tier == "" {
		result.LLM.Tier = defaults.LLM.Tier
	}
	if result.LLM.BatchConcurrency == 0 {
		result.LLM.BatchConcurrency = defaults.LLM.BatchConcurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}
