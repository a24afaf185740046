// Package types provides type definitions for structured data used throughout the profile generator.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// ContextField is one named variable of an assembled context
type ContextField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// MaxChars is the configured budget in characters; zero means unbounded.
	MaxChars      int  `json:"max_chars,omitempty"`
	OriginalChars int  `json:"original_chars"`
	Truncated     bool `json:"truncated,omitempty"`
	Tokens        int  `json:"tokens"`
}

// ContextMetadata records how the context was obtained
type ContextMetadata struct {
	DegradedOrgLookup   bool            `json:"degraded_org_lookup"`
	OrgMatchTier        string          `json:"org_match_tier"`
	OrgPath             string          `json:"org_path,omitempty"`
	PositionFound       bool            `json:"position_found"`
	KPIDepartmentKey    string          `json:"kpi_department_key,omitempty"`
	KPIMatchTier        string          `json:"kpi_match_tier"`
	KPIConfidence       MatchConfidence `json:"kpi_confidence,omitempty"`
	KPIRows             int             `json:"kpi_rows"`
	AmbiguousCandidates []string        `json:"ambiguous_candidates,omitempty"`
	// ITSystemsSection names the catalog section used, empty for the whole catalog.
	ITSystemsSection string   `json:"it_systems_section,omitempty"`
	TruncatedFields  []string `json:"truncated_fields,omitempty"`
}

// AssembledContext is the bounded variable set handed to profile generation
type AssembledContext struct {
	Fields       []ContextField  `json:"fields"`
	Metadata     ContextMetadata `json:"metadata"`
	SizeEstimate int             `json:"size_estimate"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// Get returns the value of a named field.
func (c *AssembledContext) Get(name string) (string, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Field returns a named field.
func (c *AssembledContext) Field(name string) (ContextField, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ContextField{}, false
}

// Vars flattens the context into a name -> value map for template substitution.
func (c *AssembledContext) Vars() map[string]string {
	vars := make(map[string]string, len(c.Fields))
	for _, f := range c.Fields {
		vars[f.Name] = f.Value
	}
	return vars
}

// Names lists the field names in declaration order.
func (c *AssembledContext) Names() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}
