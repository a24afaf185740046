// Package types provides type definitions for structured data used throughout the profile generator.
//
//nolint:revive // types is a standard Go package name pattern
package types

// KpiKind tells whether a KPI row applies to everyone or is weighted per employee
type KpiKind string

// KPI kinds
const (
	KpiCorporate KpiKind = "corporate"
	KpiPersonal  KpiKind = "personal"
)

// KpiRow is a single KPI line of a department table
type KpiRow struct {
	Name        string             `json:"kpi_name"`
	Target      string             `json:"target_value"`
	Unit        string             `json:"unit"`
	Weights     map[string]float64 `json:"weights"`
	Kind        KpiKind            `json:"kind"`
	Methodology string             `json:"methodology,omitempty"`
	Section     string             `json:"section,omitempty"`
}

// WeightFor returns the weight of the row for an employee column.
// Absent columns weigh zero.
func (r KpiRow) WeightFor(employee string) float64 {
	if r.Weights == nil {
		return 0
	}
	return r.Weights[employee]
}

// Holder is one of several people sharing an ambiguous position title
type Holder struct {
	Employee string `json:"employee" yaml:"employee"`
	Hint     string `json:"unit,omitempty" yaml:"unit"`
}

// PositionEntryKind discriminates PositionEntry variants
type PositionEntryKind int

// PositionEntry variants
const (
	EntrySingle PositionEntryKind = iota
	EntryAmbiguous
)

// PositionEntry maps a position title to the employee column(s) holding it.
// It is either Single (one employee) or Ambiguous (several holders, each with
// a disambiguation hint); use Kind to branch.
type PositionEntry struct {
	kind     PositionEntryKind
	employee string
	holders  []Holder
}

// Single builds an entry held by exactly one employee.
func Single(employee string) PositionEntry {
	return PositionEntry{kind: EntrySingle, employee: employee}
}

// Ambiguous builds an entry shared by several holders. A single holder
// collapses to Single.
func Ambiguous(holders []Holder) PositionEntry {
	if len(holders) == 1 {
		return Single(holders[0].Employee)
	}
	copied := make([]Holder, len(holders))
	copy(copied, holders)
	return PositionEntry{kind: EntryAmbiguous, holders: copied}
}

// Kind returns the variant of the entry.
func (e PositionEntry) Kind() PositionEntryKind {
	return e.kind
}

// Employee returns the employee of a Single entry; empty for Ambiguous.
func (e PositionEntry) Employee() string {
	return e.employee
}

// Holders returns every holder of the entry. A Single entry yields one holder
// without a hint.
func (e PositionEntry) Holders() []Holder {
	if e.kind == EntrySingle {
		return []Holder{{Employee: e.employee}}
	}
	out := make([]Holder, len(e.holders))
	copy(out, e.holders)
	return out
}

// Employees lists the employee names of the entry in source order.
func (e PositionEntry) Employees() []string {
	holders := e.Holders()
	names := make([]string, len(holders))
	for i, h := range holders {
		names[i] = h.Employee
	}
	return names
}

// KpiDocument is one department's parsed KPI source
type KpiDocument struct {
	DepartmentKey string                   `json:"department_key"`
	Title         string                   `json:"title,omitempty"`
	Source        string                   `json:"source,omitempty"`
	PositionsMap  map[string]PositionEntry `json:"-"`
	PositionOrder []string                 `json:"positions"`
	Rows          []KpiRow                 `json:"rows"`
	Warnings      []string                 `json:"warnings,omitempty"`
}

// Empty reports whether the document carries no KPI rows.
func (d *KpiDocument) Empty() bool {
	return d == nil || len(d.Rows) == 0
}

// MatchConfidence describes how a position was resolved to an employee column
type MatchConfidence string

// Match confidences
const (
	MatchExact             MatchConfidence = "exact"
	MatchFuzzy             MatchConfidence = "fuzzy"
	MatchUnitDisambiguated MatchConfidence = "unit-disambiguated"
	MatchUnresolved        MatchConfidence = "unresolved"
)

// UnresolvedPolicy selects the rows returned when a position cannot be resolved
type UnresolvedPolicy string

// Unresolved policies
const (
	PolicyCorporateOnly UnresolvedPolicy = "corporate_only"
	PolicyEmpty         UnresolvedPolicy = "empty"
)

// PositionResolution is the outcome of resolving a position against a KPI document
type PositionResolution struct {
	Position            string          `json:"position"`
	MatchedTitle        string          `json:"matched_title,omitempty"`
	MatchedEmployee     string          `json:"matched_employee,omitempty"`
	Confidence          MatchConfidence `json:"match_confidence"`
	FilteredRows        []KpiRow        `json:"filtered_rows"`
	AmbiguousCandidates []string        `json:"ambiguous_candidates,omitempty"`
	// Fallback is the policy applied when Confidence is unresolved.
	Fallback UnresolvedPolicy `json:"fallback,omitempty"`
	// MatchedHint is the holder hint that disambiguated the title, if any.
	MatchedHint      string `json:"matched_hint,omitempty"`
	EmployeeHintUsed bool   `json:"employee_hint_used,omitempty"`
}

// Resolved reports whether an employee column was selected.
func (r *PositionResolution) Resolved() bool {
	return r.Confidence != MatchUnresolved && r.MatchedEmployee != ""
}
