// Package assembly combines org structure, KPI and static documents into the
// bounded variable set handed to job profile generation.
package assembly

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/config"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/kpi"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/logging"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/orgstructure"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/staticdocs"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/textmatch"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// DefaultCharsPerToken is the token estimation ratio used when none is configured
const DefaultCharsPerToken = 4.0

// DefaultOrgExcerptDepth limits how many levels below the unit org_structure shows
const DefaultOrgExcerptDepth = 3

// Placeholder texts for variables whose source could not be resolved
const (
	NoOrgData    = "Organization structure not available for this department."
	NotAvailable = "n/a"
)

var (
	// ErrEmptyInput is returned when department or position is blank
	ErrEmptyInput = errors.New("department and position are required")
	// ErrMissingDependency is returned by New when a collaborator is nil
	ErrMissingDependency = errors.New("assembler dependency is missing")
)

// Deps are the process-wide immutable collaborators of an Assembler
type Deps struct {
	Org      *orgstructure.Index
	KPI      *kpi.Store
	Mapper   *kpi.Mapper
	Resolver *kpi.Resolver
	Docs     *staticdocs.Library
}

// Options configures an Assembler; zero values take defaults
type Options struct {
	// Budgets maps a variable name to its maximum length in characters.
	// Nil selects the configured defaults; zero or missing means unbounded.
	Budgets       map[string]int
	CharsPerToken float64
	// OrgExcerptDepth limits org_structure; negative renders the whole subtree.
	OrgExcerptDepth int
	Clock           func() time.Time
	Logger          logrus.FieldLogger
}

// Assembler builds AssembledContext values. It holds no mutable state and is
// safe for concurrent use.
type Assembler struct {
	deps          Deps
	budgets       map[string]int
	charsPerToken float64
	excerptDepth  int
	clock         func() time.Time
	logger        logrus.FieldLogger
}

// New creates an assembler over deps.
func New(deps Deps, opts Options) (*Assembler, error) {
	switch {
	case deps.Org == nil:
		return nil, fmt.Errorf("%w: org index", ErrMissingDependency)
	case deps.KPI == nil:
		return nil, fmt.Errorf("%w: KPI store", ErrMissingDependency)
	case deps.Mapper == nil:
		return nil, fmt.Errorf("%w: KPI mapper", ErrMissingDependency)
	case deps.Resolver == nil:
		return nil, fmt.Errorf("%w: KPI resolver", ErrMissingDependency)
	case deps.Docs == nil:
		return nil, fmt.Errorf("%w: static documents", ErrMissingDependency)
	}

	a := &Assembler{
		deps:          deps,
		budgets:       make(map[string]int),
		charsPerToken: opts.CharsPerToken,
		excerptDepth:  opts.OrgExcerptDepth,
		clock:         opts.Clock,
		logger:        logging.Component(opts.Logger, "assembly"),
	}

	budgets := opts.Budgets
	if budgets == nil {
		budgets = config.Default().Budgets
	}
	for k, v := range budgets {
		a.budgets[k] = v
	}
	if a.charsPerToken <= 0 {
		a.charsPerToken = DefaultCharsPerToken
	}
	if a.excerptDepth == 0 {
		a.excerptDepth = DefaultOrgExcerptDepth
	}
	if a.clock == nil {
		a.clock = time.Now
	}
	return a, nil
}

// orgPart is the org-derived portion of a context
type orgPart struct {
	lookup   orgstructure.PositionLookup
	segments []string
	unit     *types.OrgNode
}

// KPIResult is the KPI-derived portion of a context
type KPIResult struct {
	Mapping    kpi.MapResult
	Resolution types.PositionResolution
	// UnitPath is the org path the resolver used to disambiguate titles.
	UnitPath []string
	// Text is the rendered KPI table, or kpi.NoKPIData.
	Text string
}

// ResolveKPI runs only the KPI half of Assemble.
func (a *Assembler) ResolveKPI(department, position, employeeName string) (KPIResult, error) {
	department = strings.TrimSpace(department)
	position = strings.TrimSpace(position)
	if department == "" || position == "" {
		return KPIResult{}, ErrEmptyInput
	}
	org := a.resolveOrg(department, position)
	return a.resolveKPI(department, position, strings.TrimSpace(employeeName), org), nil
}

// Assemble builds the context for a position. Lookup failures degrade to
// placeholders and metadata flags; only blank input is an error.
func (a *Assembler) Assemble(department, position, employeeName string) (*types.AssembledContext, error) {
	department = strings.TrimSpace(department)
	position = strings.TrimSpace(position)
	employeeName = strings.TrimSpace(employeeName)
	if department == "" || position == "" {
		return nil, ErrEmptyInput
	}

	now := a.clock().UTC()
	org := a.resolveOrg(department, position)
	kp := a.resolveKPI(department, position, employeeName, org)

	unitPath := department
	if org.unit != nil {
		unitPath = org.unit.FullPath()
	}
	itSystems, itSection := a.deps.Docs.ITSystemsFor(unitPath)

	headcount := a.deps.Org.ComputeHeadcount(org.unit)
	orgText := NoOrgData
	if org.unit != nil {
		orgText = a.deps.Org.Excerpt(org.unit, a.excerptDepth)
	}

	kpiEmployee := kp.Resolution.MatchedEmployee
	if kpiEmployee == "" {
		kpiEmployee = NotAvailable
	}

	values := map[string]string{
		FieldDepartment:          department,
		FieldPosition:            position,
		FieldEmployeeName:        employeeName,
		FieldBusinessBlock:       firstOr(org.segments, ""),
		FieldFullHierarchyPath:   strings.Join(org.segments, types.PathSeparator),
		FieldHierarchyDepth:      strconv.Itoa(len(org.segments)),
		FieldDirectReports:       strconv.Itoa(headcount.DirectReports),
		FieldSubordinateUnits:    strconv.Itoa(headcount.SubordinateDepartments),
		FieldTotalPositions:      strconv.Itoa(headcount.TotalPositions),
		FieldOrgStructure:        orgText,
		FieldKPIData:             kp.Text,
		FieldKPIEmployee:         kpiEmployee,
		FieldKPIMatchConfidence:  string(kp.Resolution.Confidence),
		FieldCompanyProfile:      a.deps.Docs.CompanyProfile(),
		FieldITSystems:           itSystems,
		FieldJSONSchema:          a.deps.Docs.SchemaText(),
		FieldGenerationTimestamp: now.Format(time.RFC3339),
	}
	for i, level := range hierarchyLevels(org.segments) {
		values[HierarchyLevelField(i+1)] = level
	}

	ctx := &types.AssembledContext{
		Metadata: types.ContextMetadata{
			DegradedOrgLookup:   !org.lookup.Department.Found,
			OrgMatchTier:        string(org.lookup.Department.Tier),
			OrgPath:             org.lookup.Path(),
			PositionFound:       org.lookup.PositionFound,
			KPIDepartmentKey:    kp.Mapping.Key,
			KPIMatchTier:        string(kp.Mapping.Tier),
			KPIConfidence:       kp.Resolution.Confidence,
			KPIRows:             len(kp.Resolution.FilteredRows),
			AmbiguousCandidates: kp.Resolution.AmbiguousCandidates,
			ITSystemsSection:    itSection,
		},
	}

	for _, name := range FieldNames() {
		if name == FieldEstimatedTokens {
			continue
		}
		field := a.field(name, values[name])
		if field.Truncated {
			ctx.Metadata.TruncatedFields = append(ctx.Metadata.TruncatedFields, name)
		}
		ctx.SizeEstimate += field.Tokens
		ctx.Fields = append(ctx.Fields, field)
	}
	estimate := strconv.Itoa(ctx.SizeEstimate)
	ctx.Fields = append(ctx.Fields, types.ContextField{
		Name:          FieldEstimatedTokens,
		Value:         estimate,
		OriginalChars: len(estimate),
	})
	ctx.GeneratedAt = now

	a.logger.WithFields(logrus.Fields{
		"department":     department,
		"position":       position,
		"org_tier":       ctx.Metadata.OrgMatchTier,
		"degraded":       ctx.Metadata.DegradedOrgLookup,
		"kpi_key":        ctx.Metadata.KPIDepartmentKey,
		"kpi_confidence": ctx.Metadata.KPIConfidence,
		"it_section":     ctx.Metadata.ITSystemsSection,
		"size_estimate":  ctx.SizeEstimate,
		"truncated":      ctx.Metadata.TruncatedFields,
	}).Info("Context assembled")
	return ctx, nil
}

// field applies the budget of name to value and estimates its tokens.
func (a *Assembler) field(name, value string) types.ContextField {
	limit := a.budgets[name]
	f := types.ContextField{
		Name:          name,
		MaxChars:      limit,
		OriginalChars: len([]rune(value)),
	}
	f.Value, f.Truncated = Truncate(value, limit)
	if f.Truncated {
		a.logger.WithFields(logrus.Fields{
			"field":    name,
			"original": f.OriginalChars,
			"budget":   limit,
			"kept":     len([]rune(f.Value)),
		}).Warn("Context field exceeds its budget, truncated")
	}
	f.Tokens = EstimateTokens(f.Value, a.charsPerToken)
	return f
}

// resolveOrg finds the unit of the position. On a department miss the
// department input itself, split on '/', stands in for the hierarchy.
func (a *Assembler) resolveOrg(department, position string) orgPart {
	lookup := a.deps.Org.FindPosition(department, position)
	part := orgPart{lookup: lookup, unit: lookup.Node}
	if lookup.Department.Found && lookup.Node != nil {
		part.segments = lookup.Node.PathSegments()
		return part
	}
	part.unit = nil
	part.segments = textmatch.SplitPath(department)
	return part
}

// resolveKPI maps the department to a KPI document, trying the raw input
// before the resolved org path, and resolves the position column.
func (a *Assembler) resolveKPI(department, position, employeeName string, org orgPart) KPIResult {
	mapping := a.deps.Mapper.FindKPIFile(department)
	if !mapping.Found() && org.lookup.Department.Found {
		if byPath := a.deps.Mapper.FindKPIFile(org.lookup.Department.Path()); byPath.Found() {
			mapping = byPath
		}
	}

	var doc *types.KpiDocument
	if mapping.Found() {
		if d, ok := a.deps.KPI.Document(mapping.Key); ok {
			doc = d
		}
	}

	out := KPIResult{Mapping: mapping, UnitPath: org.segments, Text: kpi.NoKPIData}
	out.Resolution = a.deps.Resolver.Resolve(doc, position, org.segments, employeeName)
	if !doc.Empty() {
		out.Text = kpi.RenderMarkdown(doc, out.Resolution)
	}
	return out
}

// hierarchyLevels spreads segments over the fixed level variables. Missing
// levels are empty; extra levels are joined into the last one.
func hierarchyLevels(segments []string) []string {
	levels := make([]string, HierarchyLevels)
	for i, s := range segments {
		if i < HierarchyLevels-1 {
			levels[i] = s
			continue
		}
		levels[HierarchyLevels-1] = strings.Join(segments[HierarchyLevels-1:], types.PathSeparator)
		break
	}
	return levels
}

func firstOr(s []string, def string) string {
	if len(s) == 0 {
		return def
	}
	return s[0]
}
