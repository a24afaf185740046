// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/generation"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/kpi"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/orgstructure"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/schemas"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// shorten cuts s to limit runes, marking the cut with "...".
func shorten(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes up to limit items with an "... and N more" tail.
func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintOrgLookup outputs where a department and position resolved in the org
// structure, with the unit headcount.
func (p *Printer) PrintOrgLookup(lookup orgstructure.PositionLookup, headcount types.Headcount) {
	var sb strings.Builder
	dept := lookup.Department

	sb.WriteString(fmt.Sprintf("Query:     %s\n", dept.Query))
	if !dept.Found {
		sb.WriteString("Result:    not found\n")
		if len(dept.Suggestions) > 0 {
			sb.WriteString("\nDid you mean:\n")
			writeList(&sb, dept.Suggestions, maxItemsToShow)
		}
		p.printBox("ORG LOOKUP", strings.TrimSuffix(sb.String(), "\n"))
		return
	}

	sb.WriteString(fmt.Sprintf("Match:     %s (%.2f)\n", dept.Tier, dept.Score))
	sb.WriteString(fmt.Sprintf("Path:      %s\n", dept.Path()))
	if lookup.PositionFound {
		sb.WriteString(fmt.Sprintf("Position:  %s in %s (%s)\n", lookup.Position.Title, lookup.Node.Name, lookup.Tier))
	} else {
		sb.WriteString("Position:  not listed in this unit\n")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Direct reports:     %d\n", headcount.DirectReports))
	sb.WriteString(fmt.Sprintf("Subordinate units:  %d\n", headcount.SubordinateDepartments))
	sb.WriteString(fmt.Sprintf("Total positions:    %d\n", headcount.TotalPositions))

	if len(dept.Candidates) > 0 {
		sb.WriteString("\nAlso matched:\n")
		writeList(&sb, dept.Candidates, 3)
	}

	p.printBox("ORG LOOKUP", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintKPIMapping outputs which KPI document a department mapped to.
func (p *Printer) PrintKPIMapping(res kpi.MapResult) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Department:  %s\n", res.Query))
	if !res.Found() {
		sb.WriteString("KPI file:    none\n")
		if len(res.Suggestions) > 0 {
			sb.WriteString("\nClosest files:\n")
			writeList(&sb, res.Suggestions, 3)
		}
	} else {
		sb.WriteString(fmt.Sprintf("KPI file:    %s\n", res.Key))
		sb.WriteString(fmt.Sprintf("Match:       %s on %q (%.2f)\n", res.Tier, res.Matched, res.Score))
	}
	p.printBox("KPI MAPPING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintKPIResolution outputs the KPI column chosen for a position and the
// rows kept for it.
func (p *Printer) PrintKPIResolution(res *types.PositionResolution) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Position:    %s\n", res.Position))
	sb.WriteString(fmt.Sprintf("Confidence:  %s\n", res.Confidence))
	if res.Resolved() {
		sb.WriteString(fmt.Sprintf("Column:      %s (title %q)\n", res.MatchedEmployee, res.MatchedTitle))
		if res.MatchedHint != "" {
			sb.WriteString(fmt.Sprintf("Unit hint:   %s\n", res.MatchedHint))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Fallback:    %s\n", res.Fallback))
		if len(res.AmbiguousCandidates) > 0 {
			sb.WriteString(fmt.Sprintf("Candidates:  %s\n", strings.Join(res.AmbiguousCandidates, ", ")))
		}
	}

	sb.WriteString(fmt.Sprintf("\nKPI rows: %d\n", len(res.FilteredRows)))
	names := make([]string, len(res.FilteredRows))
	for i, row := range res.FilteredRows {
		names[i] = fmt.Sprintf("%s [%s]", row.Name, row.Kind)
	}
	writeList(&sb, names, maxItemsToShow)

	p.printBox("KPI RESOLUTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintContextSummary outputs the sizes and degradations of an assembled
// context without its contents.
func (p *Printer) PrintContextSummary(ctx *types.AssembledContext) {
	if ctx == nil {
		return
	}

	md := ctx.Metadata
	var sb strings.Builder
	org := md.OrgPath
	if md.DegradedOrgLookup {
		org = "not found (degraded)"
	}
	sb.WriteString(fmt.Sprintf("Org unit:     %s\n", org))
	kpiKey := md.KPIDepartmentKey
	if kpiKey == "" {
		kpiKey = "none"
	}
	sb.WriteString(fmt.Sprintf("KPI file:     %s (%s)\n", kpiKey, md.KPIMatchTier))
	sb.WriteString(fmt.Sprintf("KPI column:   %s, %d rows\n", md.KPIConfidence, md.KPIRows))
	itSection := md.ITSystemsSection
	if itSection == "" {
		itSection = "whole catalog"
	}
	sb.WriteString(fmt.Sprintf("IT systems:   %s\n", itSection))
	sb.WriteString(fmt.Sprintf("Est. tokens:  %d\n", ctx.SizeEstimate))
	sb.WriteString("\n")

	for _, f := range ctx.Fields {
		if f.OriginalChars == 0 {
			continue
		}
		line := fmt.Sprintf("%-22s %7d ch %6d tok", f.Name, utf8.RuneCountInString(f.Value), f.Tokens)
		if f.Truncated {
			line += " ✂"
		}
		sb.WriteString(line + "\n")
	}

	if len(md.TruncatedFields) > 0 {
		sb.WriteString(fmt.Sprintf("\nTruncated: %s\n", strings.Join(md.TruncatedFields, ", ")))
	}

	p.printBox("ASSEMBLED CONTEXT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobProfile outputs a human-readable summary of a generated job profile.
func (p *Printer) PrintJobProfile(profile *types.JobProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Position:    %s\n", profile.PositionTitle))
	sb.WriteString(fmt.Sprintf("Department:  %s\n", profile.DepartmentSpecific))
	if profile.DepartmentBroad != "" {
		sb.WriteString(fmt.Sprintf("Block:       %s\n", profile.DepartmentBroad))
	}
	sb.WriteString("\n")

	if len(profile.ResponsibilityAreas) > 0 {
		sb.WriteString("Responsibilities:\n")
		areas := make([]string, len(profile.ResponsibilityAreas))
		for i, a := range profile.ResponsibilityAreas {
			areas[i] = fmt.Sprintf("%s (%d tasks)", a.Title, len(a.Tasks))
		}
		writeList(&sb, areas, maxItemsToShow)
		sb.WriteString("\n")
	}

	if len(profile.ProfessionalSkills) > 0 {
		sb.WriteString("Skills:\n")
		var skills []string
		for _, c := range profile.ProfessionalSkills {
			for _, s := range c.Skills {
				skills = append(skills, fmt.Sprintf("%s (%d)", s.Name, s.Level))
			}
		}
		writeList(&sb, skills, maxItemsToShow)
	}

	p.printBox("JOB PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidationErrors outputs schema violations of a profile.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidationErrors(ve *schemas.ValidationError) {
	if ve == nil || len(ve.Errors) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ PROFILE MATCHES THE SCHEMA")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(ve.Errors)))
	for i, e := range ve.Errors {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", e.Field))
		sb.WriteString(fmt.Sprintf("  %s\n", e.Message))
		if i < len(ve.Errors)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SCHEMA VIOLATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchSummary outputs one line per batch item.
func (p *Printer) PrintBatchSummary(items []generation.BatchItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	failed := 0
	for _, item := range items {
		if item.Failed() {
			failed++
			sb.WriteString(fmt.Sprintf("✗ #%d %s\n", item.Index+1, item.Err))
			continue
		}
		req := item.Result.Request
		line := fmt.Sprintf("✓ #%d %s / %s", item.Index+1, req.Department, req.Position)
		if n := len(item.Result.Warnings); n > 0 {
			line += fmt.Sprintf(" (%d warnings)", n)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(fmt.Sprintf("\n%d generated, %d failed", len(items)-failed, failed))

	p.printBox("BATCH GENERATION", sb.String())
}
