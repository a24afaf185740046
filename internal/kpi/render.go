package kpi

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// NoKPIData is the text used when no KPI rows apply to a position
const NoKPIData = "No KPI data available for this position."

// RenderMarkdown renders the filtered rows of res as a markdown table. Only
// the matched employee's weight column is shown.
func RenderMarkdown(doc *types.KpiDocument, res types.PositionResolution) string {
	if len(res.FilteredRows) == 0 {
		return NoKPIData
	}

	var sb strings.Builder
	title := ""
	if doc != nil {
		title = doc.Title
		if title == "" {
			title = doc.DepartmentKey
		}
	}
	if title != "" {
		fmt.Fprintf(&sb, "KPI: %s\n", title)
	}
	if res.Resolved() {
		fmt.Fprintf(&sb, "Position: %s (%s, %s)\n", res.Position, res.MatchedEmployee, res.Confidence)
	} else {
		fmt.Fprintf(&sb, "Position: %s (unresolved, %s rows only)\n", res.Position, types.KpiCorporate)
	}
	sb.WriteString("\n")

	withWeight := res.Resolved()
	header := []string{"KPI", "Kind", "Target", "Unit"}
	if withWeight {
		header = append(header, "Weight")
	}
	header = append(header, "Methodology")
	writeRow(&sb, header)

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&sb, sep)

	for _, row := range res.FilteredRows {
		cells := []string{row.Name, string(row.Kind), row.Target, row.Unit}
		if withWeight {
			cells = append(cells, formatWeight(row.WeightFor(res.MatchedEmployee)))
		}
		cells = append(cells, row.Methodology)
		writeRow(&sb, cells)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(escapeCell(c))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

func formatWeight(w float64) string {
	if w <= 0 {
		return "-"
	}
	return strconv.FormatFloat(math.Round(w*10000)/100, 'f', -1, 64) + "%"
}
