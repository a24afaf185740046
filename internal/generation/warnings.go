package generation

import (
	"fmt"
	"strings"

	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// contextWarnings lists the degradations of a context in a stable order.
func contextWarnings(c *types.AssembledContext) []string {
	md := c.Metadata
	var warnings []string
	if md.DegradedOrgLookup {
		warnings = append(warnings, "department not found in the org structure")
	} else if !md.PositionFound {
		warnings = append(warnings, fmt.Sprintf("position not listed in %s", md.OrgPath))
	}
	if md.KPIDepartmentKey == "" {
		warnings = append(warnings, "no KPI document matches the department")
	} else if md.KPIConfidence == types.MatchUnresolved {
		w := "KPI column unresolved, corporate KPIs only"
		if len(md.AmbiguousCandidates) > 0 {
			w += " (candidates: " + strings.Join(md.AmbiguousCandidates, ", ") + ")"
		}
		warnings = append(warnings, w)
	}
	if len(md.TruncatedFields) > 0 {
		warnings = append(warnings, "truncated: "+strings.Join(md.TruncatedFields, ", "))
	}
	return warnings
}
