package assembly

import "fmt"

// Context variable names
const (
	FieldDepartment          = "department"
	FieldPosition            = "position"
	FieldEmployeeName        = "employee_name"
	FieldBusinessBlock       = "business_block"
	FieldFullHierarchyPath   = "full_hierarchy_path"
	FieldHierarchyDepth      = "hierarchy_depth"
	FieldDirectReports       = "direct_reports"
	FieldSubordinateUnits    = "subordinate_units"
	FieldTotalPositions      = "total_positions"
	FieldOrgStructure        = "org_structure"
	FieldKPIData             = "kpi_data"
	FieldKPIEmployee         = "kpi_employee"
	FieldKPIMatchConfidence  = "kpi_match_confidence"
	FieldCompanyProfile      = "company_profile"
	FieldITSystems           = "it_systems"
	FieldJSONSchema          = "json_schema"
	FieldGenerationTimestamp = "generation_timestamp"
	FieldEstimatedTokens     = "estimated_tokens"
)

// HierarchyLevels is the number of hierarchy_level_N variables. Deeper paths
// are folded into the last level.
const HierarchyLevels = 6

// HierarchyLevelField returns the name of the variable for level n, 1-based.
func HierarchyLevelField(n int) string {
	return fmt.Sprintf("hierarchy_level_%d", n)
}

// FieldNames lists every variable of an assembled context in order.
func FieldNames() []string {
	names := []string{FieldDepartment, FieldPosition, FieldEmployeeName}
	for i := 1; i <= HierarchyLevels; i++ {
		names = append(names, HierarchyLevelField(i))
	}
	return append(names,
		FieldBusinessBlock,
		FieldFullHierarchyPath,
		FieldHierarchyDepth,
		FieldDirectReports,
		FieldSubordinateUnits,
		FieldTotalPositions,
		FieldOrgStructure,
		FieldKPIData,
		FieldKPIEmployee,
		FieldKPIMatchConfidence,
		FieldCompanyProfile,
		FieldITSystems,
		FieldJSONSchema,
		FieldGenerationTimestamp,
		FieldEstimatedTokens,
	)
}
