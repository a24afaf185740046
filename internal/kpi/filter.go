package kpi

import "github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"

// FilterRows keeps the rows that apply to employee: corporate rows and rows
// where the employee's weight is positive. Source order is kept.
func FilterRows(rows []types.KpiRow, employee string) []types.KpiRow {
	out := make([]types.KpiRow, 0, len(rows))
	for _, row := range rows {
		if row.Kind == types.KpiCorporate || (employee != "" && row.WeightFor(employee) > 0) {
			out = append(out, row)
		}
	}
	return out
}

// CorporateRows keeps only the corporate rows.
func CorporateRows(rows []types.KpiRow) []types.KpiRow {
	return FilterRows(rows, "")
}
