package kpi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

const itKeyMD = "Department of Information Technology"

const itMarkdown = `---
department: Department of Information Technology
title: IT KPI 2025
positions:
  Director: Alice
  Unit Head:
    - employee: Bob
      unit: Infra Unit
    - employee: Carol
      unit: Data Unit
  Analyst: Dave
---

# Corporate KPI

| № | KPI | Target | Unit | Alice | Bob | Carol | Dave |
|---|-----|--------|------|-------|-----|-------|------|
| 1 | Revenue plan | 100 | % | 10% | 10% | 10% | 5% |

# Personal KPI

| KPI | Target | Unit | Methodology | Director | Unit Head | Unit Head | Analyst |
|:----|-------:|------|-------------|----------|-----------|-----------|---------|
| SLA | 99.9 | % | uptime / total | 10% | 0,25 | - | 0 |
| Data quality | 95 | % | audits | н/п | 0 | 30 | 40% |
| Security incidents | 0 | count | | 0.2 | x | | |
| Reports | 12 | pcs | | | | | maybe |
`

func rowNames(rows []types.KpiRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}

func itDocument(t *testing.T) *types.KpiDocument {
	t.Helper()
	doc := ParseMarkdown(itKeyMD, []byte(itMarkdown))
	require.False(t, doc.Empty(), "fixture must parse: %v", doc.Warnings)
	return doc
}

// buildWorkbook returns an xlsx KPI document equivalent to a subset of
// itMarkdown.
func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for _, name := range []string{SheetMeta, SheetPositions, SheetKPI} {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}

	require.NoError(t, f.SetSheetRow(SheetMeta, "A1", &[]interface{}{"title", "IT KPI workbook"}))

	positions := [][]interface{}{
		{"title", "employee", "unit"},
		{"Director", "Alice"},
		{"Unit Head", "Bob", "Infra Unit"},
		{"Unit Head", "Carol", "Data Unit"},
	}
	for i, row := range positions {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(SheetPositions, cell, &row))
	}

	kpiRows := [][]interface{}{
		{"Corporate KPI"},
		{"KPI", "Target", "Unit", "Alice", "Bob", "Carol"},
		{"Revenue plan", "100", "%", "10%", "10%", "10%"},
		{},
		{"Personal KPI"},
		{"SLA", "99.9", "%", "10%", "25%"},
		{"Data quality", "95", "%", "", "", "30"},
	}
	for i, row := range kpiRows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(SheetKPI, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.Clone(buf.Bytes())
}
