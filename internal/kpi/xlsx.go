package kpi

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// Sheet names of a workbook KPI document
const (
	SheetPositions = "positions"
	SheetKPI       = "kpi"
	SheetMeta      = "meta"
)

// ParseXLSX parses a workbook KPI document. Sheet "positions" holds
// title/employee/unit rows, sheet "kpi" holds the table; a row with only
// its first cell filled opens a section. Like ParseMarkdown it never fails.
func (p *Parser) ParseXLSX(key string, r io.Reader) *types.KpiDocument {
	b := newDocBuilder(key, "xlsx", p.keywords)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return b.fail("workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := make(map[string]string)
	for _, name := range f.GetSheetList() {
		sheets[strings.ToLower(strings.TrimSpace(name))] = name
	}

	if meta, ok := sheets[SheetMeta]; ok {
		rows, err := f.GetRows(meta)
		if err == nil {
			readMeta(b, rows)
		}
	}

	positions, ok := sheets[SheetPositions]
	if !ok {
		return b.fail("workbook has no %q sheet", SheetPositions)
	}
	rows, err := f.GetRows(positions)
	if err != nil {
		return b.fail("sheet %q: %v", SheetPositions, err)
	}
	readPositions(b, rows)
	b.sealPositions()

	kpiSheet, ok := sheets[SheetKPI]
	if !ok {
		return b.fail("workbook has no %q sheet", SheetKPI)
	}
	rows, err = f.GetRows(kpiSheet)
	if err != nil {
		return b.fail("sheet %q: %v", SheetKPI, err)
	}

	for _, row := range rows {
		filled := filledCells(row)
		switch {
		case filled == 0:
			continue
		case filled == 1 && strings.TrimSpace(row[0]) != "":
			b.heading(1, row[0])
		case !b.inTable():
			b.header(row)
		default:
			b.row(row)
		}
	}

	return b.finish()
}

func readMeta(b *docBuilder, rows [][]string) {
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(row[0])) {
		case "title":
			b.doc.Title = strings.TrimSpace(row[1])
		case "department":
			if b.doc.Title == "" {
				b.doc.Title = strings.TrimSpace(row[1])
			}
		}
	}
}

// readPositions reads title, employee and unit columns. A first row whose
// cells name those columns is skipped.
func readPositions(b *docBuilder, rows [][]string) {
	for i, row := range rows {
		if filledCells(row) == 0 {
			continue
		}
		if i == 0 && isPositionsHeader(row) {
			continue
		}
		h := types.Holder{}
		title := cellAt(row, 0)
		h.Employee = cellAt(row, 1)
		h.Hint = cellAt(row, 2)
		b.addHolder(title, h)
	}
}

func isPositionsHeader(row []string) bool {
	first := strings.ToLower(cellAt(row, 0))
	return first == "title" || first == "position" || first == "должность"
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func filledCells(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}
