package kpi

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

func TestParseMarkdown_Document(t *testing.T) {
	doc := itDocument(t)

	assert.Equal(t, itKeyMD, doc.DepartmentKey)
	assert.Equal(t, "IT KPI 2025", doc.Title)
	assert.Equal(t, []string{"Director", "Unit Head", "Analyst"}, doc.PositionOrder)

	director := doc.PositionsMap["Director"]
	assert.Equal(t, types.EntrySingle, director.Kind())
	assert.Equal(t, "Alice", director.Employee())

	unitHead := doc.PositionsMap["Unit Head"]
	require.Equal(t, types.EntryAmbiguous, unitHead.Kind())
	assert.Equal(t, []types.Holder{
		{Employee: "Bob", Hint: "Infra Unit"},
		{Employee: "Carol", Hint: "Data Unit"},
	}, unitHead.Holders())

	assert.Equal(t, []string{"Revenue plan", "SLA", "Data quality", "Security incidents", "Reports"}, rowNames(doc.Rows))
}

func TestParseMarkdown_Rows(t *testing.T) {
	doc := itDocument(t)
	require.Len(t, doc.Rows, 5)

	revenue := doc.Rows[0]
	assert.Equal(t, types.KpiCorporate, revenue.Kind)
	assert.Equal(t, "Corporate KPI", revenue.Section)
	assert.Equal(t, "100", revenue.Target)
	assert.Equal(t, "%", revenue.Unit)
	assert.InDelta(t, 0.05, revenue.WeightFor("Dave"), 1e-9)

	sla := doc.Rows[1]
	assert.Equal(t, types.KpiPersonal, sla.Kind)
	assert.Equal(t, "uptime / total", sla.Methodology)
	assert.InDelta(t, 0.10, sla.WeightFor("Alice"), 1e-9)
	assert.InDelta(t, 0.25, sla.WeightFor("Bob"), 1e-9)
	assert.Zero(t, sla.WeightFor("Carol"))
	assert.Zero(t, sla.WeightFor("Dave"))
	assert.NotContains(t, sla.Weights, "Carol")

	quality := doc.Rows[2]
	assert.Zero(t, quality.WeightFor("Alice"))
	assert.Zero(t, quality.WeightFor("Bob"))
	assert.InDelta(t, 0.30, quality.WeightFor("Carol"), 1e-9)
	assert.InDelta(t, 0.40, quality.WeightFor("Dave"), 1e-9)

	security := doc.Rows[3]
	assert.Equal(t, "count", security.Unit)
	assert.Equal(t, map[string]float64{"Alice": 0.2}, security.Weights)

	reports := doc.Rows[4]
	assert.Empty(t, reports.Weights)
	assert.Contains(t, strings.Join(doc.Warnings, "\n"), `unreadable weight "maybe" for Dave`)
}

func TestParseMarkdown_WeightKeysAreKnownEmployees(t *testing.T) {
	doc := itDocument(t)

	known := make(map[string]bool)
	for _, title := range doc.PositionOrder {
		for _, e := range doc.PositionsMap[title].Employees() {
			known[e] = true
		}
	}
	for _, row := range doc.Rows {
		for emp := range row.Weights {
			assert.True(t, known[emp], "row %q has weight for unknown %q", row.Name, emp)
		}
	}
}

func TestParseMarkdown_HeaderFailuresYieldEmptyDocument(t *testing.T) {
	tests := []struct {
		name    string
		content string
		warning string
	}{
		{name: "no front matter", content: "# KPI\n\n| KPI | Alice |\n|---|---|\n| SLA | 10% |\n", warning: "missing opening"},
		{name: "unterminated front matter", content: "---\npositions:\n  Director: Alice\n", warning: "missing closing"},
		{name: "invalid yaml", content: "---\npositions: [unclosed\n---\n| KPI | Alice |\n", warning: "invalid YAML"},
		{name: "positions not a mapping", content: "---\npositions:\n  - Alice\n---\n", warning: "must be a mapping"},
		{name: "bad holder", content: "---\npositions:\n  Head:\n    - [Bob, Carol]\n---\n", warning: "holder must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseMarkdown("broken", []byte(tt.content))
			require.NotNil(t, doc)
			assert.True(t, doc.Empty())
			assert.Empty(t, doc.PositionsMap)
			assert.Equal(t, "broken", doc.DepartmentKey)
			require.NotEmpty(t, doc.Warnings)
			assert.Contains(t, doc.Warnings[len(doc.Warnings)-1], tt.warning)
		})
	}
}

func TestParseMarkdown_SectionKinds(t *testing.T) {
	content := `---
positions:
  Head: Alice
---
## Общие корпоративные показатели
### Финансы
| Показатель | Целевое значение | Ед. изм. | Alice |
|---|---|---|---|
| EBITDA | 10 | млн | 5 |

## Личные КПЭ
| Показатель | Тип | Alice |
|---|---|---|
| Проекты | корпоративный | 50% |
| Отчеты | | 50% |
`
	doc := ParseMarkdown("ДИТ", []byte(content))
	require.Len(t, doc.Rows, 3)

	assert.Equal(t, types.KpiCorporate, doc.Rows[0].Kind, "nested heading inherits corporate")
	assert.Equal(t, "Финансы", doc.Rows[0].Section)
	assert.Equal(t, "10", doc.Rows[0].Target)
	assert.Equal(t, "млн", doc.Rows[0].Unit)
	assert.InDelta(t, 0.05, doc.Rows[0].WeightFor("Alice"), 1e-9)

	assert.Equal(t, types.KpiCorporate, doc.Rows[1].Kind, "kind column overrides the section")
	assert.Equal(t, types.KpiPersonal, doc.Rows[2].Kind)
}

func TestParseMarkdown_TableQuirks(t *testing.T) {
	content := `---
positions:
  Head:
    - employee: Bob
      unit: North
    - employee: Carol
      unit: South
---
| KPI | Head | Head | Head | Comment |
| Uptime | 10 | 20 | 30 | fine |

Text between tables ends the table.
| Orphan | 1 |
`
	doc := ParseMarkdown("quirks", []byte(content))

	require.Len(t, doc.Rows, 1, "table without separator row still parses")
	assert.Equal(t, map[string]float64{"Bob": 0.1, "Carol": 0.2}, doc.Rows[0].Weights)

	joined := strings.Join(doc.Warnings, "\n")
	assert.Contains(t, joined, "more times than it has holders")
	assert.Contains(t, joined, `column "Comment"`)
}

func TestParseMarkdown_NoPositions(t *testing.T) {
	content := "---\ntitle: Only corporate\n---\n# Corporate\n| KPI | Target |\n|---|---|\n| NPS | 70 |\n"
	doc := ParseMarkdown("corp", []byte(content))

	require.Len(t, doc.Rows, 1)
	assert.Equal(t, types.KpiCorporate, doc.Rows[0].Kind)
	assert.Contains(t, doc.Warnings, "document declares no positions")
}

func TestSplitRow(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitRow("| a | b | c |"))
	assert.Equal(t, []string{"a | b", "c"}, splitRow(`| a \| b | c |`))
	assert.Equal(t, []string{"", "x"}, splitRow("|  | x |"))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	md := filepath.Join(dir, "IT.md")
	require.NoError(t, os.WriteFile(md, []byte(itMarkdown), 0644))
	doc, err := ParseFile(md)
	require.NoError(t, err)
	assert.Equal(t, "IT", doc.DepartmentKey)
	assert.Equal(t, md, doc.Source)
	assert.Len(t, doc.Rows, 5)

	_, err = ParseFile(filepath.Join(dir, "notes.txt"))
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Contains(t, err.Error(), "unsupported extension")

	_, err = ParseFile(filepath.Join(dir, "missing.md"))
	require.ErrorAs(t, err, &srcErr)
	assert.Contains(t, err.Error(), "failed to read")
}
