package kpi

import (
	"fmt"
	"strings"

	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/config"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/textmatch"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// Keywords classify section headings and kind cells as corporate or personal
type Keywords struct {
	Corporate []string
	Personal  []string
}

// DefaultKeywords returns the classification keywords of the default config.
func DefaultKeywords() Keywords {
	d := config.Default().KPI
	return Keywords{Corporate: d.CorporateKeywords, Personal: d.PersonalKeywords}
}

// classify matches text against the keywords; corporate wins over personal.
func (k Keywords) classify(text string) (types.KpiKind, bool) {
	norm := textmatch.Normalize(text)
	if norm == "" {
		return "", false
	}
	for _, kw := range k.Corporate {
		if kw = textmatch.Normalize(kw); kw != "" && strings.Contains(norm, kw) {
			return types.KpiCorporate, true
		}
	}
	for _, kw := range k.Personal {
		if kw = textmatch.Normalize(kw); kw != "" && strings.Contains(norm, kw) {
			return types.KpiPersonal, true
		}
	}
	return "", false
}

type columnRole int

const (
	colUnknown columnRole = iota
	colSkip
	colName
	colTarget
	colUnit
	colMethodology
	colKind
	colWeight
)

// headerRoles lists token prefixes per fixed column, checked in order
var headerRoles = []struct {
	role     columnRole
	prefixes []string
}{
	{colMethodology, []string{"методик", "methodology", "формул", "formula", "расчет", "calculation"}},
	{colKind, []string{"kind", "type", "тип", "вид", "категор"}},
	{colTarget, []string{"целев", "target", "план", "plan", "значени", "value", "норматив"}},
	{colUnit, []string{"ед", "единиц", "unit", "измерен"}},
	{colName, []string{"kpi", "кпэ", "kpe", "показател", "наименован", "name", "цель", "цели", "задач", "goal"}},
}

// skipHeaders are row-number columns
var skipHeaders = map[string]bool{"": true, "n": true, "no": true, "nr": true, "п/п": true, "п п": true}

func classifyHeader(header string) columnRole {
	norm := textmatch.Normalize(header)
	if skipHeaders[norm] {
		return colSkip
	}
	tokens := strings.Fields(strings.ReplaceAll(norm, "/", " "))
	for _, hr := range headerRoles {
		for _, tok := range tokens {
			for _, p := range hr.prefixes {
				if strings.HasPrefix(tok, p) {
					return hr.role
				}
			}
		}
	}
	return colUnknown
}

type column struct {
	role     columnRole
	employee string
}

type headingLevel struct {
	level int
	text  string
	kind  types.KpiKind
}

// docBuilder turns a stream of headings, table headers and rows into a
// KpiDocument. Markdown and XLSX sources both feed it.
type docBuilder struct {
	doc      *types.KpiDocument
	keywords Keywords

	holders map[string][]types.Holder

	// normalized employee name to canonical name
	employees map[string]string
	// normalized title to title key
	titles map[string]string

	headings []headingLevel
	columns  []column
	titleUse map[string]int
}

func newDocBuilder(key, source string, keywords Keywords) *docBuilder {
	return &docBuilder{
		doc: &types.KpiDocument{
			DepartmentKey: key,
			Source:        source,
			PositionsMap:  map[string]types.PositionEntry{},
		},
		keywords:  keywords,
		holders:   make(map[string][]types.Holder),
		employees: make(map[string]string),
		titles:    make(map[string]string),
	}
}

func (b *docBuilder) warnf(format string, args ...interface{}) {
	b.doc.Warnings = append(b.doc.Warnings, fmt.Sprintf(format, args...))
}

// fail discards everything parsed so far and returns an empty document
// carrying the reason.
func (b *docBuilder) fail(format string, args ...interface{}) *types.KpiDocument {
	b.doc.PositionsMap = map[string]types.PositionEntry{}
	b.doc.PositionOrder = nil
	b.doc.Rows = nil
	b.warnf(format, args...)
	return b.doc
}

// addHolder records that employee holds title. A title seen more than once
// becomes ambiguous.
func (b *docBuilder) addHolder(title string, h types.Holder) {
	title = strings.TrimSpace(title)
	h.Employee = strings.TrimSpace(h.Employee)
	h.Hint = strings.TrimSpace(h.Hint)
	if title == "" || h.Employee == "" {
		b.warnf("position entry %q without employee skipped", title)
		return
	}
	if _, seen := b.holders[title]; !seen {
		b.doc.PositionOrder = append(b.doc.PositionOrder, title)
	}
	b.holders[title] = append(b.holders[title], h)

	if _, ok := b.titles[textmatch.Normalize(title)]; !ok {
		b.titles[textmatch.Normalize(title)] = title
	}
	if _, ok := b.employees[textmatch.Normalize(h.Employee)]; !ok {
		b.employees[textmatch.Normalize(h.Employee)] = h.Employee
	}
}

func (b *docBuilder) sealPositions() {
	for _, title := range b.doc.PositionOrder {
		holders := b.holders[title]
		if len(holders) == 1 {
			b.doc.PositionsMap[title] = types.Single(holders[0].Employee)
			continue
		}
		b.doc.PositionsMap[title] = types.Ambiguous(holders)
	}
	if len(b.doc.PositionOrder) == 0 {
		b.warnf("document declares no positions")
	}
}

// heading opens a section. Headings without a keyword inherit the kind of
// the enclosing section; top-level ones default to personal.
func (b *docBuilder) heading(level int, text string) {
	for len(b.headings) > 0 && b.headings[len(b.headings)-1].level >= level {
		b.headings = b.headings[:len(b.headings)-1]
	}
	kind, ok := b.keywords.classify(text)
	if !ok {
		kind = types.KpiPersonal
		if len(b.headings) > 0 {
			kind = b.headings[len(b.headings)-1].kind
		}
	}
	b.headings = append(b.headings, headingLevel{level: level, text: strings.TrimSpace(text), kind: kind})
}

func (b *docBuilder) section() (string, types.KpiKind) {
	if len(b.headings) == 0 {
		return "", types.KpiPersonal
	}
	top := b.headings[len(b.headings)-1]
	return top.text, top.kind
}

// header starts a table. Columns named after an employee or a position title
// carry weights; a title repeated across columns is handed to its holders in
// order.
func (b *docBuilder) header(cells []string) {
	b.columns = make([]column, len(cells))
	b.titleUse = make(map[string]int)

	hasName := false
	for i, cell := range cells {
		if emp, ok := b.weightColumn(cell); ok {
			b.columns[i] = column{role: colWeight, employee: emp}
			continue
		}
		role := classifyHeader(cell)
		if role == colName {
			if hasName {
				role = colSkip
			}
			hasName = true
		}
		b.columns[i] = column{role: role}
	}

	if !hasName {
		for i, c := range b.columns {
			if c.role == colUnknown {
				b.columns[i].role = colName
				hasName = true
				break
			}
		}
	}
	if !hasName {
		b.warnf("table without a KPI name column skipped: %s", strings.Join(cells, " | "))
		b.columns = nil
		return
	}

	for i, c := range b.columns {
		if c.role == colUnknown {
			b.warnf("column %q is neither a known field nor a position holder, ignored", strings.TrimSpace(cells[i]))
			b.columns[i].role = colSkip
		}
	}
}

func (b *docBuilder) weightColumn(header string) (string, bool) {
	norm := textmatch.Normalize(header)
	if norm == "" {
		return "", false
	}
	if emp, ok := b.employees[norm]; ok {
		return emp, true
	}
	title, ok := b.titles[norm]
	if !ok {
		return "", false
	}
	holders := b.holders[title]
	n := b.titleUse[title]
	b.titleUse[title] = n + 1
	if n >= len(holders) {
		b.warnf("column %q repeats position %q more times than it has holders", header, title)
		return "", false
	}
	return holders[n].Employee, true
}

func (b *docBuilder) endTable() {
	b.columns = nil
}

func (b *docBuilder) inTable() bool {
	return b.columns != nil
}

func (b *docBuilder) row(cells []string) {
	if b.columns == nil {
		return
	}
	section, kind := b.section()
	row := types.KpiRow{
		Weights: make(map[string]float64),
		Kind:    kind,
		Section: section,
	}

	for i, c := range b.columns {
		if i >= len(cells) {
			break
		}
		cell := strings.TrimSpace(cells[i])
		switch c.role {
		case colName:
			row.Name = cell
		case colTarget:
			row.Target = cell
		case colUnit:
			row.Unit = cell
		case colMethodology:
			row.Methodology = cell
		case colKind:
			if k, ok := b.keywords.classify(cell); ok {
				row.Kind = k
			}
		case colWeight:
			w, ok := ParseWeight(cell)
			if !ok {
				if !isWeightCell(cell) {
					b.warnf("unreadable weight %q for %s treated as not applicable", cell, c.employee)
				}
				continue
			}
			if w > row.Weights[c.employee] {
				row.Weights[c.employee] = w
			}
		}
	}

	if row.Name == "" {
		return
	}
	b.doc.Rows = append(b.doc.Rows, row)
}

func (b *docBuilder) finish() *types.KpiDocument {
	if len(b.doc.Rows) == 0 {
		b.warnf("document has no KPI rows")
	}
	return b.doc
}
