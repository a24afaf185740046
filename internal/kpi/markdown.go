package kpi

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

// frontMatter is the YAML header of a markdown KPI document. positions maps a
// title to an employee, or to a list of {employee, unit} holders.
type frontMatter struct {
	Department string    `yaml:"department"`
	Title      string    `yaml:"title"`
	Positions  yaml.Node `yaml:"positions"`
}

// ParseMarkdown parses a markdown KPI document. It never fails: a document
// whose front matter cannot be read comes back empty with a warning.
func (p *Parser) ParseMarkdown(key string, data []byte) *types.KpiDocument {
	b := newDocBuilder(key, "markdown", p.keywords)

	header, body, err := splitFrontMatter(data)
	if err != nil {
		return b.fail("front matter: %v", err)
	}

	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return b.fail("front matter: invalid YAML: %v", err)
	}
	b.doc.Title = strings.TrimSpace(fm.Title)
	if b.doc.Title == "" {
		b.doc.Title = strings.TrimSpace(fm.Department)
	}
	if err := loadPositionsNode(b, &fm.Positions); err != nil {
		return b.fail("front matter: %v", err)
	}
	b.sealPositions()

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	pendingHeader := []string(nil)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if level, text, ok := parseHeading(line); ok {
			b.endTable()
			pendingHeader = nil
			b.heading(level, text)
			continue
		}

		if !strings.HasPrefix(line, "|") {
			b.endTable()
			pendingHeader = nil
			continue
		}

		cells := splitRow(line)
		switch {
		case b.inTable():
			if !isSeparatorRow(cells) {
				b.row(cells)
			}
		case pendingHeader == nil:
			pendingHeader = cells
		case isSeparatorRow(cells):
			b.header(pendingHeader)
			pendingHeader = nil
		default:
			// a table without a separator row is read as header + rows
			b.header(pendingHeader)
			pendingHeader = nil
			b.row(cells)
		}
	}
	if err := scanner.Err(); err != nil {
		return b.fail("body: %v", err)
	}

	return b.finish()
}

func splitFrontMatter(data []byte) (header, body []byte, err error) {
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	trimmed := strings.TrimLeft(text, " \t\n")
	if !strings.HasPrefix(trimmed, frontMatterDelim+"\n") {
		return nil, nil, errors.New("missing opening '---'")
	}
	rest := trimmed[len(frontMatterDelim)+1:]

	end := -1
	offset := 0
	for _, line := range strings.SplitAfter(rest, "\n") {
		if strings.TrimSpace(line) == frontMatterDelim {
			end = offset
			break
		}
		offset += len(line)
	}
	if end < 0 {
		return nil, nil, errors.New("missing closing '---'")
	}

	header = []byte(rest[:end])
	closing := rest[end:]
	if nl := strings.IndexByte(closing, '\n'); nl >= 0 {
		body = []byte(closing[nl+1:])
	}
	return header, body, nil
}

// loadPositionsNode walks the positions mapping in document order. A title
// listed twice is merged into one ambiguous entry.
func loadPositionsNode(b *docBuilder, node *yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("positions must be a mapping, line %d", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		title := node.Content[i].Value
		value := node.Content[i+1]

		switch value.Kind {
		case yaml.ScalarNode:
			b.addHolder(title, types.Holder{Employee: value.Value})
		case yaml.SequenceNode:
			for _, item := range value.Content {
				h, err := decodeHolder(item)
				if err != nil {
					return fmt.Errorf("position %q: %w", title, err)
				}
				b.addHolder(title, h)
			}
		case yaml.MappingNode:
			h, err := decodeHolder(value)
			if err != nil {
				return fmt.Errorf("position %q: %w", title, err)
			}
			b.addHolder(title, h)
		default:
			return fmt.Errorf("position %q has unsupported value, line %d", title, value.Line)
		}
	}
	return nil
}

func decodeHolder(node *yaml.Node) (types.Holder, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return types.Holder{Employee: node.Value}, nil
	case yaml.MappingNode:
		var h types.Holder
		if err := node.Decode(&h); err != nil {
			return types.Holder{}, err
		}
		return h, nil
	default:
		return types.Holder{}, fmt.Errorf("holder must be a name or {employee, unit}, line %d", node.Line)
	}
}

func parseHeading(line string) (int, string, bool) {
	if !strings.HasPrefix(line, "#") {
		return 0, "", false
	}
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level > 6 || level == len(line) || line[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(line[level:]), true
}

// splitRow splits a markdown table row into trimmed cells. "\|" stays
// inside a cell.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	var cells []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			if r != '|' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		c = strings.Trim(c, ": ")
		if c == "" || strings.Trim(c, "-") != "" {
			return false
		}
	}
	return true
}
