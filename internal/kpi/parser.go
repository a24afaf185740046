// Package kpi maps departments to KPI documents, parses them, resolves a
// position to its employee column and filters the KPI rows that apply.
package kpi

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// Supported KPI source extensions
const (
	ExtMarkdown = ".md"
	ExtXLSX     = ".xlsx"
)

// Parser reads KPI documents with a fixed set of section keywords
type Parser struct {
	keywords Keywords
}

// NewParser creates a parser. Empty keyword lists fall back to the defaults.
func NewParser(keywords Keywords) *Parser {
	defaults := DefaultKeywords()
	if len(keywords.Corporate) == 0 {
		keywords.Corporate = defaults.Corporate
	}
	if len(keywords.Personal) == 0 {
		keywords.Personal = defaults.Personal
	}
	return &Parser{keywords: keywords}
}

var defaultParser = NewParser(Keywords{})

// ParseMarkdown parses a markdown KPI document with the default keywords.
func ParseMarkdown(key string, data []byte) *types.KpiDocument {
	return defaultParser.ParseMarkdown(key, data)
}

// ParseXLSX parses a workbook KPI document with the default keywords.
func ParseXLSX(key string, r io.Reader) *types.KpiDocument {
	return defaultParser.ParseXLSX(key, r)
}

// ParseFile reads and parses the KPI document at path; the key is the file
// name without extension.
func ParseFile(path string) (*types.KpiDocument, error) {
	return defaultParser.ParseFile(path)
}

// ParseFile reads and parses the KPI document at path.
func (p *Parser) ParseFile(path string) (*types.KpiDocument, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return nil, &SourceError{Path: path, Message: "unsupported extension " + ext}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Message: "failed to read", Cause: err}
	}
	doc := p.Parse(KeyFromPath(path), ext, data)
	doc.Source = path
	return doc, nil
}

// Parse dispatches on ext.
func (p *Parser) Parse(key, ext string, data []byte) *types.KpiDocument {
	if strings.EqualFold(ext, ExtXLSX) {
		return p.ParseXLSX(key, bytes.NewReader(data))
	}
	return p.ParseMarkdown(key, data)
}

// Supported reports whether path has a KPI source extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ExtMarkdown || ext == ExtXLSX
}

// KeyFromPath returns the department key of a KPI source file.
func KeyFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}
