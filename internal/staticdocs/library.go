// Package staticdocs loads the company-wide documents embedded in every
// assembled context: the company profile, the IT systems catalog and the job
// profile JSON schema. They are read once at startup and never mutated.
package staticdocs

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/logging"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/schemas"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/textmatch"
)

// Paths locates the static documents on disk
type Paths struct {
	CompanyProfile string
	ITSystems      string
	ProfileSchema  string
}

// Section is one "## " section of the IT systems catalog
type Section struct {
	Title string
	Body  string
}

// Library holds the loaded static documents. It is immutable.
type Library struct {
	companyProfile string
	itSystems      string
	preamble       string
	sections       []Section
	titles         []string
	schemaText     string
	schema         *gojsonschema.Schema
	threshold      float64
	logger         logrus.FieldLogger
}

// Option configures a Library
type Option func(*Library)

// WithThreshold sets the similarity threshold for matching a department to a
// catalog section.
func WithThreshold(t float64) Option {
	return func(l *Library) {
		if t > 0 && t <= 1 {
			l.threshold = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Library) {
		l.logger = logging.Component(logger, "staticdocs")
	}
}

// Load reads every document of paths. Any missing or empty file, or a schema
// that does not compile, is a *LoadError.
func Load(paths Paths, opts ...Option) (*Library, error) {
	company, err := readDocument(paths.CompanyProfile)
	if err != nil {
		return nil, err
	}
	catalog, err := readDocument(paths.ITSystems)
	if err != nil {
		return nil, err
	}
	schemaText, err := readDocument(paths.ProfileSchema)
	if err != nil {
		return nil, err
	}

	lib, err := build(company, catalog, schemaText, paths.ProfileSchema, opts)
	if err != nil {
		return nil, err
	}

	lib.logger.WithFields(logrus.Fields{
		"company_profile_chars": len([]rune(lib.companyProfile)),
		"it_systems_chars":      len([]rune(lib.itSystems)),
		"it_systems_sections":   len(lib.sections),
		"schema":                paths.ProfileSchema,
	}).Info("Static documents loaded")
	return lib, nil
}

// New builds a Library from in-memory documents.
func New(companyProfile, itSystems, schemaText string, opts ...Option) (*Library, error) {
	docs := []struct{ name, content string }{
		{"company profile", companyProfile},
		{"IT systems", itSystems},
		{"profile schema", schemaText},
	}
	for _, d := range docs {
		if strings.TrimSpace(d.content) == "" {
			return nil, &LoadError{Path: d.name, Message: "document is empty"}
		}
	}
	return build(companyProfile, itSystems, schemaText, "profile schema", opts)
}

func build(company, catalog, schemaText, schemaName string, opts []Option) (*Library, error) {
	schema, err := schemas.Compile(schemaName, schemaText)
	if err != nil {
		return nil, &LoadError{Path: schemaName, Message: "invalid JSON schema", Cause: err}
	}

	lib := &Library{
		companyProfile: strings.TrimSpace(company),
		itSystems:      strings.TrimSpace(catalog),
		schemaText:     strings.TrimSpace(schemaText),
		schema:         schema,
		threshold:      textmatch.DefaultThreshold,
		logger:         logging.Component(nil, "staticdocs"),
	}
	for _, opt := range opts {
		opt(lib)
	}

	lib.preamble, lib.sections = splitSections(lib.itSystems)
	lib.titles = make([]string, len(lib.sections))
	for i, s := range lib.sections {
		lib.titles[i] = s.Title
	}
	return lib, nil
}

func readDocument(path string) (string, error) {
	if path == "" {
		return "", &LoadError{Path: path, Message: "path is not configured"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &LoadError{Path: path, Message: "failed to read", Cause: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", &LoadError{Path: path, Message: "document is empty"}
	}
	return string(data), nil
}

// CompanyProfile returns the company profile text.
func (l *Library) CompanyProfile() string {
	return l.companyProfile
}

// ITSystems returns the whole IT systems catalog.
func (l *Library) ITSystems() string {
	return l.itSystems
}

// Sections returns the department sections of the IT systems catalog.
func (l *Library) Sections() []Section {
	out := make([]Section, len(l.sections))
	copy(out, l.sections)
	return out
}

// Schema returns the compiled job profile schema.
func (l *Library) Schema() *gojsonschema.Schema {
	return l.schema
}

// SchemaText returns the job profile schema source.
func (l *Library) SchemaText() string {
	return l.schemaText
}
