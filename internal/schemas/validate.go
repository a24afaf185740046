// Package schemas validates generated job profiles against their JSON schema.
package schemas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JobProfileSchemaPath is the repository-relative location of the job profile schema
const JobProfileSchemaPath = "schemas/job_profile.schema.json"

// ResolveSchemaPath looks for relativePath in the working directory and up to
// two parents, so commands and package tests find the bundled schemas.
// Returns the absolute path of the first hit, or "".
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}
	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}
	return ""
}

// Compile parses schema text once so documents can be validated repeatedly.
// name identifies the schema in errors.
func Compile(name, content string) (*gojsonschema.Schema, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &SchemaLoadError{Path: name, Message: "schema is empty"}
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema does not compile", Cause: err}
	}
	return schema, nil
}

// ValidateJSON validates a JSON file against a JSON schema file.
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaText, err := readFile("schema", schemaPath)
	if err != nil {
		return err
	}
	document, err := readFile("JSON", jsonPath)
	if err != nil {
		return err
	}
	schema, err := Compile(schemaPath, schemaText)
	if err != nil {
		return err
	}
	return ValidateDocument(schema, document)
}

// ValidateJSONString validates JSON content against schema text.
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := Compile("(string schema)", schemaContent)
	if err != nil {
		return err
	}
	return ValidateDocument(schema, jsonContent)
}

// ValidateDocument validates JSON content against a compiled schema. Content
// that is not JSON at all is reported as a single root violation.
func ValidateDocument(schema *gojsonschema.Schema, jsonContent string) error {
	if schema == nil {
		return &SchemaLoadError{Path: "(nil schema)", Message: "no schema to validate against"}
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: RootField, Message: err.Error(), Type: "invalid_json"}}}
	}
	return fromResult(result)
}

func readFile(kind, path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s file not found: %s", kind, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s file %s: %w", kind, path, err)
	}
	return string(data), nil
}

func fromResult(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = RootField
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
			Type:    desc.Type(),
		})
	}
	return validationErr
}
