package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Success(t *testing.T) {
	schemaPath := filepath.Join("..", "..", "schemas", "job_profile.schema.json")
	jsonPath := filepath.Join("..", "..", "testdata", "valid", "job_profile.json")

	out, err := runCLI(t, "validate", "--schema", schemaPath, "--json", jsonPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Validation passed")
}

func TestValidateCommand_DefaultSchema(t *testing.T) {
	jsonPath := filepath.Join("..", "..", "testdata", "valid", "job_profile.json")

	out, err := runCLI(t, "validate", "--json", jsonPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Validation passed")
}

func TestValidateCommand_Failure(t *testing.T) {
	jsonPath := filepath.Join("..", "..", "testdata", "invalid", "wrong_type.json")

	out, err := runCLI(t, "validate", "--json", jsonPath)
	require.Error(t, err)
	assert.Contains(t, out, "Validation failed")
	assert.Contains(t, out, "responsibility_areas")
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestValidateCommand_MissingJSONFlag(t *testing.T) {
	_, err := runCLI(t, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestValidateCommand_FileNotFound(t *testing.T) {
	schemaPath := filepath.Join("..", "..", "schemas", "job_profile.schema.json")

	_, err := runCLI(t, "validate", "--schema", schemaPath, "--json", "nonexistent.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0644))
	_, err = runCLI(t, "validate", "--schema", "nonexistent_schema.json", "--json", broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
