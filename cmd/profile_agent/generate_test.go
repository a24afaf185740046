package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/generation"
)

func TestGenerateCommand_Single(t *testing.T) {
	cfg := writeWorkspace(t)
	t.Setenv("PROFILEGEN_API_KEY", "test-key")
	stub := useStubClient(t, "```json\n"+validProfile(t)+"\n```")

	out, err := runCLI(t, "--config", cfg, "generate", "-d", "Data Unit", "-p", "Unit Head")
	require.NoError(t, err)

	var res generation.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Unit Head", res.Request.Position)
	assert.Equal(t, 1, res.Attempts)
	assert.JSONEq(t, validProfile(t), string(res.Profile))

	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "Data quality")
	assert.Contains(t, stub.prompts[0], "Operations Block / Information Technology Department / Data Unit")
}

func TestGenerateCommand_InvalidProfile(t *testing.T) {
	cfg := writeWorkspace(t)
	t.Setenv("PROFILEGEN_API_KEY", "test-key")
	stub := useStubClient(t, `{"position_title": "Unit Head"}`)

	out, err := runCLI(t, "--config", cfg, "generate", "-d", "Data Unit", "-p", "Unit Head")
	require.Error(t, err)
	assert.Contains(t, out, "SCHEMA VIOLATIONS")
	assert.Len(t, stub.prompts, 2, "one repair round")
}

func TestGenerateCommand_NoAPIKey(t *testing.T) {
	cfg := writeWorkspace(t)
	useStubClient(t, `{}`)

	_, err := runCLI(t, "--config", cfg, "generate", "-d", "Data Unit", "-p", "Unit Head")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key")
}

func TestGenerateCommand_Usage(t *testing.T) {
	_, err := runCLI(t, "generate", "-d", "Data Unit")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestGenerateCommand_Batch(t *testing.T) {
	cfg := writeWorkspace(t)
	t.Setenv("PROFILEGEN_API_KEY", "test-key")
	useStubClient(t, validProfile(t))

	dir := t.TempDir()
	batch := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(batch, []byte(`[
		{"department": "Data Unit", "position": "Unit Head"},
		{"department": "Infra Unit", "position": "Engineer"},
		{"department": "Infra Unit"}
	]`), 0644))
	outDir := filepath.Join(dir, "profiles")

	out, err := runCLI(t, "--config", cfg, "generate", "--batch", batch, "--out-dir", outDir, "--concurrency", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 profiles failed")
	assert.Contains(t, out, "BATCH GENERATION")
	assert.Contains(t, out, "2 generated, 1 failed")

	for _, name := range []string{"001_Unit_Head.json", "002_Engineer.json"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.True(t, json.Valid(data))
	}
	_, err = os.Stat(filepath.Join(outDir, "003_.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateCommand_BatchNonJSONAnswer(t *testing.T) {
	cfg := writeWorkspace(t)
	t.Setenv("PROFILEGEN_API_KEY", "test-key")
	const refusal = "I cannot help with that."
	stub := useStubClient(t, validProfile(t))
	stub.overrides = map[string]string{
		`position "Engineer"`: refusal,
		refusal:               refusal,
	}

	dir := t.TempDir()
	batch := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(batch, []byte(`[
		{"department": "Infra Unit", "position": "Engineer"},
		{"department": "Data Unit", "position": "Unit Head"}
	]`), 0644))
	outDir := filepath.Join(dir, "profiles")

	out, err := runCLI(t, "--config", cfg, "generate", "--batch", batch, "--out-dir", outDir, "--concurrency", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 profiles failed")
	assert.Contains(t, out, "1 generated, 1 failed")

	data, err := os.ReadFile(filepath.Join(outDir, "001_Engineer.json"))
	require.NoError(t, err)
	var res generation.Result
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, refusal, res.RawOutput)
	assert.Nil(t, res.Profile)

	data, err = os.ReadFile(filepath.Join(outDir, "002_Unit_Head.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &res))
	assert.JSONEq(t, validProfile(t), string(res.Profile))
}

func TestGenerateCommand_BatchWriteFailureContinues(t *testing.T) {
	cfg := writeWorkspace(t)
	t.Setenv("PROFILEGEN_API_KEY", "test-key")
	useStubClient(t, validProfile(t))

	dir := t.TempDir()
	batch := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(batch, []byte(`[
		{"department": "Data Unit", "position": "Unit Head"},
		{"department": "Infra Unit", "position": "Engineer"}
	]`), 0644))
	outDir := filepath.Join(dir, "profiles")
	// A directory in place of the first result file makes its write fail.
	require.NoError(t, os.MkdirAll(filepath.Join(outDir, "001_Unit_Head.json"), 0755))

	out, err := runCLI(t, "--config", cfg, "generate", "--batch", batch, "--out-dir", outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 profiles failed")
	assert.Contains(t, out, "BATCH GENERATION")
	assert.Contains(t, out, "1 generated, 1 failed")

	data, err := os.ReadFile(filepath.Join(outDir, "002_Engineer.json"))
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestBatchFileName(t *testing.T) {
	item := generation.BatchItem{Index: 4, Result: &generation.Result{
		Request: generation.Request{Position: ` Head of "R&D" / QA `},
	}}
	assert.Equal(t, "005_Head_of_R&D___QA.json", batchFileName(item))
}
