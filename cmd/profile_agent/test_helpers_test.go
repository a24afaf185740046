package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/llm"
)

const testOrg = `{
  "organization": [
    {
      "name": "Operations Block",
      "children": [
        {
          "name": "Information Technology Department",
          "positions": ["Director"],
          "children": [
            {"name": "Infra Unit", "positions": ["Unit Head", {"title": "Engineer", "headcount": 3}]},
            {"name": "Data Unit", "positions": ["Unit Head", "Analyst"]}
          ]
        }
      ]
    }
  ]
}`

const testKPI = `---
title: IT KPI
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
| KPI | Target | Alice | Bob | Carol | Dave |
|---|---|---|---|---|---|
| Revenue plan | 100% | 10% | 10% | 10% | 10% |

# Personal KPI
| KPI | Target | Alice | Bob | Carol | Dave |
|---|---|---|---|---|---|
| Uptime | 99.9% | | 50% | | |
| Data quality | 98% | | | 40% | |
`

const testCatalog = `Corporate mail for everyone.

## Information Technology Department
GitLab, Grafana
`

// writeWorkspace writes a complete set of source documents and returns the
// path of a config file pointing at them.
func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	schemaPath, err := filepath.Abs(filepath.Join("..", "..", "schemas", "job_profile.schema.json"))
	require.NoError(t, err)

	files := map[string]string{
		"structure.json": testOrg,
		filepath.Join("KPI", "Department of Information Technology.md"): testKPI,
		"company_profile.md": "Acme builds residential districts.",
		"it_systems.md":      testCatalog,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	cfg := map[string]any{
		"paths": map[string]string{
			"org_structure":   filepath.Join(dir, "structure.json"),
			"kpi_dir":         filepath.Join(dir, "KPI"),
			"company_profile": filepath.Join(dir, "company_profile.md"),
			"it_systems":      filepath.Join(dir, "it_systems.md"),
			"profile_schema":  schemaPath,
		},
		"log": map[string]string{"level": "warn"},
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, data, 0644))
	return cfgPath
}

// resetFlags restores every flag of the command tree to its default so
// package-level flag variables do not leak between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command in process and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--env-file", ""}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// stubClient answers every prompt with the same document, unless the prompt
// contains one of the keys of overrides.
type stubClient struct {
	mu        sync.Mutex
	response  string
	overrides map[string]string
	prompts   []string
}

func (c *stubClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.GenerateJSON(ctx, prompt, tier)
}

func (c *stubClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	for key, response := range c.overrides {
		if strings.Contains(prompt, key) {
			return response, nil
		}
	}
	return c.response, nil
}

func (c *stubClient) GetModel(llm.ModelTier) string { return "stub" }
func (c *stubClient) Close() error                  { return nil }

// useStubClient swaps the LLM client factory for the duration of the test.
func useStubClient(t *testing.T, response string) *stubClient {
	t.Helper()
	stub := &stubClient{response: response}
	prev := newLLMClient
	newLLMClient = func(context.Context, string, logrus.FieldLogger) (llm.Client, error) { return stub, nil }
	t.Cleanup(func() { newLLMClient = prev })
	return stub
}

func validProfile(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "valid", "job_profile.json"))
	require.NoError(t, err)
	return string(data)
}
