package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/llm"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/prompts"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/schemas"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

const profileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["position_title"],
  "properties": {"position_title": {"type": "string"}}
}`

// fakeClient replays responses in order; the last one repeats.
type fakeClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
	tiers     []llm.ModelTier
	delay     time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (c *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.GenerateJSON(ctx, prompt, tier)
}

func (c *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		m := c.maxInFlight.Load()
		if n <= m || c.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	c.tiers = append(c.tiers, tier)
	if c.err != nil {
		return "", c.err
	}
	i := len(c.prompts) - 1
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	return c.responses[i], nil
}

func (c *fakeClient) GetModel(llm.ModelTier) string { return "fake" }
func (c *fakeClient) Close() error                  { return nil }

func (c *fakeClient) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// fakeAssembler fills every job-profile placeholder with "<name>=<position>".
type fakeAssembler struct {
	metadata types.ContextMetadata
	drop     string
	err      error
}

func (a *fakeAssembler) Assemble(department, position, employee string) (*types.AssembledContext, error) {
	if a.err != nil {
		return nil, a.err
	}
	ctx := &types.AssembledContext{Metadata: a.metadata}
	for _, name := range prompts.Placeholders(prompts.MustGet(promptFile, PromptJobProfile)) {
		if name == a.drop {
			continue
		}
		value := name + "=" + position
		switch name {
		case "department":
			value = department
		case "position":
			value = position
		case "employee_name":
			value = employee
		}
		ctx.Fields = append(ctx.Fields, types.ContextField{Name: name, Value: value})
	}
	return ctx, nil
}

func newGenerator(t *testing.T, client *fakeClient, asm *fakeAssembler) (*Generator, *test.Hook) {
	t.Helper()
	schema, err := schemas.Compile("profile", profileSchema)
	require.NoError(t, err)
	logger, hook := test.NewNullLogger()
	if asm == nil {
		asm = &fakeAssembler{metadata: types.ContextMetadata{
			PositionFound:    true,
			KPIDepartmentKey: "IT",
			KPIConfidence:    types.MatchExact,
		}}
	}
	return &Generator{
		Assembler:  asm,
		Client:     client,
		Schema:     schema,
		SchemaText: profileSchema,
		Logger:     logger,
	}, hook
}

func TestGenerate_Valid(t *testing.T) {
	client := &fakeClient{responses: []string{"```json\n{\"position_title\": \"Director\"}\n```"}}
	g, _ := newGenerator(t, client, nil)

	res, err := g.Generate(context.Background(), Request{Department: "IT", Position: "Director", EmployeeName: "Alice"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.ID)
	assert.JSONEq(t, `{"position_title": "Director"}`, string(res.Profile))
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "Alice", res.Request.EmployeeName)
	require.NotNil(t, res.Context)

	calls := client.calls()
	require.Len(t, calls, 1)
	assert.True(t, strings.HasPrefix(calls[0], prompts.MustGet(promptFile, PromptSystem)))
	assert.Contains(t, calls[0], `position "Director" in the department "IT"`)
	assert.Contains(t, calls[0], "kpi_data=Director")
	assert.NotContains(t, calls[0], "{{.")
	assert.Equal(t, []llm.ModelTier{llm.TierAdvanced}, client.tiers)
}

func TestGenerate_Tier(t *testing.T) {
	client := &fakeClient{responses: []string{`{"position_title": "x"}`}}
	g, _ := newGenerator(t, client, nil)
	g.Tier = llm.TierStandard

	_, err := g.Generate(context.Background(), Request{Department: "IT", Position: "Director"})
	require.NoError(t, err)
	assert.Equal(t, []llm.ModelTier{llm.TierStandard}, client.tiers)
}

func TestGenerate_InvalidRequest(t *testing.T) {
	client := &fakeClient{responses: []string{`{}`}}
	g, _ := newGenerator(t, client, nil)

	for _, req := range []Request{
		{Department: "IT"},
		{Position: "Director"},
		{Department: "  ", Position: "Director"},
	} {
		_, err := g.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	assert.Empty(t, client.calls())
}

func TestGenerate_RepairsInvalidProfile(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"position_title": 5}`,
		`Here it is: {"position_title": "Director"}`,
	}}
	g, hook := newGenerator(t, client, nil)

	res, err := g.Generate(context.Background(), Request{Department: "IT", Position: "Director"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.JSONEq(t, `{"position_title": "Director"}`, string(res.Profile))

	calls := client.calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "Problems:")
	assert.Contains(t, calls[1], "position_title")
	assert.Contains(t, calls[1], `{"position_title": 5}`)
	assert.Contains(t, calls[1], `"required": ["position_title"]`)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "Generated profile failed schema validation, requesting repair" {
			warned = true
			assert.Equal(t, []string{"position_title"}, e.Data["fields"])
		}
	}
	assert.True(t, warned)
}

func TestGenerate_SchemaViolationAfterRepairs(t *testing.T) {
	tests := []struct {
		name     string
		repairs  int
		attempts int
	}{
		{name: "default", repairs: 0, attempts: 2},
		{name: "disabled", repairs: -1, attempts: 1},
		{name: "three rounds", repairs: 3, attempts: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{responses: []string{`{"title": "Director"}`}}
			g, hook := newGenerator(t, client, nil)
			g.RepairAttempts = tt.repairs

			res, err := g.Generate(context.Background(), Request{Department: "IT", Position: "Director"})
			var ve *schemas.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, []string{"(root)"}, ve.Fields())
			require.NotNil(t, res, "the invalid profile is still returned")
			assert.JSONEq(t, `{"title": "Director"}`, string(res.Profile))
			assert.Equal(t, tt.attempts, res.Attempts)
			assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		})
	}
}

func TestGenerate_NotJSON(t *testing.T) {
	client := &fakeClient{responses: []string{"I cannot help with that."}}
	g, _ := newGenerator(t, client, nil)
	g.RepairAttempts = -1

	res, err := g.Generate(context.Background(), Request{Department: "IT", Position: "Director"})
	var ve *schemas.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"(root)"}, ve.Fields())

	require.NotNil(t, res)
	assert.Nil(t, res.Profile)
	assert.Equal(t, "I cannot help with that.", res.RawOutput)

	data, err := json.MarshalIndent(res, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"raw_output": "I cannot help with that."`)
	assert.NotContains(t, string(data), `"profile"`)
}

func TestGenerate_ClientError(t *testing.T) {
	boom := errors.New("quota exceeded")
	client := &fakeClient{err: boom}
	g, _ := newGenerator(t, client, nil)

	res, err := g.Generate(context.Background(), Request{Department: "IT", Position: "Director"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "LLM generation failed")
}

func TestGenerate_AssemblyError(t *testing.T) {
	boom := errors.New("no org")
	client := &fakeClient{responses: []string{`{}`}}
	g, _ := newGenerator(t, client, &fakeAssembler{err: boom})

	_, err := g.Generate(context.Background(), Request{Department: "IT", Position: "Director"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, client.calls())
}

func TestGenerate_MissingVariables(t *testing.T) {
	client := &fakeClient{responses: []string{`{}`}}
	g, _ := newGenerator(t, client, &fakeAssembler{drop: "kpi_data"})

	_, err := g.Generate(context.Background(), Request{Department: "IT", Position: "Director"})
	assert.ErrorIs(t, err, ErrMissingVariables)
	assert.Contains(t, err.Error(), "kpi_data")
	assert.Empty(t, client.calls())
}

func TestGenerate_NotConfigured(t *testing.T) {
	g := &Generator{}
	_, err := g.Generate(context.Background(), Request{Department: "IT", Position: "Director"})
	assert.Error(t, err)
}

func TestGenerate_DegradedContextWarnings(t *testing.T) {
	client := &fakeClient{responses: []string{`{"position_title": "Designer"}`}}
	asm := &fakeAssembler{metadata: types.ContextMetadata{
		DegradedOrgLookup: true,
		TruncatedFields:   []string{"company_profile"},
	}}
	g, hook := newGenerator(t, client, asm)

	res, err := g.Generate(context.Background(), Request{Department: "Marketing", Position: "Designer"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"department not found in the org structure",
		"no KPI document matches the department",
		"truncated: company_profile",
	}, res.Warnings)

	warns := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warns++
		}
	}
	assert.Equal(t, 3, warns)
}

func TestContextWarnings(t *testing.T) {
	tests := []struct {
		name     string
		metadata types.ContextMetadata
		want     []string
	}{
		{
			name:     "clean",
			metadata: types.ContextMetadata{PositionFound: true, KPIDepartmentKey: "IT", KPIConfidence: types.MatchFuzzy},
		},
		{
			name:     "position missing from unit",
			metadata: types.ContextMetadata{OrgPath: "Ops / IT", KPIDepartmentKey: "IT", KPIConfidence: types.MatchExact},
			want:     []string{"position not listed in Ops / IT"},
		},
		{
			name: "ambiguous KPI column",
			metadata: types.ContextMetadata{
				PositionFound:       true,
				KPIDepartmentKey:    "IT",
				KPIConfidence:       types.MatchUnresolved,
				AmbiguousCandidates: []string{"Bob", "Carol"},
			},
			want: []string{"KPI column unresolved, corporate KPIs only (candidates: Bob, Carol)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contextWarnings(&types.AssembledContext{Metadata: tt.metadata})
			assert.Equal(t, tt.want, got)
		})
	}
}
