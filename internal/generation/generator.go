// Package generation turns an assembled context into a schema-valid job
// profile through an LLM client.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/llm"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/logging"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/prompts"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/schemas"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

const promptFile = "generation.json"

// Prompt keys in generation.json
const (
	PromptSystem     = "system"
	PromptJobProfile = "job-profile"
	PromptRepair     = "repair"
)

// DefaultRepairAttempts is how many times an invalid profile is sent back for correction
const DefaultRepairAttempts = 1

var (
	// ErrInvalidRequest is returned when a request fails validation
	ErrInvalidRequest = errors.New("invalid generation request")
	// ErrMissingVariables is returned when the prompt references variables the context lacks
	ErrMissingVariables = prompts.ErrMissingVariables
)

var validate = validator.New()

// Assembler builds the context for one position
type Assembler interface {
	Assemble(department, position, employeeName string) (*types.AssembledContext, error)
}

// Request identifies the position to profile
type Request struct {
	Department   string `json:"department" validate:"required"`
	Position     string `json:"position" validate:"required"`
	EmployeeName string `json:"employee_name,omitempty"`
}

// Validate checks the required fields of the request.
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if strings.TrimSpace(r.Department) == "" || strings.TrimSpace(r.Position) == "" {
		return fmt.Errorf("%w: department and position must not be blank", ErrInvalidRequest)
	}
	return nil
}

// Result is one generated profile
type Result struct {
	ID      uuid.UUID       `json:"id"`
	Request Request         `json:"request"`
	Profile json.RawMessage `json:"profile,omitempty"`
	// RawOutput holds the model answer when it is not JSON at all.
	RawOutput string                  `json:"raw_output,omitempty"`
	Context   *types.AssembledContext `json:"context"`
	Warnings  []string                `json:"warnings,omitempty"`
	// Attempts counts LLM calls, the first generation included.
	Attempts int `json:"attempts"`
}

// Generator runs context assembly, prompting and schema validation
type Generator struct {
	Assembler Assembler
	Client    llm.Client
	Schema    *gojsonschema.Schema
	// SchemaText is sent back to the model with repair prompts.
	SchemaText string
	Tier       llm.ModelTier
	// RepairAttempts bounds correction rounds; negative disables them.
	RepairAttempts int
	Logger         logrus.FieldLogger
}

func (g *Generator) logger() logrus.FieldLogger {
	return logging.Component(g.Logger, "generation")
}

func (g *Generator) tier() llm.ModelTier {
	if g.Tier == "" {
		return llm.TierAdvanced
	}
	return g.Tier
}

func (g *Generator) repairAttempts() int {
	switch {
	case g.RepairAttempts < 0:
		return 0
	case g.RepairAttempts == 0:
		return DefaultRepairAttempts
	default:
		return g.RepairAttempts
	}
}

// Generate produces a profile for req. A profile that still violates the
// schema after the repair rounds is returned alongside a
// *schemas.ValidationError.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if g.Assembler == nil || g.Client == nil || g.Schema == nil {
		return nil, errors.New("generator is not fully configured")
	}

	assembled, err := g.Assembler.Assemble(req.Department, req.Position, req.EmployeeName)
	if err != nil {
		return nil, fmt.Errorf("context assembly failed: %w", err)
	}

	prompt, err := renderPrompt(PromptJobProfile, assembled.Vars())
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:       uuid.New(),
		Request:  req,
		Context:  assembled,
		Warnings: contextWarnings(assembled),
	}
	log := g.logger().WithFields(logrus.Fields{
		"id":         result.ID.String(),
		"department": req.Department,
		"position":   req.Position,
	})
	for _, w := range result.Warnings {
		log.WithField("warning", w).Warn("Generating with degraded context")
	}

	profile, err := g.call(ctx, prompt, result)
	if err != nil {
		return nil, err
	}

	validationErr := schemas.ValidateDocument(g.Schema, profile)
	for round := 0; validationErr != nil && round < g.repairAttempts(); round++ {
		var ve *schemas.ValidationError
		if !errors.As(validationErr, &ve) {
			break
		}
		log.WithFields(logrus.Fields{
			"round":  round + 1,
			"fields": ve.Fields(),
		}).Warn("Generated profile failed schema validation, requesting repair")

		repair, err := renderPrompt(PromptRepair, map[string]string{
			"errors":      ve.Error(),
			"profile":     profile,
			"json_schema": g.SchemaText,
		})
		if err != nil {
			return nil, err
		}
		if profile, err = g.call(ctx, repair, result); err != nil {
			return nil, err
		}
		validationErr = schemas.ValidateDocument(g.Schema, profile)
	}

	if json.Valid([]byte(profile)) {
		result.Profile = json.RawMessage(profile)
	} else {
		result.RawOutput = profile
	}
	if validationErr != nil {
		log.WithError(validationErr).Error("Generated profile does not match the schema")
		return result, validationErr
	}

	log.WithFields(logrus.Fields{
		"attempts":      result.Attempts,
		"size_estimate": assembled.SizeEstimate,
	}).Info("Job profile generated")
	return result, nil
}

// call sends one prompt and returns the cleaned JSON text.
func (g *Generator) call(ctx context.Context, prompt string, result *Result) (string, error) {
	result.Attempts++
	raw, err := g.Client.GenerateJSON(ctx, prompt, g.tier())
	if err != nil {
		return "", fmt.Errorf("LLM generation failed: %w", err)
	}
	return llm.CleanJSONBlock(raw), nil
}

// renderPrompt prefixes the system prompt to the template and fills it.
func renderPrompt(key string, vars map[string]string) (string, error) {
	body, err := prompts.Render(promptFile, key, vars)
	if err != nil {
		return "", err
	}
	system, err := prompts.Get(promptFile, PromptSystem)
	if err != nil {
		return "", err
	}
	return system + "\n\n" + body, nil
}
