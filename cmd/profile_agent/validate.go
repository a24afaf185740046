package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/observability"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a job profile JSON file against the profile schema",
	Long:  "Validates a JSON document against a JSON Schema and prints every violation. Exits with code 1 when the document is invalid.",
	RunE:  runValidate,
}

var (
	validateSchema string
	validateJSON   string
)

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to the JSON schema (defaults to the bundled job profile schema)")
	validateCmd.Flags().StringVar(&validateJSON, "json", "", "Path to the JSON document (required)")

	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	schemaPath := validateSchema
	if schemaPath == "" {
		schemaPath = schemas.ResolveSchemaPath(schemas.JobProfileSchemaPath)
	}

	for _, p := range []string{schemaPath, validateJSON} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("file not found: %s", p)
		}
	}

	err := schemas.ValidateJSON(schemaPath, validateJSON)
	out := cmd.OutOrStdout()
	var ve *schemas.ValidationError
	switch {
	case err == nil:
		_, _ = fmt.Fprintln(out, "Validation passed")
		return nil
	case errors.As(err, &ve):
		_, _ = fmt.Fprintln(out, "Validation failed")
		observability.NewPrinter(out).PrintValidationErrors(ve)
		return &exitError{code: exitFailure, err: fmt.Errorf("%s does not match the schema", validateJSON)}
	default:
		return err
	}
}
