package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/generation"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/schemas"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a job profile for one position or a batch",
	Long: `Assembles the context, sends the job-profile prompt to the model and validates the answer against the profile schema.

Use --department/--position for one profile, or --batch with a JSON array of
{"department", "position", "employee_name"} objects.`,
	RunE: runGenerate,
}

var (
	genDepartment  string
	genPosition    string
	genEmployee    string
	genOut         string
	genBatch       string
	genOutDir      string
	genConcurrency int
)

func init() {
	generateCmd.Flags().StringVarP(&genDepartment, "department", "d", "", "Department name or full path")
	generateCmd.Flags().StringVarP(&genPosition, "position", "p", "", "Position title")
	generateCmd.Flags().StringVarP(&genEmployee, "employee", "e", "", "Employee name")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "Write the result JSON to this file instead of stdout")
	generateCmd.Flags().StringVar(&genBatch, "batch", "", "Path to a JSON array of requests")
	generateCmd.Flags().StringVar(&genOutDir, "out-dir", "output/profiles", "Directory for batch results")
	generateCmd.Flags().IntVar(&genConcurrency, "concurrency", 0, "Parallel generations in batch mode (defaults to config)")

	generateCmd.MarkFlagsMutuallyExclusive("batch", "department")
	generateCmd.MarkFlagsMutuallyExclusive("batch", "out")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if genBatch == "" && (genDepartment == "" || genPosition == "") {
		return &exitError{code: exitUsage, err: errors.New("either --batch or both --department and --position are required")}
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	gen, client, err := svc.generator(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if genBatch != "" {
		return runGenerateBatch(cmd, svc, gen)
	}

	res, err := gen.Generate(ctx, generation.Request{
		Department:   genDepartment,
		Position:     genPosition,
		EmployeeName: genEmployee,
	})
	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		svc.printer.PrintValidationErrors(ve)
	}
	if err != nil {
		return err
	}

	if rootVerbose {
		svc.printer.PrintContextSummary(res.Context)
		var profile types.JobProfile
		if json.Unmarshal(res.Profile, &profile) == nil {
			svc.printer.PrintJobProfile(&profile)
		}
	}
	return writeJSON(cmd.OutOrStdout(), genOut, res)
}

func runGenerateBatch(cmd *cobra.Command, svc *services, gen *generation.Generator) error {
	data, err := os.ReadFile(genBatch)
	if err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}
	var reqs []generation.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("failed to parse batch file: %w", err)
	}

	concurrency := genConcurrency
	if concurrency <= 0 {
		concurrency = svc.cfg.LLM.BatchConcurrency
	}

	items := gen.GenerateBatch(cmd.Context(), reqs, concurrency)
	for i := range items {
		item := &items[i]
		if item.Result == nil {
			continue
		}
		path := filepath.Join(genOutDir, batchFileName(*item))
		if err := writeJSON(cmd.OutOrStdout(), path, item.Result); err != nil {
			svc.logger.WithError(err).WithField("path", path).Error("Failed to write batch result")
			item.Err = errors.Join(item.Err, err)
		}
	}
	svc.printer.PrintBatchSummary(items)

	failed := 0
	for _, item := range items {
		if item.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d profiles failed", failed, len(items))
	}
	return nil
}

// batchFileName names a result file by its index and position, keeping it
// filesystem-safe.
func batchFileName(item generation.BatchItem) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '/' || r == '\\':
			return '_'
		case r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return -1
		}
		return r
	}, strings.TrimSpace(item.Result.Request.Position))
	return fmt.Sprintf("%03d_%s.json", item.Index+1, slug)
}
