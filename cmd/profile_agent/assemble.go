package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the generation context for a position",
	Long:  "Builds the bounded variable set (org hierarchy, headcount, KPI table, company and IT documents, schema) that generation would send to the model, and prints it as JSON.",
	RunE:  runAssemble,
}

var (
	assembleDepartment string
	assemblePosition   string
	assembleEmployee   string
	assembleOut        string
	assembleSummary    bool
)

func init() {
	assembleCmd.Flags().StringVarP(&assembleDepartment, "department", "d", "", "Department name or full path (required)")
	assembleCmd.Flags().StringVarP(&assemblePosition, "position", "p", "", "Position title (required)")
	assembleCmd.Flags().StringVarP(&assembleEmployee, "employee", "e", "", "Employee name")
	assembleCmd.Flags().StringVarP(&assembleOut, "out", "o", "", "Write the context JSON to this file instead of stdout")
	assembleCmd.Flags().BoolVar(&assembleSummary, "summary", false, "Print a size summary instead of the full context")

	for _, name := range []string{"department", "position"} {
		if err := assembleCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	ctx, err := svc.assembler.Assemble(assembleDepartment, assemblePosition, assembleEmployee)
	if err != nil {
		return err
	}

	if assembleSummary || rootVerbose {
		svc.printer.PrintContextSummary(ctx)
		if assembleSummary {
			return nil
		}
	}
	if err := writeJSON(cmd.OutOrStdout(), assembleOut, ctx); err != nil {
		return err
	}
	if assembleOut != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Context written to %s (~%d tokens)\n", assembleOut, ctx.SizeEstimate)
	}
	return nil
}
