package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Map a department to its KPI file and resolve a position's KPI column",
	Long: `Maps the department to a KPI document (exact, alias, fuzzy), resolves the position to an employee column
and prints the KPI rows that apply to it. The org structure supplies the unit path used to disambiguate
shared titles.`,
	RunE: runKPI,
}

var (
	kpiDepartment string
	kpiPosition   string
	kpiEmployee   string
	kpiJSON       bool
)

func init() {
	kpiCmd.Flags().StringVarP(&kpiDepartment, "department", "d", "", "Department name or full path (required)")
	kpiCmd.Flags().StringVarP(&kpiPosition, "position", "p", "", "Position title (required)")
	kpiCmd.Flags().StringVarP(&kpiEmployee, "employee", "e", "", "Employee name hint for shared titles")
	kpiCmd.Flags().BoolVar(&kpiJSON, "json", false, "Print mapping and resolution as JSON")

	for _, name := range []string{"department", "position"} {
		if err := kpiCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(kpiCmd)
}

type kpiResult struct {
	Department string                    `json:"department"`
	Key        string                    `json:"kpi_file,omitempty"`
	Tier       string                    `json:"match_tier"`
	Score      float64                   `json:"score"`
	Resolution *types.PositionResolution `json:"resolution"`
	Table      string                    `json:"table"`
}

func runKPI(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	res, err := svc.assembler.ResolveKPI(kpiDepartment, kpiPosition, kpiEmployee)
	if err != nil {
		return err
	}
	mapping := res.Mapping

	if kpiJSON {
		return writeJSON(cmd.OutOrStdout(), "", kpiResult{
			Department: kpiDepartment,
			Key:        mapping.Key,
			Tier:       string(mapping.Tier),
			Score:      mapping.Score,
			Resolution: &res.Resolution,
			Table:      res.Text,
		})
	}

	if rootVerbose {
		svc.printer.PrintKPIMapping(mapping)
		svc.printer.PrintKPIResolution(&res.Resolution)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return nil
}
