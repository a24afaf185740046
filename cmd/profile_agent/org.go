package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Resolve a department (and position) in the org structure",
	Long:  "Looks up a department by full path or name, optionally finds a position inside it, and prints the hierarchy path and headcount.",
	RunE:  runOrg,
}

var (
	orgDepartment string
	orgPosition   string
	orgJSON       bool
)

func init() {
	orgCmd.Flags().StringVarP(&orgDepartment, "department", "d", "", "Department name or full path (required)")
	orgCmd.Flags().StringVarP(&orgPosition, "position", "p", "", "Position title to find inside the department")
	orgCmd.Flags().BoolVar(&orgJSON, "json", false, "Print the result as JSON")

	if err := orgCmd.MarkFlagRequired("department"); err != nil {
		panic(fmt.Sprintf("failed to mark department flag as required: %v", err))
	}

	rootCmd.AddCommand(orgCmd)
}

type orgResult struct {
	Query         string          `json:"query"`
	Found         bool            `json:"found"`
	Tier          string          `json:"match_tier"`
	Score         float64         `json:"score"`
	Path          string          `json:"path,omitempty"`
	Segments      []string        `json:"segments,omitempty"`
	PositionFound bool            `json:"position_found"`
	PositionUnit  string          `json:"position_unit,omitempty"`
	Headcount     types.Headcount `json:"headcount"`
	Candidates    []string        `json:"candidates,omitempty"`
	Suggestions   []string        `json:"suggestions,omitempty"`
}

func runOrg(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	lookup := svc.org.FindPosition(orgDepartment, orgPosition)
	dept := lookup.Department
	headcount := svc.org.ComputeHeadcount(dept.Node)

	if orgJSON {
		res := orgResult{
			Query:         dept.Query,
			Found:         dept.Found,
			Tier:          string(dept.Tier),
			Score:         dept.Score,
			Path:          dept.Path(),
			Segments:      dept.Segments(),
			PositionFound: lookup.PositionFound,
			Headcount:     headcount,
			Candidates:    dept.Candidates,
			Suggestions:   dept.Suggestions,
		}
		if lookup.PositionFound {
			res.PositionUnit = lookup.Path()
		}
		if err := writeJSON(cmd.OutOrStdout(), "", res); err != nil {
			return err
		}
	} else {
		svc.printer.PrintOrgLookup(lookup, headcount)
	}

	if !dept.Found {
		msg := fmt.Sprintf("department %q not found", orgDepartment)
		if len(dept.Suggestions) > 0 {
			msg += "; did you mean: " + strings.Join(dept.Suggestions, ", ")
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}
