// Package main provides the profile_agent CLI: org and KPI lookups, context
// assembly and job profile generation.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "profile_agent",
	Short: "HR job profile generator",
	Long: `profile_agent resolves a department and position against the organization structure and KPI tables,
assembles a bounded context from the company documents and generates a schema-valid job profile.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var (
	rootConfigPath string
	rootEnvFile    string
	rootLogLevel   string
	rootLogFormat  string
	rootVerbose    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config", "", "Path to config.json (defaults apply when omitted)")
	flags.StringVar(&rootEnvFile, "env-file", ".env", "Env file loaded before the environment is read")
	flags.StringVar(&rootLogLevel, "log-level", "", "Log level override: debug, info, warn, error")
	flags.StringVar(&rootLogFormat, "log-format", "", "Log format override: text or json")
	flags.BoolVarP(&rootVerbose, "verbose", "v", false, "Print formatted summaries of each lookup")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: exitUsage, err: err}
	})
}

// Exit codes
const (
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries the process exit code of a failed command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
