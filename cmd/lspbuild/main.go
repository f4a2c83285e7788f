package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ShapelessCat/leveled-signal-proc/examples"
	"github.com/ShapelessCat/leveled-signal-proc/internal/version"
	"github.com/ShapelessCat/leveled-signal-proc/logger"
)

var (
	logJSON   bool
	logTheme  string
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "lspbuild",
	Short: "Emit the IR document for a registered LSP metric DAG",
	Long: `lspbuild runs a named DAG builder and writes the resulting IR
document as JSON to stdout, the input the lsprun executor consumes.

Exit 0 on success; 1 on a schema or IR construction error.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(logJSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if logTheme != "" {
			logger.SetTheme(logTheme)
		}
		logger.SetVerbosity(verbosity)
		if logger.ShouldOutput(verbosity, logger.OutputStartup) {
			logger.Infow("lspbuild starting", "verbosity", logger.LevelName(verbosity))
		}
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build <scenario>",
	Short: "Build a registered scenario's DAG and emit its IR as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		scenario, ok := examples.Scenarios[name]
		if !ok {
			names := examples.Names()
			sort.Strings(names)
			return fmt.Errorf("unknown scenario %q, known scenarios: %v", name, names)
		}

		doc, err := buildDocument(scenario)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

// buildDocument recovers from the builder's construction-time panics
// (schema_conflict, unknown_member, type mismatches) and turns them into
// ordinary errors, since lsdl.Builder reports those synchronously via
// panic rather than a returned error.
func buildDocument(scenario examples.Scenario) (doc interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return scenario.Build(), nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered scenario names",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := examples.Names()
		sort.Strings(names)
		if logger.ShouldOutput(verbosity, logger.OutputScenarioList) {
			logger.Infow("listing registered scenarios", logger.FieldCount, len(names))
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON instead of human-readable console output")
	rootCmd.PersistentFlags().StringVar(&logTheme, "log-theme", "", "console log color theme")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show lspbuild version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
