package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShapelessCat/leveled-signal-proc/config"
	"github.com/ShapelessCat/leveled-signal-proc/errors"
	"github.com/ShapelessCat/leveled-signal-proc/executor"
	"github.com/ShapelessCat/leveled-signal-proc/internal/version"
	"github.com/ShapelessCat/leveled-signal-proc/logger"
)

var (
	logJSON   bool
	logTheme  string
	irPath    string
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "lsprun",
	Short: "Drive an LSP IR document against a JSONL patch stream",
	Long: `lsprun loads an IR document produced by lspbuild and executes it
against a JSONL stream of timestamped input patches read from stdin,
writing one JSON metric record per emitted moment to stdout.

Exit 0 on success; 1 on a malformed IR document; 2 on a runtime error,
with a JSON diagnostic written to stderr.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(logJSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if logTheme != "" {
			logger.SetTheme(logTheme)
		}
		logger.SetVerbosity(verbosity)
		if logger.ShouldOutput(verbosity, logger.OutputStartup) {
			logger.Infow("lsprun starting", "verbosity", logger.LevelName(verbosity))
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute an IR document against stdin, writing metric records to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		if irPath == "" {
			return fmt.Errorf("--ir is required")
		}
		data, err := os.ReadFile(irPath)
		if err != nil {
			return fmt.Errorf("failed to read IR file %s: %w", irPath, err)
		}

		doc, err := executor.LoadDocument(data)
		if err != nil {
			return err
		}
		if logger.ShouldOutput(verbosity, logger.OutputSchemaSummary) {
			logger.Infow("IR document loaded", "node_count", len(doc.Nodes), "member_count", len(doc.Schema.Members))
		}
		if logger.ShouldShowIRDump(verbosity) {
			logger.Debugw("full IR document", "document", doc)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if logger.ShouldOutput(verbosity, logger.OutputConfig) {
			logger.Infow("tuning config loaded", "config", cfg)
		}

		start := time.Now()
		runErr := executor.RunWithConfig(doc, cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
		durationMS := time.Since(start).Milliseconds()
		if logger.ShouldShowTiming(verbosity, durationMS) {
			logger.Infow("run finished", logger.FieldDurationMS, durationMS)
		}

		if runErr != nil {
			writeRuntimeDiagnostic(cmd, runErr)
			os.Exit(2)
		}
		return nil
	},
}

// writeRuntimeDiagnostic renders a run-time failure (spec.md §7's
// evaluation_fatal path) as a JSON object on stderr, carrying whatever
// safe details the error accumulated (node id, debug info) alongside
// its message and stack.
func writeRuntimeDiagnostic(cmd *cobra.Command, err error) {
	diagnostic := map[string]interface{}{
		"error":   err.Error(),
		"details": errors.GetAllDetails(err),
		"hints":   errors.GetAllHints(err),
	}
	enc := json.NewEncoder(cmd.ErrOrStderr())
	enc.SetIndent("", "  ")
	_ = enc.Encode(diagnostic)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON instead of human-readable console output")
	rootCmd.PersistentFlags().StringVar(&logTheme, "log-theme", "", "console log color theme")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")

	runCmd.Flags().StringVar(&irPath, "ir", "", "path to the IR document produced by lspbuild")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show lsprun version information",
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
