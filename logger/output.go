package logger

// Output controls what categories of information are shown at each verbosity
// level for the lspbuild/lsprun command-line tools.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of dataflow-engine information are displayed regardless of
// severity.
//
// Verbosity Levels:
//
//	0 (default) - User-facing output only: metric records, errors with hints
//	1 (-v)      - + progress, schema/IR summaries, scenario listings
//	2 (-vv)     - + per-moment timing, tuning config loaded, patch counters
//	3 (-vvv)    - + per-node evaluation trace, per-line patch parsing
//	4 (-vvvv)   - + full per-node value dumps, raw patch bodies, full IR dumps

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults    OutputCategory = iota // Emitted metric records
	OutputErrors                           // Errors with hints and resolution steps
	OutputUserStatus                       // Final success/failure status

	// Level 1 (-v) - Informational
	OutputProgress      // Progress indicators (e.g., "closed moment 4000/10000")
	OutputStartup       // Startup banner, config summary
	OutputSchemaSummary // Schema member count/types loaded from the IR document
	OutputScenarioList  // Registered scenario names (lspbuild list)

	// Level 2 (-vv) - Detailed
	OutputTiming      // Per-run and per-moment timing
	OutputConfig      // Tuning config values loaded/applied
	OutputPatchStats  // Patch lines parsed/skipped counters
	OutputNodeCount   // DAG node count and kind breakdown

	// Level 3 (-vvv) - Debug
	OutputNodeEval        // Per-node evaluation trace (id, kind, changed)
	OutputPatchParse      // Per-line patch parsing detail
	OutputEmissionDecision // Trigger evaluation detail (why a moment did/didn't emit)

	// Level 4 (-vvvv) - Full dump
	OutputNodeValues   // Full per-node value dump each moment
	OutputRawPatchBody // Full raw patch JSON as received
	OutputIRDump       // Full IR document contents
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	// Level 0 - Always shown
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	// Level 1 - Informational
	OutputProgress:      VerbosityInfo,
	OutputStartup:       VerbosityInfo,
	OutputSchemaSummary: VerbosityInfo,
	OutputScenarioList:  VerbosityInfo,

	// Level 2 - Detailed
	OutputTiming:     VerbosityDebug,
	OutputConfig:     VerbosityDebug,
	OutputPatchStats: VerbosityDebug,
	OutputNodeCount:  VerbosityDebug,

	// Level 3 - Debug
	OutputNodeEval:         VerbosityTrace,
	OutputPatchParse:       VerbosityTrace,
	OutputEmissionDecision: VerbosityTrace,

	// Level 4 - Full dump
	OutputNodeValues:   VerbosityAll,
	OutputRawPatchBody: VerbosityAll,
	OutputIRDump:       VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// categoryNames provides human-readable names for output categories
var categoryNames = map[OutputCategory]string{
	OutputResults:          "results",
	OutputErrors:           "errors",
	OutputUserStatus:       "status",
	OutputProgress:         "progress",
	OutputStartup:          "startup",
	OutputSchemaSummary:    "schema-summary",
	OutputScenarioList:     "scenario-list",
	OutputTiming:           "timing",
	OutputConfig:           "config",
	OutputPatchStats:       "patch-stats",
	OutputNodeCount:        "node-count",
	OutputNodeEval:         "node-eval",
	OutputPatchParse:       "patch-parse",
	OutputEmissionDecision: "emission-decision",
	OutputNodeValues:       "node-values",
	OutputRawPatchBody:     "raw-patch-body",
	OutputIRDump:           "ir-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// EnabledCategories returns all output categories enabled at the given verbosity
func EnabledCategories(verbosity int) []OutputCategory {
	var enabled []OutputCategory
	for cat, minLevel := range categoryLevels {
		if verbosity >= minLevel {
			enabled = append(enabled, cat)
		}
	}
	return enabled
}

// VerbosityDescription returns a description of what's shown at each level
func VerbosityDescription(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "metric records and errors only"
	case VerbosityInfo:
		return "above + progress, schema/IR summaries"
	case VerbosityDebug:
		return "above + per-moment timing, config, patch stats"
	case VerbosityTrace:
		return "above + per-node evaluation trace, patch parsing"
	case VerbosityAll:
		return "above + full node/patch/IR dumps"
	default:
		if verbosity > VerbosityAll {
			return "maximum verbosity"
		}
		return "unknown verbosity level"
	}
}

// Node evaluation output helpers

// ShouldShowNodeEval returns true if per-node evaluation traces should be logged
func ShouldShowNodeEval(verbosity int) bool {
	return ShouldOutput(verbosity, OutputNodeEval)
}

// ShouldShowNodeValues returns true if full per-node value dumps should be logged
func ShouldShowNodeValues(verbosity int) bool {
	return ShouldOutput(verbosity, OutputNodeValues)
}

// ShouldShowIRDump returns true if the full IR document should be dumped
func ShouldShowIRDump(verbosity int) bool {
	return ShouldOutput(verbosity, OutputIRDump)
}

// Patch stream output helpers

// ShouldShowPatchParse returns true if per-line patch parsing should be logged
func ShouldShowPatchParse(verbosity int) bool {
	return ShouldOutput(verbosity, OutputPatchParse)
}

// ShouldShowRawPatchBody returns true if the raw patch JSON should be logged
func ShouldShowRawPatchBody(verbosity int) bool {
	return ShouldOutput(verbosity, OutputRawPatchBody)
}

// Timing helpers

// SlowMomentThresholdMS is the threshold in milliseconds above which a
// run's total elapsed time is always reported, regardless of verbosity.
const SlowMomentThresholdMS = 100

// ShouldShowTiming returns true if timing info should be displayed.
// Shows if: verbosity >= 2 (-vv) OR the run exceeded the slow threshold.
func ShouldShowTiming(verbosity int, durationMS int64) bool {
	if durationMS >= SlowMomentThresholdMS {
		return true // Always report slow runs
	}
	return ShouldOutput(verbosity, OutputTiming)
}

// ShouldShowTimingAlways returns true if timing should always be shown (slow run)
func ShouldShowTimingAlways(durationMS int64) bool {
	return durationMS >= SlowMomentThresholdMS
}
