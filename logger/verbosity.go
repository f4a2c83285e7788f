package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for the -v/-vv/-vvv/-vvvv CLI flag count shared
// by lspbuild and lsprun. These drive both zap's severity filter (via
// VerbosityToLevel) and the OutputCategory gating in output.go -- the two
// are related but distinct: a category can require VerbosityTrace while
// the underlying zap level tops out at DebugLevel, since OutputCategory is
// what decides whether a given Infow/Debugw call happens at all.
const (
	VerbosityUser  = 0 // No flags: user-facing output only
	VerbosityInfo  = 1 // -v: informational messages
	VerbosityDebug = 2 // -vv: debug messages
	VerbosityTrace = 3 // -vvv: trace-level debugging
	VerbosityAll   = 4 // -vvvv: dump full data structures
)

// VerbosityToLevel maps a -v flag count to the zap severity level
// SetVerbosity applies to the running logger's core.
//
// Mapping:
//
//	0 (none)  -> WarnLevel  (errors and warnings only)
//	1 (-v)    -> InfoLevel  (+ informational messages)
//	2 (-vv)   -> DebugLevel (+ debug messages)
//	3+ (-vvv) -> DebugLevel (zap has no finer built-in level; OutputCategory
//	             gating, not the zap level, distinguishes -vvv/-vvvv beyond
//	             this point)
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch verbosity {
	case VerbosityUser:
		return zapcore.WarnLevel
	case VerbosityInfo:
		return zapcore.InfoLevel
	case VerbosityDebug:
		return zapcore.DebugLevel
	case VerbosityTrace:
		return zapcore.DebugLevel
	case VerbosityAll:
		return zapcore.DebugLevel
	default:
		// For any verbosity > VerbosityAll, use DebugLevel
		return zapcore.DebugLevel
	}
}

// ShouldLogTrace returns true for verbosity >= 3 (-vvv): per-node
// evaluation traces and per-line patch parsing detail.
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}

// ShouldLogAll returns true for verbosity >= 4 (-vvvv): full per-node
// value dumps, raw patch bodies, and the full IR document.
func ShouldLogAll(verbosity int) bool {
	return verbosity >= VerbosityAll
}

// LevelName returns a human-readable name for a verbosity level, used in
// the startup banner lspbuild/lsprun emit at OutputStartup level so a
// user who passed -vv knows what they turned on.
func LevelName(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "User"
	case VerbosityInfo:
		return "Info (-v)"
	case VerbosityDebug:
		return "Debug (-vv)"
	case VerbosityTrace:
		return "Trace (-vvv)"
	case VerbosityAll:
		return "All (-vvvv)"
	default:
		if verbosity > VerbosityAll {
			return "All (-vvvv+)"
		}
		return "Unknown"
	}
}
