// Package config loads operational tuning knobs for the executor: values
// that shape how a run behaves without being part of the DAG itself, so
// they live outside the IR rather than as another node_decl field.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/ShapelessCat/leveled-signal-proc/errors"
)

// Config is the executor's tuning configuration.
type Config struct {
	Run RunConfig `mapstructure:"run"`
	Log LogConfig `mapstructure:"log"`
}

// RunConfig holds safety-valve defaults for executor behavior that the
// IR can leave unspecified, and I/O sizing for the patch/output streams.
type RunConfig struct {
	// DefaultLivenessTimeoutNS is used by a LivenessChecker node whose
	// node_decl omits timeout_ns (0 or absent).
	DefaultLivenessTimeoutNS int64 `mapstructure:"default_liveness_timeout_ns"`

	// MaxSlidingWindowCapacity caps how many points a count-bounded
	// SlidingWindow may retain, independent of the IR's declared
	// count_size, guarding against a pathological or malformed IR
	// asking for an effectively unbounded queue.
	MaxSlidingWindowCapacity int `mapstructure:"max_sliding_window_capacity"`

	// ReadBufferBytes sizes the initial JSONL scan buffer.
	ReadBufferBytes int `mapstructure:"read_buffer_bytes"`

	// MaxLineBytes bounds how large a single JSONL patch line may grow
	// to before scanning fails instead of growing unbounded.
	MaxLineBytes int `mapstructure:"max_line_bytes"`
}

// LogConfig controls how the CLI initializes the logger.
type LogConfig struct {
	// Format is "json" or "console" (zap's two built-in encodings).
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the executor's tuning configuration using Viper, caching
// the result the way am.Load does.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &cfg
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access.
func GetViper() *viper.Viper {
	return initViper()
}

// Reset clears the cached configuration. Useful for testing.
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// Default returns the configuration that Load would produce with no
// config file present anywhere on the search path -- the baseline every
// lsprun invocation falls back to.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("LSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// findProjectConfig walks up from the working directory looking for
// lsp.toml, the same upward-search convention am.Load uses for am.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, "lsp.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// mergeConfigFiles merges config sources lowest to highest precedence:
// system, user, project, then (via AutomaticEnv above) environment.
func mergeConfigFiles(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	paths := []string{
		"/etc/lsp/config.toml",
		filepath.Join(homeDir, ".lsp", "config.toml"),
	}
	if proj := findProjectConfig(); proj != "" {
		paths = append(paths, proj)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		tmp := viper.New()
		tmp.SetConfigFile(path)
		tmp.SetConfigType("toml")
		if err := tmp.ReadInConfig(); err != nil {
			continue
		}
		settings := tmp.AllSettings()
		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v.Set(k, settings[k])
		}
	}
}

// SetDefaults installs the baseline values every key falls back to when
// neither a config file nor an environment variable supplies one.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("run.default_liveness_timeout_ns", int64(30)*1_000_000_000)
	v.SetDefault("run.max_sliding_window_capacity", 100_000)
	v.SetDefault("run.read_buffer_bytes", 64*1024)
	v.SetDefault("run.max_line_bytes", 16*1024*1024)

	v.SetDefault("log.format", "console")
	v.SetDefault("log.level", "info")
}
