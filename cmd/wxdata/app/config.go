package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/wxdata/pkg/constants"
	pkgerrors "github.com/agentstation/wxdata/pkg/errors"
)

// EnvPrefix prefixes the environment variables read by the CLI, as in
// WXDATA_CATALOG or WXDATA_WORKERS.
const EnvPrefix = "WXDATA"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Index configuration
	Catalog    string
	Workers    int
	ScratchDir string
	Ignore     []string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// envLogLevel is LOG_LEVEL, applied after the flags
	envLogLevel string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (constants.DefaultConfigPath, ./.wxdata.yaml or $WXDATA_CONFIG)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(os.Getenv(EnvPrefix + "_CONFIG"))
}

// loadConfig loads the configuration, reading file when given instead of
// searching the standard locations.
func loadConfig(file string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("format", "")

	if file != "" {
		v.SetConfigFile(expandHome(file))
		if err := v.ReadInConfig(); err != nil {
			return nil, pkgerrors.NewConfigError("config file", file, err)
		}
	} else {
		// ~/.wxdata.yaml, then ./.wxdata.yaml
		defaultPath := expandHome(constants.DefaultConfigPath)
		ext := filepath.Ext(defaultPath)
		v.AddConfigPath(filepath.Dir(defaultPath))
		v.AddConfigPath(".")
		v.SetConfigType(strings.TrimPrefix(ext, "."))
		v.SetConfigName(strings.TrimSuffix(filepath.Base(defaultPath), ext))

		// Read config file (ignore error if not found)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, pkgerrors.NewConfigError("config file", v.ConfigFileUsed(), err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Catalog:    expandHome(v.GetString("catalog")),
		Workers:    v.GetInt("workers"),
		ScratchDir: expandHome(v.GetString("scratch_dir")),
		Ignore:     v.GetStringSlice("ignore"),

		LogFormat: firstNonEmpty(os.Getenv("LOG_FORMAT"), v.GetString("log_format"), "auto"),
		LogOutput: firstNonEmpty(os.Getenv("LOG_OUTPUT"), v.GetString("log_output"), "stderr"),

		envLogLevel: firstNonEmpty(os.Getenv("LOG_LEVEL"), v.GetString("log_level")),
	}

	if config.Workers < 1 || config.Workers > constants.MaxWorkers {
		return nil, pkgerrors.NewValidationError("workers", config.Workers, "must be between 1 and 64")
	}

	return config, nil
}

// mergeFile replaces the settings that were not given as flags with the
// ones of other, which was loaded from an explicit config file.
func (c *Config) mergeFile(other *Config, flags *pflag.FlagSet) {
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if !changed("verbose") {
		c.Verbose = other.Verbose
	}
	if !changed("quiet") {
		c.Quiet = other.Quiet
	}
	if !changed("no-color") {
		c.NoColor = other.NoColor
	}
	if !changed("format") {
		c.Format = other.Format
	}
	if !changed("catalog") {
		c.Catalog = other.Catalog
	}
	c.ConfigFile = other.ConfigFile
	c.Workers = other.Workers
	c.ScratchDir = other.ScratchDir
	c.Ignore = other.Ignore
	c.LogFormat = other.LogFormat
	c.LogOutput = other.LogOutput
	c.envLogLevel = other.envLogLevel
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// expandHome expands a leading ~ in path.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
