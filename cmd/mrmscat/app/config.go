package app

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hdwx/mrms/pkg/constants"
	"github.com/hdwx/mrms/pkg/errors"
	"github.com/hdwx/mrms/pkg/reconcile"
)

// EnvPrefix prefixes every environment variable read through viper, e.g.
// MRMS_OUTPUT_ROOT.
const EnvPrefix = "MRMS"

var validate = validator.New()

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file actually read, if any
	ConfigFile string

	// Catalog configuration
	OutputRoot      string `validate:"required"`
	ConflictPolicy  string
	ReloadSeconds   int `validate:"min=1"`
	Concurrency     int `validate:"min=1,max=64"`
	MetricsTextfile string
	StatusFile      string

	// Logging configuration. LogLevel is the explicit --log-level flag;
	// EnvLogLevel comes from LOG_LEVEL and ranks below -v/-q.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables
//  3. .env files
//  4. Config file (configFile, or .mrmscat.yaml in $HOME or the working directory)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("output_root", constants.DefaultOutputRoot)
	v.SetDefault("conflict_policy", string(reconcile.DefaultPolicy))
	v.SetDefault("reload_seconds", constants.DefaultReloadSeconds)
	v.SetDefault("concurrency", constants.DefaultConcurrency)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "reading "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".mrmscat")

		// A missing default config file is fine.
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		OutputRoot:      v.GetString("output_root"),
		ConflictPolicy:  v.GetString("conflict_policy"),
		ReloadSeconds:   v.GetInt("reload_seconds"),
		Concurrency:     v.GetInt("concurrency"),
		MetricsTextfile: v.GetString("metrics_textfile"),
		StatusFile:      v.GetString("status_file"),

		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects values the catalog client would refuse later.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.NewConfigError("config", err.Error(), err)
	}
	if _, err := reconcile.ParsePolicy(c.ConflictPolicy); err != nil {
		return errors.NewConfigError("conflict_policy", err.Error(), err)
	}
	return nil
}

// FlagValues are the global flag values parsed by cobra.
type FlagValues struct {
	Verbose    bool
	Quiet      bool
	NoColor    bool
	Format     string
	LogLevel   string
	OutputRoot string
}

// UpdateFromFlags applies parsed flags over file and environment values.
// Empty strings and unset booleans leave the loaded value alone.
func (c *Config) UpdateFromFlags(f FlagValues) {
	c.Verbose = c.Verbose || f.Verbose
	c.Quiet = c.Quiet || f.Quiet
	c.NoColor = c.NoColor || f.NoColor
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.OutputRoot != "" {
		c.OutputRoot = f.OutputRoot
	}
}

// loadEnvFiles loads environment variables from .env files. Variables
// already set in the environment win.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
