package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Airtable AirtableConfig
	Cache    CacheConfig
	Matcher  MatcherConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AirtableConfig holds the hosted table-store connection settings. Bases
// maps a lowercase category code to the base ID serving that catalog;
// categories without a base are simply not served.
type AirtableConfig struct {
	Token   string            `mapstructure:"token"`
	BaseURL string            `mapstructure:"base_url"`
	Bases   map[string]string `mapstructure:"bases"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MatcherConfig holds the matcher's tunable constants. The defaults are
// the product's established values; they are exposed for configuration,
// not re-derivation.
type MatcherConfig struct {
	FuzzyThreshold     int  `mapstructure:"fuzzy_threshold"`
	FuzzyPrefixLength  int  `mapstructure:"fuzzy_prefix_length"`
	MaxExactCandidates int  `mapstructure:"max_exact_candidates"`
	DebugLogging       bool `mapstructure:"debug_logging"`
}

// ConfiguredBases returns the category→base pairs that carry a base ID,
// with category codes normalized to upper case.
func (c AirtableConfig) ConfiguredBases() map[string]string {
	bases := make(map[string]string)
	for category, baseID := range c.Bases {
		if baseID != "" {
			bases[strings.ToUpper(category)] = baseID
		}
	}
	return bases
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/opticount/")

	v.SetEnvPrefix("OPTICOUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover deployment.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Store defaults. The token and per-category base keys are declared
	// empty so the matching environment variables (OPTICOUNT_AIRTABLE_TOKEN,
	// OPTICOUNT_AIRTABLE_BASES_OF etc.) bind.
	v.SetDefault("airtable.token", "")
	v.SetDefault("airtable.base_url", "https://api.airtable.com/v0")
	v.SetDefault("airtable.bases.of", "")
	v.SetDefault("airtable.bases.sg", "")
	v.SetDefault("airtable.bases.ln", "")

	// Cache defaults
	v.SetDefault("cache.ttl", "15m")

	// Matcher defaults
	v.SetDefault("matcher.fuzzy_threshold", 85)
	v.SetDefault("matcher.fuzzy_prefix_length", 10)
	v.SetDefault("matcher.max_exact_candidates", 10)
	v.SetDefault("matcher.debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Airtable.Token == "" {
		return fmt.Errorf("store token is required (set OPTICOUNT_AIRTABLE_TOKEN)")
	}

	if len(config.Airtable.ConfiguredBases()) == 0 {
		return fmt.Errorf("at least one category base is required (set OPTICOUNT_AIRTABLE_BASES_OF, _SG or _LN)")
	}

	if config.Matcher.FuzzyThreshold < 0 || config.Matcher.FuzzyThreshold > 100 {
		return fmt.Errorf("matcher fuzzy threshold must be within 0-100, got: %d", config.Matcher.FuzzyThreshold)
	}

	return nil
}
