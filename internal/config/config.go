package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Addr          string
	RecordDBPath  string
	ProfileDBPath string
	SeedDir       string
	FeedURL       string
	EnrichTTL     time.Duration
	Debug         bool
}

// fileConfig is the YAML representation. Pointer fields distinguish
// "absent" from zero values; durations are parsed from strings ("24h").
type fileConfig struct {
	Addr          *string `yaml:"addr"`
	RecordDBPath  *string `yaml:"record_db"`
	ProfileDBPath *string `yaml:"profile_db"`
	SeedDir       *string `yaml:"seed_dir"`
	FeedURL       *string `yaml:"feed_url"`
	EnrichTTL     *string `yaml:"enrich_ttl"`
	Debug         *bool   `yaml:"debug"`
}

// Load populates Config from, in increasing precedence: defaults, an
// optional YAML file (-config), environment variables, command line flags.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("NETPOSTURE_ADDR", ":8080"),
		RecordDBPath:  getEnv("NETPOSTURE_RECORD_DB", defaultDataPath("records.db")),
		ProfileDBPath: getEnv("NETPOSTURE_PROFILE_DB", defaultDataPath("profiles.db")),
		SeedDir:       getEnv("NETPOSTURE_SEED_DIR", ""),
		FeedURL:       getEnv("NETPOSTURE_FEED_URL", ""),
		EnrichTTL:     getEnvDuration("NETPOSTURE_ENRICH_TTL", 24*time.Hour),
		Debug:         getEnvBool("NETPOSTURE_DEBUG", false),
	}

	var configFile string
	flag.StringVar(&configFile, "config", getEnv("NETPOSTURE_CONFIG", ""), "Path to YAML config file")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.RecordDBPath, "record-db", cfg.RecordDBPath, "Path to the vulnerability record SQLite database")
	flag.StringVar(&cfg.ProfileDBPath, "profile-db", cfg.ProfileDBPath, "Path to the device profile SQLite database")
	flag.StringVar(&cfg.SeedDir, "seed-dir", cfg.SeedDir, "Directory of JSON seed files to load at startup (empty to skip)")
	flag.StringVar(&cfg.FeedURL, "feed-url", cfg.FeedURL, "Base URL of the external enrichment feed (empty to disable)")
	flag.DurationVar(&cfg.EnrichTTL, "enrich-ttl", cfg.EnrichTTL, "Freshness window for cached enrichment lookups")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	flag.Parse()

	if configFile != "" {
		// Flags explicitly set on the command line win over file values,
		// so capture them before the merge and restore after.
		explicit := map[string]string{}
		flag.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})

		if err := cfg.mergeFile(configFile); err != nil {
			return nil, err
		}

		for name, value := range explicit {
			if err := flag.Set(name, value); err != nil {
				return nil, fmt.Errorf("failed to restore flag %s: %w", name, err)
			}
		}
	}

	return cfg, nil
}

// mergeFile overlays values from a YAML file. Only keys present in the
// file are touched.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Addr != nil {
		c.Addr = *fc.Addr
	}
	if fc.RecordDBPath != nil {
		c.RecordDBPath = *fc.RecordDBPath
	}
	if fc.ProfileDBPath != nil {
		c.ProfileDBPath = *fc.ProfileDBPath
	}
	if fc.SeedDir != nil {
		c.SeedDir = *fc.SeedDir
	}
	if fc.FeedURL != nil {
		c.FeedURL = *fc.FeedURL
	}
	if fc.EnrichTTL != nil {
		d, err := time.ParseDuration(*fc.EnrichTTL)
		if err != nil {
			return fmt.Errorf("invalid enrich_ttl in %s: %w", path, err)
		}
		c.EnrichTTL = d
	}
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// defaultDataPath returns a path under ~/.netposture, creating the
// directory if needed.
func defaultDataPath(file string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return file
	}

	dir := filepath.Join(home, ".netposture")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .netposture directory, using current dir: %v", err)
		return file
	}

	return filepath.Join(dir, file)
}
