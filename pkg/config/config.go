package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the effective board configuration, merged from the YAML file,
// environment overrides and command-line flags (flags win).
type Config struct {
	Storage struct {
		DataDir     string `yaml:"data_dir"`
		MaxMessages int    `yaml:"max_messages"`
		ShardSize   int    `yaml:"shard_size"`
	} `yaml:"storage"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Validation struct {
		MaxSubjectLen int `yaml:"max_subject_len"`
	} `yaml:"validation"`
	Metrics struct {
		Snapshot bool `yaml:"snapshot"`
	} `yaml:"metrics"`
}

// Defaults applied when neither file, env nor flags provide a value.
const (
	DefaultDataDir     = "./boarddata"
	DefaultMaxMessages = 200
	DefaultShardSize   = 10
)

// Load reads the YAML config at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (dataDir string, cfgPath string, fresh bool, setFlags map[string]bool) {
	dataPtr := flag.String("data", DefaultDataDir, "Board storage directory")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	freshPtr := flag.Bool("fresh", false, "Wipe persisted state and reseed the id pool")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *dataPtr, *cfgPtr, *freshPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto the provided cfg and
// reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	if v := os.Getenv("BBS_DATA_DIR"); v != "" {
		envUsed = true
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("BBS_MAX_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			envUsed = true
			cfg.Storage.MaxMessages = n
		}
	}
	if v := os.Getenv("BBS_SHARD_SIZE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			envUsed = true
			cfg.Storage.ShardSize = n
		}
	}
	if v := os.Getenv("BBS_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BBS_MAX_SUBJECT_LEN"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			envUsed = true
			cfg.Validation.MaxSubjectLen = n
		}
	}
	if v := os.Getenv("BBS_METRICS_SNAPSHOT"); v != "" {
		envUsed = true
		vl := strings.ToLower(strings.TrimSpace(v))
		cfg.Metrics.Snapshot = vl == "1" || vl == "true" || vl == "yes"
	}
	return envUsed
}

// LoadEffective loads config from the given path and applies environment
// overrides and defaults. A missing config file is not an error; the
// defaults apply.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = DefaultDataDir
	}
	if cfg.Storage.MaxMessages <= 0 {
		cfg.Storage.MaxMessages = DefaultMaxMessages
	}
	if cfg.Storage.ShardSize <= 0 {
		cfg.Storage.ShardSize = DefaultShardSize
	}
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and the environment variable `BBS_CONFIG` when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("BBS_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
