package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
	Ingest      IngestConfig   `toml:"ingest"`
	Pipeline    PipelineConfig `toml:"pipeline"`
	Scoring     ScoringConfig  `toml:"scoring"`
	Autofill    AutofillConfig `toml:"autofill"`
	Profiles    ProfilesConfig `toml:"profiles"`
	Claude      ClaudeConfig   `toml:"claude"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Local       LocalLLMConfig `toml:"local_llm"`
	LLM         LLMConfig      `toml:"llm"`
	Docs        DocsConfig     `toml:"docs"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	// DataDir holds the JSON files persisted through the storage kernel:
	// jobs_new.json, rejected_jobs.json, learned_database.json,
	// company_status.json, unsupported_ats.json
	DataDir string       `toml:"data_dir" validate:"required"`
	Badger  BadgerConfig `toml:"badger"`
}

// BadgerConfig configures the session/oracle audit store
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output     []string `toml:"output"` // "stdout", "file"
	TimeFormat string   `toml:"time_format"`
}

// IngestConfig controls the ATS ingestion pipeline
type IngestConfig struct {
	SourcesFile      string        `toml:"sources_file"` // YAML list of company boards
	Concurrency      int           `toml:"concurrency" validate:"gte=1,lte=64"`
	RequestTimeout   time.Duration `toml:"request_timeout"`
	RetryAttempts    int           `toml:"retry_attempts"`
	RetryGap         time.Duration `toml:"retry_gap"`
	RatePerHost      float64       `toml:"rate_per_host"` // requests/sec per ATS host
	Schedule         string        `toml:"schedule"`      // cron expression, empty disables
	MissingThreshold int           `toml:"missing_threshold_days"`
}

// PipelineConfig controls pipeline store behavior
type PipelineConfig struct {
	// SweeperUnrejects controls whether a sweeper-induced close clears the
	// rejection memory the way an explicit user transition out of a skip
	// status does. Default false: only user transitions un-reject.
	SweeperUnrejects bool `toml:"sweeper_unrejects"`
}

// ScoringConfig drives geo bucketing and job list scoring
type ScoringConfig struct {
	TargetState    string   `toml:"target_state"`
	NeighborStates []string `toml:"neighbor_states"`
	LocalCities    []string `toml:"local_cities"`
	StateBonus     int      `toml:"state_bonus"`
	CityBonus      int      `toml:"city_bonus"`
	// Role classification opinions surfaced as configuration
	AmbiguousLeadConfidence float64 `toml:"ambiguous_lead_confidence"`
	DemographicDecline      string  `toml:"demographic_decline"`
}

// AutofillConfig controls the form-filling engine
type AutofillConfig struct {
	PageLoadTimeout    time.Duration `toml:"page_load_timeout"`
	ElementWaitTimeout time.Duration `toml:"element_wait_timeout"`
	NetworkIdleTimeout time.Duration `toml:"network_idle_timeout"`
	StableSettle       time.Duration `toml:"stable_settle"`
	MaxPasses          int           `toml:"max_passes" validate:"gte=1,lte=10"`
	TypeKeyDelay       time.Duration `toml:"type_key_delay"`
	PrescanOptionCap   int           `toml:"prescan_option_cap"`
	Headless           bool          `toml:"headless"`
	NoSandbox          bool          `toml:"no_sandbox"`
	UserAgent          string        `toml:"user_agent"`
}

type ProfilesConfig struct {
	Dir           string `toml:"dir"`
	Default       string `toml:"default"`
	KnowledgeBase string `toml:"knowledge_base"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// LocalLLMConfig configures the local llama-server style provider
type LocalLLMConfig struct {
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	Timeout   string `toml:"timeout"`
	MaxTokens int    `toml:"max_tokens"`
}

// LLMConfig selects the oracle provider
type LLMConfig struct {
	Enabled         bool   `toml:"enabled"`
	DefaultProvider string `toml:"default_provider"` // "claude", "gemini", or "local"
}

// DocsConfig configures the cover-letter rendering collaborator
type DocsConfig struct {
	OutputDir string `toml:"output_dir"`
}

// NewDefaultConfig returns the configuration defaults applied before any
// file, env, or flag overrides
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8280,
			Host: "localhost",
		},
		Storage: StorageConfig{
			DataDir: "./data",
			Badger: BadgerConfig{
				Path:           "./data/badger",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Ingest: IngestConfig{
			SourcesFile:      "./sources.yaml",
			Concurrency:      8,
			RequestTimeout:   30 * time.Second,
			RetryAttempts:    3,
			RetryGap:         2 * time.Second,
			RatePerHost:      2.0,
			Schedule:         "0 */6 * * *",
			MissingThreshold: 3,
		},
		Pipeline: PipelineConfig{
			SweeperUnrejects: false,
		},
		Scoring: ScoringConfig{
			TargetState:             "NC",
			NeighborStates:          []string{"VA", "SC", "GA", "TN"},
			LocalCities:             []string{"Raleigh", "Durham", "Cary", "Chapel Hill", "Morrisville", "Apex"},
			StateBonus:              10,
			CityBonus:               10,
			AmbiguousLeadConfidence: 0.7,
			DemographicDecline:      "Decline to self-identify",
		},
		Autofill: AutofillConfig{
			PageLoadTimeout:    30 * time.Second,
			ElementWaitTimeout: 10 * time.Second,
			NetworkIdleTimeout: 2 * time.Second,
			StableSettle:       2 * time.Second,
			MaxPasses:          5,
			TypeKeyDelay:       30 * time.Millisecond,
			PrescanOptionCap:   25,
			Headless:           true,
			NoSandbox:          false,
			UserAgent:          "",
		},
		Profiles: ProfilesConfig{
			Dir:           "./profiles",
			Default:       "default",
			KnowledgeBase: "./knowledge_base.json",
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   1024,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Local: LocalLLMConfig{
			BaseURL:   "http://localhost:11434",
			Model:     "llama3.1",
			Timeout:   "2m",
			MaxTokens: 512,
		},
		LLM: LLMConfig{
			Enabled:         false,
			DefaultProvider: "local",
		},
		Docs: DocsConfig{
			OutputDir: "./data/letters",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PURSUIT_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("PURSUIT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PURSUIT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if dataDir := os.Getenv("PURSUIT_DATA_DIR"); dataDir != "" {
		config.Storage.DataDir = dataDir
	}

	if level := os.Getenv("PURSUIT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("PURSUIT_LOG_OUTPUT"); output != "" {
		config.Logging.Output = strings.Split(output, ",")
	}

	// API keys: standard env names take precedence over config values
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if base := os.Getenv("PURSUIT_LOCAL_LLM_URL"); base != "" {
		config.Local.BaseURL = base
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
