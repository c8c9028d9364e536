package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// GraphConfig points at an optional Bolt-protocol graph database used to
// mirror the alliance network. Empty URI disables the mirror.
type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type EngineConfig struct {
	ProcessingIntervalMinutes int `toml:"processing_interval_minutes"`
	RestoreIntervalMinutes    int `toml:"restore_interval_minutes"`
	DecayIntervalHours        int `toml:"decay_interval_hours"`
	AllianceIntervalHours     int `toml:"alliance_interval_hours"`
	Workers                   int `toml:"workers"`
	GatewayTimeoutSeconds     int `toml:"gateway_timeout_seconds"`
}

type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Database DatabaseConfig `toml:"database"`
	Graph    GraphConfig    `toml:"graph"`
	Engine   EngineConfig   `toml:"engine"`
	Server   ServerConfig   `toml:"server"`
}

// Load reads a TOML config file, layers env-var overrides on top, applies
// defaults, and validates. Validation failure is fatal at startup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default builds a config from environment variables and defaults alone, for
// running without a config file.
func Default() (*Config, error) {
	var cfg Config
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets environment variables override file values, so secrets stay
// out of the TOML.
func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("HIVE_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("GRAPH_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("GRAPH_USER"); v != "" {
		c.Graph.User = v
	}
	if v := os.Getenv("GRAPH_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
		if c.LLM.Model == "" {
			c.LLM.Model = "gpt-oss:latest"
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "http://localhost:11434"
		}
	}
	if c.Database.Path == "" {
		c.Database.Path = "hive.db"
	}
	if c.Engine.ProcessingIntervalMinutes == 0 {
		c.Engine.ProcessingIntervalMinutes = 5
	}
	if c.Engine.RestoreIntervalMinutes == 0 {
		c.Engine.RestoreIntervalMinutes = 60
	}
	if c.Engine.DecayIntervalHours == 0 {
		c.Engine.DecayIntervalHours = 24
	}
	if c.Engine.AllianceIntervalHours == 0 {
		c.Engine.AllianceIntervalHours = 6
	}
	if c.Engine.Workers == 0 {
		c.Engine.Workers = 8
	}
	if c.Engine.GatewayTimeoutSeconds == 0 {
		c.Engine.GatewayTimeoutSeconds = 30
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
}

func (c *Config) validate() error {
	var problems []string

	provider := strings.ToLower(c.LLM.Provider)
	switch provider {
	case "claude", "openai", "gemini":
		if c.LLM.APIKey == "" {
			problems = append(problems, fmt.Sprintf("llm.api_key is required for provider %q", provider))
		}
	case "ollama":
		// Local provider, no key needed.
	default:
		problems = append(problems, fmt.Sprintf("unsupported llm provider %q", provider))
	}
	if c.LLM.Model == "" {
		problems = append(problems, "llm.model is required")
	}
	if c.Engine.Workers < 1 {
		problems = append(problems, "engine.workers must be positive")
	}
	if c.Engine.ProcessingIntervalMinutes < 1 {
		problems = append(problems, "engine.processing_interval_minutes must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
