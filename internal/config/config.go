package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the config file when no explicit path is given.
const EnvConfigFile = "ROSTER_CONFIG_FILE"

// DefaultFile is looked up in the working directory when nothing else is set.
const DefaultFile = "roster.yaml"

// Journal backends.
const (
	JournalNone   = "none"
	JournalMemory = "memory"
	JournalRedis  = "redis"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config is the main configuration structure.
type Config struct {
	Resource ResourceConfig `mapstructure:"resource"`
	Log      LogConfig      `mapstructure:"log"`
	Journal  JournalConfig  `mapstructure:"journal"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	MCP      MCPConfig      `mapstructure:"mcp"`
	MockAPI  MockAPIConfig  `mapstructure:"mock_api"`
}

// ResourceConfig locates the remote user collection.
type ResourceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Path       string        `mapstructure:"path"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// JournalConfig selects where dispatched actions are recorded.
type JournalConfig struct {
	Backend  string      `mapstructure:"backend"`
	Capacity int         `mapstructure:"capacity"`
	Redis    RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type HTTPConfig struct {
	Port    int  `mapstructure:"port"`
	Metrics bool `mapstructure:"metrics"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

type MockAPIConfig struct {
	Port      int    `mapstructure:"port"`
	SeedFile  string `mapstructure:"seed_file"`
	Failures  int    `mapstructure:"failures"`
	LatencyMS int    `mapstructure:"latency_ms"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Resource: ResourceConfig{
			BaseURL: "http://localhost:3000",
			Path:    "/data",
			Retries: 3,
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Journal: JournalConfig{
			Backend:  JournalMemory,
			Capacity: 100,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "roster:journal:",
			},
		},
		HTTP: HTTPConfig{
			Port:    8080,
			Metrics: true,
		},
		MCP: MCPConfig{
			Transport: TransportStdio,
			Port:      8081,
		},
		MockAPI: MockAPIConfig{
			Port: 3000,
		},
	}
}

// Load builds the configuration following precedence:
// defaults → config file → environment variables.
// path may be empty; then ROSTER_CONFIG_FILE or ./roster.yaml is used if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfigFile)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFile
	}

	if err := mergeFile(&cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeFile decodes the file over cfg. Keys absent from the file keep their value.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return Decode(raw, cfg)
}

// Decode applies a generic map (decoded YAML or JSON) over cfg.
// Durations accept Go syntax ("500ms", "2s"); unknown keys are rejected.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// envBinding maps one ROSTER_* variable onto a config field.
type envBinding struct {
	name string
	set  func(cfg *Config, v string) error
}

var envBindings = []envBinding{
	{"ROSTER_BASE_URL", func(c *Config, v string) error { c.Resource.BaseURL = v; return nil }},
	{"ROSTER_RESOURCE_PATH", func(c *Config, v string) error { c.Resource.Path = v; return nil }},
	{"ROSTER_RETRIES", intSetter(func(c *Config) *int { return &c.Resource.Retries })},
	{"ROSTER_RETRY_DELAY", durationSetter(func(c *Config) *time.Duration { return &c.Resource.RetryDelay })},
	{"ROSTER_TIMEOUT", durationSetter(func(c *Config) *time.Duration { return &c.Resource.Timeout })},
	{"ROSTER_LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"ROSTER_LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = v; return nil }},
	{"ROSTER_JOURNAL", func(c *Config, v string) error { c.Journal.Backend = v; return nil }},
	{"ROSTER_JOURNAL_CAPACITY", intSetter(func(c *Config) *int { return &c.Journal.Capacity })},
	{"ROSTER_REDIS_ADDR", func(c *Config, v string) error { c.Journal.Redis.Addr = v; return nil }},
	{"ROSTER_REDIS_PASSWORD", func(c *Config, v string) error { c.Journal.Redis.Password = v; return nil }},
	{"ROSTER_REDIS_DB", intSetter(func(c *Config) *int { return &c.Journal.Redis.DB })},
	{"ROSTER_REDIS_PREFIX", func(c *Config, v string) error { c.Journal.Redis.Prefix = v; return nil }},
	{"ROSTER_HTTP_PORT", intSetter(func(c *Config) *int { return &c.HTTP.Port })},
	{"ROSTER_HTTP_METRICS", boolSetter(func(c *Config) *bool { return &c.HTTP.Metrics })},
	{"ROSTER_MCP_TRANSPORT", func(c *Config, v string) error { c.MCP.Transport = v; return nil }},
	{"ROSTER_MCP_PORT", intSetter(func(c *Config) *int { return &c.MCP.Port })},
	{"ROSTER_MOCK_PORT", intSetter(func(c *Config) *int { return &c.MockAPI.Port })},
	{"ROSTER_MOCK_SEED", func(c *Config, v string) error { c.MockAPI.SeedFile = v; return nil }},
}

// applyEnv applies environment overrides (highest priority).
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(b.name)
		if !ok || v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}
	}
	return nil
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func durationSetter(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Resource.BaseURL == "" {
		errs = append(errs, errors.New("resource.base_url is required"))
	}
	if c.Resource.Retries < 0 {
		errs = append(errs, errors.New("resource.retries must not be negative"))
	}
	switch c.Journal.Backend {
	case JournalNone, JournalMemory, JournalRedis:
	default:
		errs = append(errs, fmt.Errorf("journal.backend %q is not one of none, memory, redis", c.Journal.Backend))
	}
	switch c.MCP.Transport {
	case TransportStdio, TransportSSE:
	default:
		errs = append(errs, fmt.Errorf("mcp.transport %q is not one of stdio, sse", c.MCP.Transport))
	}
	for name, port := range map[string]int{"http.port": c.HTTP.Port, "mcp.port": c.MCP.Port, "mock_api.port": c.MockAPI.Port} {
		if port <= 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s %d is out of range", name, port))
		}
	}
	return errors.Join(errs...)
}
