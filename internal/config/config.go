// Package config loads the typed server configuration: a TOML
// file layered under environment variable overrides, validated once at
// startup. There is no hot reload — changes require a restart.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
)

// EvictionPolicy selects the lifecycle controller's capacity strategy.
type EvictionPolicy string

const (
	PolicyDiscard EvictionPolicy = "discard"
	PolicyFail    EvictionPolicy = "fail"
	PolicyPreempt EvictionPolicy = "preempt"
)

// Config holds all configuration for the scratchpad server.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Server    ServerConfig    `toml:"server"`
	Transport TransportConfig `toml:"transport"`
	Auth      AuthConfig      `toml:"auth"`
	Log       LogConfig       `toml:"log"`
	Search    SearchConfig    `toml:"search"`
}

// StorageConfig holds catalog/lifecycle limits.
type StorageConfig struct {
	Dir              string `toml:"dir"`
	MaxScratchpads   int    `toml:"max_scratchpads"`
	MaxCellsPerPad   int    `toml:"max_cells_per_pad"`
	MaxCellBytes     int    `toml:"max_cell_bytes"`
	EvictionPolicy   string `toml:"eviction_policy"`
	PreemptAge       string `toml:"preempt_age"`
	PreemptInterval  string `toml:"preempt_interval"`

	// Parsed durations, populated by Validate.
	preemptAge      time.Duration
	preemptInterval time.Duration
}

// PreemptAgeDuration returns the parsed preempt_age.
func (s StorageConfig) PreemptAgeDuration() time.Duration { return s.preemptAge }

// PreemptIntervalDuration returns the parsed preempt_interval.
func (s StorageConfig) PreemptIntervalDuration() time.Duration { return s.preemptInterval }

// ServerConfig holds server identity metadata.
type ServerConfig struct {
	Name                      string `toml:"name"`
	Version                   string `toml:"version"`
	ValidationRequestTimeout  string `toml:"validation_request_timeout"`
	ShutdownTimeout           string `toml:"shutdown_timeout"`

	validationTimeout time.Duration
	shutdownTimeout   time.Duration
}

func (s ServerConfig) ValidationTimeoutDuration() time.Duration { return s.validationTimeout }
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration   { return s.shutdownTimeout }

// TransportConfig holds transport enable flags and listener settings.
type TransportConfig struct {
	EnableStdio    bool   `toml:"enable_stdio"`
	EnableHTTP     bool   `toml:"enable_http"`
	EnableSSE      bool   `toml:"enable_sse"`
	EnableMetrics  bool   `toml:"enable_metrics"`
	HTTPHost       string `toml:"http_host"`
	HTTPPort       int    `toml:"http_port"`
	HTTPSocketPath string `toml:"http_socket_path"`
	HTTPPath       string `toml:"http_path"`
	SSEPath        string `toml:"sse_path"`
	MetricsPath    string `toml:"metrics_path"`
}

// AuthConfig holds bearer-token auth settings.
type AuthConfig struct {
	EnableAuth bool     `toml:"enable_auth"`
	Tokens     []string `toml:"tokens"` // "principal:token" entries, CLI order preserved
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// SearchConfig holds semantic-search settings.
type SearchConfig struct {
	Enable             bool   `toml:"enable_semantic_search"`
	EmbeddingModel     string `toml:"embedding_model"`
	EmbeddingDevice    string `toml:"embedding_device"`
	EmbeddingBatchSize int    `toml:"embedding_batch_size"`
	SemanticSearchLimit int   `toml:"semantic_search_limit"`
}

// defaults returns a Config pre-populated with the documented defaults.
func defaults() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir:             "./scratchpad-data",
			MaxScratchpads:  0,
			MaxCellsPerPad:  0,
			MaxCellBytes:    0,
			EvictionPolicy:  string(PolicyDiscard),
			PreemptAge:      "24h",
			PreemptInterval: "10m",
		},
		Server: ServerConfig{
			Name:                     "scratchmcp",
			Version:                  "0.1.0",
			ValidationRequestTimeout: "30s",
			ShutdownTimeout:          "5s",
		},
		Transport: TransportConfig{
			EnableStdio: true,
			EnableHTTP:  false,
			EnableSSE:   false,
			HTTPHost:    "127.0.0.1",
			HTTPPort:    8787,
			HTTPPath:    "/http",
			SSEPath:     "/sse",
			MetricsPath: "/metrics",
		},
		Log: LogConfig{Level: "info"},
		Search: SearchConfig{
			Enable:              false,
			EmbeddingModel:      "bge-small-en-v1.5",
			EmbeddingDevice:     "cpu",
			EmbeddingBatchSize:  32,
			SemanticSearchLimit: 10,
		},
	}
}

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return errs.NewConfigError("reading config file: %v", err)
	}
	return nil
}

func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("SCRATCHMCP_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("scratchmcp.toml"); err == nil {
		return "scratchmcp.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/scratchmcp/scratchmcp.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) applyEnv() {
	envOverride("SCRATCHMCP_STORAGE_DIR", &c.Storage.Dir)
	envOverride("SCRATCHMCP_EVICTION_POLICY", &c.Storage.EvictionPolicy)
	envOverride("SCRATCHMCP_PREEMPT_AGE", &c.Storage.PreemptAge)
	envOverride("SCRATCHMCP_PREEMPT_INTERVAL", &c.Storage.PreemptInterval)
	envIntOverride("SCRATCHMCP_MAX_SCRATCHPADS", &c.Storage.MaxScratchpads)
	envIntOverride("SCRATCHMCP_MAX_CELLS_PER_PAD", &c.Storage.MaxCellsPerPad)
	envIntOverride("SCRATCHMCP_MAX_CELL_BYTES", &c.Storage.MaxCellBytes)

	envOverride("SCRATCHMCP_LOG_LEVEL", &c.Log.Level)

	envBoolOverride("SCRATCHMCP_ENABLE_STDIO", &c.Transport.EnableStdio)
	envBoolOverride("SCRATCHMCP_ENABLE_HTTP", &c.Transport.EnableHTTP)
	envBoolOverride("SCRATCHMCP_ENABLE_SSE", &c.Transport.EnableSSE)
	envBoolOverride("SCRATCHMCP_ENABLE_METRICS", &c.Transport.EnableMetrics)
	envOverride("SCRATCHMCP_HTTP_HOST", &c.Transport.HTTPHost)
	envIntOverride("SCRATCHMCP_HTTP_PORT", &c.Transport.HTTPPort)
	envOverride("SCRATCHMCP_HTTP_SOCKET_PATH", &c.Transport.HTTPSocketPath)
	envOverride("SCRATCHMCP_HTTP_PATH", &c.Transport.HTTPPath)
	envOverride("SCRATCHMCP_SSE_PATH", &c.Transport.SSEPath)
	envOverride("SCRATCHMCP_METRICS_PATH", &c.Transport.MetricsPath)

	envBoolOverride("SCRATCHMCP_ENABLE_AUTH", &c.Auth.EnableAuth)
	if v := os.Getenv("SCRATCHMCP_AUTH_TOKENS"); v != "" {
		c.Auth.Tokens = strings.Split(v, ",")
	}

	envBoolOverride("SCRATCHMCP_ENABLE_SEMANTIC_SEARCH", &c.Search.Enable)
	envOverride("SCRATCHMCP_EMBEDDING_MODEL", &c.Search.EmbeddingModel)
	envOverride("SCRATCHMCP_EMBEDDING_DEVICE", &c.Search.EmbeddingDevice)
	envIntOverride("SCRATCHMCP_EMBEDDING_BATCH_SIZE", &c.Search.EmbeddingBatchSize)
	envIntOverride("SCRATCHMCP_SEMANTIC_SEARCH_LIMIT", &c.Search.SemanticSearchLimit)
}

var durationRe = regexp.MustCompile(`^(\d+)(s|m|h)?$`)

// parseDuration parses `\d+(s|m|h)?` time strings, applying
// defaultUnit when the suffix is omitted.
func parseDuration(s string, defaultUnit time.Duration) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q: want \\d+(s|m|h)?", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	unit := defaultUnit
	switch m[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	}
	return time.Duration(n) * unit, nil
}

// Validate checks required fields and rejects invalid combinations with
// CONFIG_ERROR.
func (c *Config) Validate() error {
	switch EvictionPolicy(c.Storage.EvictionPolicy) {
	case PolicyDiscard, PolicyFail, PolicyPreempt:
	default:
		return errs.NewConfigError("invalid eviction_policy %q: must be discard, fail, or preempt", c.Storage.EvictionPolicy)
	}

	age, err := parseDuration(c.Storage.PreemptAge, time.Hour)
	if err != nil {
		return errs.NewConfigError("preempt_age: %v", err)
	}
	c.Storage.preemptAge = age

	interval, err := parseDuration(c.Storage.PreemptInterval, time.Minute)
	if err != nil {
		return errs.NewConfigError("preempt_interval: %v", err)
	}
	c.Storage.preemptInterval = interval

	vt, err := parseDuration(c.Server.ValidationRequestTimeout, time.Second)
	if err != nil {
		return errs.NewConfigError("validation_request_timeout: %v", err)
	}
	c.Server.validationTimeout = vt

	st, err := parseDuration(c.Server.ShutdownTimeout, time.Second)
	if err != nil {
		return errs.NewConfigError("shutdown_timeout: %v", err)
	}
	c.Server.shutdownTimeout = st

	if c.Transport.EnableMetrics && !c.Transport.EnableHTTP {
		return errs.NewConfigError("enable_metrics requires enable_http")
	}
	if !c.Transport.EnableStdio && !c.Transport.EnableHTTP {
		return errs.NewConfigError("at least one of enable_stdio or enable_http must be true")
	}
	if c.Transport.EnableSSE && !c.Transport.EnableHTTP {
		return errs.NewConfigError("enable_sse requires enable_http")
	}
	if c.Transport.EnableHTTP && c.Transport.HTTPPath == c.Transport.SSEPath {
		return errs.NewConfigError("http_path and sse_path must differ")
	}
	if c.Storage.Dir == "" {
		return errs.NewConfigError("storage.dir must not be empty")
	}
	if c.Storage.MaxScratchpads < 0 || c.Storage.MaxCellsPerPad < 0 || c.Storage.MaxCellBytes < 0 {
		return errs.NewConfigError("storage limits must be >= 0 (0 means unlimited)")
	}

	if c.Auth.EnableAuth && len(c.Auth.Tokens) == 0 {
		return errs.NewConfigError("enable_auth requires at least one configured token")
	}
	for _, t := range c.Auth.Tokens {
		if !strings.Contains(t, ":") {
			return errs.NewConfigError("auth token entry %q must be principal:token", t)
		}
	}

	return nil
}

// ImplicitTenant is the tenant used when auth is disabled.
const ImplicitTenant = "default"

// FirstConfiguredTenant returns the first principal from Auth.Tokens, in
// CLI/file order, used for the first-enable migration.
func (c *Config) FirstConfiguredTenant() (string, bool) {
	if len(c.Auth.Tokens) == 0 {
		return "", false
	}
	principal, _, _ := strings.Cut(c.Auth.Tokens[0], ":")
	return principal, principal != ""
}

func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envIntOverride(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBoolOverride(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}
