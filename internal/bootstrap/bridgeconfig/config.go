// Package bridgeconfig loads the bridge daemon configuration from YAML with
// environment overrides layered on top.
package bridgeconfig

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"wiregate/go-bridge/internal/wire"
)

const (
	envListenAddr       = "WIREGATE_LISTEN_ADDR"
	envDefaultFormat    = "WIREGATE_DEFAULT_FORMAT"
	envAllowedFormats   = "WIREGATE_ALLOWED_FORMATS"
	envMaxBodyBytes     = "WIREGATE_MAX_BODY_BYTES"
	envRateLimitEnabled = "WIREGATE_RATE_LIMIT_ENABLED"
	envRateLimitRPS     = "WIREGATE_RATE_LIMIT_RPS"
	envRateLimitBurst   = "WIREGATE_RATE_LIMIT_BURST"
	envEnvironment      = "WIREGATE_ENV"
)

type Config struct {
	ListenAddr        string
	ReadHeaderTimeout time.Duration
	MaxBodyBytes      int64
	DefaultFormat     wire.Format
	AllowedFormats    []wire.Format
	RateLimit         RateLimitConfig
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

func Default() Config {
	return Config{
		ListenAddr:        "127.0.0.1:8790",
		ReadHeaderTimeout: 5 * time.Second,
		MaxBodyBytes:      1 << 20,
		DefaultFormat:     wire.FormatBinary,
		AllowedFormats:    []wire.Format{wire.FormatBinary, wire.FormatCompact, wire.FormatText},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     30,
			Burst:   60,
		},
	}
}

type fileConfig struct {
	Server fileServerConfig `yaml:"server"`
}

// duration accepts both "2s" strings and raw nanosecond integers.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*d = duration(parsed)
		return nil
	}
	var ns int64
	if err := value.Decode(&ns); err != nil {
		return err
	}
	*d = duration(ns)
	return nil
}

type fileServerConfig struct {
	ListenAddr        string              `yaml:"listenAddr"`
	ReadHeaderTimeout duration            `yaml:"readHeaderTimeout"`
	MaxBodyBytes      int64               `yaml:"maxBodyBytes"`
	DefaultFormat     string              `yaml:"defaultFormat"`
	AllowedFormats    []string            `yaml:"allowedFormats"`
	RateLimit         fileRateLimitConfig `yaml:"rateLimit"`
}

type fileRateLimitConfig struct {
	Enabled *bool   `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// LoadFromPath reads the config file at configPath (or the default
// candidates when empty), merges it over the defaults and applies env
// overrides. A missing or unparsable file falls back to defaults.
func LoadFromPath(configPath string) Config {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"go-bridge/configs/config.yaml",
			"configs/config.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}

		merged := cfg
		Merge(&merged, parsed.Server)
		ApplyEnvOverrides(&merged)
		return merged
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

// Merge overlays the non-zero fields of src onto dst. Unknown format names
// are ignored rather than rejected.
func Merge(dst *Config, src fileServerConfig) {
	if src.ListenAddr != "" {
		dst.ListenAddr = src.ListenAddr
	}
	if src.ReadHeaderTimeout > 0 {
		dst.ReadHeaderTimeout = time.Duration(src.ReadHeaderTimeout)
	}
	if src.MaxBodyBytes > 0 {
		dst.MaxBodyBytes = src.MaxBodyBytes
	}
	if f, ok := wire.FormatFromName(src.DefaultFormat); ok {
		dst.DefaultFormat = f
	}
	if formats := parseFormatList(src.AllowedFormats); len(formats) > 0 {
		dst.AllowedFormats = formats
	}
	if src.RateLimit.Enabled != nil {
		dst.RateLimit.Enabled = *src.RateLimit.Enabled
	}
	if src.RateLimit.RPS > 0 {
		dst.RateLimit.RPS = src.RateLimit.RPS
	}
	if src.RateLimit.Burst > 0 {
		dst.RateLimit.Burst = src.RateLimit.Burst
	}
}

// ApplyEnvOverrides applies WIREGATE_* environment variables on top of cfg.
func ApplyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envListenAddr)); v != "" {
		cfg.ListenAddr = v
	}
	if f, ok := wire.FormatFromName(os.Getenv(envDefaultFormat)); ok {
		cfg.DefaultFormat = f
	}
	if raw := strings.TrimSpace(os.Getenv(envAllowedFormats)); raw != "" {
		if formats := parseFormatList(strings.Split(raw, ",")); len(formats) > 0 {
			cfg.AllowedFormats = formats
		}
	}
	if raw := strings.TrimSpace(os.Getenv(envMaxBodyBytes)); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			cfg.MaxBodyBytes = parsed
		}
	}
	if v, ok := parseBoolEnv(envRateLimitEnabled); ok {
		cfg.RateLimit.Enabled = v
	} else {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envEnvironment))) {
		case "test", "testing":
			cfg.RateLimit.Enabled = false
		}
	}
	if raw := strings.TrimSpace(os.Getenv(envRateLimitRPS)); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			cfg.RateLimit.RPS = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv(envRateLimitBurst)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.RateLimit.Burst = parsed
		}
	}
}

func parseFormatList(names []string) []wire.Format {
	out := make([]wire.Format, 0, len(names))
	for _, name := range names {
		if f, ok := wire.FormatFromName(name); ok {
			out = append(out, f)
		}
	}
	return out
}

func parseBoolEnv(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return false, false
	}
	return parsed, true
}
