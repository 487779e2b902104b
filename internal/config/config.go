package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	defaultSeqURL       = "http://localhost:5341"
	defaultLimit        = 100
	defaultTimeout      = 30 * time.Second
	defaultBindAddr     = "0.0.0.0:8080"
	defaultEndpoint     = "/mcp"
	defaultLoggingLevel = "info"
)

type Config struct {
	Seq     SeqConfig     `json:"seq" yaml:"seq"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SeqConfig describes the upstream Seq server.
type SeqConfig struct {
	URL          string  `json:"url" yaml:"url"`
	APIKey       string  `json:"apiKey" yaml:"apiKey"`
	DefaultLimit int     `json:"defaultLimit" yaml:"defaultLimit"`
	Timeout      Timeout `json:"timeout" yaml:"timeout"`
}

// Timeout is a request timeout given either as integer milliseconds or as a
// duration such as "30s".
type Timeout string

// UnmarshalJSON accepts both a JSON number and a JSON string.
func (t *Timeout) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
	case string:
		*t = Timeout(v)
	case json.Number:
		*t = Timeout(v.String())
	default:
		return fmt.Errorf("timeout must be a number of milliseconds or a duration string, got %s", data)
	}
	return nil
}

type ServerConfig struct {
	Transport string `json:"transport" yaml:"transport"`
	BindAddr  string `json:"bindAddr" yaml:"bindAddr"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AuthToken string `json:"authToken" yaml:"authToken"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Load builds the configuration from the environment and, when configFile
// is set, overlays the file on top of it.
func Load(configFile string) (*Config, error) {
	cfg := &Config{
		Seq: SeqConfig{
			URL:          getEnv("SEQ_URL", defaultSeqURL),
			APIKey:       getEnv("SEQ_API_KEY", ""),
			DefaultLimit: getEnvInt("SEQ_DEFAULT_LIMIT", defaultLimit),
			Timeout:      Timeout(getEnv("SEQ_TIMEOUT", "30000")),
		},
		Server: ServerConfig{
			Transport: getEnv("MCP_TRANSPORT", TransportStdio),
			BindAddr:  getEnv("SERVER_BIND_ADDR", defaultBindAddr),
			Endpoint:  getEnv("MCP_ENDPOINT", defaultEndpoint),
			AuthToken: getEnv("MCP_AUTH_TOKEN", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", defaultLoggingLevel),
		},
	}

	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			log.Err(err).Str("config_file", configFile).Msg("failed to load config file")
			return nil, err
		}
	}

	// fill reasonable defaults when fields omitted in file
	if cfg.Seq.URL == "" {
		cfg.Seq.URL = defaultSeqURL
	}
	cfg.Seq.URL = strings.TrimSuffix(cfg.Seq.URL, "/")
	if cfg.Seq.DefaultLimit <= 0 {
		cfg.Seq.DefaultLimit = defaultLimit
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = TransportStdio
	}
	if cfg.Server.BindAddr == "" {
		cfg.Server.BindAddr = defaultBindAddr
	}
	if cfg.Server.Endpoint == "" {
		cfg.Server.Endpoint = defaultEndpoint
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLoggingLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport %q", c.Server.Transport)
	}
	if !strings.HasPrefix(c.Server.Endpoint, "/") {
		return fmt.Errorf("endpoint must start with '/': %q", c.Server.Endpoint)
	}
	if _, err := parseTimeout(string(c.Seq.Timeout)); err != nil {
		return fmt.Errorf("invalid seq timeout: %w", err)
	}
	return nil
}

// TimeoutDuration returns the per-request timeout, falling back to 30s.
func (c SeqConfig) TimeoutDuration() time.Duration {
	d, err := parseTimeout(string(c.Timeout))
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return defaultTimeout, nil
	}
	if ms, err := strconv.Atoi(s); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative timeout %d", ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := model.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(d), nil
}

func loadFromFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
