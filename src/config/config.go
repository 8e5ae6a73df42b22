package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/SmooSenseAI/itrade/src/broker"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8000
)

type Config struct {
	Server    Server    `yaml:"server"`
	ETrade    ETrade    `yaml:"etrade"`
	Auth      Auth      `yaml:"auth"`
	Logging   Logging   `yaml:"logging"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ETrade struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Sandbox   bool   `yaml:"sandbox"`
	// AuthorizeURL overrides the page the user is sent to for the verifier code.
	AuthorizeURL string `yaml:"authorize_url"`
	// HTTPTimeoutSeconds of 0 leaves broker calls without a timeout.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`
}

func (e ETrade) BaseURL() string {
	if e.Sandbox {
		return broker.SandboxBaseURL
	}

	return broker.ProductionBaseURL
}

type Auth struct {
	File string `yaml:"file"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Telemetry struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

func (t Telemetry) Enabled() bool {
	return t.OTLPEndpoint != ""
}

func Default() *Config {
	return &Config{
		Server: Server{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Telemetry: Telemetry{
			ServiceName: "itrade",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: failed to read %s: %w", path, err)
		}

		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config.Load: failed to parse %s: %w", path, err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv("ETRADE_SANDBOX"); v != "" {
		sandbox, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ETRADE_SANDBOX %q: %w", v, err)
		}
		cfg.ETrade.Sandbox = sandbox
	}

	if v := os.Getenv("ITRADE_AUTH_FILE"); v != "" {
		cfg.Auth.File = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}

	return nil
}

// APIKeys returns the consumer key and secret. The environment is consulted
// on every call so keys exported after startup are picked up.
func (c *Config) APIKeys() (string, string) {
	key := c.ETrade.APIKey
	if v := os.Getenv("ETRADE_API_KEY"); v != "" {
		key = v
	}

	secret := c.ETrade.APISecret
	if v := os.Getenv("ETRADE_API_SECRET"); v != "" {
		secret = v
	}

	return key, secret
}
