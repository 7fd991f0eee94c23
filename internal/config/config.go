package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds roverd configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	StrictCommands bool
	CheckBounds    bool

	// Grid registered at boot; zero width disables it.
	DefaultGridWidth  int
	DefaultGridHeight int
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Rover struct {
		Strict      *bool `yaml:"strict"`
		CheckBounds *bool `yaml:"check_bounds"`
	} `yaml:"rover"`

	DefaultGrid struct {
		Width  *int `yaml:"width"`
		Height *int `yaml:"height"`
	} `yaml:"default_grid"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) relative
// to the working directory. A missing file is not an error: defaults apply.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	return LoadFile(filepath.Join(cwd, "config", env+".yaml"))
}

// LoadFile reads configuration from path and applies env overrides.
func LoadFile(path string) (*Config, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = strings.TrimSpace(os.Getenv("SERVER_PORT"))
	if cfg.ServerPort == "" {
		cfg.ServerPort = fc.Server.Port
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 2*time.Second)
	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 10*time.Second)

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 200
	}

	if fc.Rover.Strict != nil {
		cfg.StrictCommands = *fc.Rover.Strict
	}
	if v := strings.TrimSpace(os.Getenv("ROVER_STRICT")); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("ROVER_STRICT: %w", err)
		}
		cfg.StrictCommands = strict
	}
	if fc.Rover.CheckBounds != nil {
		cfg.CheckBounds = *fc.Rover.CheckBounds
	}

	cfg.DefaultGridWidth, cfg.DefaultGridHeight = 100, 100
	if fc.DefaultGrid.Width != nil {
		cfg.DefaultGridWidth = *fc.DefaultGrid.Width
	}
	if fc.DefaultGrid.Height != nil {
		cfg.DefaultGridHeight = *fc.DefaultGrid.Height
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func validate(cfg *Config) error {
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", cfg.ServerPort)
	}
	if cfg.RateLimitBurst < cfg.RateLimitRPS {
		cfg.RateLimitBurst = cfg.RateLimitRPS
	}
	// A zero width disables the boot grid; anything else must be a valid grid.
	if cfg.DefaultGridWidth != 0 && (cfg.DefaultGridWidth < 0 || cfg.DefaultGridHeight <= 0) {
		return fmt.Errorf("default_grid must be positive, got %dx%d", cfg.DefaultGridWidth, cfg.DefaultGridHeight)
	}
	return nil
}
