// Package config loads server settings from a YAML file with environment
// variable overrides. Every field has a working default, so a missing file
// is not an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	Scan struct {
		Workers            int           `yaml:"workers"`
		PingTimeout        time.Duration `yaml:"ping_timeout"`
		FingerprintTimeout time.Duration `yaml:"fingerprint_timeout"`
		ValidateTimeout    time.Duration `yaml:"validate_timeout"`
		WarmUp             time.Duration `yaml:"warm_up"`
		AllowDefaultCreds  bool          `yaml:"allow_default_credentials"`
		MaxDefaultCreds    int           `yaml:"max_default_credentials"`
	} `yaml:"scan"`

	Cache struct {
		Backend string `yaml:"backend"` // "file" or "redis"
		Path    string `yaml:"path"`
	} `yaml:"cache"`

	Catalog struct {
		OverlayPath string `yaml:"overlay_path"`
	} `yaml:"catalog"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	NATS struct {
		URL        string `yaml:"url"`
		Subject    string `yaml:"subject"`
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"nats"`

	JWTSigningKey string `yaml:"jwt_signing_key"`
}

func Default() Config {
	var c Config
	c.ListenAddr = ":8080"
	c.Scan.Workers = 8
	c.Scan.PingTimeout = 1200 * time.Millisecond
	c.Scan.FingerprintTimeout = 2500 * time.Millisecond
	c.Scan.ValidateTimeout = 5 * time.Second
	c.Scan.WarmUp = 220 * time.Millisecond
	c.Scan.MaxDefaultCreds = 3
	c.Cache.Backend = "file"
	c.Cache.Path = "rtsp_cache.json"
	c.NATS.MaxRetries = 3
	return c
}

// Load reads path (if non-empty and present) over the defaults, then applies
// environment overrides on top.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &c); err != nil {
				return c, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return c, fmt.Errorf("read %s: %w", path, err)
		}
	}

	c.applyEnv()
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "SCOUT_LISTEN_ADDR")
	setInt(&c.Scan.Workers, "SCOUT_WORKERS")
	setString(&c.Cache.Backend, "SCOUT_CACHE_BACKEND")
	setString(&c.Cache.Path, "SCOUT_CACHE_PATH")
	setString(&c.Catalog.OverlayPath, "SCOUT_CATALOG_OVERLAY")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.NATS.URL, "NATS_URL")
	setString(&c.JWTSigningKey, "JWT_SIGNING_KEY")
}

func (c *Config) validate() error {
	if c.Scan.Workers < 1 || c.Scan.Workers > 32 {
		return fmt.Errorf("scan.workers must be between 1 and 32, got %d", c.Scan.Workers)
	}
	switch c.Cache.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("cache.backend must be \"file\" or \"redis\", got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("cache.backend is redis but redis.addr is empty")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
