package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendTables = "tables"
)

// Config holds the settings of the API server.
type Config struct {
	Port      string          `yaml:"port"`
	Debug     bool            `yaml:"debug"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	Events    EventsConfig    `yaml:"events"`
	Auth      AuthConfig      `yaml:"auth"`
	Workspace WorkspaceConfig `yaml:"workspace"`
}

type StoreConfig struct {
	Backend          string        `yaml:"backend"`
	Dir              string        `yaml:"dir"`
	ConnectionString string        `yaml:"connection_string"`
	Table            string        `yaml:"table"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
}

type RedisConfig struct {
	ConnectionString string `yaml:"connection_string"`
	KeyPrefix        string `yaml:"key_prefix"`
}

type EventsConfig struct {
	Channel string `yaml:"channel"`
	Queue   string `yaml:"queue"`
}

type AuthConfig struct {
	Audience string `yaml:"audience"`
	Domain   string `yaml:"domain"`
	// LocalMode selects "hs256" shared-secret tokens or "none" for a
	// single anonymous user.
	LocalMode    string        `yaml:"local_mode"`
	LocalSecret  string        `yaml:"local_secret"`
	JWKSCacheTTL time.Duration `yaml:"jwks_cache_ttl"`
}

type WorkspaceConfig struct {
	Seed         bool `yaml:"seed"`
	PersistEmpty bool `yaml:"persist_empty"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Port: "8080",
		Store: StoreConfig{
			Backend:  BackendMemory,
			Dir:      ".",
			Table:    "Workspaces",
			CacheTTL: 10 * time.Minute,
		},
		Redis:  RedisConfig{KeyPrefix: "taskflow:"},
		Events: EventsConfig{Channel: "taskflow-events"},
		Auth:   AuthConfig{JWKSCacheTTL: 15 * time.Minute},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// TASKFLOW_CONFIG (if any) and finally environment variables.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("TASKFLOW_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", name, err))
				return
			}
			*dst = b
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				errs = append(errs, fmt.Errorf("invalid %s: %q", name, v))
				return
			}
			*dst = d
		}
	}

	str("PORT", &c.Port)
	boolean("DEBUG", &c.Debug)
	str("STORE_BACKEND", &c.Store.Backend)
	str("STORE_DIR", &c.Store.Dir)
	str("STORAGE_CONNECTION_STRING", &c.Store.ConnectionString)
	str("WORKSPACES_TABLE", &c.Store.Table)
	duration("CACHE_TTL", &c.Store.CacheTTL)
	str("REDIS_CONNECTION_STRING", &c.Redis.ConnectionString)
	str("REDIS_KEY_PREFIX", &c.Redis.KeyPrefix)
	str("EVENTS_CHANNEL", &c.Events.Channel)
	str("EVENTS_QUEUE", &c.Events.Queue)
	str("AUTH0_AUDIENCE", &c.Auth.Audience)
	str("AUTH0_DOMAIN", &c.Auth.Domain)
	str("LOCAL_AUTH_MODE", &c.Auth.LocalMode)
	str("LOCAL_AUTH_SHARED_SECRET", &c.Auth.LocalSecret)
	duration("JWKS_CACHE_TTL", &c.Auth.JWKSCacheTTL)
	boolean("SEED_TASKS", &c.Workspace.Seed)
	boolean("PERSIST_EMPTY_SNAPSHOT", &c.Workspace.PersistEmpty)

	return errors.Join(errs...)
}

func (c *Config) normalize() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Auth.LocalMode = strings.ToLower(strings.TrimSpace(c.Auth.LocalMode))
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Redis.ConnectionString == "" {
			return errors.New("missing redis config")
		}
	case BackendTables:
		if c.Store.ConnectionString == "" || c.Store.Table == "" {
			return errors.New("missing storage config")
		}
	default:
		return fmt.Errorf("unsupported store backend %q", c.Store.Backend)
	}
	if c.Events.Queue != "" && c.Store.ConnectionString == "" {
		return errors.New("events queue requires STORAGE_CONNECTION_STRING")
	}

	switch c.Auth.LocalMode {
	case "":
		if c.Auth.Audience == "" || c.Auth.Domain == "" {
			return errors.New("missing Auth0 config")
		}
	case "hs256":
		if c.Auth.LocalSecret == "" {
			return errors.New("LOCAL_AUTH_SHARED_SECRET must be set when LOCAL_AUTH_MODE=hs256")
		}
	case "none":
	default:
		return fmt.Errorf("unsupported LOCAL_AUTH_MODE value %q", c.Auth.LocalMode)
	}
	return nil
}
