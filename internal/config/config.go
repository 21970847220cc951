// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gator-commons/internal/pagination"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int           `yaml:"port"`
	Host           string        `yaml:"host"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MetricsEnabled bool          `yaml:"metrics_enabled"`
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type       string `yaml:"type"` // "postgres" or "sqlite"
	URI        string `yaml:"uri"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SSLMode    string `yaml:"ssl_mode"`
	SQLitePath string `yaml:"sqlite_path"`
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
	// Workers is how many auth actors hash passwords in parallel.
	Workers int `yaml:"workers"`
}

// CacheConfig enables the redis post cache when Addr is set
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	PostTTL       time.Duration `yaml:"post_ttl"`
}

// ContentConfig holds listing sizes
type ContentConfig struct {
	PageSize       int `yaml:"page_size"`
	GuestbookLimit int `yaml:"guestbook_limit"`
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig   `yaml:"server"`
	Database       *DatabaseConfig `yaml:"database"`
	Auth           *AuthConfig     `yaml:"auth"`
	Cache          *CacheConfig    `yaml:"cache"`
	Content        *ContentConfig  `yaml:"content"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	Debug          bool            `yaml:"debug"`
}

// DefaultServerConfig provides default server settings
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		RequestTimeout: 5 * time.Second,
		MetricsEnabled: true,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type:       "postgres",
		Port:       5432,
		SSLMode:    "require",
		Name:       "postgres",
		SQLitePath: "gator-commons.db",
	}
}

// DefaultConfig returns a complete configuration with every default applied.
func DefaultConfig() *Config {
	return &Config{
		Server:   DefaultServerConfig(),
		Database: DefaultDatabaseConfig(),
		Auth: &AuthConfig{
			TokenTTL:   24 * time.Hour,
			BcryptCost: 12,
			Workers:    runtime.NumCPU(),
		},
		Cache: &CacheConfig{
			PostTTL: 30 * time.Second,
		},
		Content: &ContentConfig{
			PageSize:       10,
			GuestbookLimit: 20,
		},
		AllowedOrigins: []string{"*"},
	}
}

// envLocations are tried in order; the first .env found wins.
var envLocations = []string{
	".env",          // Current directory
	"../../.env",    // Project root when running from cmd/engine
	"../../../.env", // Even higher directory
}

// LoadConfig builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables (optionally from a .env file), in that order.
func LoadConfig() (*Config, error) {
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	cfg := DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []string
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = d
		}
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setInt("PORT", &c.Server.Port)
	setString("HOST", &c.Server.Host)
	setDuration("REQUEST_TIMEOUT", &c.Server.RequestTimeout)
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		c.Server.MetricsEnabled = v == "true"
	}

	setString("DB_TYPE", &c.Database.Type)
	setString("DATABASE_URL", &c.Database.URI)
	setString("DB_HOST", &c.Database.Host)
	setInt("DB_PORT", &c.Database.Port)
	setString("DB_USER", &c.Database.User)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_NAME", &c.Database.Name)
	setString("DB_SSL_MODE", &c.Database.SSLMode)
	setString("SQLITE_PATH", &c.Database.SQLitePath)

	setString("JWT_SECRET", &c.Auth.JWTSecret)
	setDuration("TOKEN_TTL", &c.Auth.TokenTTL)
	setInt("BCRYPT_COST", &c.Auth.BcryptCost)
	setInt("AUTH_WORKERS", &c.Auth.Workers)

	setString("REDIS_ADDR", &c.Cache.RedisAddr)
	setString("REDIS_PASSWORD", &c.Cache.RedisPassword)
	setInt("REDIS_DB", &c.Cache.RedisDB)
	setDuration("POST_CACHE_TTL", &c.Cache.PostTTL)

	setInt("PAGE_SIZE", &c.Content.PageSize)
	setInt("GUESTBOOK_LIMIT", &c.Content.GuestbookLimit)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = strings.Split(origins, ",")
	}
	if debug := os.Getenv("DEBUG"); debug != "" {
		c.Debug = debug == "true"
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate rejects configurations the engine cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "postgres":
		if c.Database.URI == "" {
			if c.Database.User == "" || c.Database.Password == "" {
				return fmt.Errorf("DB_USER and DB_PASSWORD are required when DB_TYPE is postgres and DATABASE_URL is not set")
			}
			if c.Database.Host == "" {
				c.Database.Host = "localhost"
			}
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_TYPE is sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q (want postgres or sqlite)", c.Database.Type)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Auth.Workers < 1 {
		return fmt.Errorf("AUTH_WORKERS must be positive, got %d", c.Auth.Workers)
	}
	if c.Content.PageSize < 1 || c.Content.PageSize > pagination.MaxPageSize {
		return fmt.Errorf("PAGE_SIZE must be between 1 and %d, got %d", pagination.MaxPageSize, c.Content.PageSize)
	}
	if c.Content.GuestbookLimit < 1 {
		return fmt.Errorf("GUESTBOOK_LIMIT must be positive, got %d", c.Content.GuestbookLimit)
	}
	return nil
}

// DSN returns the driver name and connection string for the configured store.
func (d *DatabaseConfig) DSN() (driver, dsn string) {
	if d.Type == "sqlite" {
		return "sqlite", d.SQLitePath
	}
	if d.URI != "" {
		return "postgres", d.URI
	}
	return "postgres", fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

// Addr is the listen address for the HTTP server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
