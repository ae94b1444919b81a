package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"

	minSigningKeyLength = 32
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	Migrate         bool          `yaml:"migrate"`

	// MaxRetryAttempts bounds how often a deadlocked order insert is retried.
	MaxRetryAttempts int `yaml:"maxRetryAttempts"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AuthConfig struct {
	SigningKey     string        `yaml:"signingKey"`
	TokenTTL       time.Duration `yaml:"tokenTTL"`
	BcryptCost     int           `yaml:"bcryptCost"`
	LoginRateRPS   float64       `yaml:"loginRateRPS"`
	LoginRateBurst int           `yaml:"loginRateBurst"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// Default returns the configuration used when neither a file nor the
// environment overrides a value.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:             "localhost",
			Port:             3306,
			User:             "storefront",
			Password:         "secret",
			Name:             "storefront",
			MaxOpenConns:     25,
			MaxIdleConns:     5,
			ConnMaxLifetime:  5 * time.Minute,
			MaxRetryAttempts: 3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			TokenTTL:       7 * 24 * time.Hour,
			BcryptCost:     10,
			LoginRateRPS:   1,
			LoginRateBurst: 5,
		},
		Storage: StorageConfig{
			Driver: StorageMySQL,
		},
	}
}

func Load() (*Config, error) {
	def := Default()
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", def.Server.Port)
	v.SetDefault("SERVER_READ_TIMEOUT", def.Server.ReadTimeout.String())
	v.SetDefault("SERVER_WRITE_TIMEOUT", def.Server.WriteTimeout.String())
	v.SetDefault("DB_HOST", def.Database.Host)
	v.SetDefault("DB_PORT", def.Database.Port)
	v.SetDefault("DB_USER", def.Database.User)
	v.SetDefault("DB_PASSWORD", def.Database.Password)
	v.SetDefault("DB_NAME", def.Database.Name)
	v.SetDefault("DB_MAX_OPEN_CONNS", def.Database.MaxOpenConns)
	v.SetDefault("DB_MAX_IDLE_CONNS", def.Database.MaxIdleConns)
	v.SetDefault("DB_CONN_MAX_LIFETIME", def.Database.ConnMaxLifetime.String())
	v.SetDefault("DB_MAX_RETRY_ATTEMPTS", def.Database.MaxRetryAttempts)
	v.SetDefault("DB_MIGRATE", false)
	v.SetDefault("LOG_LEVEL", def.Log.Level)
	v.SetDefault("LOG_FORMAT", def.Log.Format)
	v.SetDefault("AUTH_SIGNING_KEY", "")
	v.SetDefault("AUTH_TOKEN_TTL", def.Auth.TokenTTL.String())
	v.SetDefault("AUTH_BCRYPT_COST", def.Auth.BcryptCost)
	v.SetDefault("AUTH_LOGIN_RATE_RPS", def.Auth.LoginRateRPS)
	v.SetDefault("AUTH_LOGIN_RATE_BURST", def.Auth.LoginRateBurst)
	v.SetDefault("STORAGE_DRIVER", def.Storage.Driver)

	durations := map[string]*time.Duration{}
	var readTimeout, writeTimeout, connMaxLifetime, tokenTTL time.Duration
	durations["SERVER_READ_TIMEOUT"] = &readTimeout
	durations["SERVER_WRITE_TIMEOUT"] = &writeTimeout
	durations["DB_CONN_MAX_LIFETIME"] = &connMaxLifetime
	durations["AUTH_TOKEN_TTL"] = &tokenTTL
	for key, dst := range durations {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("SERVER_PORT"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Database: DatabaseConfig{
			Host:             v.GetString("DB_HOST"),
			Port:             v.GetInt("DB_PORT"),
			User:             v.GetString("DB_USER"),
			Password:         v.GetString("DB_PASSWORD"),
			Name:             v.GetString("DB_NAME"),
			MaxOpenConns:     v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:     v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:  connMaxLifetime,
			Migrate:          v.GetBool("DB_MIGRATE"),
			MaxRetryAttempts: v.GetInt("DB_MAX_RETRY_ATTEMPTS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: AuthConfig{
			SigningKey:     v.GetString("AUTH_SIGNING_KEY"),
			TokenTTL:       tokenTTL,
			BcryptCost:     v.GetInt("AUTH_BCRYPT_COST"),
			LoginRateRPS:   v.GetFloat64("AUTH_LOGIN_RATE_RPS"),
			LoginRateBurst: v.GetInt("AUTH_LOGIN_RATE_BURST"),
		},
		Storage: StorageConfig{
			Driver: v.GetString("STORAGE_DRIVER"),
		},
	}

	return cfg, nil
}

// Validate checks the values the process cannot start without. An empty
// signing key is accepted only for the memory driver; main generates one.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server port must be positive, got %d", c.Server.Port)
	}
	switch c.Storage.Driver {
	case StorageMySQL, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.SigningKey == "" {
		if c.Storage.Driver != StorageMemory {
			return fmt.Errorf("auth signing key is required")
		}
		return nil
	}
	if len(c.Auth.SigningKey) < minSigningKeyLength {
		return fmt.Errorf("auth signing key must be at least %d bytes", minSigningKeyLength)
	}
	return nil
}
