package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config holds all service configuration. Values come from environment
// variables, optionally layered over a YAML/JSON file named by CONFIG_FILE.
type Config struct {
	Port         string
	StoreBackend string

	MongoURI    string
	MongoDB     string
	PostgresDSN string

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret              string
	TokenTTL               time.Duration
	AdminUsername          string
	AdminPassword          string
	AllowAdminRegistration bool

	CORSOrigins []string
	LogLevel    string
	LogFormat   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("store_backend", BackendMongo)
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "portfolio")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("minio_endpoint", "")
	v.SetDefault("minio_access_key", "")
	v.SetDefault("minio_secret_key", "")
	v.SetDefault("minio_bucket", "portfolio-images")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", time.Hour)
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password", "")
	v.SetDefault("allow_admin_registration", true)
	v.SetDefault("cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load reads the configuration and checks the values the server cannot run
// without.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:                   v.GetString("port"),
		StoreBackend:           strings.ToLower(v.GetString("store_backend")),
		MongoURI:               v.GetString("mongo_uri"),
		MongoDB:                v.GetString("mongo_db"),
		PostgresDSN:            v.GetString("postgres_dsn"),
		RedisAddr:              v.GetString("redis_addr"),
		RedisPassword:          v.GetString("redis_password"),
		MinioEndpoint:          v.GetString("minio_endpoint"),
		MinioAccessKey:         v.GetString("minio_access_key"),
		MinioSecretKey:         v.GetString("minio_secret_key"),
		MinioBucket:            v.GetString("minio_bucket"),
		MinioUseSSL:            v.GetBool("minio_use_ssl"),
		JWTSecret:              v.GetString("jwt_secret"),
		TokenTTL:               v.GetDuration("token_ttl"),
		AdminUsername:          v.GetString("admin_username"),
		AdminPassword:          v.GetString("admin_password"),
		AllowAdminRegistration: v.GetBool("allow_admin_registration"),
		CORSOrigins:            splitList(v.GetStringSlice("cors_origins")),
		LogLevel:               v.GetString("log_level"),
		LogFormat:              v.GetString("log_format"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if len(c.CORSOrigins) == 0 {
		// an empty list makes the CORS handler allow every origin
		return errors.New("config: CORS_ORIGINS must name at least one origin")
	}
	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New("config: MONGO_URI is required for the mongo backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// splitList flattens a list that may come from a file as a real list or
// from the environment as a comma separated string.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
