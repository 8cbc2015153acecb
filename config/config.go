package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development signing key. Production refuses it.
const DefaultJWTSecret = "default-secret-change-in-production"

// Config holds every setting the API reads from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DB DBConfig

	JWTSecret string
	JWTTTL    time.Duration

	AllowedOrigins []string

	MemcachedHost string
	HomeCacheTTL  time.Duration

	RabbitMQURL     string
	PropertiesQueue string

	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	OTPTTL        time.Duration
	ResetTokenTTL time.Duration

	LegacyNextPage bool
}

// DBConfig selects the GORM dialect and its connection parameters.
type DBConfig struct {
	Driver   string // mysql, postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	URL      string // full DSN; takes precedence over the individual fields
	LogSQL   bool
}

// LoadConfig loads a .env file when present and reads the environment with defaults.
func LoadConfig() *Config {
	// a missing .env is fine, the real environment still applies
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "rentals_user"),
			Password: getEnv("DB_PASSWORD", "rentals_password"),
			Name:     getEnv("DB_NAME", "rentals_db"),
			URL:      getEnv("DB_URL", ""),
			LogSQL:   getBool("DB_LOG_SQL", false),
		},
		JWTSecret:           getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTTTL:              getDuration("JWT_TTL", 24*time.Hour),
		AllowedOrigins:      parseList(getEnv("ALLOWED_ORIGINS", "*")),
		MemcachedHost:       getEnv("MEMCACHED_HOST", ""),
		HomeCacheTTL:        getDuration("HOME_CACHE_TTL", 5*time.Minute),
		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		PropertiesQueue:     getEnv("PROPERTIES_QUEUE", "properties_queue"),
		RedisURL:            getEnv("REDIS_URL", ""),
		RateLimitMax:        getInt("RATE_LIMIT_MAX", 20),
		RateLimitWindow:     getDuration("RATE_LIMIT_WINDOW", time.Minute),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "rentals"),
		OTPTTL:              getDuration("OTP_TTL", 15*time.Minute),
		ResetTokenTTL:       getDuration("RESET_TOKEN_TTL", time.Hour),
		LegacyNextPage:      getBool("PAGINATION_LEGACY_NEXT", false),
	}
}

// IsProduction reports whether ENVIRONMENT is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate rejects settings that must not reach a production deployment.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// CloudinaryEnabled reports whether every Cloudinary credential is set.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
