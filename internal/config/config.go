package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int

	// OwnerOpenID is the external identity that is auto-promoted to an
	// approved admin on registration. Every other new identity starts
	// pending and unapproved.
	OwnerOpenID string

	Database DatabaseConfig
	Log      LogConfig
	Cache    CacheConfig
	Slots    SlotConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
	// SQLitePath is used when no MySQL host is configured (local dev).
	SQLitePath string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig holds schedule-view cache settings
type CacheConfig struct {
	Enabled            bool
	Type               string // "redis" or "memory"
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	ScheduleTTLSeconds int
}

// SlotConfig defines the bookable time grid. Appointment times are
// canonicalized to zero-padded "HH:MM" and must land on this grid.
type SlotConfig struct {
	Open            string
	Close           string
	IntervalMinutes int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:       getEnv("DB_HOST", ""),
		Port:       getEnv("DB_PORT", "3306"),
		Username:   getEnv("DB_USERNAME", "root"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "clinic"),
		SQLitePath: getEnv("SQLITE_PATH", "clinic.db"),
	}

	// Build the MySQL DSN only when a host is configured; otherwise the
	// store falls back to the local SQLite file.
	if dsn := getEnv("DATABASE_URL", ""); dsn != "" {
		dbConfig.DSN = dsn
	} else if dbConfig.Host != "" {
		dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	scheduleTTL, err := strconv.Atoi(getEnv("SCHEDULE_CACHE_TTL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_CACHE_TTL_SECONDS: %w", err)
	}

	slotInterval, err := strconv.Atoi(getEnv("SLOT_INTERVAL_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLOT_INTERVAL_MINUTES: %w", err)
	}

	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:5173"),
		Environment:               getEnv("APP_ENV", "development"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		OwnerOpenID:               getEnv("OWNER_OPEN_ID", ""),
		Database:                  dbConfig,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Cache: CacheConfig{
			Enabled:            getEnv("CACHE_ENABLED", "true") == "true",
			Type:               getEnv("CACHE_TYPE", "memory"),
			RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:      getEnv("REDIS_PASSWORD", ""),
			RedisDB:            redisDB,
			ScheduleTTLSeconds: scheduleTTL,
		},
		Slots: SlotConfig{
			Open:            getEnv("SLOT_OPEN", "10:00"),
			Close:           getEnv("SLOT_CLOSE", "22:00"),
			IntervalMinutes: slotInterval,
		},
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
