package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Coverage attribution modes.
const (
	AttributionTherapistSpecialties = "therapist_specialties"
	AttributionActivity             = "activity"
)

// Derived cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	SeedFile  string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Scheduling SchedulingConfig
	Cache      DerivedCacheConfig
	Ledger     LedgerConfig
	Events     EventsConfig
	Reports    ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulingConfig holds the clinic rules applied by the scheduling engine.
type SchedulingConfig struct {
	BreakMinutes        int
	MaxDailyHours       float64
	NearLimitPercent    int
	DefaultDuration     int
	EnforceValidation   bool
	StrictTransitions   bool
	CoverageAttribution string
	DayStart            string
	DayEnd              string
	SlotMinutes         int
}

// DerivedCacheConfig governs memoization of workload and coverage results.
type DerivedCacheConfig struct {
	Enabled  bool
	Backend  string
	Capacity int
	TTL      time.Duration
}

// LedgerConfig toggles the durable history mirror.
type LedgerConfig struct {
	PersistenceEnabled bool
}

// EventsConfig configures publication of history entries to Kafka.
type EventsConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	Workers int
	Retries int
}

// ReportsConfig configures where exported reports are written.
type ReportsConfig struct {
	StorageDir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.SeedFile = v.GetString("SEED_FILE")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduling = SchedulingConfig{
		BreakMinutes:        v.GetInt("SCHEDULING_BREAK_MINUTES"),
		MaxDailyHours:       v.GetFloat64("SCHEDULING_MAX_DAILY_HOURS"),
		NearLimitPercent:    v.GetInt("SCHEDULING_NEAR_LIMIT_PERCENT"),
		DefaultDuration:     v.GetInt("SCHEDULING_DEFAULT_DURATION"),
		EnforceValidation:   v.GetBool("SCHEDULING_ENFORCE_VALIDATION"),
		StrictTransitions:   v.GetBool("SCHEDULING_STRICT_TRANSITIONS"),
		CoverageAttribution: normalizeAttribution(v.GetString("SCHEDULING_COVERAGE_ATTRIBUTION")),
		DayStart:            v.GetString("SCHEDULING_DAY_START"),
		DayEnd:              v.GetString("SCHEDULING_DAY_END"),
		SlotMinutes:         v.GetInt("SCHEDULING_SLOT_MINUTES"),
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("DERIVED_CACHE_BACKEND")))
	if backend != CacheBackendRedis {
		backend = CacheBackendMemory
	}
	cfg.Cache = DerivedCacheConfig{
		Enabled:  v.GetBool("ENABLE_DERIVED_CACHE"),
		Backend:  backend,
		Capacity: v.GetInt("DERIVED_CACHE_CAPACITY"),
		TTL:      parseDuration(v.GetString("DERIVED_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Ledger = LedgerConfig{
		PersistenceEnabled: v.GetBool("ENABLE_LEDGER_PERSISTENCE"),
	}

	cfg.Events = EventsConfig{
		Enabled: v.GetBool("ENABLE_EVENTS"),
		Brokers: splitAndTrim(v.GetString("KAFKA_BROKERS")),
		Topic:   v.GetString("KAFKA_TOPIC"),
		Workers: v.GetInt("EVENTS_WORKERS"),
		Retries: v.GetInt("EVENTS_RETRIES"),
	}

	cfg.Reports = ReportsConfig{
		StorageDir: v.GetString("REPORTS_STORAGE_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("SEED_FILE", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "clinic_scheduler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULING_BREAK_MINUTES", 15)
	v.SetDefault("SCHEDULING_MAX_DAILY_HOURS", 8)
	v.SetDefault("SCHEDULING_NEAR_LIMIT_PERCENT", 80)
	v.SetDefault("SCHEDULING_DEFAULT_DURATION", 60)
	v.SetDefault("SCHEDULING_ENFORCE_VALIDATION", true)
	v.SetDefault("SCHEDULING_STRICT_TRANSITIONS", false)
	v.SetDefault("SCHEDULING_COVERAGE_ATTRIBUTION", AttributionTherapistSpecialties)
	v.SetDefault("SCHEDULING_DAY_START", "07:00")
	v.SetDefault("SCHEDULING_DAY_END", "19:00")
	v.SetDefault("SCHEDULING_SLOT_MINUTES", 30)

	v.SetDefault("ENABLE_DERIVED_CACHE", true)
	v.SetDefault("DERIVED_CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("DERIVED_CACHE_CAPACITY", 512)
	v.SetDefault("DERIVED_CACHE_TTL", "10m")

	v.SetDefault("ENABLE_LEDGER_PERSISTENCE", false)

	v.SetDefault("ENABLE_EVENTS", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "schedule-history")
	v.SetDefault("EVENTS_WORKERS", 1)
	v.SetDefault("EVENTS_RETRIES", 3)

	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
}

func normalizeAttribution(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), AttributionActivity) {
		return AttributionActivity
	}
	return AttributionTherapistSpecialties
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
