package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Period source modes.
const (
	SourceModeScrape   = "scrape"
	SourceModeFile     = "file"
	SourceModeDatabase = "database"
)

// Export storage drivers.
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Source   SourceConfig
	Calendar CalendarConfig
	Planner  PlannerConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig toggles caching of generated plans in Redis.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SourceConfig selects where lecture and project week periods come from.
type SourceConfig struct {
	Mode       string
	LectureURL string
	HIPURL     string
	File       string
	Timeout    time.Duration
	UserAgent  string
}

// CalendarConfig points at the optional YAML calendar rules.
type CalendarConfig struct {
	File string
}

// PlannerConfig exposes the optimizer search windows.
type PlannerConfig struct {
	HorizonYears     int
	ShiftMin         int
	ShiftMax         int
	LastBlockOffsets []int
	BufferMin        int
	BufferMax        int
	TargetBuffer     int
	MinLectureWeeks  int
	MaxLookbackDays  int
}

// ExportsConfig configures export rendering, storage and signed downloads.
type ExportsConfig struct {
	StorageDriver     string
	StorageDir        string
	S3                S3Config
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	ResultTTL         time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// S3Config holds credentials for S3 compatible export storage.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Enabled:         v.GetBool("ENABLE_DATABASE"),
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
		AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 6*time.Hour),
	}

	cfg.Source = SourceConfig{
		Mode:       strings.ToLower(v.GetString("SOURCE_MODE")),
		LectureURL: v.GetString("SOURCE_LECTURE_URL"),
		HIPURL:     v.GetString("SOURCE_HIP_URL"),
		File:       v.GetString("SOURCE_FILE"),
		Timeout:    parseDuration(v.GetString("SOURCE_TIMEOUT"), 15*time.Second),
		UserAgent:  v.GetString("SOURCE_USER_AGENT"),
	}

	cfg.Calendar = CalendarConfig{File: v.GetString("CALENDAR_FILE")}

	offsets, err := parseInts(v.GetString("PLANNER_LAST_BLOCK_OFFSETS"))
	if err != nil {
		return nil, fmt.Errorf("PLANNER_LAST_BLOCK_OFFSETS: %w", err)
	}
	cfg.Planner = PlannerConfig{
		HorizonYears:     v.GetInt("PLANNER_HORIZON_YEARS"),
		ShiftMin:         v.GetInt("PLANNER_SHIFT_MIN"),
		ShiftMax:         v.GetInt("PLANNER_SHIFT_MAX"),
		LastBlockOffsets: offsets,
		BufferMin:        v.GetInt("PLANNER_BUFFER_MIN"),
		BufferMax:        v.GetInt("PLANNER_BUFFER_MAX"),
		TargetBuffer:     v.GetInt("PLANNER_TARGET_BUFFER"),
		MinLectureWeeks:  v.GetInt("PLANNER_MIN_LECTURE_WEEKS"),
		MaxLookbackDays:  v.GetInt("PLANNER_MAX_LOOKBACK_DAYS"),
	}

	cfg.Exports = ExportsConfig{
		StorageDriver: strings.ToLower(v.GetString("EXPORTS_STORAGE_DRIVER")),
		StorageDir:    v.GetString("EXPORTS_STORAGE_DIR"),
		S3: S3Config{
			Bucket:    v.GetString("EXPORTS_S3_BUCKET"),
			Region:    v.GetString("EXPORTS_S3_REGION"),
			Endpoint:  v.GetString("EXPORTS_S3_ENDPOINT"),
			AccessKey: v.GetString("EXPORTS_S3_ACCESS_KEY"),
			SecretKey: v.GetString("EXPORTS_S3_SECRET_KEY"),
		},
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		ResultTTL:         parseDuration(v.GetString("EXPORTS_RESULT_TTL"), 48*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	if c.Env == EnvProduction && (c.JWT.Secret == "" || c.JWT.Secret == "dev_secret") {
		return errors.New("JWT_SECRET must be set in production")
	}
	switch c.Source.Mode {
	case SourceModeScrape, SourceModeFile, SourceModeDatabase:
	default:
		return fmt.Errorf("unknown SOURCE_MODE %q", c.Source.Mode)
	}
	if c.Source.Mode == SourceModeFile && c.Source.File == "" {
		return errors.New("SOURCE_FILE is required when SOURCE_MODE=file")
	}
	if c.Source.Mode == SourceModeDatabase && !c.Database.Enabled {
		return errors.New("SOURCE_MODE=database requires ENABLE_DATABASE")
	}
	if c.Planner.ShiftMin > c.Planner.ShiftMax {
		return errors.New("PLANNER_SHIFT_MIN must not exceed PLANNER_SHIFT_MAX")
	}
	if c.Planner.BufferMin > c.Planner.BufferMax {
		return errors.New("PLANNER_BUFFER_MIN must not exceed PLANNER_BUFFER_MAX")
	}
	if c.Planner.HorizonYears < 0 {
		return errors.New("PLANNER_HORIZON_YEARS must not be negative")
	}
	switch c.Exports.StorageDriver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if c.Exports.S3.Bucket == "" {
			return errors.New("EXPORTS_S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown EXPORTS_STORAGE_DRIVER %q", c.Exports.StorageDriver)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ENABLE_DATABASE", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "exam_periods")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "exam-period-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "6h")

	v.SetDefault("SOURCE_MODE", SourceModeScrape)
	v.SetDefault("SOURCE_LECTURE_URL", "https://www.th-koeln.de/studium/vorlesungszeiten_357.php")
	v.SetDefault("SOURCE_HIP_URL", "https://www.th-koeln.de/studium/interdisziplinaere-projektwoche_48320.php")
	v.SetDefault("SOURCE_FILE", "")
	v.SetDefault("SOURCE_TIMEOUT", "15s")
	v.SetDefault("SOURCE_USER_AGENT", "exam-period-api/1.0")

	v.SetDefault("CALENDAR_FILE", "")

	v.SetDefault("PLANNER_HORIZON_YEARS", 4)
	v.SetDefault("PLANNER_SHIFT_MIN", -2)
	v.SetDefault("PLANNER_SHIFT_MAX", 2)
	v.SetDefault("PLANNER_LAST_BLOCK_OFFSETS", "0,1")
	v.SetDefault("PLANNER_BUFFER_MIN", 6)
	v.SetDefault("PLANNER_BUFFER_MAX", 10)
	v.SetDefault("PLANNER_TARGET_BUFFER", 7)
	v.SetDefault("PLANNER_MIN_LECTURE_WEEKS", 13)
	v.SetDefault("PLANNER_MAX_LOOKBACK_DAYS", 21)

	v.SetDefault("EXPORTS_STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_S3_BUCKET", "")
	v.SetDefault("EXPORTS_S3_REGION", "eu-central-1")
	v.SetDefault("EXPORTS_S3_ENDPOINT", "")
	v.SetDefault("EXPORTS_S3_ACCESS_KEY", "")
	v.SetDefault("EXPORTS_S3_SECRET_KEY", "")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_RESULT_TTL", "48h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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

func parseInts(raw string) ([]int, error) {
	parts := splitAndTrim(raw)
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", part)
		}
		result = append(result, n)
	}
	return result, nil
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
