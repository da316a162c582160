package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMongoDB  = "mongodb"
	StoreMemory   = "memory"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	JWT          JWTConfig
	SMTP         SMTPConfig
	Attendance   AttendanceConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig is optional; an empty Addr keeps locking and notification in-process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type AttendanceConfig struct {
	Store                       string
	BusinessTimezone            string
	LateCorrectionLimit         int
	StatusCorrectionLimit       int
	StatusApprovalForcesFullDay bool
	StorageTimeout              time.Duration
	LockTimeout                 time.Duration
}

type NotificationConfig struct {
	WorkerCount      int
	QueueSize        int
	DeliveryTimeout  time.Duration
	AsynqQueue       string
	AsynqConcurrency int
	RetentionDays    int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	config.Mongo = MongoConfig{
		URI:      getEnv("MONGO_URI", ""),
		Database: getEnv("MONGO_DATABASE", "hris_attendance"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@cmlabs.co"),
		FromName: getEnv("SMTP_FROM_NAME", "HRIS Attendance"),
	}

	// Attendance configuration
	config.Attendance = AttendanceConfig{
		Store:            strings.ToLower(getEnv("ATTENDANCE_STORE", StorePostgres)),
		BusinessTimezone: getEnv("BUSINESS_TIMEZONE", "Asia/Kolkata"),
	}
	if config.Attendance.LateCorrectionLimit, err = getEnvInt("LATE_CORRECTION_LIMIT", 3); err != nil {
		return nil, err
	}
	if config.Attendance.StatusCorrectionLimit, err = getEnvInt("STATUS_CORRECTION_LIMIT", 3); err != nil {
		return nil, err
	}
	if config.Attendance.StatusApprovalForcesFullDay, err = getEnvBool("STATUS_CORRECTION_FORCES_FULL_DAY", true); err != nil {
		return nil, err
	}
	if config.Attendance.StorageTimeout, err = getEnvDuration("ATTENDANCE_STORAGE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if config.Attendance.LockTimeout, err = getEnvDuration("ATTENDANCE_LOCK_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	// Notification configuration
	config.Notification = NotificationConfig{
		AsynqQueue: getEnv("NOTIFICATION_QUEUE", "attendance"),
	}
	if config.Notification.WorkerCount, err = getEnvInt("NOTIFICATION_WORKERS", 2); err != nil {
		return nil, err
	}
	if config.Notification.QueueSize, err = getEnvInt("NOTIFICATION_QUEUE_SIZE", 1000); err != nil {
		return nil, err
	}
	if config.Notification.DeliveryTimeout, err = getEnvDuration("NOTIFICATION_DELIVERY_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if config.Notification.AsynqConcurrency, err = getEnvInt("NOTIFICATION_CONCURRENCY", 5); err != nil {
		return nil, err
	}
	if config.Notification.RetentionDays, err = getEnvInt("NOTIFICATION_RETENTION_DAYS", 90); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	switch c.Attendance.Store {
	case StorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreMongoDB:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required when ATTENDANCE_STORE=mongodb")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for shift, leave and employee lookups")
		}
	case StoreMemory:
		if c.App.Env == "production" {
			return fmt.Errorf("ATTENDANCE_STORE=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("ATTENDANCE_STORE must be one of %s, %s, %s", StorePostgres, StoreMongoDB, StoreMemory)
	}

	if _, err := time.LoadLocation(c.Attendance.BusinessTimezone); err != nil {
		return fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", c.Attendance.BusinessTimezone, err)
	}
	if c.Attendance.LateCorrectionLimit <= 0 || c.Attendance.StatusCorrectionLimit <= 0 {
		return fmt.Errorf("correction limits must be positive")
	}
	if c.Attendance.StorageTimeout <= 0 {
		return fmt.Errorf("ATTENDANCE_STORAGE_TIMEOUT must be positive")
	}
	if c.Notification.WorkerCount <= 0 || c.Notification.QueueSize <= 0 {
		return fmt.Errorf("notification workers and queue size must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// UseRedis reports whether a Redis server is configured for locks and the task queue.
func (c *Config) UseRedis() bool {
	return c.Redis.Addr != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
