package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/calendar"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Payroll  PayrollConfig
	RBAC     RBACConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
	Timezone       string
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	StatsTTL       time.Duration
	IdempotencyTTL time.Duration
}

type KafkaConfig struct {
	Brokers              []string
	TopicSalaryGenerated string
	TopicSalaryPaid      string
	TopicLeaveApproved   string
	ConsumerGroup        string
	OutboxPollInterval   time.Duration
	OutboxBatchSize      int
}

// PayrollConfig holds defaults for the salary engine
type PayrollConfig struct {
	DefaultWeekendMask      []int
	GenerateRateLimitPerMin int
}

type RBACConfig struct {
	ReloadInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Redis configuration
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	statsTTL, err := getEnvDuration("REDIS_STATS_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	idempotencyTTL, err := getEnvDuration("REDIS_IDEMPOTENCY_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	config.Redis = RedisConfig{
		Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
		Password:       getEnv("REDIS_PASSWORD", ""),
		DB:             redisDB,
		StatsTTL:       statsTTL,
		IdempotencyTTL: idempotencyTTL,
	}

	// Kafka configuration
	pollInterval, err := getEnvDuration("OUTBOX_POLL_INTERVAL", 3*time.Second)
	if err != nil {
		return nil, err
	}
	batchSize, err := getEnvInt("OUTBOX_BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	config.Kafka = KafkaConfig{
		Brokers:              getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
		TopicSalaryGenerated: getEnv("KAFKA_TOPIC_SALARY_GENERATED", "salary.generated"),
		TopicSalaryPaid:      getEnv("KAFKA_TOPIC_SALARY_PAID", "salary.paid"),
		TopicLeaveApproved:   getEnv("KAFKA_TOPIC_LEAVE_APPROVED", "leave.approved"),
		ConsumerGroup:        getEnv("KAFKA_CONSUMER_GROUP", "hris-payroll-worker"),
		OutboxPollInterval:   pollInterval,
		OutboxBatchSize:      batchSize,
	}

	// Payroll configuration
	weekendMask, err := getEnvIntSlice("PAYROLL_DEFAULT_WEEKEND_MASK", []int{0, 6})
	if err != nil {
		return nil, err
	}
	rateLimit, err := getEnvInt("PAYROLL_GENERATE_RATE_LIMIT_PER_MIN", 30)
	if err != nil {
		return nil, err
	}

	config.Payroll = PayrollConfig{
		DefaultWeekendMask:      weekendMask,
		GenerateRateLimitPerMin: rateLimit,
	}

	reloadInterval, err := getEnvDuration("RBAC_RELOAD_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	config.RBAC = RBACConfig{ReloadInterval: reloadInterval}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	for _, d := range c.Payroll.DefaultWeekendMask {
		if d < 0 || d > 6 {
			return fmt.Errorf("PAYROLL_DEFAULT_WEEKEND_MASK must contain weekdays 0-6, got %d", d)
		}
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.Kafka.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}
	if c.Payroll.GenerateRateLimitPerMin <= 0 {
		return fmt.Errorf("PAYROLL_GENERATE_RATE_LIMIT_PER_MIN must be positive")
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

// Location returns the timezone attendance dates are resolved in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WeekendMask returns the configured default weekend days as a calendar mask.
func (c *Config) WeekendMask() calendar.WeekendMask {
	return calendar.NewWeekendMask(c.Payroll.DefaultWeekendMask)
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

func getEnvIntSlice(key string, fallback []int) ([]int, error) {
	parts := getEnvSlice(key, nil)
	if parts == nil {
		return fallback, nil
	}
	result := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		result = append(result, n)
	}
	return result, nil
}
