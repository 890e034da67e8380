package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Redis    RedisConfig
	Sweeper  SweeperConfig
	OTP      OTPConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogLevel    string

	// AllowedOrigins limits WebSocket upgrades; empty accepts any origin.
	AllowedOrigins []string
}

type DatabaseConfig struct {
	// URL takes precedence over the individual DB_* parts when set.
	URL        string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	MigrationsDir string
	RunSeeders    bool
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
	Issuer    string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SSL      bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type SweeperConfig struct {
	Enabled        bool
	Schedule       string
	Timezone       string
	StaleAfterDays int
	Timeout        time.Duration
}

// Location is the zone the sweep counts calendar days in, UTC when the
// timezone cannot be loaded.
func (c SweeperConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type OTPConfig struct {
	TTL         time.Duration
	ResendAfter time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

var errInvalidEnv = errors.New("invalid environment variables")

func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return def
		}
		return v
	}
	optInt := func(key string, def int) int {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optBool := func(key string, def bool) bool {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     opt("APP_NAME", "getjobs"),
		Environment: opt("APP_ENV", "development"),
		HTTPPort:    opt("HTTP_PORT", "8282"),
		LogLevel:    opt("LOG_LEVEL", "info"),

		AllowedOrigins: splitList(getenv("WS_ALLOWED_ORIGINS")),
	}

	cfg.Database = DatabaseConfig{
		URL:                   opt("DATABASE_URL", ""),
		DBHost:                opt("DB_HOST", ""),
		DBPort:                opt("DB_PORT", "5432"),
		DBName:                opt("DB_NAME", ""),
		DBUser:                opt("DB_USER", ""),
		DBPassword:            strings.TrimSpace(getenv("DB_PASSWORD")),
		DBSSLMode:             opt("DB_SSL_MODE", "disable"),
		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
		MigrationsDir:         opt("MIGRATIONS_DIR", ""),
		RunSeeders:            optBool("RUN_SEEDERS", false),
	}
	if cfg.Database.URL == "" {
		if cfg.Database.DBHost == "" {
			missing = append(missing, "DATABASE_URL or DB_HOST")
		}
		if cfg.Database.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
		if cfg.Database.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
	}

	cfg.JWT = JWTConfig{
		Secret:    req("TOKEN_SECRET"),
		ExpiresIn: optDuration("TOKEN_EXPIRES_IN", 30*24*time.Hour),
		Issuer:    opt("TOKEN_ISSUER", "getjobs.today"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     opt("SMTP_HOST", ""),
		Port:     optInt("SMTP_PORT", 465),
		Username: opt("SMTP_MAIL", ""),
		Password: strings.TrimSpace(getenv("SMTP_PASSWORD")),
		From:     opt("SMTP_FROM", ""),
		SSL:      optBool("SMTP_SSL", true),
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	cfg.Redis = RedisConfig{
		Addr:     opt("REDIS_ADDR", "localhost:6379"),
		Password: strings.TrimSpace(getenv("REDIS_PASSWORD")),
		DB:       optInt("REDIS_DB", 0),
		TTL:      optDuration("REDIS_TTL", 10*time.Minute),
	}

	cfg.Sweeper = SweeperConfig{
		Enabled:        optBool("SWEEP_ENABLED", true),
		Schedule:       opt("SWEEP_SCHEDULE", "0 0 * * *"),
		Timezone:       opt("SWEEP_TZ", "UTC"),
		StaleAfterDays: optInt("SWEEP_STALE_AFTER_DAYS", 30),
		Timeout:        optDuration("SWEEP_TIMEOUT", 5*time.Minute),
	}
	if cfg.Sweeper.StaleAfterDays <= 0 {
		invalid = append(invalid, "SWEEP_STALE_AFTER_DAYS")
	}
	if _, err := time.LoadLocation(cfg.Sweeper.Timezone); err != nil {
		invalid = append(invalid, "SWEEP_TZ")
	}

	cfg.OTP = OTPConfig{
		TTL:         optDuration("OTP_TTL", 10*time.Minute),
		ResendAfter: optDuration("OTP_RESEND_AFTER", time.Minute),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
