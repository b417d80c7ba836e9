package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/basket-ranking/internal/domain"
	"github.com/spf13/viper"
)

const (
	ProviderGeodesic = "geodesic"
	ProviderGoogle   = "google"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Provider ProviderConfig
	Worker   WorkerConfig
	Basket   BasketConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled     bool
	DistanceTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ProviderConfig - настройки провайдера расстояний.
type ProviderConfig struct {
	Kind              string
	APIKey            string
	BaseURL           string
	Units             domain.UnitSystem
	Mode              domain.TravelMode
	RequestTimeout    time.Duration
	MaxElements       int
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
	// Concurrency - сколько origins измеряются параллельно
	Concurrency int
	RunTimeout  time.Duration
}

type BasketConfig struct {
	DefaultQuota domain.Quota
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// без .env работаем только на переменных окружения
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return fromViper(viper.GetViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),

			CORSOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			Enabled:     v.GetBool("DISTANCE_CACHE_ENABLED"),
			DistanceTTL: time.Duration(v.GetInt("DISTANCE_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		Provider: ProviderConfig{
			Kind:              strings.ToLower(v.GetString("PROVIDER_KIND")),
			APIKey:            v.GetString("PROVIDER_API_KEY"),
			BaseURL:           v.GetString("PROVIDER_BASE_URL"),
			RequestTimeout:    time.Duration(v.GetInt("PROVIDER_REQUEST_TIMEOUT")) * time.Second,
			MaxElements:       v.GetInt("PROVIDER_MAX_ELEMENTS"),
			MaxRetries:        v.GetInt("PROVIDER_MAX_RETRIES"),
			RequestsPerSecond: v.GetFloat64("PROVIDER_RPS"),
			Burst:             v.GetInt("PROVIDER_BURST"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
			Concurrency:       v.GetInt("WORKER_CONCURRENCY"),
			RunTimeout:        time.Duration(v.GetInt("WORKER_RUN_TIMEOUT")) * time.Second,
		},
	}

	// Set default values if not provided
	if cfg.Server.CORSOrigins == "" {
		cfg.Server.CORSOrigins = "*"
	}
	if cfg.Provider.Kind == "" {
		cfg.Provider.Kind = ProviderGeodesic
	}
	if cfg.Provider.Kind != ProviderGeodesic && cfg.Provider.Kind != ProviderGoogle {
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}
	if cfg.Provider.Kind == ProviderGoogle && cfg.Provider.APIKey == "" {
		return nil, fmt.Errorf("PROVIDER_API_KEY is required for provider %q", ProviderGoogle)
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://maps.googleapis.com/maps/api/distancematrix/json"
	}

	units, err := domain.ParseUnitSystem(withDefault(v.GetString("PROVIDER_UNITS"), string(domain.UnitsImperial)))
	if err != nil {
		return nil, fmt.Errorf("PROVIDER_UNITS: %w", err)
	}
	cfg.Provider.Units = units

	mode, err := domain.ParseTravelMode(withDefault(v.GetString("PROVIDER_MODE"), string(domain.TravelModeCar)))
	if err != nil {
		return nil, fmt.Errorf("PROVIDER_MODE: %w", err)
	}
	cfg.Provider.Mode = mode

	if cfg.Provider.RequestTimeout == 0 {
		cfg.Provider.RequestTimeout = 30 * time.Second
	}
	if cfg.Provider.MaxElements == 0 {
		cfg.Provider.MaxElements = 25
	}
	if cfg.Provider.MaxRetries == 0 {
		cfg.Provider.MaxRetries = 3
	}
	if cfg.Provider.RequestsPerSecond == 0 {
		cfg.Provider.RequestsPerSecond = 10
	}
	if cfg.Provider.Burst == 0 {
		cfg.Provider.Burst = 1
	}

	if cfg.Cache.DistanceTTL == 0 {
		cfg.Cache.DistanceTTL = 30 * 24 * time.Hour
	}

	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "basket-build-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = 8
	}
	if cfg.Worker.RunTimeout == 0 {
		cfg.Worker.RunTimeout = 30 * time.Minute
	}

	quota, err := ParseQuota(v.GetString("BASKET_DEFAULT_QUOTA"))
	if err != nil {
		return nil, fmt.Errorf("BASKET_DEFAULT_QUOTA: %w", err)
	}
	cfg.Basket.DefaultQuota = quota

	return cfg, nil
}

// ParseQuota разбирает строку вида "grocery:3,park:2".
func ParseQuota(s string) (domain.Quota, error) {
	q := domain.Quota{}
	if strings.TrimSpace(s) == "" {
		return q, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, count, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: entry %q is not category:count", domain.ErrInvalidQuota, part)
		}
		cat, err := domain.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuota, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			return nil, fmt.Errorf("%w: count for %q: %v", domain.ErrInvalidQuota, name, err)
		}
		q[cat] = n
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

func withDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
