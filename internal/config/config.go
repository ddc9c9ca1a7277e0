// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Cache    CacheConfig
	Engine   EngineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StoreConfig selects the inventory data store backend. "postgres" reads the
// inventory tables directly; "erp" goes through the remote ERP JSON API.
type StoreConfig struct {
	Backend    string
	ERPBaseURL string
	ERPAPIKey  string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// EngineConfig carries the analytics defaults. Every value can be overridden
// per request; these are the fallbacks used when a caller passes nothing.
type EngineConfig struct {
	ServiceLevel         float64
	LeadTimeDays         int
	MaxChangePercent     float64
	MinSafetyStock       int
	RoundToPack          int
	AnomalyLookbackDays  int
	AnomalyThresholdPct  float64
	StockoutLookbackDays int
	ClassifyWindowDays   int
	PriceVarianceEnabled bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "inventory")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("STORE_BACKEND", "postgres")
		viper.SetDefault("ERP_BASE_URL", "")
		viper.SetDefault("ERP_API_KEY", "")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_TTL_SECONDS", 60)
		viper.SetDefault("ENGINE_SERVICE_LEVEL", 0.95)
		viper.SetDefault("ENGINE_LEAD_TIME_DAYS", 7)
		viper.SetDefault("ENGINE_MAX_CHANGE_PERCENT", 20.0)
		viper.SetDefault("ENGINE_MIN_SAFETY_STOCK", 0)
		viper.SetDefault("ENGINE_ROUND_TO_PACK", 0)
		viper.SetDefault("ENGINE_ANOMALY_LOOKBACK_DAYS", 7)
		viper.SetDefault("ENGINE_ANOMALY_THRESHOLD_PCT", 150.0)
		viper.SetDefault("ENGINE_STOCKOUT_LOOKBACK_DAYS", 90)
		viper.SetDefault("ENGINE_CLASSIFY_WINDOW_DAYS", 30)
		viper.SetDefault("ENGINE_PRICE_VARIANCE_ENABLED", false)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Store: StoreConfig{
				Backend:    viper.GetString("STORE_BACKEND"),
				ERPBaseURL: viper.GetString("ERP_BASE_URL"),
				ERPAPIKey:  viper.GetString("ERP_API_KEY"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				TTLSeconds:    viper.GetInt("CACHE_TTL_SECONDS"),
			},
			Engine: EngineConfig{
				ServiceLevel:         viper.GetFloat64("ENGINE_SERVICE_LEVEL"),
				LeadTimeDays:         viper.GetInt("ENGINE_LEAD_TIME_DAYS"),
				MaxChangePercent:     viper.GetFloat64("ENGINE_MAX_CHANGE_PERCENT"),
				MinSafetyStock:       viper.GetInt("ENGINE_MIN_SAFETY_STOCK"),
				RoundToPack:          viper.GetInt("ENGINE_ROUND_TO_PACK"),
				AnomalyLookbackDays:  viper.GetInt("ENGINE_ANOMALY_LOOKBACK_DAYS"),
				AnomalyThresholdPct:  viper.GetFloat64("ENGINE_ANOMALY_THRESHOLD_PCT"),
				StockoutLookbackDays: viper.GetInt("ENGINE_STOCKOUT_LOOKBACK_DAYS"),
				ClassifyWindowDays:   viper.GetInt("ENGINE_CLASSIFY_WINDOW_DAYS"),
				PriceVarianceEnabled: viper.GetBool("ENGINE_PRICE_VARIANCE_ENABLED"),
			},
		}
	})

	return instance
}
