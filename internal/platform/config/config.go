package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// File storage
	FilesDir     string
	FilesBaseURL string

	// Recurrence and retention
	DefaultTimezone         string
	RuleRunInterval         time.Duration
	PruneRunInterval        time.Duration
	RequisitesRetentionDays int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "24h")
	viper.SetDefault("JWT_ISSUER", "paydesk-backend")
	viper.SetDefault("FILES_DIR", "./storage/files")
	viper.SetDefault("FILES_BASE_URL", "/files")
	viper.SetDefault("DEFAULT_TIMEZONE", "Europe/Kyiv")
	viper.SetDefault("RULE_RUN_INTERVAL", "1m")
	viper.SetDefault("PRUNE_RUN_INTERVAL", "24h")
	viper.SetDefault("REQUISITES_RETENTION_DAYS", 30)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.IsProduction && cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET is the default insecure key. Set it in production.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = 24 * time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.FilesDir = viper.GetString("FILES_DIR")
	cfg.FilesBaseURL = viper.GetString("FILES_BASE_URL")

	cfg.DefaultTimezone = viper.GetString("DEFAULT_TIMEZONE")
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		log.Printf("Warning: Invalid DEFAULT_TIMEZONE ('%s'). Defaulting to Europe/Kyiv.\n", cfg.DefaultTimezone)
		cfg.DefaultTimezone = "Europe/Kyiv"
	}

	cfg.RuleRunInterval = parseDurationOr("RULE_RUN_INTERVAL", time.Minute)
	cfg.PruneRunInterval = parseDurationOr("PRUNE_RUN_INTERVAL", 24*time.Hour)

	cfg.RequisitesRetentionDays = viper.GetInt("REQUISITES_RETENTION_DAYS")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return d
}
