package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Supported store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	StoreBackend  string
	DatabaseURL   string
	EnableDBCheck bool
	SQLitePath    string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL    string `mapstructure:"FRONTEND_BASE_URL"`

	PosthogAPIKey   string
	PosthogEndpoint string
	LoginRateLimit  string

	// Change event fan-out
	AMQPURL          string
	AMQPExchange     string
	TelegramBotToken string
	TelegramChatID   int64

	// Shop and ledger policy
	ShopLocation        *time.Location
	LockClosedDays      bool
	DefaultOpeningFloat decimal.Decimal
	Shop                ShopInfo
}

// ShopInfo is the issuer block printed on invoices and reports.
type ShopInfo struct {
	Name      string
	Address   string
	VATNumber string
	TaxCode   string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORE_BACKEND", StorePostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("SQLITE_PATH", "jos.db")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "12h")
	viper.SetDefault("JWT_ISSUER", "jos-backend")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:5173")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "jos.events")
	viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
	viper.SetDefault("TELEGRAM_CHAT_ID", 0)
	viper.SetDefault("SHOP_TIMEZONE", "Europe/Rome")
	viper.SetDefault("CASSA_LOCK_CLOSED_DAYS", true)
	viper.SetDefault("CASSA_DEFAULT_OPENING_FLOAT", "200.00")
	viper.SetDefault("SHOP_NAME", "Rosticceria")
	viper.SetDefault("SHOP_ADDRESS", "")
	viper.SetDefault("SHOP_VAT_NUMBER", "")
	viper.SetDefault("SHOP_TAX_CODE", "")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:               viper.GetString("PORT"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		StoreBackend:       strings.ToLower(viper.GetString("STORE_BACKEND")),
		DatabaseURL:        viper.GetString("PGSQL_URL"),
		EnableDBCheck:      viper.GetBool("ENABLE_DB_CHECK"),
		SQLitePath:         viper.GetString("SQLITE_PATH"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		JWTIssuer:          viper.GetString("JWT_ISSUER"),
		GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
		FrontendBaseURL:    viper.GetString("FRONTEND_BASE_URL"),
		PosthogAPIKey:      viper.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:    viper.GetString("POSTHOG_ENDPOINT"),
		LoginRateLimit:     viper.GetString("LOGIN_RATE_LIMIT"),
		AMQPURL:            viper.GetString("AMQP_URL"),
		AMQPExchange:       viper.GetString("AMQP_EXCHANGE"),
		TelegramBotToken:   viper.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:     viper.GetInt64("TELEGRAM_CHAT_ID"),
		LockClosedDays:     viper.GetBool("CASSA_LOCK_CLOSED_DAYS"),
		Shop: ShopInfo{
			Name:      viper.GetString("SHOP_NAME"),
			Address:   viper.GetString("SHOP_ADDRESS"),
			VATNumber: viper.GetString("SHOP_VAT_NUMBER"),
			TaxCode:   viper.GetString("SHOP_TAX_CODE"),
		},
	}

	// Load JWT Expiry Duration (e.g., "60m", "12h")
	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = 12 * time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	tz := viper.GetString("SHOP_TIMEZONE")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid SHOP_TIMEZONE %q: %w", tz, err)
	}
	cfg.ShopLocation = loc

	float, err := decimal.NewFromString(viper.GetString("CASSA_DEFAULT_OPENING_FLOAT"))
	if err != nil {
		return nil, fmt.Errorf("invalid CASSA_DEFAULT_OPENING_FLOAT: %w", err)
	}
	cfg.DefaultOpeningFloat = float

	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google OAuth will not function.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations of settings that cannot work together.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("PGSQL_URL is required when STORE_BACKEND=postgres")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_BACKEND=sqlite")
		}
	case StoreMemory:
		if c.IsProduction {
			return errors.New("STORE_BACKEND=memory cannot be used in production")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.DefaultOpeningFloat.IsNegative() {
		return errors.New("CASSA_DEFAULT_OPENING_FLOAT must not be negative")
	}
	if c.IsProduction && c.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if (c.TelegramBotToken == "") != (c.TelegramChatID == 0) {
		return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}
