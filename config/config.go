package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/productscout/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Search    SearchConfig
	Amazon    AmazonConfig
	Meesho    MeeshoConfig
	Fees      map[string]FeeProfileConfig
	Database  DatabaseConfig
	OpenAI    OpenAIConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds pipeline tuning knobs
type SearchConfig struct {
	ConnectorTimeout time.Duration `mapstructure:"connector_timeout"`
	MaxResults       int           `mapstructure:"max_results"`
}

// AmazonConfig holds Product Advertising API credentials
type AmazonConfig struct {
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	PartnerTag string `mapstructure:"partner_tag"`
	Host       string `mapstructure:"host"`
	Region     string `mapstructure:"region"`
}

// MeeshoConfig holds the Meesho scraper configuration
type MeeshoConfig struct {
	TrendingURL string `mapstructure:"trending_url"`
	UserAgent   string `mapstructure:"user_agent"`
}

// FeeProfileConfig is the fee schedule entry for one marketplace
type FeeProfileConfig struct {
	ReferralFeePct   float64 `mapstructure:"referral_fee_pct"`
	ClosingFee       float64 `mapstructure:"closing_fee"`
	ShippingEstimate float64 `mapstructure:"shipping_estimate"`
}

// DatabaseConfig holds search-history persistence configuration.
// An empty URL disables persistence.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// OpenAIConfig holds the keyword-generation configuration.
// An empty API key disables the keywords endpoint.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	Temperature float32       `mapstructure:"temperature"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIPPerMinute int `mapstructure:"per_ip_per_minute"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/productscout/")

	v.SetEnvPrefix("PRODUCTSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional - env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Search defaults
	v.SetDefault("search.connector_timeout", "12s")
	v.SetDefault("search.max_results", 50)

	// Amazon PA-API defaults. Credential keys default to empty so viper
	// knows about them and env overrides are picked up.
	v.SetDefault("amazon.access_key", "")
	v.SetDefault("amazon.secret_key", "")
	v.SetDefault("amazon.partner_tag", "")
	v.SetDefault("amazon.host", "webservices.amazon.in")
	v.SetDefault("amazon.region", "eu-west-1")

	// Meesho defaults
	v.SetDefault("meesho.trending_url", "https://www.meesho.com/trending")
	v.SetDefault("meesho.user_agent", "ProductScoutBot/1.0 (+https://example.com/bot)")

	// Fee schedule defaults (simplified production fee tables)
	v.SetDefault("fees.amazon.referral_fee_pct", 0.15)
	v.SetDefault("fees.amazon.closing_fee", 20.0)
	v.SetDefault("fees.amazon.shipping_estimate", 45.0)
	v.SetDefault("fees.flipkart.referral_fee_pct", 0.13)
	v.SetDefault("fees.flipkart.closing_fee", 18.0)
	v.SetDefault("fees.flipkart.shipping_estimate", 40.0)
	v.SetDefault("fees.meesho.referral_fee_pct", 0.12)
	v.SetDefault("fees.meesho.closing_fee", 15.0)
	v.SetDefault("fees.meesho.shipping_estimate", 35.0)

	// Persistence defaults (empty URL disables search history)
	v.SetDefault("database.url", "")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.cache_ttl", "24h")
	v.SetDefault("openai.temperature", 0.6)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip_per_minute", 60)
}

// validate validates the configuration. A supported marketplace without a
// fee profile is a deployment error and must fail here, at startup, not
// per-request.
func validate(config *Config) error {
	for _, marketplace := range domain.AllMarketplaces {
		profile, ok := config.Fees[string(marketplace)]
		if !ok {
			return fmt.Errorf("missing fee profile for marketplace %q", marketplace)
		}
		if profile.ReferralFeePct < 0 || profile.ReferralFeePct >= 1 {
			return fmt.Errorf("fee profile for %q: referral_fee_pct must be in [0,1), got %v", marketplace, profile.ReferralFeePct)
		}
	}

	if config.Search.ConnectorTimeout <= 0 {
		return fmt.Errorf("search.connector_timeout must be positive, got %s", config.Search.ConnectorTimeout)
	}
	if config.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", config.Search.MaxResults)
	}

	return nil
}
