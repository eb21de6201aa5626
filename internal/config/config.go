package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	CMS       CMSConfig
	Redis     RedisConfig
	LiqPay    LiqPayConfig
	Stripe    StripeConfig
	Delivery  DeliveryConfig
	Shipping  ShippingConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port   string
	Env    string
	AppURL string
}

type CMSConfig struct {
	URL   string
	Token string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type LiqPayConfig struct {
	PublicKey  string
	PrivateKey string
	Sandbox    bool
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type DeliveryConfig struct {
	NovaPoshtaAPIKey string
}

type ShippingConfig struct {
	FreeThreshold float64
	FlatFee       float64
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("APP_URL", "http://localhost:3000")
	viper.SetDefault("CMS_URL", "http://localhost:8055")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LIQPAY_SANDBOX", true)
	viper.SetDefault("SHIPPING_FREE_THRESHOLD", 2000)
	viper.SetDefault("SHIPPING_FLAT_FEE", 80)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:   viper.GetString("SERVER_PORT"),
			Env:    viper.GetString("SERVER_ENV"),
			AppURL: viper.GetString("APP_URL"),
		},
		CMS: CMSConfig{
			URL:   viper.GetString("CMS_URL"),
			Token: viper.GetString("CMS_TOKEN"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		LiqPay: LiqPayConfig{
			PublicKey:  viper.GetString("LIQPAY_PUBLIC_KEY"),
			PrivateKey: viper.GetString("LIQPAY_PRIVATE_KEY"),
			Sandbox:    viper.GetBool("LIQPAY_SANDBOX"),
		},
		Stripe: StripeConfig{
			SecretKey:     viper.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: viper.GetString("STRIPE_WEBHOOK_SECRET"),
		},
		Delivery: DeliveryConfig{
			NovaPoshtaAPIKey: viper.GetString("NOVA_POSHTA_API_KEY"),
		},
		Shipping: ShippingConfig{
			FreeThreshold: viper.GetFloat64("SHIPPING_FREE_THRESHOLD"),
			FlatFee:       viper.GetFloat64("SHIPPING_FLAT_FEE"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
	}
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
