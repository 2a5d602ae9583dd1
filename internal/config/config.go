package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string `mapstructure:"PORT"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`

	// BaseURL is the public URL of this service, used to build the payment
	// gateway return links and certificate verification links.
	BaseURL     string `mapstructure:"BASE_URL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	EnableCORS  bool   `mapstructure:"ENABLE_CORS"`

	DiscordClientID               string `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`

	GatewayEndpoint  string `mapstructure:"GATEWAY_ENDPOINT"`
	GatewayStoreID   string `mapstructure:"GATEWAY_STORE_ID"`
	GatewayStorePass string `mapstructure:"GATEWAY_STORE_PASS"`
	Currency         string `mapstructure:"CURRENCY"`

	// CertificatePrefix namespaces minted credential ids, e.g. "CLUB".
	CertificatePrefix string `mapstructure:"CERTIFICATE_PREFIX"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "club.db")
	viper.SetDefault("BASE_URL", "http://127.0.0.1:8080")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000")
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	viper.SetDefault("GATEWAY_ENDPOINT", "https://sandbox.gateway.example.com/checkout")
	viper.SetDefault("CURRENCY", "BDT")
	viper.SetDefault("CERTIFICATE_PREFIX", "CLUB")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("GATEWAY_ENDPOINT")
	viper.BindEnv("GATEWAY_STORE_ID")
	viper.BindEnv("GATEWAY_STORE_PASS")
	viper.BindEnv("BASE_URL")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("ENABLE_CORS")
	viper.BindEnv("CERTIFICATE_PREFIX")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
