package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string `mapstructure:"PORT"`
	DatabasePath    string `mapstructure:"DATABASE_PATH"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	LogFormat       string `mapstructure:"LOG_FORMAT"`
	ResendAPIKey    string `mapstructure:"RESEND_API_KEY"`
	EmailFrom       string `mapstructure:"EMAIL_FROM"`
	DefaultPageSize int    `mapstructure:"DEFAULT_PAGE_SIZE"`
	MaxPageSize     int    `mapstructure:"MAX_PAGE_SIZE"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "gather.db")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("EMAIL_FROM", "Gather <noreply@gatherhub.dev>")
	viper.SetDefault("DEFAULT_PAGE_SIZE", 20)
	viper.SetDefault("MAX_PAGE_SIZE", 100)

	viper.BindEnv("PORT")
	viper.BindEnv("DATABASE_PATH")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("LOG_LEVEL")
	viper.BindEnv("LOG_FORMAT")
	viper.BindEnv("RESEND_API_KEY")
	viper.BindEnv("EMAIL_FROM")
	viper.BindEnv("DEFAULT_PAGE_SIZE")
	viper.BindEnv("MAX_PAGE_SIZE")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
