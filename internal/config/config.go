package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerAddr  string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	JWTSecret   string
	ClientURL   string
	CORSOrigins string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// LoadConfig reads settings from the environment, with a .env file as the
// local-dev fallback.
func LoadConfig() *Config {
	godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("PORT", ":6000")
	viper.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=legendsansar port=5432 sslmode=disable TimeZone=UTC")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("CLIENT_URL", "http://localhost:5173")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_FROM", "Legend Sansar <no-reply@legendsansar.local>")
	viper.SetDefault("S3_BUCKET", "folktales")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o")

	return &Config{
		ServerAddr:  viper.GetString("PORT"),
		DatabaseURL: viper.GetString("DATABASE_URL"),

		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),

		JWTSecret:   viper.GetString("JWT_SECRET"),
		ClientURL:   viper.GetString("CLIENT_URL"),
		CORSOrigins: viper.GetString("CORS_ORIGINS"),

		SMTPHost:     viper.GetString("SMTP_HOST"),
		SMTPPort:     viper.GetInt("SMTP_PORT"),
		SMTPUsername: viper.GetString("SMTP_USER"),
		SMTPPassword: viper.GetString("SMTP_PASS"),
		EmailFrom:    viper.GetString("EMAIL_FROM"),

		S3Endpoint:      viper.GetString("S3_ENDPOINT"),
		S3AccessKey:     viper.GetString("S3_ACCESS_KEY"),
		S3SecretKey:     viper.GetString("S3_SECRET_KEY"),
		S3Bucket:        viper.GetString("S3_BUCKET"),
		S3PublicBaseURL: viper.GetString("S3_PUBLIC_BASE_URL"),

		OpenAIAPIKey:  viper.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL: viper.GetString("OPENAI_BASE_URL"),
		OpenAIModel:   viper.GetString("OPENAI_MODEL"),
	}
}
