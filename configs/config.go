package config

import (
	"os"
	"strconv"
)

type Config struct {
	FacebookAppID       string
	FacebookAppSecret   string
	FacebookRedirectURI string
	GraphBaseURL        string
	TokenRefreshDays    int
	CronInterval        string
	RedeliverOnResync   bool
	PostgresURI         string
	RedisURI            string
	IdentityEndpoint    string
	IdentityAppID       string
	IdentityAppSecret   string
	IdentityAPIResource string
	FrontendURL         string
	EncryptionKey       string
	SecretKey           string
	CookieName          string
}

func LoadConfig() *Config {
	return &Config{
		FacebookAppID:       getEnv("FACEBOOK_APP_ID", ""),
		FacebookAppSecret:   getEnv("FACEBOOK_APP_SECRET", ""),
		FacebookRedirectURI: getEnv("FACEBOOK_REDIRECT_URI", ""),
		GraphBaseURL:        getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v20.0"),
		TokenRefreshDays:    getEnvInt("TOKEN_REFRESH_THRESHOLD_DAYS", 7),
		CronInterval:        getEnv("CRON_INTERVAL", "@every 0h5m0s"),
		RedeliverOnResync:   getEnvBool("REDELIVER_ON_RESYNC", false),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", ""),
		IdentityEndpoint:    getEnv("IDENTITY_ENDPOINT", ""),
		IdentityAppID:       getEnv("IDENTITY_APP_ID", ""),
		IdentityAppSecret:   getEnv("IDENTITY_APP_SECRET", ""),
		IdentityAPIResource: getEnv("IDENTITY_API_RESOURCE", ""),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		EncryptionKey:       getEnv("ENCRYPTION_KEY", ""),
		SecretKey:           getEnv("SECRET_KEY", ""),
		CookieName:          getEnv("COOKIE_NAME", "socialbridge_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
