package config

import "time"

// APIConfig holds runtime configuration for the Dine API service.
type APIConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	DashboardPassword  string
	SessionSecret      string
	SessionTTL         time.Duration
	RPCTimeout         time.Duration
	TelemetryBuffer    int
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
	LogLevel           string
}

// IsProduction reports whether the service runs with production settings.
// Controls the Secure flag on the dashboard session cookie.
func (c APIConfig) IsProduction() bool {
	return c.Environment == "production"
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":4000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://dine:dine@db:5432/dine?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		DashboardPassword:  GetString("DASHBOARD_PASSWORD", ""),
		SessionSecret:      GetString("SESSION_SECRET", ""),
		SessionTTL:         time.Duration(GetInt("SESSION_TTL_HOURS", 168)) * time.Hour,
		RPCTimeout:         time.Duration(GetInt("RPC_TIMEOUT_SECONDS", 10)) * time.Second,
		TelemetryBuffer:    GetInt("TELEMETRY_BUFFER", 256),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
		LogLevel:           GetString("LOG_LEVEL", "info"),
	}
}
