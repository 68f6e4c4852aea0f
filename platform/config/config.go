package config

import (
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	DBUser          string
	DBAddr          string
	DBPassword      string
	DBName          string
	RedisURL        string
	HTTPAddr        string
	SocketAddr      string
	CorsOrigin      string
	JWTSecret       string
	DecisionTimeout time.Duration
	SweepInterval   time.Duration
	LogLevel        string
	LogFormat       string
}

// Load reads the environment. A .env file in the working directory is loaded
// first by godotenv.
func Load() Config {
	cfg := Config{
		DBUser:     os.Getenv("DB_USER"),
		DBAddr:     os.Getenv("DB_ADDR"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		RedisURL:   os.Getenv("REDIS_URL"),
		HTTPAddr:   getenv("HTTP_ADDR", ":4101"),
		SocketAddr: getenv("SOCKET_ADDR", ":8000"),
		CorsOrigin: getenv("CORS_ORIGIN", "http://localhost:3000"),
		JWTSecret:  getenv("JWT_SECRET", "secret"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogFormat:  os.Getenv("LOG_FORMAT"),
	}
	if d, err := time.ParseDuration(os.Getenv("DECISION_TIMEOUT")); err == nil {
		cfg.DecisionTimeout = d
	}
	cfg.SweepInterval = 10 * time.Minute
	if d, err := time.ParseDuration(os.Getenv("SWEEP_INTERVAL")); err == nil && d > 0 {
		cfg.SweepInterval = d
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
