package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port      string
	RedisAddr string
	MySQLDSN  string

	GCSBucket           string
	GCSSignerEmail      string
	GCSSignerPrivateKey string

	WorkerCount int
	QueueSize   int
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		RedisAddr:           getEnv("REDIS_ADDRESS", "localhost:6379"),
		MySQLDSN:            getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/deliveryproof?parseTime=true"),
		GCSBucket:           getEnv("GCS_BUCKET", ""),
		GCSSignerEmail:      getEnv("GCS_SIGNER_EMAIL", ""),
		GCSSignerPrivateKey: getEnv("GCS_SIGNER_PRIVATE_KEY", ""),
		WorkerCount:         getEnvInt("WORKER_COUNT", 10),
		QueueSize:           getEnvInt("QUEUE_SIZE", 10000),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
