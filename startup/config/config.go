package config

import (
	"github.com/joho/godotenv"
	"os"
)

type Config struct {
	Port          string
	PGDBHost      string
	PGDBPort      string
	PGCacheHost   string
	PGCachePort   string
	HDFSUri       string
	JaegerAddress string
	Environment   string
}

func NewConfig() *Config {
	// Local runs read a .env file, container runs get real env vars.
	godotenv.Load()

	return &Config{
		Port:          getEnv("PG_SERVICE_PORT", "8000"),
		PGDBHost:      getEnv("PG_DB_HOST", "localhost"),
		PGDBPort:      getEnv("PG_DB_PORT", "27017"),
		PGCacheHost:   getEnv("PG_CACHE_HOST", "localhost"),
		PGCachePort:   getEnv("PG_CACHE_PORT", "6379"),
		HDFSUri:       getEnv("HDFS_URI", "localhost:9000"),
		JaegerAddress: getEnv("JAEGER_ADDRESS", "http://localhost:14268/api/traces"),
		Environment:   getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
