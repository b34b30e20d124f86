package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr       string
	LogLevel         string
	PostgresURL      string
	RedisURL         string
	CacheTTLSeconds  int
	BoundaryPath     string
	RootRegionName   string
}

func New() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		ListenAddr:      getEnv("LISTENADDR", ":8080"),
		LogLevel:        os.Getenv("LOGLEVEL"),
		PostgresURL:     os.Getenv("POSTGRESURL"),
		RedisURL:        os.Getenv("REDISURL"),
		CacheTTLSeconds: getEnvInt("CACHETTLSECONDS", 300),
		BoundaryPath:    getEnv("BOUNDARYPATH", "assets/boundaries.json"),
		RootRegionName:  getEnv("ROOTREGIONNAME", "Uganda"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
