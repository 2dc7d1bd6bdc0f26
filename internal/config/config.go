package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// Target
	ListingURL  string
	RendererURL string
	// Fetch
	FetchTimeout time.Duration
	RenderWait   time.Duration
	// History
	Storage     string
	HistoryPath string
	DatabaseURL string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:          getEnv("ENV", "local"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ListingURL:   getEnv("LISTING_URL", ""),
		RendererURL:  getEnv("RENDERER_URL", "http://localhost:5006/scrape"),
		FetchTimeout: time.Duration(atoiDef(getEnv("FETCH_TIMEOUT_MS", "30000"), 30000)) * time.Millisecond,
		RenderWait:   time.Duration(atoiDef(getEnv("RENDER_WAIT_MS", "3000"), 3000)) * time.Millisecond,
		Storage:      getEnv("STORAGE", "csv"),
		HistoryPath:  getEnv("HISTORY_FILE", "price_history.csv"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
	}
}
