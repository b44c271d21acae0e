package config

import (
	"log"
	"os"
	"strconv"
	"sync"
)

const (
	NotifierModeNotification = "notification"
	NotifierModeEmail        = "email"
)

type AppConfig struct {
	Name            string
	Env             string
	Port            string
	BaseURL         string
	NotifierMode    string
	AnalysisWorkers int
	LogJSON         bool
	Debug           bool
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		port := os.Getenv("APP_PORT")
		if port == "" {
			port = ":8080"
		}
		mode := os.Getenv("NOTIFIER_MODE")
		if mode != NotifierModeEmail {
			mode = NotifierModeNotification
		}
		appConfig = &AppConfig{
			Name:            os.Getenv("APP_NAME"),
			Env:             env,
			Port:            port,
			BaseURL:         os.Getenv("APP_URL"),
			NotifierMode:    mode,
			AnalysisWorkers: envInt("ANALYSIS_WORKERS", 3),
			LogJSON:         env == "production" || envBool("LOG_JSON"),
			Debug:           envBool("DEBUG"),
		}
	})
	return appConfig
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, defaulting to %d", key, raw, fallback)
		return fallback
	}
	return v
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
