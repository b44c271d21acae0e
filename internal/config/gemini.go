package config

import (
	"os"
	"sync"
)

type GeminiConfig struct {
	APIKey         string
	Backend        string
	Project        string
	Location       string
	Model          string
	EmbeddingModel string
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		geminiConfig = &GeminiConfig{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			Backend:        os.Getenv("GEMINI_BACKEND"),
			Project:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
			Location:       getenvDefault("GOOGLE_CLOUD_LOCATION", "us-central1"),
			Model:          getenvDefault("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbeddingModel: getenvDefault("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
		}
	})
	return geminiConfig
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
