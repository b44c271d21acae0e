package config

import (
	"os"
	"sync"
)

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

var (
	authConfig *AuthConfig
	authOnce   sync.Once
)

func LoadAuthConfig() *AuthConfig {
	authOnce.Do(func() {
		authConfig = &AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			Issuer:    getenvDefault("AUTH_ISSUER", "hiremind"),
		}
	})
	return authConfig
}
