package config

import (
	"os"
	"sync"
)

const (
	EmailProviderResend = "resend"
	EmailProviderGmail  = "gmail"
)

type EmailConfig struct {
	Provider            string
	From                string
	ResendAPIKey        string
	ResendBaseURL       string
	GmailCredentialFile string
	GmailTokenFile      string
}

var (
	emailConfig *EmailConfig
	emailOnce   sync.Once
)

func LoadEmailConfig() *EmailConfig {
	emailOnce.Do(func() {
		emailConfig = &EmailConfig{
			Provider:            getenvDefault("EMAIL_PROVIDER", EmailProviderResend),
			From:                getenvDefault("EMAIL_FROM", "Hiremind <notifications@resend.dev>"),
			ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
			ResendBaseURL:       getenvDefault("RESEND_BASE_URL", "https://api.resend.com"),
			GmailCredentialFile: getenvDefault("GMAIL_CREDENTIALS_FILE", "credentials.json"),
			GmailTokenFile:      getenvDefault("GMAIL_TOKEN_FILE", "token.json"),
		}
	})
	return emailConfig
}
