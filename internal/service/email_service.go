package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hiremind/hiremind-api/internal/config"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const defaultEmailFrom = "Hiremind <notifications@resend.dev>"

type Email struct {
	To      string
	Subject string
	HTML    string
}

// SendResult reports the outcome of a single send. Transports never retry.
type SendResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type EmailSenderInterface interface {
	Send(ctx context.Context, email Email) SendResult
}

// NewEmailSender picks the transport configured by EMAIL_PROVIDER.
func NewEmailSender(ctx context.Context, cfg *config.EmailConfig) (EmailSenderInterface, error) {
	switch cfg.Provider {
	case config.EmailProviderGmail:
		return NewGmailSender(ctx, cfg)
	default:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY not set")
		}
		return NewResendSender(cfg), nil
	}
}

type ResendSender struct {
	client *resty.Client
	from   string
}

func NewResendSender(cfg *config.EmailConfig) *ResendSender {
	from := cfg.From
	if from == "" {
		from = defaultEmailFrom
	}
	client := resty.New().
		SetBaseURL(cfg.ResendBaseURL).
		SetAuthToken(cfg.ResendAPIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	return &ResendSender{client: client, from: from}
}

func (s *ResendSender) Send(ctx context.Context, email Email) SendResult {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"from":    s.from,
			"to":      []string{email.To},
			"subject": email.Subject,
			"html":    email.HTML,
		}).
		Post("/emails")
	if err != nil {
		return SendResult{Error: err.Error()}
	}

	body := resp.String()
	if resp.IsError() {
		msg := gjson.Get(body, "message").String()
		if msg == "" {
			msg = resp.Status()
		}
		return SendResult{Error: fmt.Sprintf("resend: %s", msg)}
	}

	return SendResult{Success: true, ID: gjson.Get(body, "id").String()}
}

type GmailSender struct {
	service *gmail.Service
	from    string
}

// NewGmailSender builds a Gmail API client from an OAuth client credential
// file and a previously authorised token file.
func NewGmailSender(ctx context.Context, cfg *config.EmailConfig) (*GmailSender, error) {
	b, err := os.ReadFile(cfg.GmailCredentialFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	tok, err := tokenFromFile(cfg.GmailTokenFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read gmail token: %w", err)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = "me"
	}
	return &GmailSender{service: srv, from: from}, nil
}

func (s *GmailSender) Send(ctx context.Context, email Email) SendResult {
	raw := base64.URLEncoding.EncodeToString(buildMIMEMessage(s.from, email))

	msg, err := s.service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return SendResult{Error: err.Error()}
	}
	return SendResult{Success: true, ID: msg.Id}
}

func buildMIMEMessage(from string, email Email) []byte {
	var b strings.Builder
	if from != "me" {
		b.WriteString("From: " + from + "\r\n")
	}
	b.WriteString("To: " + email.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", email.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(email.HTML)
	return []byte(b.String())
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
