package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hiremind/hiremind-api/internal/dto"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/tidwall/gjson"
)

const defaultAPITimeout = 60 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// APIBackend talks to the hiremind HTTP API on behalf of the candidate.
type APIBackend struct {
	client *resty.Client
}

func NewAPIBackend(baseURL, token string, timeout time.Duration) *APIBackend {
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &APIBackend{client: client}
}

func (b *APIBackend) InterviewContext(ctx context.Context, applicationID string) (*dto.InterviewContextDTO, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetPathParam("applicationId", applicationID).
		Get("/api/applications/interview-context/{applicationId}")
	data, err := envelope(resp, err)
	if err != nil {
		return nil, err
	}
	var out dto.InterviewContextDTO
	if err := json.Unmarshal([]byte(data.Raw), &out); err != nil {
		return nil, fmt.Errorf("decode interview context: %w", err)
	}
	return &out, nil
}

func (b *APIBackend) StartInterview(ctx context.Context, applicationID string) error {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(dto.ApplicationIDRequest{ApplicationID: applicationID}).
		Post("/api/applications/start-interview")
	_, err = envelope(resp, err)
	return err
}

func (b *APIBackend) CompleteInterview(ctx context.Context, applicationID string) error {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(dto.ApplicationIDRequest{ApplicationID: applicationID}).
		Post("/api/applications/complete-interview")
	_, err = envelope(resp, err)
	return err
}

func (b *APIBackend) NextQuestion(ctx context.Context, applicationID string, history []model.ConversationEntry) (string, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(dto.NextQuestionRequest{ApplicationID: applicationID, ConversationHistory: history}).
		Post("/api/interview")
	data, err := envelope(resp, err)
	if err != nil {
		return "", err
	}
	question := data.Get("question").String()
	if question == "" {
		return "", fmt.Errorf("empty question in response")
	}
	return question, nil
}

func (b *APIBackend) Transcribe(ctx context.Context, audio Audio) (string, error) {
	filename := audio.Filename
	if filename == "" {
		filename = "answer.webm"
	}
	mimeType := audio.MIMEType
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	resp, err := b.client.R().
		SetContext(ctx).
		SetMultipartField("audio", filename, mimeType, bytes.NewReader(audio.Data)).
		Post("/api/interview/transcribe")
	data, err := envelope(resp, err)
	if err != nil {
		return "", err
	}
	return data.Get("transcription").String(), nil
}

func (b *APIBackend) Analyze(ctx context.Context, applicationID, jobRole string, conversation []model.ConversationEntry) error {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(dto.AnalyzeRequest{ApplicationID: applicationID, JobRole: jobRole, Conversation: conversation}).
		Post("/api/interview/analyze")
	_, err = envelope(resp, err)
	return err
}

// envelope unwraps {success, message, data, error} and returns data.
func envelope(resp *resty.Response, err error) (gjson.Result, error) {
	if err != nil {
		return gjson.Result{}, err
	}
	body := resp.String()
	if resp.IsError() || !gjson.Get(body, "success").Bool() {
		msg := gjson.Get(body, "message").String()
		if msg == "" {
			msg = resp.Status()
		}
		return gjson.Result{}, &APIError{
			Status:  resp.StatusCode(),
			Code:    gjson.Get(body, "error").String(),
			Message: msg,
		}
	}
	return gjson.Get(body, "data"), nil
}
