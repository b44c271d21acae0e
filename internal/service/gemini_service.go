package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/hiremind/hiremind-api/internal/config"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/util"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const maxEmbeddingInput = 10000

type GeminiServiceInterface interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	// GenerateJSON runs prompt in JSON response mode and returns the cleaned JSON text.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type GeminiService struct {
	Client         *genai.Client
	Model          string
	EmbeddingModel string
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration

	log               *zap.Logger
	mu                sync.Mutex
	consecutiveErrors int
	circuitBreakerMax int
}

func NewGeminiService(ctx context.Context, log *zap.Logger) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()

	clientConfig := &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if strings.EqualFold(geminiConfig.Backend, "vertex") {
		clientConfig = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  geminiConfig.Project,
			Location: geminiConfig.Location,
		}
	} else if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiService{
		Client:            client,
		Model:             geminiConfig.Model,
		EmbeddingModel:    geminiConfig.EmbeddingModel,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          90 * time.Second,
		RequestTimeout:    90 * time.Second,
		log:               logger.OrNop(log),
		circuitBreakerMax: 5,
	}, nil
}

func (s *GeminiService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
	}
	result, err := s.generate(ctx, "GenerateJSON", genai.Text(prompt), genConfig)
	if err != nil {
		return "", err
	}

	text := util.CleanJSON(result.Text())
	s.log.Debug("gemini json response", zap.String("body", logger.TruncateForLog(text, 500)))
	return text, nil
}

func (s *GeminiService) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio cannot be empty")
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Transcribe this interview answer verbatim. Return only the spoken words, no commentary. If nothing intelligible is said, return an empty string."),
			genai.NewPartFromBytes(audio, mimeType),
		}, genai.RoleUser),
	}
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0)),
	}

	result, err := s.generate(ctx, "TranscribeAudio", contents, genConfig)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Text()), nil
}

func (s *GeminiService) generate(ctx context.Context, op string, contents []*genai.Content, genConfig *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return withRetry(ctx, s, op, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		result, err := s.Client.Models.GenerateContent(ctx, s.Model, contents, genConfig)
		if err != nil {
			return nil, err
		}
		if err := validateGenerateResponse(result); err != nil {
			return nil, &invalidResponseError{err}
		}
		return result, nil
	})
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}

	if len(trimmedText) > maxEmbeddingInput {
		s.log.Warn("embedding input truncated", zap.Int("length", len(trimmedText)))
		trimmedText = trimmedText[:maxEmbeddingInput]
	}

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}

	return withRetry(ctx, s, "GenerateEmbedding", func(ctx context.Context) ([]float32, error) {
		result, err := s.Client.Models.EmbedContent(ctx, s.EmbeddingModel, content, nil)
		if err != nil {
			return nil, err
		}
		embeddings, err := validateEmbeddingResponse(result)
		if err != nil {
			return nil, &invalidResponseError{err}
		}
		return embeddings, nil
	})
}

type invalidResponseError struct{ err error }

func (e *invalidResponseError) Error() string { return "invalid response: " + e.err.Error() }
func (e *invalidResponseError) Unwrap() error { return e.err }

// withRetry runs fn with exponential backoff behind the service's circuit breaker.
func withRetry[T any](ctx context.Context, s *GeminiService, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if n, open := s.GetCircuitBreakerStatus(); open {
		return zero, fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", n)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.log.Info("retrying gemini call",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", s.MaxRetries),
				zap.Duration("delay", delay),
			)

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return zero, fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		result, err := fn(timeoutCtx)
		if err == nil {
			s.recordSuccess()
			return result, nil
		}

		lastErr = err

		var invalid *invalidResponseError
		if errors.As(err, &invalid) {
			s.recordSuccess()
			return zero, fmt.Errorf("%s: %w", op, err)
		}

		if !isRetryableError(err) {
			s.log.Warn("non-retryable gemini error", zap.String("op", op), zap.Error(err))
			s.recordFailure()
			return zero, fmt.Errorf("%s failed: %w", op, err)
		}

		s.log.Warn("retryable gemini error", zap.String("op", op), zap.Int("attempt", attempt+1), zap.Error(err))
	}

	s.recordFailure()
	return zero, fmt.Errorf("max retries (%d) exceeded for %s: %w", s.MaxRetries, op, lastErr)
}

// calculateBackoff doubles BaseDelay per attempt up to MaxDelay.
func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	delay := s.BaseDelay << (attempt - 1)
	if delay <= 0 || delay > s.MaxDelay {
		return s.MaxDelay
	}
	return delay
}

var retryableStatus = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

var transientMessages = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"temporary failure",
	"EOF",
}

func isRetryableError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus[apiErr.Code]
	}

	msg := err.Error()
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	switch {
	case resp == nil:
		return errors.New("empty response")
	case len(resp.Candidates) == 0:
		return errors.New("response has no candidates")
	case resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0:
		return errors.New("first candidate has no content")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("response has no embeddings")
	}
	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, errors.New("embedding vector is empty")
	}
	for i, v := range values {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("embedding value %d is not finite: %v", i, v)
		}
	}
	return values, nil
}

func (s *GeminiService) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveErrors = 0
}

func (s *GeminiService) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveErrors++
}

func (s *GeminiService) ResetCircuitBreaker() {
	s.recordSuccess()
	s.log.Info("circuit breaker reset")
}

// GetCircuitBreakerStatus reports the failure streak and whether calls are being refused.
func (s *GeminiService) GetCircuitBreakerStatus() (failures int, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors, s.consecutiveErrors >= s.circuitBreakerMax
}
