package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func testGemini() *GeminiService {
	return &GeminiService{
		MaxRetries:        2,
		BaseDelay:         time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		RequestTimeout:    time.Second,
		log:               zap.NewNop(),
		circuitBreakerMax: 2,
	}
}

func TestWithRetryRecoversFromTransientErrors(t *testing.T) {
	s := testGemini()
	calls := 0
	got, err := withRetry(context.Background(), s, "generate", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", genai.APIError{Code: 503, Message: "overloaded"}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)

	n, open := s.GetCircuitBreakerStatus()
	assert.Zero(t, n)
	assert.False(t, open)
}

func TestWithRetryStopsOnPermanentErrors(t *testing.T) {
	s := testGemini()
	calls := 0
	_, err := withRetry(context.Background(), s, "generate", func(context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("wrapped: %w", genai.APIError{Code: 400, Message: "bad request"})
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	n, _ := s.GetCircuitBreakerStatus()
	assert.Equal(t, 1, n)
}

func TestWithRetryInvalidResponseIsNotRetried(t *testing.T) {
	s := testGemini()
	s.recordFailure()
	calls := 0
	_, err := withRetry(context.Background(), s, "embed", func(context.Context) ([]float32, error) {
		calls++
		return nil, &invalidResponseError{err: errors.New("no embeddings returned")}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	n, _ := s.GetCircuitBreakerStatus()
	assert.Zero(t, n)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	s := testGemini()
	fail := func(context.Context) (string, error) { return "", errors.New("connection refused") }

	for i := 0; i < 2; i++ {
		_, err := withRetry(context.Background(), s, "generate", fail)
		require.Error(t, err)
	}
	_, open := s.GetCircuitBreakerStatus()
	require.True(t, open)

	called := false
	_, err := withRetry(context.Background(), s, "generate", func(context.Context) (string, error) {
		called = true
		return "ok", nil
	})
	assert.ErrorContains(t, err, "circuit breaker open")
	assert.False(t, called)

	s.ResetCircuitBreaker()
	_, open = s.GetCircuitBreakerStatus()
	assert.False(t, open)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", genai.APIError{Code: 429}, true},
		{"server error", fmt.Errorf("call: %w", genai.APIError{Code: 500}), true},
		{"not found", genai.APIError{Code: 404}, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("x: %w", context.DeadlineExceeded), false},
		{"reset", errors.New("read tcp: connection reset by peer"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestCalculateBackoffIsCapped(t *testing.T) {
	s := testGemini()
	assert.Equal(t, time.Millisecond, s.calculateBackoff(1))
	assert.Equal(t, 2*time.Millisecond, s.calculateBackoff(2))
	assert.Equal(t, 5*time.Millisecond, s.calculateBackoff(10))
}

func TestValidateResponses(t *testing.T) {
	assert.Error(t, validateGenerateResponse(nil))
	assert.Error(t, validateGenerateResponse(&genai.GenerateContentResponse{}))
	assert.NoError(t, validateGenerateResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("hi", genai.RoleModel)}},
	}))

	_, err := validateEmbeddingResponse(&genai.EmbedContentResponse{})
	assert.Error(t, err)
	_, err = validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, float32(math.NaN())}}},
	})
	assert.Error(t, err)
	values, err := validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
	})
	require.NoError(t, err)
	assert.Len(t, values, 2)
}
