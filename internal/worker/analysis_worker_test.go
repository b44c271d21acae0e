package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/service"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnalyzer struct {
	err    error
	runs   int
	failed []uuid.UUID
}

func (a *stubAnalyzer) RunAnalysis(_ context.Context, msg service.AnalysisMessage) (*model.InterviewReport, error) {
	a.runs++
	if a.err != nil {
		return nil, a.err
	}
	return &model.InterviewReport{ApplicationID: msg.ApplicationID, Status: model.ReportStatusCompleted, OverallScore: 77}, nil
}

func (a *stubAnalyzer) MarkAnalysisFailed(_ context.Context, msg service.AnalysisMessage) error {
	a.failed = append(a.failed, msg.ApplicationID)
	return nil
}

type stubRepublisher struct {
	err     error
	retries []int
}

func (r *stubRepublisher) PublishAnalysis(_ context.Context, _ service.AnalysisMessage, retries int) error {
	if r.err != nil {
		return r.err
	}
	r.retries = append(r.retries, retries)
	return nil
}

func testPool(a Analyzer, r Republisher) *AnalysisPool {
	return &AnalysisPool{maxRetries: 2, analyzer: a, publisher: r, log: zap.NewNop()}
}

func messageBody(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	body, err := json.Marshal(service.AnalysisMessage{ApplicationID: id, JobRole: "Backend Engineer"})
	require.NoError(t, err)
	return body
}

func TestProcessSuccess(t *testing.T) {
	analyzer := &stubAnalyzer{}
	repub := &stubRepublisher{}
	p := testPool(analyzer, repub)

	out := p.process(context.Background(), zap.NewNop(), messageBody(t, uuid.New()), nil)
	assert.Equal(t, outcomeDone, out)
	assert.Equal(t, 1, analyzer.runs)
	assert.Empty(t, repub.retries)
}

func TestProcessRetriesThenFails(t *testing.T) {
	id := uuid.New()
	analyzer := &stubAnalyzer{err: errors.New("model overloaded")}
	repub := &stubRepublisher{}
	p := testPool(analyzer, repub)
	ctx := context.Background()

	assert.Equal(t, outcomeRetried, p.process(ctx, zap.NewNop(), messageBody(t, id), nil))
	assert.Equal(t, outcomeRetried, p.process(ctx, zap.NewNop(), messageBody(t, id), amqp.Table{service.RetryHeader: int32(1)}))
	assert.Equal(t, []int{1, 2}, repub.retries)
	assert.Empty(t, analyzer.failed)

	assert.Equal(t, outcomeFailed, p.process(ctx, zap.NewNop(), messageBody(t, id), amqp.Table{service.RetryHeader: int32(2)}))
	assert.Equal(t, []uuid.UUID{id}, analyzer.failed)
	assert.Len(t, repub.retries, 2)
}

func TestProcessRequeuesWhenRepublishFails(t *testing.T) {
	p := testPool(&stubAnalyzer{err: errors.New("boom")}, &stubRepublisher{err: errors.New("channel closed")})
	assert.Equal(t, outcomeRequeue, p.process(context.Background(), zap.NewNop(), messageBody(t, uuid.New()), nil))
}

func TestProcessRequeuesOnShutdown(t *testing.T) {
	analyzer := &stubAnalyzer{err: context.Canceled}
	repub := &stubRepublisher{}
	p := testPool(analyzer, repub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, outcomeRequeue, p.process(ctx, zap.NewNop(), messageBody(t, uuid.New()), nil))
	assert.Empty(t, repub.retries)
	assert.Empty(t, analyzer.failed)
}

func TestProcessDropsMalformedMessages(t *testing.T) {
	analyzer := &stubAnalyzer{}
	p := testPool(analyzer, &stubRepublisher{})
	assert.Equal(t, outcomeDropped, p.process(context.Background(), zap.NewNop(), []byte("{not json"), nil))
	assert.Zero(t, analyzer.runs)
}
