package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/service"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type Analyzer interface {
	RunAnalysis(ctx context.Context, msg service.AnalysisMessage) (*model.InterviewReport, error)
	MarkAnalysisFailed(ctx context.Context, msg service.AnalysisMessage) error
}

type Republisher interface {
	PublishAnalysis(ctx context.Context, msg service.AnalysisMessage, retries int) error
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomeRetried
	outcomeFailed
	outcomeDropped
	outcomeRequeue
)

// AnalysisPool consumes interview analysis messages with a fixed number of
// workers. Each worker owns its channel and acknowledges manually.
type AnalysisPool struct {
	conn       *amqp.Connection
	queue      string
	workers    int
	maxRetries int
	analyzer   Analyzer
	publisher  Republisher
	log        *zap.Logger
}

func NewAnalysisPool(broker *service.BrokerService, analyzer Analyzer, workers int, log *zap.Logger) *AnalysisPool {
	if workers <= 0 {
		workers = 1
	}
	return &AnalysisPool{
		conn:       broker.Conn(),
		queue:      broker.Config().AnalysisQueue,
		workers:    workers,
		maxRetries: broker.Config().MaxRetries,
		analyzer:   analyzer,
		publisher:  broker,
		log:        logger.OrNop(log).Named("analysis-worker"),
	}
}

// Run blocks until ctx is cancelled or the broker connection closes.
func (p *AnalysisPool) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	closed := p.conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		select {
		case err := <-closed:
			if err != nil {
				p.log.Error("broker connection closed", zap.Error(err))
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func(id int) {
			defer wg.Done()
			if err := p.consume(ctx, id); err != nil {
				errOnce.Do(func() { firstErr = err })
				cancel()
			}
		}(i + 1)
	}
	p.log.Info("analysis workers started", zap.Int("workers", p.workers), zap.String("queue", p.queue))

	wg.Wait()
	return firstErr
}

func (p *AnalysisPool) consume(ctx context.Context, id int) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d: open channel: %w", id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d: set qos: %w", id, err)
	}

	msgs, err := ch.Consume(
		p.queue,
		fmt.Sprintf("analysis-worker-%d", id),
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d: consume %s: %w", id, p.queue, err)
	}

	log := p.log.With(zap.Int("worker", id))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			p.settle(log, d, p.process(ctx, log, d.Body, d.Headers))
		}
	}
}

func (p *AnalysisPool) settle(log *zap.Logger, d amqp.Delivery, out outcome) {
	var err error
	if out == outcomeRequeue {
		err = d.Nack(false, true)
	} else {
		err = d.Ack(false)
	}
	if err != nil {
		log.Error("failed to settle delivery", zap.Uint64("tag", d.DeliveryTag), zap.Error(err))
	}
}

// process runs one analysis. A failed attempt is republished with an
// incremented retry count until maxRetries, then the report is marked failed.
func (p *AnalysisPool) process(ctx context.Context, log *zap.Logger, body []byte, headers amqp.Table) outcome {
	var msg service.AnalysisMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error("dropping malformed analysis message", zap.String("body", logger.TruncateForLog(string(body), 200)), zap.Error(err))
		return outcomeDropped
	}

	retries := service.RetryCount(headers)
	log = log.With(zap.String(logger.FieldApplicationID, msg.ApplicationID.String()), zap.Int("retries", retries))

	report, err := p.analyzer.RunAnalysis(ctx, msg)
	if err == nil {
		log.Info("analysis completed", zap.Float64("score", report.OverallScore))
		return outcomeDone
	}
	if ctx.Err() != nil {
		log.Warn("analysis interrupted, requeueing", zap.Error(err))
		return outcomeRequeue
	}

	if retries < p.maxRetries {
		if perr := p.publisher.PublishAnalysis(ctx, msg, retries+1); perr != nil {
			log.Error("failed to republish analysis", zap.Error(perr))
			return outcomeRequeue
		}
		log.Warn("analysis failed, retry scheduled", zap.Error(err))
		return outcomeRetried
	}

	log.Error("analysis failed permanently", zap.Error(err))
	if merr := p.analyzer.MarkAnalysisFailed(ctx, msg); merr != nil {
		log.Error("failed to mark report as failed", zap.Error(merr))
	}
	return outcomeFailed
}
