package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/domain/repository"
	"github.com/basket-ranking/internal/pkg/metrics"
	"github.com/basket-ranking/internal/usecase"
	"github.com/basket-ranking/internal/usecase/dto"
	"github.com/basket-ranking/internal/worker"
	"go.uber.org/zap"
)

const (
	maxBatchSize    = 4                      // построение тяжёлое, берём немного
	emptyQueueSleep = 500 * time.Millisecond // пауза если очередь пуста
	retryBaseDelay  = time.Second
)

// RunBuilder строит и сохраняет прогон
type RunBuilder interface {
	BuildRun(ctx context.Context, req dto.BuildRunRequest) (*dto.BuildRunResponse, error)
}

// BuildWorker обрабатывает заявки из stream:basket:build
type BuildWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	builder      RunBuilder
	consumerName string
	maxRetries   int
	runTimeout   time.Duration
}

// NewBuildWorker создает новый BuildWorker
func NewBuildWorker(
	streamRepo repository.StreamRepository,
	builder RunBuilder,
	consumerGroup string,
	maxRetries int,
	runTimeout time.Duration,
	logger *zap.Logger,
) *BuildWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &BuildWorker{
		BaseWorker:   worker.NewBaseWorker("basket-build", consumerGroup, logger),
		streamRepo:   streamRepo,
		builder:      builder,
		consumerName: consumerName,
		maxRetries:   maxRetries,
		runTimeout:   runTimeout,
	}
}

// Start запускает воркер
func (w *BuildWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting BuildWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Duration("run_timeout", w.runTimeout))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamBasketBuild, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				w.sleep(ctx, time.Second)
				continue
			}

			if processed == 0 {
				w.sleep(ctx, emptyQueueSleep)
			}
		}
	}
}

func (w *BuildWorker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-w.StopChan():
	case <-ctx.Done():
	}
}

// processBatch читает и обрабатывает batch заявок.
// Возвращает количество прочитанных сообщений.
func (w *BuildWorker) processBatch(ctx context.Context) (int, error) {
	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamBasketBuild,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	for _, msg := range messages {
		done := w.handle(ctx, msg)

		if err := w.streamRepo.PublishToStream(ctx, domain.StreamBasketDone, done); err != nil {
			// не подтверждаем: заявка останется в pending
			w.Logger().Error("Failed to publish done event",
				zap.String("message_id", msg.ID),
				zap.String("job_id", done.JobID.String()),
				zap.Error(err))
			continue
		}

		if err := w.streamRepo.AckMessage(ctx, domain.StreamBasketBuild, w.ConsumerGroup(), msg.ID); err != nil {
			w.Logger().Error("Failed to ack message", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}

	return len(messages), nil
}

// handle всегда возвращает событие завершения: ошибка заявки уходит в поле Error
func (w *BuildWorker) handle(ctx context.Context, msg domain.StreamMessage) *domain.BuildDoneEvent {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	event, err := parseMessage(msg)
	if err != nil {
		logger.Warn("Invalid build request", zap.Error(err))
		metrics.JobsTotal.WithLabelValues("invalid").Inc()
		done := &domain.BuildDoneEvent{Error: err.Error()}
		if event != nil {
			done.JobID = event.JobID
		}
		return done
	}

	logger = logger.With(zap.String("job_id", event.JobID.String()))
	started := time.Now()

	resp, err := w.buildWithRetry(ctx, event, logger)
	if err != nil {
		logger.Error("Build failed", zap.Error(err))
		metrics.JobsTotal.WithLabelValues("failed").Inc()
		return &domain.BuildDoneEvent{JobID: event.JobID, Error: err.Error()}
	}

	logger.Info("Build finished",
		zap.String("run_id", resp.RunID.String()),
		zap.Int("ok", resp.Counts.OK),
		zap.Int("not_found", resp.Counts.NotFound),
		zap.Int("provider_error", resp.Counts.ProviderError),
		zap.Duration("took", time.Since(started)))
	metrics.JobsTotal.WithLabelValues("succeeded").Inc()

	runID := resp.RunID
	counts := resp.Counts
	done := &domain.BuildDoneEvent{
		JobID:  event.JobID,
		RunID:  &runID,
		Counts: &counts,
	}
	if resp.BasketSize != nil {
		done.BasketSize = *resp.BasketSize
	}
	return done
}

// buildWithRetry повторяет только инфраструктурные ошибки; ошибки заявки окончательны
func (w *BuildWorker) buildWithRetry(ctx context.Context, event *domain.BuildRequestedEvent, logger *zap.Logger) (*dto.BuildRunResponse, error) {
	req := usecase.RequestFromEvent(event)
	delay := retryBaseDelay

	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("Retrying build", zap.Int("attempt", attempt), zap.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}

		runCtx, cancel := context.WithTimeout(ctx, w.runTimeout)
		resp, err := w.builder.BuildRun(runCtx, req)
		cancel()
		if err == nil {
			return resp, nil
		}
		if isPermanent(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrInvalidCoordinate) ||
		errors.Is(err, domain.ErrInvalidQuota) ||
		errors.Is(err, domain.ErrUnknownCategory) ||
		errors.Is(err, domain.ErrDuplicateID) ||
		errors.Is(err, domain.ErrNotFound)
}

// parseMessage парсит сообщение из стрима в BuildRequestedEvent.
// Для невалидной, но разобранной заявки возвращает событие вместе с ошибкой.
func parseMessage(msg domain.StreamMessage) (*domain.BuildRequestedEvent, error) {
	var event domain.BuildRequestedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidEvent, err)
	}
	if err := event.Validate(); err != nil {
		return &event, err
	}
	return &event, nil
}
