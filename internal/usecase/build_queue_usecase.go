package usecase

import (
	"context"
	"fmt"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/domain/repository"
	"github.com/basket-ranking/internal/usecase/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BuildQueueUseCase ставит построение прогона в очередь воркера.
type BuildQueueUseCase struct {
	streamRepo repository.StreamRepository
	logger     *zap.Logger
}

func NewBuildQueueUseCase(streamRepo repository.StreamRepository, logger *zap.Logger) *BuildQueueUseCase {
	return &BuildQueueUseCase{
		streamRepo: streamRepo,
		logger:     logger,
	}
}

// Enqueue валидирует заявку так же, как синхронный BuildRun, и публикует её в stream:basket:build.
func (uc *BuildQueueUseCase) Enqueue(ctx context.Context, req dto.BuildRunRequest) (*dto.EnqueueResponse, error) {
	event, err := EventFromRequest(uuid.New(), req)
	if err != nil {
		return nil, err
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamBasketBuild, event); err != nil {
		return nil, fmt.Errorf("enqueue build: %w", err)
	}

	uc.logger.Info("Build enqueued",
		zap.String("job_id", event.JobID.String()),
		zap.Int("origin_ids", len(event.OriginIDs)),
		zap.Int("points", len(event.Points)))

	return &dto.EnqueueResponse{JobID: event.JobID}, nil
}

// EventFromRequest переводит HTTP-заявку в событие стрима.
func EventFromRequest(jobID uuid.UUID, req dto.BuildRunRequest) (*domain.BuildRequestedEvent, error) {
	categories, err := parseCategories(req.Categories)
	if err != nil {
		return nil, err
	}
	quota, err := parseQuota(req.Quota)
	if err != nil {
		return nil, err
	}

	event := &domain.BuildRequestedEvent{
		JobID:      jobID,
		OriginIDs:  req.OriginIDs,
		Categories: categories,
	}
	if len(quota) > 0 {
		event.Quota = quota
	}
	for _, p := range req.Points {
		event.Points = append(event.Points, domain.GeoPoint{Lat: p.Lat, Lon: p.Lon})
	}
	return event, nil
}

// RequestFromEvent - обратное преобразование для воркера.
func RequestFromEvent(event *domain.BuildRequestedEvent) dto.BuildRunRequest {
	req := dto.BuildRunRequest{OriginIDs: event.OriginIDs}
	for _, p := range event.Points {
		req.Points = append(req.Points, dto.Point{Lat: p.Lat, Lon: p.Lon})
	}
	for _, c := range event.Categories {
		req.Categories = append(req.Categories, string(c))
	}
	if len(event.Quota) > 0 {
		req.Quota = make(map[string]int, len(event.Quota))
		for c, n := range event.Quota {
			req.Quota[string(c)] = n
		}
	}
	return req
}
