package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/domain/repository"
	"github.com/basket-ranking/internal/usecase/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BasketUseCase - сценарии построения таблицы расстояний, ранжирования и корзины.
type BasketUseCase struct {
	builder         *MatrixBuilder
	originRepo      repository.OriginRepository
	destinationRepo repository.DestinationRepository
	runRepo         repository.RunRepository
	locator         repository.GeoLocator
	mode            domain.TravelMode
	units           domain.UnitSystem
	defaultQuota    domain.Quota
	logger          *zap.Logger
}

func NewBasketUseCase(
	builder *MatrixBuilder,
	originRepo repository.OriginRepository,
	destinationRepo repository.DestinationRepository,
	runRepo repository.RunRepository,
	locator repository.GeoLocator,
	mode domain.TravelMode,
	units domain.UnitSystem,
	defaultQuota domain.Quota,
	logger *zap.Logger,
) *BasketUseCase {
	return &BasketUseCase{
		builder:         builder,
		originRepo:      originRepo,
		destinationRepo: destinationRepo,
		runRepo:         runRepo,
		locator:         locator,
		mode:            mode,
		units:           units,
		defaultQuota:    defaultQuota,
		logger:          logger,
	}
}

// Measure измеряет одну пару текущим провайдером.
func (uc *BasketUseCase) Measure(ctx context.Context, req dto.MeasureRequest) (*dto.MeasureResponse, error) {
	origin, err := domain.NewGeoPoint(req.Origin.Lat, req.Origin.Lon)
	if err != nil {
		return nil, err
	}
	dest, err := domain.NewGeoPoint(req.Destination.Lat, req.Destination.Lon)
	if err != nil {
		return nil, err
	}

	provider := uc.builder.Provider()
	m, err := provider.Measure(ctx, origin, dest)
	if err != nil {
		return nil, err
	}

	resp := &dto.MeasureResponse{
		Provider:    provider.Name(),
		Mode:        uc.mode,
		Units:       uc.units,
		Status:      m.Status,
		DurationSec: m.Duration,
	}
	if m.Status == domain.StatusOK {
		d := m.Distance
		resp.Distance = &d
	}
	return resp, nil
}

// BuildRun загружает каталоги, строит таблицу и сохраняет её как новый прогон.
func (uc *BasketUseCase) BuildRun(ctx context.Context, req dto.BuildRunRequest) (*dto.BuildRunResponse, error) {
	categories, err := parseCategories(req.Categories)
	if err != nil {
		return nil, err
	}
	quota, err := parseQuota(req.Quota)
	if err != nil {
		return nil, err
	}

	var (
		origins []domain.Origin
		skipped []int
	)
	if len(req.Points) > 0 {
		origins, skipped, err = uc.OriginsFromPoints(ctx, req.Points)
	} else {
		origins, err = uc.originRepo.List(ctx, req.OriginIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("load origins: %w", err)
	}

	destinations, err := uc.destinationRepo.List(ctx, categories)
	if err != nil {
		return nil, fmt.Errorf("load destinations: %w", err)
	}

	records, err := uc.builder.Build(ctx, origins, destinations)
	if err != nil {
		return nil, err
	}

	run := &domain.Run{
		ID:        uuid.New(),
		Provider:  uc.builder.Provider().Name(),
		Mode:      uc.mode,
		Units:     uc.units,
		Counts:    domain.CountStatuses(records),
		CreatedAt: time.Now().UTC(),
	}

	// сохраняем даже при отменённом ctx: таблица уже полная
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := uc.runRepo.Save(saveCtx, run, records); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	uc.logger.Info("Run stored",
		zap.String("run_id", run.ID.String()),
		zap.Int("origins", len(origins)),
		zap.Int("destinations", len(destinations)),
		zap.Int("records", len(records)))

	resp := &dto.BuildRunResponse{
		RunID:         run.ID,
		Provider:      run.Provider,
		Mode:          run.Mode,
		Units:         run.Units,
		Origins:       len(origins),
		Destinations:  len(destinations),
		Counts:        run.Counts,
		SkippedPoints: skipped,
	}

	if len(quota) > 0 {
		basket, err := Assemble(Rank(records), quota)
		if err != nil {
			return nil, err
		}
		size := len(basket)
		resp.BasketSize = &size
	}

	return resp, nil
}

// RankedRecords возвращает ранжированную таблицу сохранённого прогона.
func (uc *BasketUseCase) RankedRecords(ctx context.Context, runID uuid.UUID) (*dto.RankedResponse, error) {
	records, err := uc.loadRecords(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &dto.RankedResponse{RunID: runID, Records: Rank(records)}, nil
}

// RebuildBasket пересобирает корзину прогона под новую квоту без обращения к провайдеру.
func (uc *BasketUseCase) RebuildBasket(ctx context.Context, runID uuid.UUID, req dto.BasketRequest) (*dto.BasketResponse, error) {
	quota, err := parseQuota(req.Quota)
	if err != nil {
		return nil, err
	}
	if len(quota) == 0 {
		quota = uc.defaultQuota
	}

	records, err := uc.loadRecords(ctx, runID)
	if err != nil {
		return nil, err
	}

	entries, err := Assemble(Rank(records), quota)
	if err != nil {
		return nil, err
	}

	return &dto.BasketResponse{
		RunID:     runID,
		Quota:     quota,
		Entries:   entries,
		Shortfall: shortfall(records, entries, quota),
	}, nil
}

// Locate определяет block group точки.
func (uc *BasketUseCase) Locate(ctx context.Context, req dto.LocateRequest) (*dto.LocateResponse, error) {
	p, err := domain.NewGeoPoint(req.Lat, req.Lon)
	if err != nil {
		return nil, err
	}
	attrs, err := uc.locator.Locate(ctx, p)
	if err != nil {
		return nil, err
	}
	return &dto.LocateResponse{Attributes: *attrs}, nil
}

// OriginsFromPoints геокодирует точки в block group. Точки вне покрытия
// пропускаются и возвращаются индексами; повторная block group берёт
// первую точку.
func (uc *BasketUseCase) OriginsFromPoints(ctx context.Context, points []dto.Point) ([]domain.Origin, []int, error) {
	origins := make([]domain.Origin, 0, len(points))
	seen := make(map[string]struct{}, len(points))
	var skipped []int

	for i, pt := range points {
		p, err := domain.NewGeoPoint(pt.Lat, pt.Lon)
		if err != nil {
			return nil, nil, fmt.Errorf("point %d: %w", i, err)
		}
		attrs, err := uc.locator.Locate(ctx, p)
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Debug("Point outside block groups, skipping", zap.Int("index", i))
			skipped = append(skipped, i)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("locate point %d: %w", i, err)
		}
		if _, ok := seen[attrs.BlockGroup]; ok {
			continue
		}
		seen[attrs.BlockGroup] = struct{}{}
		origins = append(origins, domain.Origin{ID: attrs.BlockGroup, Location: p})
	}

	return origins, skipped, nil
}

// Categories - закрытый список категорий с размером каталога.
func (uc *BasketUseCase) Categories(ctx context.Context) ([]dto.CategoryInfo, error) {
	counts, err := uc.destinationRepo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	all := domain.ValidCategories()
	out := make([]dto.CategoryInfo, len(all))
	for i, c := range all {
		out[i] = dto.CategoryInfo{Category: c, Destinations: counts[c]}
	}
	return out, nil
}

func (uc *BasketUseCase) loadRecords(ctx context.Context, runID uuid.UUID) ([]domain.DistanceRecord, error) {
	if _, err := uc.runRepo.Get(ctx, runID); err != nil {
		return nil, err
	}
	return uc.runRepo.Records(ctx, runID)
}

func parseCategories(labels []string) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(labels))
	for _, l := range labels {
		c, err := domain.ParseCategory(l)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func parseQuota(raw map[string]int) (domain.Quota, error) {
	q := make(domain.Quota, len(raw))
	// sorted so the reported bad label is stable
	labels := make([]string, 0, len(raw))
	for l := range raw {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	for _, l := range labels {
		c, err := domain.ParseCategory(l)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuota, err)
		}
		q[c] = raw[l]
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// shortfall reports unfilled quota slots per origin present in the run.
func shortfall(records []domain.DistanceRecord, entries []domain.BasketEntry, quota domain.Quota) map[string]map[domain.Category]int {
	filled := make(map[string]map[domain.Category]int)
	for _, r := range records {
		if _, ok := filled[r.OriginID]; !ok {
			filled[r.OriginID] = make(map[domain.Category]int)
		}
	}
	for _, e := range entries {
		filled[e.OriginID][e.Category]++
	}

	out := make(map[string]map[domain.Category]int)
	for origin, got := range filled {
		for c, want := range quota {
			if missing := want - got[c]; missing > 0 {
				if out[origin] == nil {
					out[origin] = make(map[domain.Category]int)
				}
				out[origin][c] = missing
			}
		}
	}
	return out
}
