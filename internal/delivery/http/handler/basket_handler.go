package handler

import (
	"context"

	"github.com/basket-ranking/internal/pkg/errors"
	"github.com/basket-ranking/internal/pkg/utils"
	"github.com/basket-ranking/internal/pkg/validator"
	"github.com/basket-ranking/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BasketService - сценарии BasketUseCase, доступные через HTTP
type BasketService interface {
	Measure(ctx context.Context, req dto.MeasureRequest) (*dto.MeasureResponse, error)
	BuildRun(ctx context.Context, req dto.BuildRunRequest) (*dto.BuildRunResponse, error)
	RankedRecords(ctx context.Context, runID uuid.UUID) (*dto.RankedResponse, error)
	RebuildBasket(ctx context.Context, runID uuid.UUID, req dto.BasketRequest) (*dto.BasketResponse, error)
	Locate(ctx context.Context, req dto.LocateRequest) (*dto.LocateResponse, error)
	Categories(ctx context.Context) ([]dto.CategoryInfo, error)
}

// BuildQueue ставит построение в очередь воркера
type BuildQueue interface {
	Enqueue(ctx context.Context, req dto.BuildRunRequest) (*dto.EnqueueResponse, error)
}

// BasketHandler - обработчик запросов к таблице расстояний и корзине
type BasketHandler struct {
	basketUC BasketService
	queueUC  BuildQueue
	logger   *zap.Logger
}

// NewBasketHandler - создание нового BasketHandler
func NewBasketHandler(basketUC BasketService, queueUC BuildQueue, logger *zap.Logger) *BasketHandler {
	return &BasketHandler{
		basketUC: basketUC,
		queueUC:  queueUC,
		logger:   logger,
	}
}

// parseBody разбирает и валидирует JSON-тело
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return errors.ErrInvalidRequest.WithMessage("Invalid request body")
		}
	}
	return validator.Validate(out)
}

func parseRunID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidRequest.WithMessage("run id must be a UUID")
	}
	return id, nil
}

// GetCategories godoc
// @Summary List destination categories
// @Description Закрытый список категорий и размер каталога назначений по каждой
// @Tags Catalog
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/categories [get]
func (h *BasketHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.basketUC.Categories(c.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{
		"categories": categories,
	}, &utils.Meta{
		Total: len(categories),
	})
}

// Measure godoc
// @Summary Measure one origin/destination pair
// @Tags Distances
// @Accept json
// @Produce json
// @Param request body dto.MeasureRequest true "Pair of points"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/distances/measure [post]
func (h *BasketHandler) Measure(c *fiber.Ctx) error {
	var req dto.MeasureRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.basketUC.Measure(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// BuildRun godoc
// @Summary Build and store a distance table
// @Description Синхронно измеряет расстояния от origins до назначений каталога и сохраняет прогон
// @Tags Runs
// @Accept json
// @Produce json
// @Param request body dto.BuildRunRequest false "Origins, category filter and optional quota"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/runs [post]
func (h *BasketHandler) BuildRun(c *fiber.Ctx) error {
	var req dto.BuildRunRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	// UserContext: отмена клиента прерывает измерения
	result, err := h.basketUC.BuildRun(c.UserContext(), req)
	if err != nil {
		h.logger.Error("Failed to build run", zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// EnqueueRun godoc
// @Summary Enqueue a distance table build
// @Tags Runs
// @Accept json
// @Produce json
// @Param request body dto.BuildRunRequest false "Origins, category filter and optional quota"
// @Success 202 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/runs/async [post]
func (h *BasketHandler) EnqueueRun(c *fiber.Ctx) error {
	var req dto.BuildRunRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.queueUC.Enqueue(c.Context(), req)
	if err != nil {
		h.logger.Error("Failed to enqueue run", zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendStatus(c, fiber.StatusAccepted, result)
}

// GetRanked godoc
// @Summary Ranked distance table of a run
// @Tags Runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/runs/{id}/ranked [get]
func (h *BasketHandler) GetRanked(c *fiber.Ctx) error {
	runID, err := parseRunID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.basketUC.RankedRecords(c.Context(), runID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, &utils.Meta{Total: len(result.Records)})
}

// BuildBasket godoc
// @Summary Assemble a basket from a stored run
// @Description Пустая квота - квота по умолчанию из конфигурации
// @Tags Runs
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Param request body dto.BasketRequest false "Quota per category"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/runs/{id}/basket [post]
func (h *BasketHandler) BuildBasket(c *fiber.Ctx) error {
	runID, err := parseRunID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.BasketRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.basketUC.RebuildBasket(c.Context(), runID, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, &utils.Meta{Total: len(result.Entries)})
}

// Locate godoc
// @Summary Block group of a point
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body dto.LocateRequest true "Point"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/locate [post]
func (h *BasketHandler) Locate(c *fiber.Ctx) error {
	var req dto.LocateRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.basketUC.Locate(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}
