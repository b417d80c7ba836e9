package dto

import (
	"github.com/basket-ranking/internal/domain"
	"github.com/google/uuid"
)

// MeasureResponse - результат измерения одной пары
type MeasureResponse struct {
	Provider    string                `json:"provider"`
	Mode        domain.TravelMode     `json:"mode"`
	Units       domain.UnitSystem     `json:"units"`
	Status      domain.DistanceStatus `json:"status"`
	Distance    *float64              `json:"distance"`
	DurationSec *float64              `json:"duration_sec,omitempty"`
}

// BuildRunResponse - итог построения таблицы расстояний
type BuildRunResponse struct {
	RunID         uuid.UUID           `json:"run_id"`
	Provider      string              `json:"provider"`
	Mode          domain.TravelMode   `json:"mode"`
	Units         domain.UnitSystem   `json:"units"`
	Origins       int                 `json:"origins"`
	Destinations  int                 `json:"destinations"`
	Counts        domain.StatusCounts `json:"counts"`
	SkippedPoints []int               `json:"skipped_points,omitempty"`
	BasketSize    *int                `json:"basket_size,omitempty"`
}

// EnqueueResponse - ответ на асинхронную заявку
type EnqueueResponse struct {
	JobID uuid.UUID `json:"job_id"`
}

// RankedResponse - ранжированная таблица прогона
type RankedResponse struct {
	RunID   uuid.UUID             `json:"run_id"`
	Records []domain.RankedRecord `json:"records"`
}

// BasketResponse - корзина прогона под заданную квоту
type BasketResponse struct {
	RunID   uuid.UUID            `json:"run_id"`
	Quota   domain.Quota         `json:"quota"`
	Entries []domain.BasketEntry `json:"entries"`
	// Shortfall - сколько мест в квоте не удалось заполнить, по origin и категории
	Shortfall map[string]map[domain.Category]int `json:"shortfall,omitempty"`
}

// CategoryInfo - категория и размер её каталога
type CategoryInfo struct {
	Category     domain.Category `json:"category"`
	Destinations int             `json:"destinations"`
}

// LocateResponse - атрибуты block group
type LocateResponse struct {
	Attributes domain.GeoAttributes `json:"attributes"`
}
