package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamBasketBuild = "stream:basket:build"
	StreamBasketDone  = "stream:basket:done"
)

// BuildRequestedEvent - входящая заявка на построение таблицы расстояний.
// Пустые списки означают "весь каталог".
type BuildRequestedEvent struct {
	JobID      uuid.UUID  `json:"job_id"`
	OriginIDs  []string   `json:"origin_ids,omitempty"`
	Points     []GeoPoint `json:"points,omitempty"`
	Categories []Category `json:"categories,omitempty"`
	Quota      Quota      `json:"quota,omitempty"`
}

// BuildDoneEvent - результат построения.
type BuildDoneEvent struct {
	JobID      uuid.UUID     `json:"job_id"`
	RunID      *uuid.UUID    `json:"run_id,omitempty"`
	Counts     *StatusCounts `json:"counts,omitempty"`
	BasketSize int           `json:"basket_size,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}

// Validate проверяет категории и квоту заявки до постановки в очередь.
func (e *BuildRequestedEvent) Validate() error {
	if e.JobID == uuid.Nil {
		return fmt.Errorf("%w: missing job_id", ErrInvalidEvent)
	}
	for _, p := range e.Points {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, c := range e.Categories {
		if !c.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
	}
	if e.Quota != nil {
		return e.Quota.Validate()
	}
	return nil
}
