package domain

import (
	"fmt"
	"sort"
)

// DistanceStatus - исход измерения одной пары origin/destination.
type DistanceStatus string

const (
	StatusOK            DistanceStatus = "OK"
	StatusNotFound      DistanceStatus = "NOT_FOUND"
	StatusProviderError DistanceStatus = "PROVIDER_ERROR"
)

func (s DistanceStatus) IsValid() bool {
	switch s {
	case StatusOK, StatusNotFound, StatusProviderError:
		return true
	}
	return false
}

// Measurement is what a provider returns for a single pair. Distance and
// Duration are meaningful only when Status is OK.
type Measurement struct {
	Status   DistanceStatus `json:"status"`
	Distance float64        `json:"distance"`
	Duration *float64       `json:"duration,omitempty"`
}

// DistanceRecord - одна строка таблицы расстояний.
type DistanceRecord struct {
	OriginID      string         `json:"origin_id" db:"origin_id"`
	DestinationID string         `json:"destination_id" db:"destination_id"`
	Category      Category       `json:"category" db:"category"`
	Distance      *float64       `json:"distance" db:"distance"`
	Duration      *float64       `json:"duration,omitempty" db:"duration"`
	Status        DistanceStatus `json:"status" db:"status"`
}

// NewDistanceRecord builds a record from a measurement. Non-OK measurements
// never carry a distance.
func NewDistanceRecord(originID string, dest Destination, m Measurement) DistanceRecord {
	rec := DistanceRecord{
		OriginID:      originID,
		DestinationID: dest.ID,
		Category:      dest.Category,
		Status:        m.Status,
	}
	if m.Status == StatusOK {
		d := m.Distance
		rec.Distance = &d
		if m.Duration != nil {
			dur := *m.Duration
			rec.Duration = &dur
		}
	}
	return rec
}

// FailedRecord marks a pair whose batch could not be measured.
func FailedRecord(originID string, dest Destination) DistanceRecord {
	return DistanceRecord{
		OriginID:      originID,
		DestinationID: dest.ID,
		Category:      dest.Category,
		Status:        StatusProviderError,
	}
}

// IsRankable reports whether the record may take part in ranking.
func (r DistanceRecord) IsRankable() bool {
	return r.Status == StatusOK && r.Distance != nil
}

// RankedRecord - запись с рангом 1..k внутри группы (origin, category).
type RankedRecord struct {
	DistanceRecord
	Rank int `json:"rank" db:"rank"`
}

// BasketEntry - ранжированная запись, прошедшая квоту своей категории.
type BasketEntry struct {
	RankedRecord
}

// StatusCounts - сводка по статусам записей одного прогона.
type StatusCounts struct {
	OK            int `json:"ok"`
	NotFound      int `json:"not_found"`
	ProviderError int `json:"provider_error"`
}

func CountStatuses(records []DistanceRecord) StatusCounts {
	var c StatusCounts
	for _, r := range records {
		switch r.Status {
		case StatusOK:
			c.OK++
		case StatusNotFound:
			c.NotFound++
		case StatusProviderError:
			c.ProviderError++
		}
	}
	return c
}

func (c StatusCounts) Total() int {
	return c.OK + c.NotFound + c.ProviderError
}

// Quota maps a category to the number of nearest destinations kept per origin.
// A missing key means zero.
type Quota map[Category]int

// Validate rejects negative counts and categories outside the closed set.
// Categories are checked in sorted order so the reported one is stable.
func (q Quota) Validate() error {
	keys := make([]string, 0, len(q))
	for c := range q {
		keys = append(keys, string(c))
	}
	sort.Strings(keys)

	for _, k := range keys {
		c := Category(k)
		if !c.IsValid() {
			return fmt.Errorf("%w: %w: %q", ErrInvalidQuota, ErrUnknownCategory, k)
		}
		if q[c] < 0 {
			return fmt.Errorf("%w: category %q has negative count %d", ErrInvalidQuota, k, q[c])
		}
	}
	return nil
}

// Limit returns the quota for c, zero when absent.
func (q Quota) Limit(c Category) int {
	return q[c]
}
