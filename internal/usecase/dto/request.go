package dto

// Point - координаты точки
type Point struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

// MeasureRequest - запрос на измерение одной пары точек
type MeasureRequest struct {
	Origin      Point `json:"origin" validate:"required"`
	Destination Point `json:"destination" validate:"required"`
}

// BuildRunRequest - запрос на построение таблицы расстояний.
// Origins задаются либо кодами block group из каталога, либо точками,
// которые геокодируются в block group. Пусто - весь каталог.
type BuildRunRequest struct {
	OriginIDs  []string       `json:"origin_ids,omitempty" validate:"omitempty,max=5000,dive,required"`
	Points     []Point        `json:"points,omitempty" validate:"omitempty,max=1000,dive"`
	Categories []string       `json:"categories,omitempty" validate:"omitempty,dive,required"`
	Quota      map[string]int `json:"quota,omitempty" validate:"omitempty,dive,min=0"`
}

// BasketRequest - квота для сборки корзины из сохранённого прогона.
// Пустая квота означает квоту по умолчанию из конфигурации.
type BasketRequest struct {
	Quota map[string]int `json:"quota,omitempty" validate:"omitempty,dive,min=0"`
}

// LocateRequest - запрос на определение block group
type LocateRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}
