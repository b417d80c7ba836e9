// Package docs Basket Ranking API.
//
// Сервис строит таблицы расстояний от block group до мест назначения
// по категориям, ранжирует их и собирает корзины ближайших мест под квоту.
//
// Основные возможности:
// - Построение и сохранение таблицы расстояний (синхронно и через очередь)
// - Ранжирование мест внутри origin и категории
// - Сборка корзины по квоте из сохранённого прогона
// - Определение block group по координатам
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
