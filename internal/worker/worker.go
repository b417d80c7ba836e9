package worker

import (
	"context"
)

// Worker - долгоживущий потребитель стрима
type Worker interface {
	// Start блокирует до Stop или отмены ctx
	Start(ctx context.Context) error

	// Stop сигнализирует о завершении; повторный вызов безопасен
	Stop() error

	Name() string
}
