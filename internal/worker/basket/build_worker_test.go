package basket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/basket-ranking/internal/domain"
	"github.com/basket-ranking/internal/usecase/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	return m.Called(ctx, stream, group, messageID).Error(0)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	return m.Called(ctx, stream, group, messageIDs).Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	return m.Called(ctx, stream, group).Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	return m.Called(ctx, stream, data).Error(0)
}

// MockRunBuilder is a mock of RunBuilder
type MockRunBuilder struct {
	mock.Mock
}

func (m *MockRunBuilder) BuildRun(ctx context.Context, req dto.BuildRunRequest) (*dto.BuildRunResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BuildRunResponse), args.Error(1)
}

func message(t *testing.T, id string, event domain.BuildRequestedEvent) domain.StreamMessage {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(raw)}
}

func newTestWorker(streams *MockStreamRepository, builder *MockRunBuilder, retries int) *BuildWorker {
	return NewBuildWorker(streams, builder, "test-group", retries, time.Minute, zap.NewNop())
}

func TestBuildWorker_Name(t *testing.T) {
	w := newTestWorker(&MockStreamRepository{}, &MockRunBuilder{}, 0)
	assert.Equal(t, "basket-build", w.Name())
	assert.Equal(t, "test-group", w.ConsumerGroup())
}

func TestBuildWorker_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("successful build publishes run and acks", func(t *testing.T) {
		jobID := uuid.New()
		runID := uuid.New()
		size := 5

		streams := &MockStreamRepository{}
		builder := &MockRunBuilder{}
		streams.On("ConsumeBatch", mock.Anything, domain.StreamBasketBuild, "test-group", mock.Anything, maxBatchSize).
			Return([]domain.StreamMessage{message(t, "1-0", domain.BuildRequestedEvent{
				JobID:      jobID,
				OriginIDs:  []string{"A"},
				Categories: []domain.Category{domain.CategoryGrocery},
				Quota:      domain.Quota{domain.CategoryGrocery: 2},
			})}, nil)
		builder.On("BuildRun", mock.Anything, dto.BuildRunRequest{
			OriginIDs:  []string{"A"},
			Categories: []string{"grocery"},
			Quota:      map[string]int{"grocery": 2},
		}).Return(&dto.BuildRunResponse{RunID: runID, Counts: domain.StatusCounts{OK: 4}, BasketSize: &size}, nil)
		streams.On("PublishToStream", mock.Anything, domain.StreamBasketDone, mock.MatchedBy(func(e *domain.BuildDoneEvent) bool {
			return e.JobID == jobID && e.RunID != nil && *e.RunID == runID && e.Counts.OK == 4 && e.BasketSize == 5 && e.Error == ""
		})).Return(nil)
		streams.On("AckMessage", mock.Anything, domain.StreamBasketBuild, "test-group", "1-0").Return(nil)

		n, err := newTestWorker(streams, builder, 0).processBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		streams.AssertExpectations(t)
		builder.AssertExpectations(t)
	})

	t.Run("malformed message is reported and acked", func(t *testing.T) {
		streams := &MockStreamRepository{}
		builder := &MockRunBuilder{}
		streams.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.StreamMessage{{ID: "2-0", Data: "{not json"}}, nil)
		streams.On("PublishToStream", mock.Anything, domain.StreamBasketDone, mock.MatchedBy(func(e *domain.BuildDoneEvent) bool {
			return e.Error != "" && e.RunID == nil
		})).Return(nil)
		streams.On("AckMessage", mock.Anything, domain.StreamBasketBuild, "test-group", "2-0").Return(nil)

		_, err := newTestWorker(streams, builder, 0).processBatch(ctx)
		require.NoError(t, err)
		builder.AssertNotCalled(t, "BuildRun", mock.Anything, mock.Anything)
		streams.AssertExpectations(t)
	})

	t.Run("invalid quota keeps job id in error event", func(t *testing.T) {
		jobID := uuid.New()
		streams := &MockStreamRepository{}
		streams.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.StreamMessage{message(t, "3-0", domain.BuildRequestedEvent{
				JobID: jobID,
				Quota: domain.Quota{domain.CategoryPark: -1},
			})}, nil)
		streams.On("PublishToStream", mock.Anything, domain.StreamBasketDone, mock.MatchedBy(func(e *domain.BuildDoneEvent) bool {
			return e.JobID == jobID && e.Error != ""
		})).Return(nil)
		streams.On("AckMessage", mock.Anything, mock.Anything, mock.Anything, "3-0").Return(nil)

		_, err := newTestWorker(streams, &MockRunBuilder{}, 0).processBatch(ctx)
		require.NoError(t, err)
		streams.AssertExpectations(t)
	})

	t.Run("publish failure leaves message pending", func(t *testing.T) {
		streams := &MockStreamRepository{}
		builder := &MockRunBuilder{}
		streams.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.StreamMessage{message(t, "4-0", domain.BuildRequestedEvent{JobID: uuid.New()})}, nil)
		builder.On("BuildRun", mock.Anything, mock.Anything).Return(&dto.BuildRunResponse{RunID: uuid.New()}, nil)
		streams.On("PublishToStream", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		_, err := newTestWorker(streams, builder, 0).processBatch(ctx)
		require.NoError(t, err)
		streams.AssertNotCalled(t, "AckMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty queue", func(t *testing.T) {
		streams := &MockStreamRepository{}
		streams.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, nil)

		n, err := newTestWorker(streams, &MockRunBuilder{}, 0).processBatch(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("consume error", func(t *testing.T) {
		streams := &MockStreamRepository{}
		streams.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("NOGROUP"))

		_, err := newTestWorker(streams, &MockRunBuilder{}, 0).processBatch(ctx)
		assert.ErrorContains(t, err, "NOGROUP")
	})
}

func TestBuildWorker_Retry(t *testing.T) {
	ctx := context.Background()
	event := &domain.BuildRequestedEvent{JobID: uuid.New()}

	t.Run("permanent errors are not retried", func(t *testing.T) {
		builder := &MockRunBuilder{}
		builder.On("BuildRun", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

		_, err := newTestWorker(&MockStreamRepository{}, builder, 3).buildWithRetry(ctx, event, zap.NewNop())
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		builder.AssertNumberOfCalls(t, "BuildRun", 1)
	})

	t.Run("transient error then success", func(t *testing.T) {
		builder := &MockRunBuilder{}
		builder.On("BuildRun", mock.Anything, mock.Anything).Return(nil, errors.New("db timeout")).Once()
		builder.On("BuildRun", mock.Anything, mock.Anything).Return(&dto.BuildRunResponse{RunID: uuid.New()}, nil).Once()

		resp, err := newTestWorker(&MockStreamRepository{}, builder, 1).buildWithRetry(ctx, event, zap.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, resp)
		builder.AssertNumberOfCalls(t, "BuildRun", 2)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		builder := &MockRunBuilder{}
		builder.On("BuildRun", mock.Anything, mock.Anything).Return(nil, errors.New("db timeout"))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := newTestWorker(&MockStreamRepository{}, builder, 5).buildWithRetry(cctx, event, zap.NewNop())
		assert.ErrorIs(t, err, context.Canceled)
		builder.AssertNumberOfCalls(t, "BuildRun", 1)
	})
}

func TestBuildWorker_StartStop(t *testing.T) {
	streams := &MockStreamRepository{}
	streams.On("CreateConsumerGroup", mock.Anything, domain.StreamBasketBuild, "test-group").Return(nil)
	streams.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	w := newTestWorker(streams, &MockRunBuilder{}, 0)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestBuildWorker_StartFailsWithoutGroup(t *testing.T) {
	streams := &MockStreamRepository{}
	streams.On("CreateConsumerGroup", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("NOAUTH"))

	err := newTestWorker(streams, &MockRunBuilder{}, 0).Start(context.Background())
	assert.ErrorContains(t, err, "NOAUTH")
}
