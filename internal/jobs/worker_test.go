package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSummaryLogPruner is a mock implementation of SummaryLogPruner
type MockSummaryLogPruner struct {
	mock.Mock
}

func (m *MockSummaryLogPruner) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker("test", mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_RunsImmediately tests the first pass happens before the first tick
func TestWorker_RunsImmediately(t *testing.T) {
	called := make(chan struct{}, 1)
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Run(func(mock.Arguments) {
		select {
		case called <- struct{}{}:
		default:
		}
	}).Return(nil)

	worker := NewWorker("test", mockProcessor, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("processor was not called on start")
	}
	worker.Stop()
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(errors.New("transient"))

	worker := NewWorker("test", mockProcessor, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(120 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestLogRetentionJob_ProcessJobs(t *testing.T) {
	pruner := new(MockSummaryLogPruner)
	pruner.On("Prune", mock.Anything, 24*time.Hour).Return(int64(4), nil)

	job := NewLogRetentionJob(pruner, 24*time.Hour)
	err := job.ProcessJobs(context.Background())

	assert.NoError(t, err)
	pruner.AssertExpectations(t)
}

func TestLogRetentionJob_ProcessJobs_Error(t *testing.T) {
	pruner := new(MockSummaryLogPruner)
	pruner.On("Prune", mock.Anything, time.Hour).Return(int64(0), errors.New("connection refused"))

	job := NewLogRetentionJob(pruner, time.Hour)
	err := job.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prune summary logs")
}

func TestLogRetentionJob_ProcessJobs_Disabled(t *testing.T) {
	pruner := new(MockSummaryLogPruner)

	job := NewLogRetentionJob(pruner, 0)
	err := job.ProcessJobs(context.Background())

	assert.NoError(t, err)
	pruner.AssertNotCalled(t, "Prune", mock.Anything, mock.Anything)
}

func TestPruneInterval(t *testing.T) {
	assert.Equal(t, time.Minute, PruneInterval(time.Minute))
	assert.Equal(t, 30*time.Minute, PruneInterval(5*time.Hour))
	assert.Equal(t, time.Hour, PruneInterval(720*time.Hour))
}
