package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prodscout/prodscout/internal/research"
)

type fakeExecutor struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]error
}

func (f *fakeExecutor) Execute(_ context.Context, q research.Query, _ []string) (research.RunSummary, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q.Keyword)
	f.mu.Unlock()
	if err, ok := f.failFor[q.Keyword]; ok {
		return research.RunSummary{}, err
	}
	return research.RunSummary{
		Keyword:     q.Keyword,
		SummaryPath: "reports/" + q.Keyword + "/summary.csv",
	}, nil
}

type fakeDigest struct {
	mu    sync.Mutex
	sends [][]research.TickResult
	err   error
}

func (f *fakeDigest) Send(_ context.Context, results []research.TickResult) error {
	f.mu.Lock()
	f.sends = append(f.sends, results)
	f.mu.Unlock()
	return f.err
}

func TestRunTick(t *testing.T) {
	t.Run("PartialFailureStillDigestsOnce", func(t *testing.T) {
		executor := &fakeExecutor{failFor: map[string]error{
			"a": errors.New("every source failed"),
		}}
		digest := &fakeDigest{}
		s := New(Spec{Keywords: []string{"a", "b"}, CronExpr: "0 8 * * 1"}, executor, digest, zap.NewNop())

		s.runTick(context.Background())

		assert.Equal(t, []string{"a", "b"}, executor.calls)
		require.Len(t, digest.sends, 1)

		results := digest.sends[0]
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].Keyword)
		assert.Error(t, results[0].Err)
		assert.Empty(t, results[0].SummaryPath)
		assert.Equal(t, "b", results[1].Keyword)
		assert.NoError(t, results[1].Err)
		assert.NotEmpty(t, results[1].SummaryPath)
	})

	t.Run("AllFailedStillDigests", func(t *testing.T) {
		executor := &fakeExecutor{failFor: map[string]error{
			"a": errors.New("boom"), "b": errors.New("boom"),
		}}
		digest := &fakeDigest{}
		s := New(Spec{Keywords: []string{"a", "b"}, CronExpr: "0 8 * * 1"}, executor, digest, zap.NewNop())

		s.runTick(context.Background())
		assert.Len(t, digest.sends, 1)
	})

	t.Run("DeliveryFailureDoesNotPanic", func(t *testing.T) {
		executor := &fakeExecutor{}
		digest := &fakeDigest{err: errors.New("smtp refused")}
		s := New(Spec{Keywords: []string{"a"}, CronExpr: "0 8 * * 1"}, executor, digest, zap.NewNop())

		s.runTick(context.Background())
		assert.Len(t, digest.sends, 1)
	})
}

func TestStart(t *testing.T) {
	t.Run("InvalidCronExpression", func(t *testing.T) {
		s := New(Spec{CronExpr: "not a cron"}, &fakeExecutor{}, &fakeDigest{}, zap.NewNop())
		err := s.Start(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, research.ErrConfiguration)
	})

	t.Run("StopUnblocksStart", func(t *testing.T) {
		s := New(Spec{CronExpr: "0 8 * * 1"}, &fakeExecutor{}, &fakeDigest{}, zap.NewNop())

		done := make(chan error, 1)
		go func() { done <- s.Start(context.Background()) }()

		time.Sleep(50 * time.Millisecond)
		s.Stop()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Start did not return after Stop")
		}
	})

	t.Run("ContextCancelUnblocksStart", func(t *testing.T) {
		s := New(Spec{CronExpr: "0 8 * * 1"}, &fakeExecutor{}, &fakeDigest{}, zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- s.Start(ctx) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Start did not return after cancel")
		}
	})
}
