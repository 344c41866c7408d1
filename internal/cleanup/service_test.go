package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPurger struct {
	mock.Mock
}

func (m *mockPurger) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestService_Sweep(t *testing.T) {
	sessions := &mockPurger{}
	sessions.On("PurgeExpired", mock.Anything).Return(int64(3), nil).Once()

	failing := &mockPurger{}
	failing.On("PurgeExpired", mock.Anything).Return(int64(0), errors.New("connection refused")).Once()

	svc := NewService(Config{Interval: time.Minute})
	svc.Register("sessions", sessions)
	svc.Register("postgres", failing)

	results := svc.Sweep(context.Background())
	require.Len(t, results, 2)

	assert.Equal(t, "sessions", results[0].Target)
	assert.Equal(t, int64(3), results[0].Purged)
	assert.NoError(t, results[0].Err)

	assert.Equal(t, "postgres", results[1].Target)
	assert.EqualError(t, results[1].Err, "connection refused")

	sessions.AssertExpectations(t)
	failing.AssertExpectations(t)
}

func TestService_SweepAppliesTimeout(t *testing.T) {
	svc := NewService(Config{Interval: time.Minute, Timeout: 50 * time.Millisecond})
	svc.Register("slow", PurgerFunc(func(ctx context.Context) (int64, error) {
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		return 0, nil
	}))

	results := svc.Sweep(context.Background())
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestService_DryRun(t *testing.T) {
	purger := &mockPurger{}

	svc := NewService(Config{DryRun: true})
	svc.Register("sessions", purger)

	results := svc.Sweep(context.Background())
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Purged)
	purger.AssertNotCalled(t, "PurgeExpired", mock.Anything)
}

func TestService_RegisterReplaces(t *testing.T) {
	var calls []string
	svc := NewService(DefaultConfig())
	svc.Register("a", PurgerFunc(func(context.Context) (int64, error) { calls = append(calls, "old"); return 0, nil }))
	svc.Register("b", PurgerFunc(func(context.Context) (int64, error) { calls = append(calls, "b"); return 0, nil }))
	svc.Register("a", PurgerFunc(func(context.Context) (int64, error) { calls = append(calls, "new"); return 0, nil }))

	svc.Sweep(context.Background())
	assert.Equal(t, []string{"new", "b"}, calls)
}

func TestService_StartStopsWithContext(t *testing.T) {
	swept := make(chan struct{}, 10)
	svc := NewService(Config{Interval: 10 * time.Millisecond})
	svc.Register("tick", PurgerFunc(func(context.Context) (int64, error) {
		swept <- struct{}{}
		return 1, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-swept:
		case <-time.After(time.Second):
			t.Fatal("sweep did not run")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CLEANUP_INTERVAL", "90s")
	t.Setenv("CLEANUP_DRY_RUN", "true")
	t.Setenv("CLEANUP_TIMEOUT", "bogus")

	cfg := LoadConfig()
	assert.Equal(t, 90*time.Second, cfg.Interval)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, DefaultConfig().Timeout, cfg.Timeout)
}
