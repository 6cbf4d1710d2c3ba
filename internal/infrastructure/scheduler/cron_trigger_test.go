package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticApartments struct {
	ids   []int64
	err   error
	block chan struct{}
}

func (p *staticApartments) ListApartmentIDs(ctx context.Context) ([]int64, error) {
	if p.block != nil {
		<-p.block
	}
	return p.ids, p.err
}

func TestNewCronTrigger_RejectsBadSpec(t *testing.T) {
	cfg := DefaultCronTriggerConfig()
	cfg.Spec = "every five minutes"
	_, err := NewCronTrigger(cfg, nil, &staticApartments{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCronTrigger_TriggerSweep(t *testing.T) {
	exec := &recordingExecutor{}
	s := startScheduler(t, testConfig(), exec)

	trigger, err := NewCronTrigger(DefaultCronTriggerConfig(), s, &staticApartments{ids: []int64{4, 8, 15}}, zap.NewNop())
	require.NoError(t, err)

	res, err := trigger.TriggerSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Apartments: 3, Submitted: 3}, res)

	waitFor(t, s)
	assert.ElementsMatch(t, []int64{4, 8, 15}, exec.apartments())
	assert.Equal(t, int32(4), exec.calls.Load()) // plus the view refresh
}

func TestCronTrigger_SweepWithoutViewRefresh(t *testing.T) {
	exec := &recordingExecutor{}
	s := startScheduler(t, testConfig(), exec)

	cfg := DefaultCronTriggerConfig()
	cfg.RefreshView = false
	trigger, err := NewCronTrigger(cfg, s, &staticApartments{ids: []int64{1}}, zap.NewNop())
	require.NoError(t, err)

	_, err = trigger.TriggerSweep(context.Background())
	require.NoError(t, err)
	waitFor(t, s)
	assert.Equal(t, int32(1), exec.calls.Load())
}

func TestCronTrigger_ListFailure(t *testing.T) {
	s := startScheduler(t, testConfig(), &recordingExecutor{})
	trigger, err := NewCronTrigger(DefaultCronTriggerConfig(), s, &staticApartments{err: errors.New("db down")}, zap.NewNop())
	require.NoError(t, err)

	_, err = trigger.TriggerSweep(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestCronTrigger_CountsRejectedJobs(t *testing.T) {
	s, err := NewScheduler(testConfig(), &recordingExecutor{}, zap.NewNop())
	require.NoError(t, err) // never started

	trigger, err := NewCronTrigger(DefaultCronTriggerConfig(), s, &staticApartments{ids: []int64{1, 2}}, zap.NewNop())
	require.NoError(t, err)

	res, err := trigger.TriggerSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rejected)
	assert.Zero(t, res.Submitted)
}

func TestCronTrigger_SingleSweepAtATime(t *testing.T) {
	s := startScheduler(t, testConfig(), &recordingExecutor{})
	provider := &staticApartments{ids: []int64{1}, block: make(chan struct{})}
	trigger, err := NewCronTrigger(DefaultCronTriggerConfig(), s, provider, zap.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := trigger.TriggerSweep(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return trigger.sweeping.Load() }, time.Second, time.Millisecond)
	_, err = trigger.TriggerSweep(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)

	close(provider.block)
	assert.NoError(t, <-done)
}

func TestCronTrigger_StartStop(t *testing.T) {
	s := startScheduler(t, testConfig(), &recordingExecutor{})
	trigger, err := NewCronTrigger(DefaultCronTriggerConfig(), s, &staticApartments{}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	assert.False(t, trigger.NextRun().IsZero())

	require.NoError(t, trigger.Stop(context.Background()))
	require.NoError(t, trigger.Stop(context.Background()))
}
