package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"fxvps/platform/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
	res   service.SweepResult
	err   error
}

func (c *countingSweeper) Sweep(ctx context.Context) (service.SweepResult, error) {
	c.calls.Add(1)
	return c.res, c.err
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := New("every now and then", &countingSweeper{}, quietLogger())
	require.Error(t, err)
}

func TestRunSweep_Logs(t *testing.T) {
	log, hook := test.NewNullLogger()

	sw := &countingSweeper{res: service.SweepResult{Restarted: 2, Expired: 1}}
	s, err := New("@every 1m", sw, log)
	require.NoError(t, err)

	s.runSweep()
	assert.Equal(t, int32(1), sw.calls.Load())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "vps sweep", hook.LastEntry().Message)
	assert.Equal(t, 2, hook.LastEntry().Data["restarted"])

	hook.Reset()
	sw.err = errors.New("db down")
	s.runSweep()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	// Idle sweeps stay quiet.
	hook.Reset()
	sw.err = nil
	sw.res = service.SweepResult{}
	s.runSweep()
	assert.Nil(t, hook.LastEntry())
}

func TestStartStop(t *testing.T) {
	sw := &countingSweeper{}
	s, err := New("@every 1s", sw, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	assert.Eventually(t, func() bool { return sw.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, s.Stop(stopCtx))
}
