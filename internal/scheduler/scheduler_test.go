package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateSpec(t *testing.T) {
	for _, spec := range []string{"@every 30s", "*/5 * * * *", "0 3 * * *", "*/10 * * * * *", "@daily"} {
		assert.NoError(t, ValidateSpec(spec), spec)
	}
	for _, spec := range []string{"", "every 30s", "61 * * * *"} {
		assert.Error(t, ValidateSpec(spec), spec)
	}
}

func TestCron_RegisterInvalid(t *testing.T) {
	c := New(time.UTC, testLogger())

	_, err := c.Register("not a spec", func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register trigger")
}

func TestCron_FiresAndCancels(t *testing.T) {
	c := New(nil, testLogger())
	var calls atomic.Int32

	id, err := c.Register("@every 1s", func() { calls.Add(1) })
	require.NoError(t, err)

	c.Start()
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	c.Cancel(id)
	fired := calls.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), fired+1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, c.Stop(ctx))
}

func TestCron_RecoversPanics(t *testing.T) {
	c := New(time.UTC, testLogger())
	var after atomic.Bool

	_, err := c.Register("@every 1s", func() { panic("boom") })
	require.NoError(t, err)
	_, err = c.Register("@every 1s", func() { after.Store(true) })
	require.NoError(t, err)

	c.Start()
	defer func() { _ = c.Stop(context.Background()) }()

	assert.Eventually(t, after.Load, 3*time.Second, 50*time.Millisecond)
}
