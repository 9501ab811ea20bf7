package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	removed int
	calls   int
}

func (f *fakeSweeper) Sweep() int {
	f.calls++
	return f.removed
}

func TestRunOnce_sumsSweepers(t *testing.T) {
	a := &fakeSweeper{removed: 2}
	b := &fakeSweeper{removed: 3}
	s := New(time.Minute, a, b)

	assert.Equal(t, 5, s.RunOnce())
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestNew_defaultInterval(t *testing.T) {
	s := New(0)
	assert.Equal(t, DefaultInterval, s.interval)
}

func TestStart_noSweepers(t *testing.T) {
	s := New(time.Minute)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestStart_schedulesJob(t *testing.T) {
	s := New(time.Hour, &fakeSweeper{})
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.scheduler.Jobs(), 1)
}
