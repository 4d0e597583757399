package stream

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCapture struct {
	calls atomic.Int64
	fail  atomic.Bool
}

func (f *fakeCapture) Frame(context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, assert.AnError
	}
	return []byte{0x42}, nil
}

func (f *fakeCapture) ScreenDimensions() (int, int) { return 1920, 1080 }

type fakeSink struct {
	frames atomic.Int64
}

func (f *fakeSink) BroadcastFrame([]byte) int {
	f.frames.Add(1)
	return 1
}

func TestIdleNeverCaptures(t *testing.T) {
	cap := &fakeCapture{}
	New(cap, &fakeSink{}, 2*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 0, cap.calls.Load())
}

func TestStartsOnFirstViewerStopsOnLast(t *testing.T) {
	cap := &fakeCapture{}
	sink := &fakeSink{}
	s := New(cap, sink, 2*time.Millisecond)

	s.SetViewerCount(1)
	assert.True(t, s.Streaming())
	assert.Eventually(t, func() bool { return sink.frames.Load() > 0 }, time.Second, 5*time.Millisecond)

	s.SetViewerCount(2)
	assert.True(t, s.Streaming())

	s.SetViewerCount(0)
	assert.False(t, s.Streaming())

	// the loop winds down within one pacing interval
	time.Sleep(20 * time.Millisecond)
	stopped := sink.frames.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, sink.frames.Load())
}

func TestRestartAfterStop(t *testing.T) {
	cap := &fakeCapture{}
	sink := &fakeSink{}
	s := New(cap, sink, 2*time.Millisecond)

	s.SetViewerCount(1)
	s.SetViewerCount(0)
	s.SetViewerCount(1)
	assert.True(t, s.Streaming())

	assert.Eventually(t, func() bool { return sink.frames.Load() > 0 }, time.Second, 5*time.Millisecond)
	s.SetViewerCount(0)
}

func TestCaptureFailureSkipsCycle(t *testing.T) {
	cap := &fakeCapture{}
	cap.fail.Store(true)
	sink := &fakeSink{}
	s := New(cap, sink, 2*time.Millisecond)

	s.SetViewerCount(1)
	assert.Eventually(t, func() bool { return cap.calls.Load() > 3 }, time.Second, 5*time.Millisecond)
	// failures skip the broadcast but never stop the loop
	assert.EqualValues(t, 0, sink.frames.Load())
	assert.True(t, s.Streaming())

	cap.fail.Store(false)
	assert.Eventually(t, func() bool { return sink.frames.Load() > 0 }, time.Second, 5*time.Millisecond)
	s.SetViewerCount(0)
}

func TestNextDelay(t *testing.T) {
	interval := 33 * time.Millisecond

	assert.Equal(t, interval, nextDelay(interval, 0))
	assert.Equal(t, 13*time.Millisecond, nextDelay(interval, 20*time.Millisecond))
	// slow cycles shrink the delay but never below 1ms
	assert.Equal(t, time.Millisecond, nextDelay(interval, 33*time.Millisecond))
	assert.Equal(t, time.Millisecond, nextDelay(interval, time.Second))
}
