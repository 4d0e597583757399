// Package stream owns the frame pacing loop: while at least one viewer is
// connected it periodically pulls a frame from the capture collaborator
// and hands it to the broadcaster.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/deskrelay/deskrelay/capture"
	"github.com/rs/zerolog/log"
)

// Broadcaster fans a frame out to all connected viewers and returns the
// number of viewers it was delivered to.
type Broadcaster interface {
	BroadcastFrame(payload []byte) int
}

// Streamer is Idle until the first viewer registers and returns to Idle
// when the last one leaves.
type Streamer struct {
	capture  capture.Service
	sink     Broadcaster
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(svc capture.Service, sink Broadcaster, interval time.Duration) *Streamer {
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return &Streamer{capture: svc, sink: sink, interval: interval}
}

// SetViewerCount transitions the streamer between Idle and Streaming.
// Serialized by the mutex, so a stop racing a newly arriving viewer always
// ends with the loop running.
func (s *Streamer) SetViewerCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 && s.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		go s.run(ctx)
		log.Info().Dur("interval", s.interval).Msg("Streaming started")
	} else if n == 0 && s.cancel != nil {
		s.cancel()
		s.cancel = nil
		log.Info().Msg("Streaming stopped")
	}
}

// Streaming reports whether the pacing loop is running.
func (s *Streamer) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Streamer) run(ctx context.Context) {
	frames := 0
	windowStart := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		cycleStart := time.Now()
		payload, err := s.capture.Frame(ctx)
		if err != nil {
			// transient capture failure, skip this cycle
			log.Debug().Err(err).Msg("Capture failed")
		} else if len(payload) > 0 {
			s.sink.BroadcastFrame(payload)
			frames++
		}

		if elapsed := time.Since(windowStart); elapsed >= time.Second {
			log.Debug().Float64("fps", float64(frames)/elapsed.Seconds()).Msg("Stream rate")
			frames = 0
			windowStart = time.Now()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(nextDelay(s.interval, time.Since(cycleStart))):
		}
	}
}

// nextDelay shrinks the pacing delay by the cycle's processing time but
// never below 1ms, so a slow capture cannot invert the schedule.
func nextDelay(interval, elapsed time.Duration) time.Duration {
	delay := interval - elapsed
	if delay < time.Millisecond {
		return time.Millisecond
	}
	return delay
}
