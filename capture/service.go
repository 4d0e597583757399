// Package capture defines the contract for the screen capture collaborator.
// Implementations live outside this module and are installed via SetBackend.
package capture

import "context"

// Service produces compressed screen frames.
type Service interface {
	// Frame returns one compressed frame, or a nil slice when no frame is
	// available this cycle. Transient failures are reported as errors and
	// simply skip the cycle.
	Frame(ctx context.Context) ([]byte, error)
	// ScreenDimensions returns the captured screen size in device pixels.
	ScreenDimensions() (width, height int)
}

var backend Service = Noop{}

// SetBackend installs the capture implementation. Must be called before
// the streamer starts.
func SetBackend(s Service) {
	backend = s
}

func Backend() Service {
	return backend
}

// Noop is the fallback backend; it never produces a frame.
type Noop struct{}

func (Noop) Frame(context.Context) ([]byte, error) { return nil, nil }

func (Noop) ScreenDimensions() (int, int) { return 0, 0 }
