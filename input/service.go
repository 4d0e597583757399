// Package input defines the contract for the OS input injection
// collaborator. Pointer coordinates are normalized to [0,1]x[0,1]; the
// implementation maps them to device pixels using ScreenDimensions at
// call time, not the viewer's surface size.
package input

import "github.com/rs/zerolog/log"

type Service interface {
	MoveTo(x, y float64) error
	Click(x, y float64, button string, double bool) error
	ButtonDown(button string) error
	ButtonUp(button string) error
	Scroll(dx, dy float64) error
	KeyTap(key string, modifiers []string) error
	TypeText(text string) error
	ScreenDimensions() (width, height int)
}

var backend Service = Noop{}

// SetBackend installs the injection implementation.
func SetBackend(s Service) {
	backend = s
}

func Backend() Service {
	return backend
}

// Noop discards all commands. Used when no injection backend is installed.
type Noop struct{}

func (Noop) MoveTo(x, y float64) error {
	log.Debug().Float64("x", x).Float64("y", y).Msg("no input backend, move dropped")
	return nil
}

func (Noop) Click(float64, float64, string, bool) error { return nil }

func (Noop) ButtonDown(string) error { return nil }

func (Noop) ButtonUp(string) error { return nil }

func (Noop) Scroll(float64, float64) error { return nil }

func (Noop) KeyTap(string, []string) error { return nil }

func (Noop) TypeText(string) error { return nil }

func (Noop) ScreenDimensions() (int, int) { return 0, 0 }
