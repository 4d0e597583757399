package ws

import (
	"github.com/rs/zerolog/log"
)

func init() {
	register("mousemove", func() Event { return &MouseMove{} })
	register("click", func() Event { return &Click{} })
	register("mousedown", func() Event { return &MouseDown{} })
	register("mouseup", func() Event { return &MouseUp{} })
	register("scroll", func() Event { return &Scroll{} })
}

// Pointer control commands are executed against the local input backend
// and never relayed to the host transport; the host's browser-side peer
// cannot inject OS input. Coordinates arrive normalized to [0,1]x[0,1]
// relative to the viewer's rendering surface.

// controlSender verifies that the event comes from a registered viewer.
func controlSender(b *Broker, current ClientInfo, kind string) bool {
	sender, ok := b.registry.Lookup(current.ID)
	if !ok || sender.Role != RoleViewer {
		log.Debug().Str("id", current.ID.String()).Str("type", kind).Msg("control from non-viewer dropped")
		return false
	}
	return true
}

// injected logs a failed injection; the command is abandoned, the session
// continues.
func injected(err error, kind string) {
	if err != nil {
		log.Warn().Err(err).Str("type", kind).Msg("Input injection failed")
	}
}

func clampNorm(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

type MouseMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (e *MouseMove) Execute(b *Broker, current ClientInfo) error {
	if !controlSender(b, current, "mousemove") {
		return nil
	}
	injected(b.injector.MoveTo(clampNorm(e.X), clampNorm(e.Y)), "mousemove")
	return nil
}

type Click struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button"`
	Double bool    `json:"double"`
}

func (e *Click) Execute(b *Broker, current ClientInfo) error {
	if !controlSender(b, current, "click") {
		return nil
	}
	injected(b.injector.Click(clampNorm(e.X), clampNorm(e.Y), e.Button, e.Double), "click")
	return nil
}

type MouseDown struct {
	Button string `json:"button"`
}

func (e *MouseDown) Execute(b *Broker, current ClientInfo) error {
	if !controlSender(b, current, "mousedown") {
		return nil
	}
	injected(b.injector.ButtonDown(e.Button), "mousedown")
	return nil
}

type MouseUp struct {
	Button string `json:"button"`
}

func (e *MouseUp) Execute(b *Broker, current ClientInfo) error {
	if !controlSender(b, current, "mouseup") {
		return nil
	}
	injected(b.injector.ButtonUp(e.Button), "mouseup")
	return nil
}

type Scroll struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (e *Scroll) Execute(b *Broker, current ClientInfo) error {
	if !controlSender(b, current, "scroll") {
		return nil
	}
	injected(b.injector.Scroll(e.DX, e.DY), "scroll")
	return nil
}
