package ws

import (
	"golang.org/x/text/unicode/norm"
)

func init() {
	register("keypress", func() Event { return &KeyPress{} })
	register("type", func() Event { return &TypeText{} })
}

type KeyPress struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
}

func (e *KeyPress) Execute(b *Broker, current ClientInfo) error {
	if !controlSender(b, current, "keypress") {
		return nil
	}
	injected(b.injector.KeyTap(e.Key, e.Modifiers), "keypress")
	return nil
}

type TypeText struct {
	Text string `json:"text"`
}

func (e *TypeText) Execute(b *Broker, current ClientInfo) error {
	if !controlSender(b, current, "type") {
		return nil
	}
	// normalize before injection so composed characters from the viewer's
	// browser arrive as single code points
	injected(b.injector.TypeText(norm.NFC.String(e.Text)), "type")
	return nil
}
