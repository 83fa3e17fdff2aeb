// Package actions builds W3C WebDriver action sequences and sends them to a
// session.
package actions

import (
	"time"

	"github.com/tebeka/selenium"
)

// Pointer kinds.
const (
	Mouse = "mouse"
	Touch = "touch"
	Pen   = "pen"
)

// Button identifies a pointer button.
type Button int

// Pointer buttons.
const (
	LeftButton   Button = 0
	MiddleButton Button = 1
	RightButton  Button = 2
)

// DefaultMoveDuration is the duration of a pointer move when none is given.
const DefaultMoveDuration = 250 * time.Millisecond

// Action is a single encoded input action.
type Action map[string]interface{}

// Source is an input source with its queued actions.
type Source interface {
	ID() string
	Actions() []Action
	Encode() map[string]interface{}
}

// Pointer queues actions of a pointer input source.
type Pointer struct {
	id      string
	kind    string
	actions []Action
}

// NewPointer returns a pointer source of the given kind, one of Mouse, Touch
// or Pen.
func NewPointer(id, kind string) *Pointer {
	switch kind {
	case Mouse, Touch, Pen:
	default:
		kind = Mouse
	}
	return &Pointer{id: id, kind: kind}
}

// ID returns the source id.
func (p *Pointer) ID() string { return p.id }

// Kind returns the pointer type.
func (p *Pointer) Kind() string { return p.kind }

// Actions returns the queued actions.
func (p *Pointer) Actions() []Action { return p.actions }

func (p *Pointer) add(a Action) *Pointer {
	p.actions = append(p.actions, a)
	return p
}

func millis(d time.Duration) int64 { return d.Milliseconds() }

func (p *Pointer) move(d time.Duration, x, y int, origin interface{}) *Pointer {
	return p.add(Action{
		"type":     "pointerMove",
		"duration": millis(d),
		"x":        x,
		"y":        y,
		"origin":   origin,
	})
}

// MoveTo moves the pointer to the center of el, offset by x and y.
func (p *Pointer) MoveTo(el selenium.WebElement, x, y int, d time.Duration) *Pointer {
	return p.move(d, x, y, el)
}

// MoveBy moves the pointer relative to its current position.
func (p *Pointer) MoveBy(x, y int, d time.Duration) *Pointer {
	return p.move(d, x, y, "pointer")
}

// MoveToLocation moves the pointer to a viewport position.
func (p *Pointer) MoveToLocation(x, y int, d time.Duration) *Pointer {
	return p.move(d, x, y, "viewport")
}

// Down presses button.
func (p *Pointer) Down(button Button) *Pointer {
	return p.add(Action{"type": "pointerDown", "button": int(button)})
}

// Up releases button.
func (p *Pointer) Up(button Button) *Pointer {
	return p.add(Action{"type": "pointerUp", "button": int(button)})
}

// Click presses and releases button.
func (p *Pointer) Click(button Button) *Pointer {
	return p.Down(button).Up(button)
}

// DoubleClick clicks the left button twice.
func (p *Pointer) DoubleClick() *Pointer {
	return p.Click(LeftButton).Click(LeftButton)
}

// Pause waits for d.
func (p *Pointer) Pause(d time.Duration) *Pointer {
	return p.add(Action{"type": "pause", "duration": millis(d)})
}

// Encode returns the source as sent to the server.
func (p *Pointer) Encode() map[string]interface{} {
	return map[string]interface{}{
		"type":       "pointer",
		"id":         p.id,
		"parameters": map[string]interface{}{"pointerType": p.kind},
		"actions":    p.actions,
	}
}

// Keyboard queues actions of a key input source.
type Keyboard struct {
	id      string
	actions []Action
}

// NewKeyboard returns a key source.
func NewKeyboard(id string) *Keyboard { return &Keyboard{id: id} }

// ID returns the source id.
func (k *Keyboard) ID() string { return k.id }

// Actions returns the queued actions.
func (k *Keyboard) Actions() []Action { return k.actions }

// KeyDown presses key, e.g. selenium.ShiftKey.
func (k *Keyboard) KeyDown(key string) *Keyboard {
	k.actions = append(k.actions, Action{"type": "keyDown", "value": key})
	return k
}

// KeyUp releases key.
func (k *Keyboard) KeyUp(key string) *Keyboard {
	k.actions = append(k.actions, Action{"type": "keyUp", "value": key})
	return k
}

// Type presses and releases every character of text.
func (k *Keyboard) Type(text string) *Keyboard {
	for _, c := range text {
		k.KeyDown(string(c)).KeyUp(string(c))
	}
	return k
}

// Pause waits for d.
func (k *Keyboard) Pause(d time.Duration) *Keyboard {
	k.actions = append(k.actions, Action{"type": "pause", "duration": millis(d)})
	return k
}

// Encode returns the source as sent to the server.
func (k *Keyboard) Encode() map[string]interface{} {
	return map[string]interface{}{
		"type":    "key",
		"id":      k.id,
		"actions": k.actions,
	}
}

// Builder collects the input sources of one Perform call.
type Builder struct {
	sources []Source
}

// New returns a builder over sources.
func New(sources ...Source) *Builder {
	return &Builder{sources: sources}
}

// Add appends a source.
func (b *Builder) Add(s Source) *Builder {
	b.sources = append(b.sources, s)
	return b
}

// Payload returns the body of a perform actions request. Sources without
// actions are left out.
func (b *Builder) Payload() map[string]interface{} {
	encoded := []interface{}{}
	for _, s := range b.sources {
		if len(s.Actions()) == 0 {
			continue
		}
		encoded = append(encoded, s.Encode())
	}
	return map[string]interface{}{"actions": encoded}
}

// DragAndDrop returns the actions that press a pointer on source, hold it,
// move it onto target over d and release it.
func DragAndDrop(kind string, source, target selenium.WebElement, d time.Duration) *Builder {
	p := NewPointer("finger", kind)
	if kind == Mouse {
		p = NewPointer("mouse", kind)
	}
	p.MoveTo(source, 0, 0, 0).
		Down(LeftButton).
		Pause(DefaultMoveDuration).
		MoveTo(target, 0, 0, d).
		Up(LeftButton)
	return New(p)
}

// Hover returns the actions that move a mouse onto el.
func Hover(el selenium.WebElement) *Builder {
	return New(NewPointer("mouse", Mouse).MoveTo(el, 0, 0, DefaultMoveDuration))
}

// ClickOn returns the actions that move a pointer onto el and click button
// count times.
func ClickOn(kind string, el selenium.WebElement, button Button, count int) *Builder {
	p := NewPointer("mouse", kind).MoveTo(el, 0, 0, 0)
	for i := 0; i < count; i++ {
		p.Click(button)
	}
	return New(p)
}
