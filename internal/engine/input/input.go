// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a host event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

var eventNames = [...]string{
	EventNone:         "none",
	EventQuit:         "quit",
	EventWindowResize: "resize",
	EventKeyDown:      "keydown",
	EventKeyUp:        "keyup",
	EventMouseMove:    "mousemove",
	EventMouseDown:    "mousedown",
	EventMouseUp:      "mouseup",
	EventMouseWheel:   "wheel",
}

func (t EventType) String() string {
	if t >= 0 && int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Mod is a set of held modifier keys.
type Mod uint8

const (
	ModShift Mod = 1 << iota
	ModCtrl
	ModAlt
	// ModMeta is Cmd on macOS and the Windows key elsewhere.
	ModMeta
)

// Mouse buttons, numbered as SDL reports them.
const (
	ButtonLeft   = sdl.BUTTON_LEFT
	ButtonMiddle = sdl.BUTTON_MIDDLE
	ButtonRight  = sdl.BUTTON_RIGHT
)

// Keys the sketch binds.
const (
	KeySpace  = sdl.SCANCODE_SPACE
	KeyEscape = sdl.SCANCODE_ESCAPE
	KeyD      = sdl.SCANCODE_D
	KeyO      = sdl.SCANCODE_O
	KeyLeft   = sdl.SCANCODE_LEFT
	KeyRight  = sdl.SCANCODE_RIGHT
	KeyUp     = sdl.SCANCODE_UP
	KeyDown   = sdl.SCANCODE_DOWN
	KeyF12    = sdl.SCANCODE_F12
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Mod    Mod
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	RelX   int
	RelY   int
	Button uint8
	WheelY float32
}

// Ctrl reports whether a control key was held.
func (e Event) Ctrl() bool { return e.Mod&ModCtrl != 0 }

// Source produces the events observed since the previous call.
type Source interface {
	Poll() []Event
}

// Input pumps the SDL event queue.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them.
// Returns true if the window should close.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			ev := Event{
				Key:    e.Keysym.Scancode,
				Mod:    convertMod(e.Keysym.Mod),
				Repeat: e.Repeat != 0,
			}
			if e.Type == sdl.KEYDOWN {
				ev.Type = EventKeyDown
			} else {
				ev.Type = EventKeyUp
			}
			i.events = append(i.events, ev)

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				RelX:   int(e.XRel),
				RelY:   int(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			ev := Event{
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				ev.Type = EventMouseDown
			} else {
				ev.Type = EventMouseUp
			}
			i.events = append(i.events, ev)

		case *sdl.MouseWheelEvent:
			y := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				y = -y
			}
			i.events = append(i.events, Event{Type: EventMouseWheel, WheelY: y})
		}
	}

	return quit
}

// Poll runs Update and returns its events.
func (i *Input) Poll() []Event {
	i.Update()
	return i.events
}

func convertMod(m uint16) Mod {
	var mod Mod
	if m&sdl.KMOD_SHIFT != 0 {
		mod |= ModShift
	}
	if m&sdl.KMOD_CTRL != 0 {
		mod |= ModCtrl
	}
	if m&sdl.KMOD_ALT != 0 {
		mod |= ModAlt
	}
	if m&sdl.KMOD_GUI != 0 {
		mod |= ModMeta
	}
	return mod
}
