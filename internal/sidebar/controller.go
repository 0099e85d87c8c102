// Package sidebar implements the open/closed state machine for the advisor
// sidebar, including its outside-press and Escape dismissal and the page
// scroll lock held while it is open.
package sidebar

import (
	"sync"

	"go.uber.org/zap"
)

type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

type Event int

const (
	EventToggle Event = iota
	EventCloseControl
	EventOutsidePointer
	EventEscape
)

func (e Event) String() string {
	switch e {
	case EventToggle:
		return "toggle"
	case EventCloseControl:
		return "close_control"
	case EventOutsidePointer:
		return "outside_pointer"
	case EventEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// transitions lists every state change. Pairs that are absent are no-ops.
var transitions = map[State]map[Event]State{
	Closed: {
		EventToggle: Open,
	},
	Open: {
		EventToggle:         Closed,
		EventCloseControl:   Closed,
		EventOutsidePointer: Closed,
		EventEscape:         Closed,
	},
}

type Controller struct {
	doc    Document
	region Region
	logger *zap.Logger

	mu       sync.Mutex
	state    State
	armed    *scope
	disposed bool
}

func New(doc Document, region Region, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{doc: doc, region: region, logger: logger.Named("sidebar")}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsOpen() bool {
	return c.State() == Open
}

// Toggle is the menu control.
func (c *Controller) Toggle() { c.fire(EventToggle) }

// Close is the dedicated close control.
func (c *Controller) Close() { c.fire(EventCloseControl) }

// Dispose releases the page resources on teardown, whatever state the
// controller is in. Further events are ignored.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.armed != nil {
		c.armed.release()
		c.armed = nil
	}
	c.state = Closed
	c.disposed = true
}

func (c *Controller) fire(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}

	next, ok := transitions[c.state][ev]
	if !ok || next == c.state {
		return
	}

	prev := c.state
	if prev == Open && c.armed != nil {
		c.armed.release()
		c.armed = nil
	}
	c.state = next
	if next == Open {
		c.armed = c.arm()
	}

	c.logger.Debug("sidebar transition",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.Stringer("event", ev),
	)
}

// arm subscribes the dismissal observers and locks page scroll. The returned
// scope undoes all of it exactly once.
func (c *Controller) arm() *scope {
	s := &scope{}
	s.add(c.doc.OnPointerDown(c.onPointerDown))
	s.add(c.doc.OnKeyDown(c.onKeyDown))
	c.doc.SetScrollLocked(true)
	s.add(func() { c.doc.SetScrollLocked(false) })
	return s
}

func (c *Controller) onPointerDown(ev PointerEvent) {
	// Width is read per event; a resize between presses changes the outcome.
	if LayoutFor(c.doc.ViewportWidth()) != Narrow {
		return
	}
	if c.region != nil && c.region.Contains(ev) {
		return
	}
	c.fire(EventOutsidePointer)
}

func (c *Controller) onKeyDown(ev KeyEvent) {
	if ev.Key == KeyEscape {
		c.fire(EventEscape)
	}
}

type scope struct {
	once     sync.Once
	releases []func()
}

func (s *scope) add(fn func()) {
	if fn != nil {
		s.releases = append(s.releases, fn)
	}
}

func (s *scope) release() {
	s.once.Do(func() {
		for i := len(s.releases) - 1; i >= 0; i-- {
			s.releases[i]()
		}
	})
}
