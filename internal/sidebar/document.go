package sidebar

// NarrowBreakpoint is the viewport width, in logical pixels, below which the
// sidebar behaves as a modal overlay instead of a docked panel.
const NarrowBreakpoint = 1024

// KeyEscape is the key name delivered for the Escape/cancel key.
const KeyEscape = "esc"

type Layout int

const (
	Wide Layout = iota
	Narrow
)

func (l Layout) String() string {
	if l == Narrow {
		return "narrow"
	}
	return "wide"
}

func LayoutFor(width int) Layout {
	if width < NarrowBreakpoint {
		return Narrow
	}
	return Wide
}

// PointerEvent is a pointer press at a position on the page.
type PointerEvent struct {
	X, Y int
}

type KeyEvent struct {
	Key string
}

// Document is the ambient page the sidebar lives on. Observer registrations
// and the scroll lock are page-wide; the sidebar controller is their only
// writer.
type Document interface {
	// OnPointerDown registers fn for every pointer press on the page and
	// returns a function that removes the registration.
	OnPointerDown(fn func(PointerEvent)) (unsubscribe func())
	OnKeyDown(fn func(KeyEvent)) (unsubscribe func())
	SetScrollLocked(locked bool)
	// ViewportWidth is the current width in logical pixels.
	ViewportWidth() int
}

// Region reports whether a pointer event falls inside the sidebar's rendered
// area.
type Region interface {
	Contains(ev PointerEvent) bool
}

type RegionFunc func(ev PointerEvent) bool

func (f RegionFunc) Contains(ev PointerEvent) bool { return f(ev) }
