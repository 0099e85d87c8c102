package sidebar

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocument records registrations and dispatches events the way a page
// would: observers are copied out before being called.
type fakeDocument struct {
	mu       sync.Mutex
	width    int
	locked   bool
	nextID   int
	pointers map[int]func(PointerEvent)
	keys     map[int]func(KeyEvent)
	lockLog  []bool
}

func newFakeDocument(width int) *fakeDocument {
	return &fakeDocument{
		width:    width,
		pointers: map[int]func(PointerEvent){},
		keys:     map[int]func(KeyEvent){},
	}
}

func (d *fakeDocument) OnPointerDown(fn func(PointerEvent)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.pointers[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.pointers, id)
		d.mu.Unlock()
	}
}

func (d *fakeDocument) OnKeyDown(fn func(KeyEvent)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.keys[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.keys, id)
		d.mu.Unlock()
	}
}

func (d *fakeDocument) SetScrollLocked(locked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locked = locked
	d.lockLog = append(d.lockLog, locked)
}

func (d *fakeDocument) ViewportWidth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width
}

func (d *fakeDocument) resize(width int) {
	d.mu.Lock()
	d.width = width
	d.mu.Unlock()
}

func (d *fakeDocument) pointerDown(ev PointerEvent) {
	d.mu.Lock()
	fns := make([]func(PointerEvent), 0, len(d.pointers))
	for _, fn := range d.pointers {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (d *fakeDocument) keyDown(key string) {
	d.mu.Lock()
	fns := make([]func(KeyEvent), 0, len(d.keys))
	for _, fn := range d.keys {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(KeyEvent{Key: key})
	}
}

func (d *fakeDocument) observers() (pointers, keys int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pointers), len(d.keys)
}

func (d *fakeDocument) scrollLocked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locked
}

// sidebarColumn treats x < 40 as inside the sidebar.
var sidebarColumn = RegionFunc(func(ev PointerEvent) bool { return ev.X < 40 })

func newTestController(width int) (*Controller, *fakeDocument) {
	doc := newFakeDocument(width)
	return New(doc, sidebarColumn, nil), doc
}

func assertInvariant(t *testing.T, c *Controller, doc *fakeDocument) {
	t.Helper()
	open := c.State() == Open
	assert.Equal(t, open, doc.scrollLocked(), "scroll lock must equal open state")
	p, k := doc.observers()
	if open {
		assert.Equal(t, 1, p)
		assert.Equal(t, 1, k)
	} else {
		assert.Zero(t, p)
		assert.Zero(t, k)
	}
}

func TestLayoutFor(t *testing.T) {
	assert.Equal(t, Narrow, LayoutFor(0))
	assert.Equal(t, Narrow, LayoutFor(1023))
	assert.Equal(t, Wide, LayoutFor(1024))
	assert.Equal(t, Wide, LayoutFor(2560))
}

func TestController_StartsClosedAndUnarmed(t *testing.T) {
	c, doc := newTestController(800)
	assert.Equal(t, Closed, c.State())
	assertInvariant(t, c, doc)
}

func TestController_ToggleArmsAndDisarms(t *testing.T) {
	c, doc := newTestController(800)

	c.Toggle()
	assert.True(t, c.IsOpen())
	assertInvariant(t, c, doc)

	c.Toggle()
	assert.False(t, c.IsOpen())
	assertInvariant(t, c, doc)
	assert.Equal(t, []bool{true, false}, doc.lockLog)
}

func TestController_CloseControl(t *testing.T) {
	c, doc := newTestController(1280)

	c.Close()
	assert.Equal(t, Closed, c.State())
	assert.Empty(t, doc.lockLog, "close while closed touches nothing")

	c.Toggle()
	c.Close()
	assert.Equal(t, Closed, c.State())
	assertInvariant(t, c, doc)
}

func TestController_OutsidePointer(t *testing.T) {
	for _, width := range []int{320, 768, 1023} {
		c, doc := newTestController(width)
		c.Toggle()
		doc.pointerDown(PointerEvent{X: 90, Y: 3})
		assert.Equal(t, Closed, c.State(), "width %d", width)
		assertInvariant(t, c, doc)
	}

	for _, width := range []int{1024, 1440, 3840} {
		c, doc := newTestController(width)
		c.Toggle()
		doc.pointerDown(PointerEvent{X: 90, Y: 3})
		assert.Equal(t, Open, c.State(), "width %d", width)
		assertInvariant(t, c, doc)
	}
}

func TestController_PointerInsideSidebarKeepsOpen(t *testing.T) {
	c, doc := newTestController(600)
	c.Toggle()

	doc.pointerDown(PointerEvent{X: 10, Y: 10})

	assert.Equal(t, Open, c.State())
	assertInvariant(t, c, doc)
}

func TestController_WidthReadPerEvent(t *testing.T) {
	c, doc := newTestController(1440)
	c.Toggle()

	doc.pointerDown(PointerEvent{X: 200})
	require.Equal(t, Open, c.State())

	doc.resize(900)
	doc.pointerDown(PointerEvent{X: 200})
	assert.Equal(t, Closed, c.State())
	assertInvariant(t, c, doc)
}

func TestController_Escape(t *testing.T) {
	for _, width := range []int{500, 1600} {
		c, doc := newTestController(width)

		doc.keyDown(KeyEscape)
		assert.Equal(t, Closed, c.State())
		assert.Empty(t, doc.lockLog)

		c.Toggle()
		doc.keyDown("a")
		assert.Equal(t, Open, c.State())

		doc.keyDown(KeyEscape)
		assert.Equal(t, Closed, c.State(), "width %d", width)
		assertInvariant(t, c, doc)
	}
}

func TestController_DisposeReleasesWhileOpen(t *testing.T) {
	c, doc := newTestController(700)
	c.Toggle()
	require.True(t, doc.scrollLocked())

	c.Dispose()

	assert.Equal(t, Closed, c.State())
	assertInvariant(t, c, doc)

	c.Toggle()
	assert.Equal(t, Closed, c.State(), "disposed controller ignores events")
	assertInvariant(t, c, doc)

	assert.NotPanics(t, c.Dispose)
}

func TestController_RepeatedCyclesNeverLeak(t *testing.T) {
	c, doc := newTestController(640)
	for i := 0; i < 50; i++ {
		c.Toggle()
		switch i % 3 {
		case 0:
			doc.keyDown(KeyEscape)
		case 1:
			doc.pointerDown(PointerEvent{X: 300})
		default:
			c.Close()
		}
		assertInvariant(t, c, doc)
	}
}

func TestScope_ReleasesOnceInReverse(t *testing.T) {
	var order []int
	s := &scope{}
	s.add(func() { order = append(order, 1) })
	s.add(nil)
	s.add(func() { order = append(order, 2) })

	s.release()
	s.release()

	assert.Equal(t, []int{2, 1}, order)
}
