package tui

import (
	"sync"

	"ethiostartup.com/advisor/internal/sidebar"
)

// page is the terminal screen as seen by the sidebar controller. Mouse presses
// and key presses from the bubbletea loop are fanned out to its observers, and
// its scroll lock freezes the main viewport.
type page struct {
	mu sync.Mutex

	cols        int
	cellWidthPx int

	// Sidebar geometry from the last render, in cells.
	sidebarVisible bool
	sidebarTop     int
	sidebarCols    int

	scrollLocked bool

	nextID   int
	pointers []pointerObserver
	keys     []keyObserver
}

type pointerObserver struct {
	id int
	fn func(sidebar.PointerEvent)
}

type keyObserver struct {
	id int
	fn func(sidebar.KeyEvent)
}

var (
	_ sidebar.Document = (*page)(nil)
	_ sidebar.Region   = (*page)(nil)
)

func newPage(cellWidthPx int) *page {
	if cellWidthPx <= 0 {
		cellWidthPx = 8
	}
	return &page{cellWidthPx: cellWidthPx}
}

func (p *page) OnPointerDown(fn func(sidebar.PointerEvent)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.pointers = append(p.pointers, pointerObserver{id: id, fn: fn})
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, o := range p.pointers {
			if o.id == id {
				p.pointers = append(p.pointers[:i], p.pointers[i+1:]...)
				return
			}
		}
	}
}

func (p *page) OnKeyDown(fn func(sidebar.KeyEvent)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.keys = append(p.keys, keyObserver{id: id, fn: fn})
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, o := range p.keys {
			if o.id == id {
				p.keys = append(p.keys[:i], p.keys[i+1:]...)
				return
			}
		}
	}
}

func (p *page) SetScrollLocked(locked bool) {
	p.mu.Lock()
	p.scrollLocked = locked
	p.mu.Unlock()
}

func (p *page) ScrollLocked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollLocked
}

// ViewportWidth converts terminal columns to logical pixels.
func (p *page) ViewportWidth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cols * p.cellWidthPx
}

func (p *page) Layout() sidebar.Layout {
	return sidebar.LayoutFor(p.ViewportWidth())
}

func (p *page) setColumns(cols int) {
	if cols < 0 {
		cols = 0
	}
	p.mu.Lock()
	p.cols = cols
	p.mu.Unlock()
}

func (p *page) setSidebarBounds(visible bool, top, cols int) {
	p.mu.Lock()
	p.sidebarVisible = visible
	p.sidebarTop = top
	p.sidebarCols = cols
	p.mu.Unlock()
}

// Contains reports whether a press landed on the rendered sidebar panel.
func (p *page) Contains(ev sidebar.PointerEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sidebarVisible && ev.X >= 0 && ev.X < p.sidebarCols && ev.Y >= p.sidebarTop
}

func (p *page) observerCounts() (pointers, keys int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pointers), len(p.keys)
}

// Observers run outside the lock so they can unsubscribe themselves.
func (p *page) dispatchPointer(ev sidebar.PointerEvent) {
	p.mu.Lock()
	fns := make([]func(sidebar.PointerEvent), len(p.pointers))
	for i, o := range p.pointers {
		fns[i] = o.fn
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (p *page) dispatchKey(ev sidebar.KeyEvent) {
	p.mu.Lock()
	fns := make([]func(sidebar.KeyEvent), len(p.keys))
	for i, o := range p.keys {
		fns[i] = o.fn
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
