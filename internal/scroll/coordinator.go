// Package scroll tracks the page scroll position against the section
// layout to pick the active navigation entry and drive parallax offsets.
package scroll

import (
	"errors"
	"sync"
	"time"

	"github.com/attanavaid/portfolio/internal/clock"
)

const (
	// HeaderOffset is added to scrollY when deciding which section is active.
	HeaderOffset = 150.0
	// TopThreshold forces the first section active near the top of the page.
	TopThreshold = 100.0
	// NavOffset is subtracted from a section top when scrolling to it.
	NavOffset = 80.0
	// ScrolledThreshold is where the navigation bar gains its background.
	ScrolledThreshold = 50.0
	// FrameInterval is the coalescing window for recomputation.
	FrameInterval = 16 * time.Millisecond
)

var ErrUnknownSection = errors.New("unknown section")

// Section is one measured page section.
type Section struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Layout is the measured page geometry.
type Layout struct {
	Viewport float64   `json:"viewport"`
	Sections []Section `json:"sections"`
}

// Find returns the section with the given id.
func (l Layout) Find(id string) (Section, bool) {
	for _, s := range l.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// parallaxFactors scale each section's offset into a background shift.
var parallaxFactors = map[string]float64{
	"experience": 0.25,
	"skills":     0.3,
	"projects":   0.3,
	"languages":  0.3,
}

// heroParallax scales scrollY directly for the hero layers.
const heroParallax = 0.5

// View is the derived state published after each frame.
type View struct {
	ScrollY  float64            `json:"scrollY"`
	Active   string             `json:"active"`
	Scrolled bool               `json:"scrolled"`
	Offsets  map[string]float64 `json:"offsets"`
	Parallax map[string]float64 `json:"parallax"`
}

// ActiveSection picks the navigation entry for scrollY. Sections must be in
// page order.
func ActiveSection(sections []Section, scrollY float64) string {
	if len(sections) == 0 {
		return ""
	}
	if scrollY < TopThreshold {
		return sections[0].ID
	}
	for i := len(sections) - 1; i >= 0; i-- {
		if sections[i].Top-HeaderOffset <= scrollY {
			return sections[i].ID
		}
	}
	return sections[0].ID
}

// SectionOffset is the decorative scroll offset for a section.
func SectionOffset(s Section, scrollY, viewport float64) float64 {
	return scrollY - s.Top + viewport
}

// Compute derives the full view for a layout and scroll position.
func Compute(l Layout, scrollY float64) View {
	v := View{
		ScrollY:  scrollY,
		Active:   ActiveSection(l.Sections, scrollY),
		Scrolled: scrollY > ScrolledThreshold,
		Offsets:  make(map[string]float64, len(l.Sections)),
		Parallax: make(map[string]float64, len(l.Sections)),
	}
	for _, s := range l.Sections {
		off := SectionOffset(s, scrollY, l.Viewport)
		v.Offsets[s.ID] = off
		if f, ok := parallaxFactors[s.ID]; ok {
			v.Parallax[s.ID] = off * f
		}
	}
	v.Parallax["hero"] = scrollY * heroParallax
	return v
}

// Coordinator coalesces scroll and layout input into one recomputation per
// frame and publishes the resulting View.
type Coordinator struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	clock    clock.Clock

	layout  Layout
	scrollY float64
	view    View
	frame   clock.Timer
	gen     uint64
	closed  bool

	seq  int
	subs map[int]func(View)
}

// NewCoordinator returns a coordinator with the given initial layout.
func NewCoordinator(c clock.Clock, layout Layout) *Coordinator {
	co := &Coordinator{
		clock:  c,
		layout: layout,
		subs:   make(map[int]func(View)),
	}
	co.view = Compute(layout, 0)
	return co
}

// Observe records a scroll position; the view updates on the next frame.
func (c *Coordinator) Observe(scrollY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrollY = scrollY
	c.scheduleLocked()
}

// Measure records a new layout, e.g. after resize.
func (c *Coordinator) Measure(l Layout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layout = l
	c.scheduleLocked()
}

func (c *Coordinator) scheduleLocked() {
	if c.closed || c.frame != nil {
		return
	}
	c.gen++
	gen := c.gen
	c.frame = c.clock.AfterFunc(FrameInterval, func() { c.runFrame(gen) })
}

func (c *Coordinator) runFrame(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.frame = nil
	c.recomputeAndPublishLocked()
}

// Flush cancels any pending frame and recomputes immediately.
func (c *Coordinator) Flush() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.frame != nil {
		c.frame.Stop()
		c.frame = nil
		c.gen++
	}
	c.recomputeAndPublishLocked()
}

func (c *Coordinator) recomputeAndPublishLocked() {
	c.view = Compute(c.layout, c.scrollY)
	v := c.view
	fns := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// View returns the last computed view.
func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Layout returns the current layout.
func (c *Coordinator) Layout() Layout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout
}

// ScrollTarget is where smooth-scrolling to id should stop.
func (c *Coordinator) ScrollTarget(id string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.layout.Find(id)
	if !ok {
		return 0, ErrUnknownSection
	}
	top := s.Top - NavOffset
	if top < 0 {
		top = 0
	}
	return top, nil
}

// Subscribe registers fn for new views.
func (c *Coordinator) Subscribe(fn func(View)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	id := c.seq
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close cancels the pending frame and drops subscribers.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.frame != nil {
		c.frame.Stop()
		c.frame = nil
	}
	c.subs = make(map[int]func(View))
}
