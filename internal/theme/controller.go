package theme

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Controller owns the theme preference for one page. It reads the stored
// value once on Mount, persists explicit selections, tracks the OS scheme
// while in system mode, and broadcasts every change.
//
// Subscribers are called synchronously and must not call SetPreference
// from inside the callback.
type Controller struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	storage Storage
	scheme  Scheme
	root    Root
	log     *zap.Logger
	def     Preference

	pref      Preference
	resolved  Resolved
	mounted   bool
	stopWatch func()

	seq  int
	subs map[int]func(State)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for swallowed storage failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithDefault overrides DefaultPreference.
func WithDefault(p Preference) Option {
	return func(c *Controller) {
		if p.Valid() {
			c.def = p
		}
	}
}

// NewController wires a controller. Nothing is read or applied until Mount.
func NewController(storage Storage, scheme Scheme, root Root, opts ...Option) *Controller {
	c := &Controller{
		storage: storage,
		scheme:  scheme,
		root:    root,
		log:     zap.NewNop(),
		def:     DefaultPreference,
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pref = c.def
	c.resolved = Resolve(c.pref, scheme.PrefersDark())
	return c
}

// Mount performs the one-time read of the stored preference and applies it.
// Calling Mount again is a no-op.
func (c *Controller) Mount() {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	c.pref = c.readStored()
	c.mounted = true
	c.syncWatchLocked()
	state := c.recomputeLocked()
	c.root.Apply(state.Resolved)
	c.publishLocked(state)
}

func (c *Controller) readStored() Preference {
	raw, err := c.storage.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Debug("theme storage read failed", zap.Error(err))
		}
		return c.def
	}
	p, err := ParsePreference(raw)
	if err != nil {
		c.log.Debug("ignoring stored theme", zap.String("value", raw))
		return c.def
	}
	return p
}

// Preference returns the current preference.
func (c *Controller) Preference() Preference {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pref
}

// Resolved returns the theme currently shown.
func (c *Controller) Resolved() Resolved {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// State returns preference and resolved theme together.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Preference: c.pref, Resolved: c.resolved}
}

// Mounted reports whether the stored value has been read.
func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// SetPreference updates the preference. Before Mount the change is kept in
// memory only; afterwards it is persisted and applied to the root.
func (c *Controller) SetPreference(p Preference) error {
	if !p.Valid() {
		return ErrInvalidPreference
	}

	c.mu.Lock()
	c.pref = p
	if c.mounted {
		if err := c.storage.Set(StorageKey, string(p)); err != nil {
			c.log.Debug("theme storage write failed", zap.Error(err))
		}
		c.syncWatchLocked()
	}
	state := c.recomputeLocked()
	if c.mounted {
		c.root.Apply(state.Resolved)
	}
	c.publishLocked(state)
	return nil
}

// Toggle switches to the opposite of the resolved theme.
func (c *Controller) Toggle() error {
	return c.SetPreference(Preference(c.Resolved().Opposite()))
}

func (c *Controller) onSchemeChange(bool) {
	c.mu.Lock()
	if c.pref != System || !c.mounted {
		c.mu.Unlock()
		return
	}
	prev := c.resolved
	state := c.recomputeLocked()
	if state.Resolved == prev {
		c.mu.Unlock()
		return
	}
	c.root.Apply(state.Resolved)
	c.publishLocked(state)
}

// syncWatchLocked keeps exactly one scheme listener attached while the
// preference is system, and none otherwise.
func (c *Controller) syncWatchLocked() {
	if c.pref == System {
		if c.stopWatch == nil {
			c.stopWatch = c.scheme.Watch(c.onSchemeChange)
		}
		return
	}
	if c.stopWatch != nil {
		c.stopWatch()
		c.stopWatch = nil
	}
}

func (c *Controller) recomputeLocked() State {
	c.resolved = Resolve(c.pref, c.scheme.PrefersDark())
	return State{Preference: c.pref, Resolved: c.resolved}
}

// Subscribe registers fn for state changes.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
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

// publishLocked snapshots subscribers, releases mu and delivers s. The
// notify lock is taken before mu is released so deliveries keep the order
// of the state changes that produced them.
func (c *Controller) publishLocked(s State) {
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// Close detaches the scheme listener and drops all subscribers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopWatch != nil {
		c.stopWatch()
		c.stopWatch = nil
	}
	c.subs = make(map[int]func(State))
}
