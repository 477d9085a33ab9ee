// Package typewriter drives the character-by-character reveal of the
// languages showcase as an explicit state machine.
package typewriter

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/attanavaid/portfolio/internal/clock"
)

// State names a sequencer state.
type State string

const (
	Idle                    State = "idle"
	TypingPrimary           State = "typing-primary"
	PausedBeforeTranslation State = "paused-before-translation"
	TypingTranslation       State = "typing-translation"
	PausedBeforeAdvance     State = "paused-before-advance"
	ManualHold              State = "manual-hold"
)

const (
	TypeInterval       = 60 * time.Millisecond
	TranslationPause   = 1500 * time.Millisecond
	AdvancePause       = 2500 * time.Millisecond
	ManualHoldDuration = 5 * time.Second
)

var ErrIndexOutOfRange = errors.New("entry index out of range")

// Entry is one showcased phrase.
type Entry struct {
	Text        string
	Translation string
}

// Snapshot is the visible state of the sequencer.
type Snapshot struct {
	Index int   `json:"index"`
	State State `json:"state"`
	// RenderKey changes whenever a new entry starts rendering so the client
	// can restart its transition.
	RenderKey   int    `json:"renderKey"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Manual      bool   `json:"manual"`
}

// Sequencer cycles through entries. All timing goes through a single timer
// handle: every transition stops the current timer before arming the next,
// and a generation counter discards callbacks that fired concurrently with
// a cancellation.
type Sequencer struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	clock    clock.Clock
	entries  [][2][]rune

	state       State
	index       int
	renderKey   int
	primary     int
	translation int
	manual      bool

	timer  clock.Timer
	gen    uint64
	closed bool

	seq  int
	subs map[int]func(Snapshot)
}

// New returns an idle sequencer over entries.
func New(c clock.Clock, entries []Entry) *Sequencer {
	s := &Sequencer{
		clock: c,
		state: Idle,
		subs:  make(map[int]func(Snapshot)),
	}
	for _, e := range entries {
		s.entries = append(s.entries, [2][]rune{[]rune(e.Text), []rune(e.Translation)})
	}
	return s
}

// Len returns the number of entries.
func (s *Sequencer) Len() int { return len(s.entries) }

// Start begins auto-cycling from the first entry. It does nothing when
// there are no entries, or when the sequencer is already running or closed.
func (s *Sequencer) Start() {
	s.mu.Lock()
	if s.closed || s.state != Idle || len(s.entries) == 0 {
		s.mu.Unlock()
		return
	}
	s.beginLocked(0)
	s.publishLocked()
}

// Select shows entry i immediately and holds it for ManualHoldDuration,
// after which auto-cycling resumes with the following entry.
func (s *Sequencer) Select(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.entries) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.index = i
	s.renderKey++
	s.state = ManualHold
	s.manual = true
	s.primary = len(s.entries[i][0])
	s.translation = len(s.entries[i][1])
	s.armLocked(ManualHoldDuration, func() {
		s.beginLocked((i + 1) % len(s.entries))
	})
	s.publishLocked()
	return nil
}

// beginLocked starts auto-typing entry i from an empty buffer.
func (s *Sequencer) beginLocked(i int) {
	s.index = i
	s.renderKey++
	s.state = TypingPrimary
	s.manual = false
	s.primary = 0
	s.translation = 0
	s.armLocked(TypeInterval, s.stepLocked)
}

// stepLocked is the transition taken when the armed timer fires.
func (s *Sequencer) stepLocked() {
	e := s.entries[s.index]
	switch s.state {
	case TypingPrimary:
		if s.primary < len(e[0]) {
			s.primary++
		}
		if s.primary < len(e[0]) {
			s.armLocked(TypeInterval, s.stepLocked)
			return
		}
		if len(e[1]) == 0 {
			s.state = PausedBeforeAdvance
			s.armLocked(AdvancePause, s.stepLocked)
			return
		}
		s.state = PausedBeforeTranslation
		s.armLocked(TranslationPause, s.stepLocked)
	case PausedBeforeTranslation:
		s.state = TypingTranslation
		s.armLocked(TypeInterval, s.stepLocked)
	case TypingTranslation:
		s.translation++
		if s.translation < len(e[1]) {
			s.armLocked(TypeInterval, s.stepLocked)
			return
		}
		s.state = PausedBeforeAdvance
		s.armLocked(AdvancePause, s.stepLocked)
	case PausedBeforeAdvance:
		s.beginLocked((s.index + 1) % len(s.entries))
	}
}

// armLocked replaces the single timer.
func (s *Sequencer) armLocked(d time.Duration, next func()) {
	s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() { s.fire(gen, next) })
}

func (s *Sequencer) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Sequencer) fire(gen uint64, next func()) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	next()
	s.publishLocked()
}

// Snapshot returns the visible state.
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Sequencer) snapshotLocked() Snapshot {
	snap := Snapshot{
		Index:     s.index,
		State:     s.state,
		RenderKey: s.renderKey,
		Manual:    s.manual,
	}
	if len(s.entries) > 0 {
		e := s.entries[s.index]
		snap.Text = string(e[0][:s.primary])
		snap.Translation = string(e[1][:s.translation])
	}
	return snap
}

// Subscribe registers fn for every visible change.
func (s *Sequencer) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := s.seq
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Sequencer) publishLocked() {
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Close stops the timer and drops subscribers. The sequencer cannot be
// restarted.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.stopLocked()
	s.subs = make(map[int]func(Snapshot))
}
