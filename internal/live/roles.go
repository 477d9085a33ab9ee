package live

import (
	"sync"
	"time"

	"github.com/attanavaid/portfolio/internal/clock"
)

// RoleInterval is how long each hero role stays before the next one.
const RoleInterval = 3 * time.Second

// roleRotator cycles the hero roles on a single timer.
type roleRotator struct {
	mu       sync.Mutex
	clock    clock.Clock
	roles    []string
	index    int
	timer    clock.Timer
	gen      uint64
	closed   bool
	onChange func(index int, role string)
}

func newRoleRotator(c clock.Clock, roles []string, onChange func(int, string)) *roleRotator {
	return &roleRotator{clock: c, roles: roles, onChange: onChange}
}

func (r *roleRotator) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || len(r.roles) < 2 {
		return
	}
	r.armLocked()
}

func (r *roleRotator) armLocked() {
	r.gen++
	gen := r.gen
	r.timer = r.clock.AfterFunc(RoleInterval, func() { r.tick(gen) })
}

func (r *roleRotator) tick(gen uint64) {
	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.index = (r.index + 1) % len(r.roles)
	i, role := r.index, r.roles[r.index]
	r.armLocked()
	r.mu.Unlock()
	r.onChange(i, role)
}

func (r *roleRotator) current() (int, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.roles) == 0 {
		return 0, ""
	}
	return r.index, r.roles[r.index]
}

func (r *roleRotator) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
