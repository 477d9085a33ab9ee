package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/attanavaid/portfolio/internal/clock"
)

// Status is the form's submit state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

const (
	// MailtoDismiss is how long the success banner stays after opening the
	// mail client.
	MailtoDismiss = 3 * time.Second
	// RelayDismiss is how long relay success and error banners stay.
	RelayDismiss = 5 * time.Second
)

var (
	ErrBusy         = errors.New("a submission is already in progress")
	ErrUnknownField = errors.New("unknown form field")
)

// Messages shown to the visitor.
const (
	SuccessText     = "Thank you for your message! I'll get back to you soon."
	ErrorText       = "Sorry, there was an error sending your message. Please try again later."
	RateLimitedText = "You're sending messages too quickly. Please wait a moment and try again."
)

// Submitter is the delivery side of the form.
type Submitter interface {
	Submit(ctx context.Context, key string, m Message) (Result, error)
}

// FormState is what the form renders.
type FormState struct {
	Status    Status  `json:"status"`
	Fields    Message `json:"fields"`
	Channel   Channel `json:"channel,omitempty"`
	MailtoURL string  `json:"mailtoUrl,omitempty"`
	Notice    string  `json:"notice,omitempty"`
}

// Form is the per-page contact form state machine:
// Idle -> Submitting -> Success|Error -> Idle after a dismiss delay.
type Form struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	clock     clock.Clock
	submitter Submitter
	key       string

	state  FormState
	timer  clock.Timer
	gen    uint64
	closed bool

	seq  int
	subs map[int]func(FormState)
}

// NewForm returns an idle form. key identifies the visitor for rate limits.
func NewForm(c clock.Clock, s Submitter, key string) *Form {
	return &Form{
		clock:     c,
		submitter: s,
		key:       key,
		state:     FormState{Status: StatusIdle},
		subs:      make(map[int]func(FormState)),
	}
}

// State returns the current form state.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetField updates one input. Typing does not dismiss a banner.
func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	switch name {
	case "name":
		f.state.Fields.Name = value
	case "email":
		f.state.Fields.Email = value
	case "subject":
		f.state.Fields.Subject = value
	case "message":
		f.state.Fields.Message = value
	default:
		f.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.publishLocked()
	return nil
}

// Submit sends the current fields. It blocks until delivery finishes and
// returns ErrBusy if a submission is already running. Delivery failures
// are reported through the state, not the return value.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	if f.state.Status == StatusSubmitting {
		f.mu.Unlock()
		return ErrBusy
	}
	f.stopLocked()
	f.state.Status = StatusSubmitting
	f.state.Notice = ""
	f.state.MailtoURL = ""
	fields := f.state.Fields
	f.publishLocked()

	res, err := f.submitter.Submit(ctx, f.key, fields)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.state.Channel = res.Channel
	dismiss := RelayDismiss
	switch {
	case err != nil:
		f.state.Status = StatusError
		f.state.Notice = Notice(err)
	default:
		f.state.Status = StatusSuccess
		f.state.Fields = Message{}
		f.state.MailtoURL = res.MailtoURL
		f.state.Notice = SuccessText
		if res.Channel == ChannelMailto {
			dismiss = MailtoDismiss
		}
	}
	f.armDismissLocked(dismiss)
	f.publishLocked()
	return nil
}

// Notice is the visitor-facing text for a failed submission.
func Notice(err error) string {
	switch {
	case errors.Is(err, ErrInvalidMessage):
		return "Please check the form: " + strings.TrimPrefix(err.Error(), ErrInvalidMessage.Error()+": ")
	case errors.Is(err, ErrRateLimited):
		return RateLimitedText
	}
	return ErrorText
}

func (f *Form) armDismissLocked(d time.Duration) {
	f.stopLocked()
	f.gen++
	gen := f.gen
	f.timer = f.clock.AfterFunc(d, func() { f.dismiss(gen) })
}

func (f *Form) stopLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *Form) dismiss(gen uint64) {
	f.mu.Lock()
	if f.closed || gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	f.state.Status = StatusIdle
	f.state.Notice = ""
	f.state.MailtoURL = ""
	f.publishLocked()
}

// Subscribe registers fn for state changes.
func (f *Form) Subscribe(fn func(FormState)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := f.seq
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *Form) publishLocked() {
	s := f.state
	fns := make([]func(FormState), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.notifyMu.Lock()
	f.mu.Unlock()
	defer f.notifyMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// Close cancels the dismiss timer and drops subscribers. A submission in
// flight completes but its result is discarded.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.gen++
	f.stopLocked()
	f.subs = make(map[int]func(FormState))
}
