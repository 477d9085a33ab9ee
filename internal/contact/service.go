package contact

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/attanavaid/portfolio/internal/clock"
)

// Channel names a delivery path.
type Channel string

const (
	ChannelEmailJS Channel = "emailjs"
	ChannelSMTP    Channel = "smtp"
	ChannelMailto  Channel = "mailto"
)

var ErrRateLimited = errors.New("too many messages, try again shortly")

// Relay delivers a message to the site owner.
type Relay interface {
	Channel() Channel
	Configured() bool
	Send(ctx context.Context, m Message) error
}

// Result tells the caller how the message went out. MailtoURL is set for
// the mailto channel; the client must open it.
type Result struct {
	Channel   Channel `json:"channel"`
	MailtoURL string  `json:"mailtoUrl,omitempty"`
}

// Observer is told about every submission attempt.
type Observer interface {
	ObserveSubmission(ch Channel, err error)
}

// RateLimit is a per-client token bucket.
type RateLimit struct {
	Every time.Duration
	Burst int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterTTL is how long an idle client's bucket is kept.
const limiterTTL = 10 * time.Minute

// Service validates, rate-limits and delivers messages. The first configured
// relay wins; with none configured the mailto link is returned.
type Service struct {
	relays   []Relay
	to       string
	limit    RateLimit
	clock    clock.Clock
	log      *zap.Logger
	observer Observer

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

func WithClock(c clock.Clock) ServiceOption {
	return func(s *Service) { s.clock = c }
}

func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

func WithRateLimit(rl RateLimit) ServiceOption {
	return func(s *Service) { s.limit = rl }
}

// NewService delivers to the owner address to, trying relays in order.
func NewService(to string, relays []Relay, opts ...ServiceOption) *Service {
	s := &Service{
		relays:  relays,
		to:      to,
		limit:   RateLimit{Every: time.Minute, Burst: 3},
		clock:   clock.New(),
		log:     zap.NewNop(),
		clients: make(map[string]*clientLimiter),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Channel reports which path a submission would take right now.
func (s *Service) Channel() Channel {
	if r := s.relay(); r != nil {
		return r.Channel()
	}
	return ChannelMailto
}

func (s *Service) relay() Relay {
	for _, r := range s.relays {
		if r.Configured() {
			return r
		}
	}
	return nil
}

// Submit delivers m on behalf of the client identified by key.
func (s *Service) Submit(ctx context.Context, key string, m Message) (Result, error) {
	res, err := s.submit(ctx, key, m)
	if s.observer != nil {
		s.observer.ObserveSubmission(res.Channel, err)
	}
	return res, err
}

func (s *Service) submit(ctx context.Context, key string, m Message) (Result, error) {
	ch := s.Channel()
	if err := m.Validate(); err != nil {
		return Result{Channel: ch}, err
	}
	if !s.allow(key) {
		return Result{Channel: ch}, ErrRateLimited
	}

	r := s.relay()
	if r == nil {
		return Result{Channel: ChannelMailto, MailtoURL: MailtoURL(s.to, m)}, nil
	}
	if err := r.Send(ctx, m); err != nil {
		s.log.Error("contact delivery failed", zap.String("channel", string(ch)), zap.Error(err))
		return Result{Channel: ch}, fmt.Errorf("deliver via %s: %w", ch, err)
	}
	s.log.Info("contact message sent",
		zap.String("channel", string(ch)),
		zap.String("from", m.Email),
	)
	return Result{Channel: ch}, nil
}

func (s *Service) allow(key string) bool {
	if s.limit.Burst <= 0 {
		return true
	}
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, cl := range s.clients {
		if now.Sub(cl.lastSeen) > limiterTTL {
			delete(s.clients, k)
		}
	}
	cl, ok := s.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(s.limit.Every), s.limit.Burst)}
		s.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}
