package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attanavaid/portfolio/internal/clock"
	"github.com/attanavaid/portfolio/internal/contact"
	"github.com/attanavaid/portfolio/internal/content"
	"github.com/attanavaid/portfolio/internal/scene"
	"github.com/attanavaid/portfolio/internal/scroll"
	"github.com/attanavaid/portfolio/internal/theme"
	"github.com/attanavaid/portfolio/internal/typewriter"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrDuplicateHello = errors.New("session already started")
)

// Sink receives outgoing messages. Send must not block.
type Sink interface {
	Send(Message)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Message)

func (f SinkFunc) Send(m Message) { f(m) }

// Observer is told about session lifecycle and theme choices.
type Observer interface {
	SessionOpened()
	SessionClosed()
	ThemeSelected(theme.Preference)
}

type nopObserver struct{}

func (nopObserver) SessionOpened()                 {}
func (nopObserver) SessionClosed()                 {}
func (nopObserver) ThemeSelected(theme.Preference) {}

// Deps are shared by every session. Nothing in them is mutated per page.
type Deps struct {
	Clock        clock.Clock
	Portfolio    *content.Portfolio
	Submitter    contact.Submitter
	DefaultTheme theme.Preference
	Log          *zap.Logger
	Observer     Observer
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	if !d.DefaultTheme.Valid() {
		d.DefaultTheme = theme.DefaultPreference
	}
	return d
}

// Session owns every stateful component of one page. It is created from
// the client's hello and torn down by Close.
type Session struct {
	id       string
	log      *zap.Logger
	clock    clock.Clock
	observer Observer
	sink     Sink
	started  time.Time

	scheme     *theme.MediaQuery
	theme      *theme.Controller
	scroll     *scroll.Coordinator
	nav        *scroll.Nav
	typewriter *typewriter.Sequencer
	form       *contact.Form
	scene      *scene.Tracker
	roles      *roleRotator

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	unsubs    []func()
	closeOnce sync.Once
}

// NewSession mounts every component for the page described by h and
// pushes the initial state to sink.
func NewSession(d Deps, key string, h Hello, sink Sink) *Session {
	d = d.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       uuid.NewString(),
		clock:    d.Clock,
		observer: d.Observer,
		sink:     sink,
		started:  d.Clock.Now(),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.log = d.Log.With(zap.String("session", s.id))

	s.scheme = theme.NewMediaQuery(h.PrefersDark)
	s.theme = theme.NewController(
		newClientStorage(h, sink),
		s.scheme,
		theme.RootFunc(func(r theme.Resolved) {
			sink.Send(Message{Type: TypeRoot, Data: rootData{Resolved: string(r)}})
		}),
		theme.WithLogger(s.log),
		theme.WithDefault(d.DefaultTheme),
	)

	s.scroll = scroll.NewCoordinator(d.Clock, h.Layout)
	s.nav = scroll.NewNav(s.scroll)
	s.scene = scene.NewTracker(scene.PathFromLayout(h.Layout))

	var entries []typewriter.Entry
	var roles []string
	if d.Portfolio != nil {
		for _, l := range d.Portfolio.Languages {
			entries = append(entries, typewriter.Entry{Text: l.Text, Translation: l.Translation})
		}
		roles = d.Portfolio.Profile.Roles
	}
	s.typewriter = typewriter.New(d.Clock, entries)
	s.form = contact.NewForm(d.Clock, d.Submitter, key)
	s.roles = newRoleRotator(d.Clock, roles, func(i int, role string) {
		sink.Send(Message{Type: TypeRoles, Data: rolesData{Index: i, Role: role}})
	})

	s.unsubs = append(s.unsubs,
		s.theme.Subscribe(func(st theme.State) {
			sink.Send(Message{Type: TypeTheme, Data: st})
		}),
		s.scroll.Subscribe(func(v scroll.View) {
			sink.Send(Message{Type: TypeView, Data: v})
			s.sendScene(v.ScrollY)
		}),
		s.typewriter.Subscribe(func(snap typewriter.Snapshot) {
			sink.Send(Message{Type: TypeTypewriter, Data: snap})
		}),
		s.form.Subscribe(func(fs contact.FormState) {
			sink.Send(Message{Type: TypeContact, Data: fs})
		}),
	)

	s.theme.Mount()
	s.scroll.Observe(h.ScrollY)
	s.scroll.Flush()
	s.typewriter.Start()
	s.roles.start()

	i, role := s.roles.current()
	sink.Send(Message{Type: TypeRoles, Data: rolesData{Index: i, Role: role}})
	sink.Send(Message{Type: TypeContact, Data: s.form.State()})
	sink.Send(Message{Type: TypeMenu, Data: menuData{Open: s.nav.MenuOpen()}})

	s.log.Debug("session started",
		zap.String("theme", string(s.theme.Preference())),
		zap.Int("sections", len(h.Layout.Sections)),
	)
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Handle applies one client message. Errors are reported to the client;
// they never end the session.
func (s *Session) Handle(in Inbound) error {
	switch in.Type {
	case TypeHello:
		return ErrDuplicateHello

	case TypeScroll:
		var d scrollData
		if err := decode(in, &d); err != nil {
			return err
		}
		s.scroll.Observe(d.Y)

	case TypeLayout:
		var l scroll.Layout
		if err := decode(in, &l); err != nil {
			return err
		}
		s.scene.SetPath(scene.PathFromLayout(l))
		s.scroll.Measure(l)

	case TypeThemeSet:
		var d themeSetData
		if err := decode(in, &d); err != nil {
			return err
		}
		p, err := theme.ParsePreference(d.Preference)
		if err != nil {
			return err
		}
		if err := s.theme.SetPreference(p); err != nil {
			return err
		}
		s.observer.ThemeSelected(p)

	case TypeThemeToggle:
		if err := s.theme.Toggle(); err != nil {
			return err
		}
		s.observer.ThemeSelected(s.theme.Preference())

	case TypeScheme:
		var d schemeData
		if err := decode(in, &d); err != nil {
			return err
		}
		s.scheme.Set(d.PrefersDark)

	case TypeNav:
		var d navData
		if err := decode(in, &d); err != nil {
			return err
		}
		top, err := s.nav.Navigate(d.ID)
		s.sink.Send(Message{Type: TypeMenu, Data: menuData{Open: false}})
		if err != nil {
			return fmt.Errorf("navigate to %q: %w", d.ID, err)
		}
		s.sink.Send(Message{Type: TypeScrollTo, Data: scrollToData{ID: d.ID, Top: top}})

	case TypeMenuToggle:
		s.sink.Send(Message{Type: TypeMenu, Data: menuData{Open: s.nav.ToggleMenu()}})

	case TypeLanguageSelect:
		var d languageData
		if err := decode(in, &d); err != nil {
			return err
		}
		return s.typewriter.Select(d.Index)

	case TypeContactField:
		var d fieldData
		if err := decode(in, &d); err != nil {
			return err
		}
		return s.form.SetField(d.Name, d.Value)

	case TypeContactSubmit:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.form.Submit(s.ctx); err != nil {
				s.sendError(err)
			}
		}()

	case TypeDragBegin:
		var d pointerData
		if err := decode(in, &d); err != nil {
			return err
		}
		s.scene.BeginDrag(d.X, d.Y)

	case TypeDragMove:
		var d pointerData
		if err := decode(in, &d); err != nil {
			return err
		}
		if s.scene.MoveDrag(d.X, d.Y) {
			s.sendScene(s.scroll.View().ScrollY)
		}

	case TypeDragEnd:
		s.scene.EndDrag()

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, in.Type)
	}
	return nil
}

func decode(in Inbound, dst any) error {
	if len(in.Data) == 0 {
		return fmt.Errorf("%s: missing data", in.Type)
	}
	if err := json.Unmarshal(in.Data, dst); err != nil {
		return fmt.Errorf("%s: %w", in.Type, err)
	}
	return nil
}

func (s *Session) sendScene(scrollY float64) {
	now := s.clock.Now().Sub(s.started).Seconds()
	s.sink.Send(Message{Type: TypeScene, Data: s.scene.Step(scrollY, now)})
}

func (s *Session) sendError(err error) {
	s.sink.Send(Message{Type: TypeError, Data: errorData{Message: err.Error()}})
}

// Close releases every timer, subscription and listener the session owns
// and waits for an in-flight contact submission to return.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		for _, unsub := range s.unsubs {
			unsub()
		}
		s.theme.Close()
		s.scroll.Close()
		s.typewriter.Close()
		s.form.Close()
		s.roles.close()
		s.wg.Wait()
		s.log.Debug("session closed")
	})
}
