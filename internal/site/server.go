// Package site serves the portfolio: the server-rendered page, the live
// session endpoint, the contact fallback and static assets.
package site

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/attanavaid/portfolio/internal/clock"
	"github.com/attanavaid/portfolio/internal/config"
	"github.com/attanavaid/portfolio/internal/contact"
	"github.com/attanavaid/portfolio/internal/content"
	"github.com/attanavaid/portfolio/internal/live"
	"github.com/attanavaid/portfolio/internal/logging"
	"github.com/attanavaid/portfolio/internal/scene"
	"github.com/attanavaid/portfolio/internal/theme"
)

//go:embed static
var staticFS embed.FS

const (
	modelURL     = "/scene/model"
	immutableAge = "public, max-age=31536000, immutable"
)

// Options wire a Server. Config and Portfolio are required.
type Options struct {
	Config    *config.Config
	Portfolio *content.Portfolio
	Log       *zap.Logger
	Clock     clock.Clock
	// Public holds images, documents and the 3D model. Defaults to the
	// configured static directory.
	Public fs.FS
	// Relays override the relays built from configuration.
	Relays []contact.Relay
}

// Server holds everything shared by requests. Per-page state lives in
// live sessions.
type Server struct {
	cfg       *config.Config
	log       *zap.Logger
	portfolio *content.Portfolio
	contact   *contact.Service
	live      *live.Server
	model     *scene.Model
	metrics   *Metrics
	public    fs.FS
	jsonLD    [][]byte
	engine    *gin.Engine
}

// New builds the server and its routes.
func New(opts Options) (*Server, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	cfg := opts.Config
	public := opts.Public
	if public == nil {
		public = os.DirFS(cfg.Site.StaticDir)
	}

	relays := opts.Relays
	if relays == nil {
		relays = relaysFromConfig(cfg)
	}

	metrics := NewMetrics()
	svc := contact.NewService(cfg.Contact.To, relays,
		contact.WithServiceLogger(log.Named("contact")),
		contact.WithClock(clk),
		contact.WithObserver(metrics),
		contact.WithRateLimit(contact.RateLimit{Every: cfg.Contact.RateEvery, Burst: cfg.Contact.RateBurst}),
	)

	jsonLD, err := opts.Portfolio.StructuredData(cfg.Site.URL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		log:       log,
		portfolio: opts.Portfolio,
		contact:   svc,
		metrics:   metrics,
		public:    public,
		jsonLD:    jsonLD,
		model:     scene.LoadModel(public, cfg.Site.ModelPath, modelURL, log.Named("scene")),
		live: live.NewServer(live.Deps{
			Clock:        clk,
			Portfolio:    opts.Portfolio,
			Submitter:    svc,
			DefaultTheme: theme.Preference(cfg.Theme.Default),
			Log:          log.Named("live"),
			Observer:     metrics,
		}),
	}
	s.log.Info("contact delivery", zap.String("channel", string(svc.Channel())))
	s.engine = s.routes()
	return s, nil
}

func relaysFromConfig(cfg *config.Config) []contact.Relay {
	return []contact.Relay{
		contact.NewEmailJS(contact.EmailJSConfig{
			ServiceID:  cfg.EmailJS.ServiceID,
			TemplateID: cfg.EmailJS.TemplateID,
			PublicKey:  cfg.EmailJS.PublicKey,
			Endpoint:   cfg.EmailJS.Endpoint,
			To:         cfg.Contact.To,
		}),
		contact.NewSMTP(contact.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Pass,
			To:       cfg.Contact.To,
		}),
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Metrics exposes the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(logging.Middleware(s.log.Named("http")), logging.Recovery(s.log))
	if s.cfg.Release() {
		r.Use(cacheStatic)
	}

	r.GET("/", s.handlePage)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/theme", s.handleTheme)
	r.POST("/contact", s.handleContact)
	r.GET("/live", func(c *gin.Context) {
		s.live.Serve(c.Writer, c.Request, c.ClientIP())
	})

	api := r.Group("/api")
	api.Use(cors.New(s.corsConfig()))
	api.GET("/content", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.portfolio)
	})

	r.GET("/scene/model", s.handleModel)
	r.GET("/scene/model.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.model)
	})

	assets, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(assets))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	public := http.FileServer(http.FS(s.public))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		public.ServeHTTP(c.Writer, c.Request)
	})
	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(s.cfg.Server.CORSOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.Server.CORSOrigins
	}
	return cfg
}

// cacheStatic marks fingerprint-free assets as immutable. Only enabled in
// release mode so edits show up while developing.
func cacheStatic(c *gin.Context) {
	p := c.Request.URL.Path
	if strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/skills/") ||
		strings.HasPrefix(p, "/projects/") || p == modelURL {
		c.Header("Cache-Control", immutableAge)
	}
	c.Next()
}

func (s *Server) handleModel(c *gin.Context) {
	if !s.model.Usable() {
		c.JSON(http.StatusNotFound, gin.H{"error": "model unavailable", "placeholder": s.model.Placeholder})
		return
	}
	c.Data(http.StatusOK, "model/gltf-binary", s.model.Data)
}

func (s *Server) handleTheme(c *gin.Context) {
	p, err := theme.ParsePreference(c.PostForm("preference"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctrl := theme.NewController(
		theme.NewCookieStorage(c.Writer, c.Request),
		theme.StaticScheme(theme.PrefersDarkFromRequest(c.Request)),
		theme.RootFunc(func(theme.Resolved) {}),
		theme.WithLogger(s.log),
		theme.WithDefault(theme.Preference(s.cfg.Theme.Default)),
	)
	ctrl.Mount()
	if err := ctrl.SetPreference(p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.metrics.ThemeSelected(p)

	if redirect := c.PostForm("redirect"); strings.HasPrefix(redirect, "/") && !strings.HasPrefix(redirect, "//") {
		c.Redirect(http.StatusSeeOther, redirect)
		return
	}
	c.JSON(http.StatusOK, ctrl.State())
}

// handleContact is the form post used without JavaScript. It answers with
// an HTML fragment so it can also be swapped in place.
func (s *Server) handleContact(c *gin.Context) {
	m := contact.Message{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Subject: c.PostForm("subject"),
		Message: c.PostForm("message"),
	}
	if m.Name == "" {
		m.Name = c.PostForm("fullName")
	}

	res, err := s.contact.Submit(c.Request.Context(), c.ClientIP(), m)
	if err != nil {
		s.log.Debug("contact submission failed", zap.Error(err))
		renderHTML(c, http.StatusOK, contactResult(false, contact.Notice(err), ""))
		return
	}
	renderHTML(c, http.StatusOK, contactResult(true, contact.SuccessText, res.MailtoURL))
}

func (s *Server) handlePage(c *gin.Context) {
	def := theme.Preference(s.cfg.Theme.Default)
	state := theme.FromRequest(c.Request, def)
	theme.RequestClientHints(c.Writer)
	s.metrics.pageRendered(state.Resolved)

	tab := content.TimelineWork
	if k, err := content.ParseTimelineKind(c.Query("experience")); err == nil {
		tab = k
	}
	renderHTML(c, http.StatusOK, s.page(pageData{
		Theme:    state,
		Default:  def,
		Timeline: tab,
		Channel:  s.contact.Channel(),
	}))
}
