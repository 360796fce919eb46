package main

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/handlers"
	mw "github.com/taha-yassine-romdhane/Dar-koftan/internal/middleware"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/navigation"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/platform/observability"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/taxonomy"
)

// serverDeps carries everything the HTTP layer needs.
type serverDeps struct {
	Logger       *zap.Logger
	Source       taxonomy.Source
	Taxonomy     taxonomy.Config
	Holder       *taxonomy.Holder
	Registry     *prometheus.Registry
	Metrics      *navigation.Metrics
	FetchTimeout time.Duration
	Breakpoint   int
	// RequestTimeout bounds handler execution; zero uses 30s.
	RequestTimeout time.Duration
}

type server struct {
	logger       *zap.Logger
	source       taxonomy.Source
	taxonomy     taxonomy.Config
	holder       *taxonomy.Holder
	registry     *prometheus.Registry
	metrics      *navigation.Metrics
	fetchTimeout time.Duration
	breakpoint   int
	timeout      time.Duration

	tmpl    *templates
	content *handlers.Renderer
	intro   template.HTML
}

func newServer(deps serverDeps) (*server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	holder := deps.Holder
	if holder == nil {
		holder = &taxonomy.Holder{}
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	cfg := deps.Taxonomy
	if len(cfg.Order) == 0 {
		cfg = taxonomy.DefaultConfig()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	content := handlers.NewRenderer()
	intro, err := content.Markdown(cfg.Intro)
	if err != nil {
		logger.Warn("render collections intro", zap.Error(err))
		intro = ""
	}

	return &server{
		logger:       logger,
		source:       deps.Source,
		taxonomy:     cfg,
		holder:       holder,
		registry:     registry,
		metrics:      deps.Metrics,
		fetchTimeout: deps.FetchTimeout,
		breakpoint:   deps.Breakpoint,
		timeout:      timeout,
		tmpl:         tmpl,
		content:      content,
		intro:        intro,
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.InjectLoggerMiddleware(s.logger))
	r.Use(observability.TraceMiddleware())
	r.Use(observability.RequestLoggerMiddleware())
	r.Use(observability.RecoveryMiddleware(s.logger))
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(s.timeout))
	r.Use(mw.HTMX)
	r.Use(mw.ViewportHint(s.breakpoint))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/collections", http.StatusFound)
	})
	r.Route("/collections", func(r chi.Router) {
		r.Get("/", s.handleCollections)
		r.Get("/results", s.handleCollectionsResults)
		r.Post("/filters", s.handleFilters)
		r.Post("/category", s.handleSelectCategory)
	})
	r.Get("/promo", s.placeholder("/promo", "Promo"))
	r.Get("/top-vente", s.placeholder("/top-vente", "Top Vente"))
	r.Get("/api/navigation", s.handleNavigationAPI)
	return r
}
