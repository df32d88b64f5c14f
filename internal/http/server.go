package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"calorie/internal/core"
	"calorie/internal/log"
	"calorie/internal/middleware/ratelimit"
	"calorie/internal/middleware/security"
	"calorie/internal/middleware/trace"
	"calorie/internal/services"
	appweb "calorie/web"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchemaReporter is implemented by a Pinger whose storage is migrated;
// /readyz reports the version and fails on a dirty schema.
type SchemaReporter interface {
	SchemaVersion(ctx context.Context) (version uint, dirty bool, err error)
}

// Options configures NewServer. Zero values pick the defaults.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	// Pinger is checked by /readyz; nil means always ready.
	Pinger Pinger
	Logger *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	tracker   *services.TrackerService
	pinger    Pinger
	logger    *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	started          time.Time

	shutdownOnce sync.Once
}

// entryListView feeds the entry-list template.
type entryListView struct {
	Kind    core.EntryKind
	Entries []entryView
}

// filterView renders an empty filter input; OOB replaces the live one.
type filterView struct {
	Kind core.EntryKind
	OOB  bool
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server. Template errors are fatal since every route renders.
func NewServer(tracker *services.TrackerService, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	funcs := template.FuncMap{
		"entries": func(kind string, list []entryView) entryListView {
			return entryListView{Kind: core.EntryKind(kind), Entries: list}
		},
		"filter": func(kind string, oob bool) filterView {
			return filterView{Kind: core.EntryKind(kind), OOB: oob}
		},
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	detector := security.NewDetector()
	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		templates:        tmpl,
		tracker:          tracker,
		pinger:           opts.Pinger,
		logger:           logger,
		rateLimiter:      ratelimit.NewLimiter(limiterCfg),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		started:          time.Now(),
	}

	router := mux.NewRouter()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	router.PathPrefix("/static/").Handler(
		security.StaticAssetMiddleware(3600)(http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/meals", s.handleListMeals).Methods(http.MethodGet)
	router.HandleFunc("/meals", s.handleAddMeal).Methods(http.MethodPost)
	router.HandleFunc("/meals/{id}", s.handleRemoveMeal).Methods(http.MethodDelete)
	router.HandleFunc("/workouts", s.handleListWorkouts).Methods(http.MethodGet)
	router.HandleFunc("/workouts", s.handleAddWorkout).Methods(http.MethodPost)
	router.HandleFunc("/workouts/{id}", s.handleRemoveWorkout).Methods(http.MethodDelete)
	router.HandleFunc("/limit", s.handleSetLimit).Methods(http.MethodPost)
	router.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", sessionHeader, trace.RequestIDHeader},
		ExposedHeaders: []string{sessionHeader, trace.RequestIDHeader},
	})
	router.PathPrefix("/api/").Handler(corsHandler.Handler(s.apiRouter()))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(detector.ExtractClientIP, s.onRateLimit)

	var handler http.Handler = router
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = detector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) apiRouter() *mux.Router {
	api := mux.NewRouter().PathPrefix("/api").Subrouter()
	api.HandleFunc("/tracker", s.handleAPITracker).Methods(http.MethodGet)
	api.HandleFunc("/meals", s.handleAPIAddMeal).Methods(http.MethodPost)
	api.HandleFunc("/meals/{id}", s.handleAPIRemoveMeal).Methods(http.MethodDelete)
	api.HandleFunc("/workouts", s.handleAPIAddWorkout).Methods(http.MethodPost)
	api.HandleFunc("/workouts/{id}", s.handleAPIRemoveWorkout).Methods(http.MethodDelete)
	api.HandleFunc("/limit", s.handleAPISetLimit).Methods(http.MethodPut)
	api.HandleFunc("/reset", s.handleAPIReset).Methods(http.MethodPost)
	return api
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	if isAPI(r) {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Too many requests, please slow down").Write(w)
}

// Shutdown stops the background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
