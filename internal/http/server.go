package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"outlay/internal/auth"
	"outlay/internal/database"
	"outlay/internal/log"
	"outlay/internal/middleware/ratelimit"
	"outlay/internal/middleware/security"
	"outlay/internal/middleware/trace"
	appweb "outlay/web"
)

// Deps are the collaborators the server needs.
type Deps struct {
	DB       database.Database
	Sessions *auth.Sessions
	Provider auth.Provider
	Logger   *log.Logger

	CookieSecure       bool
	RateLimitPerMinute int

	// Now defaults to time.Now.
	Now func() time.Time
}

type appMetrics struct {
	started         time.Time
	expensesAdded   atomic.Int64
	expensesEdited  atomic.Int64
	expensesRemoved atomic.Int64
	logins          atomic.Int64
}

type Server struct {
	http.Server
	templates *template.Template

	db           database.Database
	sessions     *auth.Sessions
	provider     auth.Provider
	logger       *log.Logger
	events       *log.StructuredLogger
	cookieSecure bool
	now          func() time.Time

	traceMiddleware  *trace.Middleware
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	appMetrics       appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates. The returned
// server owns a rate limiter goroutine that Shutdown stops.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.DB == nil || deps.Sessions == nil || deps.Provider == nil {
		return nil, errors.New("http server needs a database, sessions and an auth provider")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	t, err := template.New("").Funcs(templateFuncs(now().Location())).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		templates:        t,
		db:               deps.DB,
		sessions:         deps.Sessions,
		provider:         deps.Provider,
		logger:           logger.WithComponent(log.ComponentHTTP),
		events:           log.NewStructuredLogger(logger),
		cookieSecure:     deps.CookieSecure,
		now:              now,
		securityDetector: security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
	}
	s.appMetrics.started = now()
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLogin)
	mux.HandleFunc("GET /auth/callback", s.handleCallback)
	mux.HandleFunc("POST /logout", s.withPageSession(s.handleLogout))

	mux.HandleFunc("GET /dashboard", s.withPageSession(s.handleDashboard))
	mux.HandleFunc("POST /filters", s.withPageSession(s.handleFilters))
	mux.HandleFunc("GET /create", s.withPageSession(s.handleCreatePage))
	mux.HandleFunc("POST /create", s.withPageSession(s.handleCreate))
	mux.HandleFunc("GET /edit/{id}", s.withPageSession(s.handleEditPage))
	mux.HandleFunc("POST /edit/{id}", s.withPageSession(s.handleEdit))
	mux.HandleFunc("POST /remove/{id}", s.withPageSession(s.handleRemove))

	mux.HandleFunc("GET /api/expenses", s.withAPISession(s.handleAPIListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withAPISession(s.handleAPICreateExpense))
	mux.HandleFunc("PATCH /api/expenses/{id}", s.withAPISession(s.handleAPIEditExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withAPISession(s.handleAPIRemoveExpense))
	mux.HandleFunc("GET /api/filters", s.withAPISession(s.handleAPIGetFilters))
	mux.HandleFunc("PUT /api/filters", s.withAPISession(s.handleAPIPutFilters))

	mux.HandleFunc("/", s.handleNotFound)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, ratelimit.MutatingOnly, s.handleRateLimited)

	// Outermost first: trace sees the final status of every request.
	return s.traceMiddleware.Middleware(
		headers.Middleware(
			s.securityDetector.Middleware(
				limit(mux),
			),
		),
	)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	if isAPI(r) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again in a minute.").Write(w, r)
}

// Shutdown stops accepting requests and the rate limiter cleanup. Sessions
// are owned by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes the named template into a buffer so a failure can still
// answer 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Template execution failed", log.FieldError, err, log.FieldOperation, log.OpRender, "template", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
