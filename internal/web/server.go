// Package web provides the HTTP server, API and pages for packcat.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/JonMunkholm/packcat/internal/config"
	"github.com/JonMunkholm/packcat/internal/core"
	"github.com/JonMunkholm/packcat/internal/logging"
	mw "github.com/JonMunkholm/packcat/internal/web/middleware"
)

// Service is the part of core.Service the server uses.
type Service interface {
	AnalyzeCSV(ctx context.Context, data []byte) (*core.Preview, error)
	ImportCatalog(ctx context.Context, source string) (*core.ImportResult, error)
	ImportCSV(ctx context.Context, name string, data []byte) (*core.ImportResult, error)
	ListImports(ctx context.Context, limit int) ([]core.CatalogImport, error)
	GetImport(ctx context.Context, id uuid.UUID) (*core.CatalogImport, error)
	ListPacks(ctx context.Context, importID uuid.UUID) ([]core.PackInfo, error)
	GetPack(ctx context.Context, id uuid.UUID) (*core.PackInfo, error)
	DownloadPacks(ctx context.Context, importID uuid.UUID, dir string) (*core.DownloadResult, error)
	Status() core.ServiceStatus
}

// BrowserSupport answers caniuse lookups. *caniuse.Client implements it.
type BrowserSupport interface {
	SupportedBrowsers(ctx context.Context, feature string) ([]string, error)
	FeatureKeys() []string
}

// Server is the packcat HTTP server.
type Server struct {
	service  Service
	browsers BrowserSupport
	cfg      config.Config
	router   *chi.Mux
	server   *http.Server
	limiter  *rateLimiter
}

// NewServer creates a Server. Only cfg.Server, cfg.Rate and cfg.Security are
// read.
func NewServer(service Service, browsers BrowserSupport, cfg config.Config) *Server {
	s := &Server{
		service:  service,
		browsers: browsers,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/imports/{importID}", s.handleImportPage)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/infer", s.handleInfer)

		r.Get("/imports", s.handleListImports)
		r.Get("/imports/{importID}/packs", s.handleListPacks)
		r.Get("/packs/{packID}", s.handleGetPack)

		r.Get("/caniuse", s.handleListFeatures)
		r.Get("/caniuse/{feature}", s.handleCaniuse)

		r.Group(func(r chi.Router) {
			r.Use(mw.APIKeyAuth(s.cfg.Security))
			r.Post("/imports", s.handleImport)
			r.Post("/imports/{importID}/download", s.handleDownload)
		})
	})
}

// Start listens on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	logging.FromContext(context.Background()).Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and the rate limiter sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter is a fixed-window limiter keyed by client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops visitors idle for two windows until stop is called.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow consumes a token for ip if one is left in the current window.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists || time.Since(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			respondErrorJSON(w, core.MapError(errRateLimited), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
