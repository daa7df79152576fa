package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	logx "bdaybot/pkg/logx"

	"bdaybot/internal/delivery"
	"bdaybot/internal/history"
)

const defaultAddr = "127.0.0.1:8090"

// Snapshot is what /status renders. It is assembled by the app on request.
type Snapshot struct {
	Breaker delivery.BreakerState `json:"breaker"`
	Runs    []history.Entry       `json:"runs,omitempty"`
}

type Config struct {
	Enabled bool
	Addr    string
}

// Server is the optional status/metrics HTTP server.
type Server struct {
	cfg  Config
	srv  *http.Server
	log  logx.Logger
	snap func(ctx context.Context) Snapshot
}

func NewServer(cfg Config, reg *prometheus.Registry, snap func(ctx context.Context) Snapshot, log logx.Logger) *Server {
	if log.IsZero() {
		log = logx.Nop()
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = defaultAddr
	}

	s := &Server{cfg: cfg, log: log, snap: snap}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.snap(ctx)); err != nil {
		s.log.Warn("status encode failed", logx.Err(err))
	}
}

// Start begins serving in the background. Listen errors other than a clean
// shutdown are logged, not fatal: the bot can do its job without the server.
func (s *Server) Start() {
	if s == nil || !s.cfg.Enabled {
		return
	}
	s.log.Info("status server listening", logx.String("addr", s.cfg.Addr))
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("status server stopped", logx.Err(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	if s == nil || !s.cfg.Enabled {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(sctx)
}
