package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pokertrack/pokertrack-server/internal/live"
	"github.com/pokertrack/pokertrack-server/internal/logger"
	"github.com/pokertrack/pokertrack-server/internal/usecase"
)

// RequestTimeout bounds REST requests; event streams are not limited
const RequestTimeout = 15 * time.Second

// Pinger reports whether the storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig holds what the router needs to serve requests
type RouterConfig struct {
	Prefix      string
	Tables      *usecase.TableUseCase
	Games       *usecase.GameUseCase
	Broker      *live.Broker
	Storage     Pinger
	RetryMillis int
}

// NewRouter builds the HTTP handler of the server
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog)
	r.Use(middleware.Recoverer)

	health := &healthHandler{broker: cfg.Broker, storage: cfg.Storage}
	r.Get("/health", health.ServeHTTP)

	routes := func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(RequestTimeout))
			NewTableHandler(cfg.Tables).RegisterRoutes(r)
			NewGameHandler(cfg.Games).RegisterRoutes(r)
		})
		NewEventHandler(cfg.Broker, cfg.RetryMillis).RegisterRoutes(r)
	}
	prefix := strings.TrimRight(cfg.Prefix, "/")
	if prefix == "" {
		r.Group(routes)
	} else {
		r.Route(prefix, routes)
	}
	return r
}

// requestLog logs every request once it has been served
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.RequestLog(r.Method, r.URL.Path, r.Header.Get(HeaderUserID), ww.Status())
	})
}

type healthHandler struct {
	broker  *live.Broker
	storage Pinger
}

// HealthResponse reports the server state
type HealthResponse struct {
	Status  string     `json:"status"`
	Storage string     `json:"storage"`
	Live    live.Stats `json:"live"`
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Storage: "ok", Live: h.broker.Stats()}
	status := http.StatusOK
	if h.storage != nil {
		if err := h.storage.Ping(r.Context()); err != nil {
			logger.Warn("Health check: storage unreachable: %v", err)
			resp.Status = "degraded"
			resp.Storage = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}
