package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pokertrack/pokertrack-server/internal/live"
	"github.com/pokertrack/pokertrack-server/internal/logger"
	"github.com/pokertrack/pokertrack-server/internal/transport"
)

// EventHandler streams live table and game snapshots over SSE
type EventHandler struct {
	broker      *live.Broker
	retryMillis int
}

// NewEventHandler creates a new event handler. retryMillis is advertised to
// clients as their reconnect delay; 0 omits it.
func NewEventHandler(broker *live.Broker, retryMillis int) *EventHandler {
	return &EventHandler{broker: broker, retryMillis: retryMillis}
}

// RegisterRoutes mounts the stream route on r
func (h *EventHandler) RegisterRoutes(r chi.Router) {
	r.Get("/events/{kind}/{id}", h.ServeHTTP)
}

// ServeHTTP opens a stream for the requested resource and blocks until the
// client goes away. Unknown resources get a 404 before any stream header.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kind, err := live.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: err.Error()})
		return
	}
	sse, err := transport.NewSSEWriter(w)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	stream, err := h.broker.OpenStream(r.Context(), kind, id)
	if err != nil {
		// the client left while the seed was being fetched
		if errors.Is(err, context.Canceled) || r.Context().Err() != nil {
			logger.Debug("Stream for %s %s abandoned: %v", kind, id, err)
			return
		}
		writeError(w, r, err)
		return
	}
	defer stream.Close()

	if err := sse.Open(h.retryMillis); err != nil {
		logger.Warn("Stream %s could not be opened: %v", stream.ConnID, err)
		return
	}
	if err := stream.Run(r.Context(), sse); err != nil {
		logger.Debug("Stream %s ended: %v", stream.ConnID, err)
	}
}
