package transport

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

const (
	// SSE Headers
	headerContentType              = "Content-Type"
	headerCacheControl             = "Cache-Control"
	headerConnection               = "Connection"
	headerAccelBuffering           = "X-Accel-Buffering"
	headerAccessControlAllowOrigin = "Access-Control-Allow-Origin"

	// SSE Content type
	contentTypeEventStream = "text/event-stream"
)

// ErrStreamingUnsupported is returned when the response cannot be flushed
var ErrStreamingUnsupported = errors.New("streaming not supported")

// SSEWriter writes Server-Sent-Event frames to an HTTP response
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	opened  bool
}

// NewSSEWriter wraps w. Nothing is written until Open is called.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &SSEWriter{w: w, flusher: flusher}, nil
}

// Open sends the stream headers and, when retryMillis > 0, the reconnect
// delay advertised to EventSource clients.
func (s *SSEWriter) Open(retryMillis int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return nil
	}
	h := s.w.Header()
	h.Set(headerContentType, contentTypeEventStream)
	h.Set(headerCacheControl, "no-cache")
	h.Set(headerConnection, "keep-alive")
	h.Set(headerAccelBuffering, "no")
	h.Set(headerAccessControlAllowOrigin, "*")
	s.w.WriteHeader(http.StatusOK)
	s.opened = true

	if retryMillis > 0 {
		if _, err := fmt.Fprintf(s.w, "retry: %d\n\n", retryMillis); err != nil {
			return err
		}
	}
	s.flusher.Flush()
	return nil
}

// WriteEvent writes one data frame and flushes it
func (s *SSEWriter) WriteEvent(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteComment writes a comment line, ignored by EventSource clients
func (s *SSEWriter) WriteComment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
