package live

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pokertrack/pokertrack-server/internal/logger"
)

const heartbeatComment = "heartbeat"

// FrameWriter is the outgoing side of one stream
type FrameWriter interface {
	// WriteEvent sends one data frame holding a serialized snapshot
	WriteEvent(data []byte) error
	// WriteComment sends a comment line, used as keep-alive
	WriteComment(text string) error
}

// Encoder serializes a snapshot. Equal values must encode to equal bytes.
type Encoder func(v any) ([]byte, error)

// StreamOptions tune the stream sessions opened by a registry or a broker
type StreamOptions struct {
	// TickInterval is the wait between two polls of the registry
	TickInterval time.Duration
	// HeartbeatInterval is the period of keep-alive comments, 0 disables them
	HeartbeatInterval time.Duration
	Encode            Encoder
}

// source is the view a stream has on its registry entry
type source interface {
	watch() (any, uint64, <-chan struct{}, bool)
	release()
}

type registrySource[T any] struct {
	registry *Registry[T]
	id       string
	connID   string
}

func (s *registrySource[T]) watch() (any, uint64, <-chan struct{}, bool) {
	return s.registry.watch(s.id)
}

func (s *registrySource[T]) release() {
	s.registry.Unsubscribe(s.id, s.connID)
}

// Stream is one client's subscription to one resource. It holds its own
// last-delivered payload, so sibling streams on the same resource never
// swallow each other's updates.
type Stream struct {
	ConnID     string
	Kind       Kind
	ResourceID string

	opts    StreamOptions
	src     source
	seed    any
	version uint64
	last    []byte

	closeOnce sync.Once
}

// Open subscribes a new connection to id. The error wraps
// entities.ErrNotFound when the resource does not exist, in which case
// nothing is registered.
func (r *Registry[T]) Open(ctx context.Context, kind Kind, id string, opts StreamOptions) (*Stream, error) {
	connID := uuid.NewString()
	seed, version, err := r.Subscribe(ctx, id, connID)
	if err != nil {
		return nil, err
	}
	logger.StreamLog("opened", string(kind), id, connID)

	return &Stream{
		ConnID:     connID,
		Kind:       kind,
		ResourceID: id,
		opts:       opts.withDefaults(),
		src:        &registrySource[T]{registry: r, id: id, connID: connID},
		seed:       seed,
		version:    version,
	}, nil
}

func (o StreamOptions) withDefaults() StreamOptions {
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.Encode == nil {
		o.Encode = defaultEncoder
	}
	return o
}

// Run emits the seed snapshot, then every change of the resource, until ctx
// is done, the registry entry disappears or a write fails. The subscription
// is released on every exit path.
func (s *Stream) Run(ctx context.Context, w FrameWriter) error {
	defer s.Close()

	if err := s.emit(w, s.seed, s.version); err != nil {
		return err
	}
	s.seed = nil

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	var heartbeat <-chan time.Time
	if s.opts.HeartbeatInterval > 0 {
		hb := time.NewTicker(s.opts.HeartbeatInterval)
		defer hb.Stop()
		heartbeat = hb.C
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		current, version, changed, ok := s.src.watch()
		if !ok {
			return nil
		}
		if version != s.version {
			if err := s.emit(w, current, version); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-changed:
		case <-heartbeat:
			if err := w.WriteComment(heartbeatComment); err != nil {
				return fmt.Errorf("write heartbeat: %w", err)
			}
		}
	}
}

// emit sends snapshot unless it encodes to the payload sent last.
// An encoding failure skips this version without ending the stream.
func (s *Stream) emit(w FrameWriter, snapshot any, version uint64) error {
	s.version = version
	data, err := s.opts.Encode(snapshot)
	if err != nil {
		logger.Warn("Skipping %s %s update for connection %s: %v", s.Kind, s.ResourceID, s.ConnID, err)
		return nil
	}
	if s.last != nil && bytes.Equal(data, s.last) {
		return nil
	}
	if err := w.WriteEvent(data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.last = data
	logger.SSEEventLog(string(s.Kind), s.ResourceID, s.ConnID, data)
	return nil
}

// Close releases the subscription. It is safe to call more than once.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		s.src.release()
		logger.StreamLog("closed", string(s.Kind), s.ResourceID, s.ConnID)
	})
}
