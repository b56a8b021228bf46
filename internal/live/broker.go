// Package live pushes table and game changes to Server-Sent-Event clients.
//
// Writers call Notify after a successful write. Every open stream keeps
// polling its resource's entry on a fixed tick and is also woken by each
// publish, emitting the latest snapshot when it differs from what that stream
// sent last. Nothing is retained for resources nobody watches: the first
// subscriber seeds the entry from the repository and the last one removes it.
package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/logger"
	"github.com/pokertrack/pokertrack-server/internal/transport"
)

// Kind names a family of resources; each has its own registry
type Kind string

const (
	KindTable Kind = "table"
	KindGame  Kind = "game"
)

// Defaults for stream sessions
const (
	DefaultTickInterval      = 500 * time.Millisecond
	DefaultHeartbeatInterval = 15 * time.Second
)

var (
	ErrUnknownKind  = errors.New("unknown resource kind")
	ErrSnapshotType = errors.New("snapshot does not match resource kind")
)

var defaultEncoder Encoder = transport.EncodeSnapshot

// ParseKind converts a path segment into a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTable, KindGame:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Option configures a Broker
type Option func(*StreamOptions)

// WithTickInterval sets the poll interval of stream sessions
func WithTickInterval(d time.Duration) Option {
	return func(o *StreamOptions) { o.TickInterval = d }
}

// WithHeartbeatInterval sets the keep-alive period, 0 disables it
func WithHeartbeatInterval(d time.Duration) Option {
	return func(o *StreamOptions) { o.HeartbeatInterval = d }
}

// WithEncoder replaces the snapshot serializer
func WithEncoder(e Encoder) Option {
	return func(o *StreamOptions) { o.Encode = e }
}

// Broker owns the table and game registries
type Broker struct {
	tables *Registry[*entities.Table]
	games  *Registry[*entities.Game]
	opts   StreamOptions
}

// NewBroker creates a broker seeding new subscriptions from the given fetchers
func NewBroker(tables Fetcher[*entities.Table], games Fetcher[*entities.Game], opts ...Option) *Broker {
	o := StreamOptions{
		TickInterval:      DefaultTickInterval,
		HeartbeatInterval: DefaultHeartbeatInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Broker{
		tables: NewRegistry(tables),
		games:  NewRegistry(games),
		opts:   o.withDefaults(),
	}
}

// Notify publishes a new snapshot of a resource. It never fails the caller:
// problems are logged and the update is dropped.
func (b *Broker) Notify(kind Kind, id string, snapshot any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Notify %s %s panicked: %v", kind, id, r)
		}
	}()

	delivered, err := b.publish(kind, id, snapshot)
	if err != nil {
		logger.Warn("Notify %s %s failed: %v", kind, id, err)
		return
	}
	if !delivered {
		logger.Debug("Notify %s %s: no subscribers", kind, id)
	}
}

func (b *Broker) publish(kind Kind, id string, snapshot any) (bool, error) {
	switch kind {
	case KindTable:
		t, ok := snapshot.(*entities.Table)
		if !ok || t == nil {
			return false, fmt.Errorf("%w: %s wants *entities.Table, got %T", ErrSnapshotType, kind, snapshot)
		}
		return b.tables.Publish(id, t.Clone()), nil
	case KindGame:
		g, ok := snapshot.(*entities.Game)
		if !ok || g == nil {
			return false, fmt.Errorf("%w: %s wants *entities.Game, got %T", ErrSnapshotType, kind, snapshot)
		}
		return b.games.Publish(id, g.Clone()), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// NotifyTable publishes the state of a table
func (b *Broker) NotifyTable(t *entities.Table) {
	if t == nil {
		return
	}
	b.Notify(KindTable, t.ID, t)
}

// NotifyGame publishes the state of a game
func (b *Broker) NotifyGame(g *entities.Game) {
	if g == nil {
		return
	}
	b.Notify(KindGame, g.ID, g)
}

// OpenStream subscribes a new connection to a resource. The returned stream
// must be closed, which Run does on return.
func (b *Broker) OpenStream(ctx context.Context, kind Kind, id string) (*Stream, error) {
	switch kind {
	case KindTable:
		return b.tables.Open(ctx, kind, id, b.opts)
	case KindGame:
		return b.games.Open(ctx, kind, id, b.opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Stats reports the registries' sizes
type Stats struct {
	Tables      int `json:"tables"`
	Games       int `json:"games"`
	Connections int `json:"connections"`
}

// Stats returns how many resources are watched and by how many streams
func (b *Broker) Stats() Stats {
	return Stats{
		Tables:      b.tables.Len(),
		Games:       b.games.Len(),
		Connections: b.tables.Connections() + b.games.Connections(),
	}
}

// Subscribers returns the number of streams watching a resource
func (b *Broker) Subscribers(kind Kind, id string) int {
	switch kind {
	case KindTable:
		return b.tables.Subscribers(id)
	case KindGame:
		return b.games.Subscribers(id)
	}
	return 0
}
