package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
)

// Notifier receives every table and game that was written successfully.
// Implementations must not fail or block the caller.
type Notifier interface {
	NotifyTable(t *entities.Table)
	NotifyGame(g *entities.Game)
}

// Caller identifies the user performing an operation
type Caller struct {
	UserID   string
	Username string
}

func (c Caller) validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: missing user id", entities.ErrInvalidInput)
	}
	return nil
}

// clock and id generation are swappable in tests
type deps struct {
	now   func() time.Time
	newID func() string
}

func defaultDeps() deps {
	return deps{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{entities.ErrForbidden}, args...)...)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{entities.ErrInvalidInput}, args...)...)
}
