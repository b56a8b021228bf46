package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/domain/repositories"
)

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func newMockNotifier() *MockNotifier {
	m := &MockNotifier{}
	m.On("NotifyTable", mock.Anything).Return()
	m.On("NotifyGame", mock.Anything).Return()
	return m
}

// NotifyTable mocks the NotifyTable method
func (m *MockNotifier) NotifyTable(t *entities.Table) {
	m.Called(t.Clone())
}

// NotifyGame mocks the NotifyGame method
func (m *MockNotifier) NotifyGame(g *entities.Game) {
	m.Called(g.Clone())
}

// lastTable returns the most recent table notified, or nil
func (m *MockNotifier) lastTable() *entities.Table {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == "NotifyTable" {
			return m.Calls[i].Arguments.Get(0).(*entities.Table)
		}
	}
	return nil
}

// lastGame returns the most recent game notified, or nil
func (m *MockNotifier) lastGame() *entities.Game {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == "NotifyGame" {
			return m.Calls[i].Arguments.Get(0).(*entities.Game)
		}
	}
	return nil
}

// MockTableRepository is a mock implementation of repositories.TableRepository
type MockTableRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockTableRepository) Create(ctx context.Context, table *entities.Table) error {
	return m.Called(ctx, table).Error(0)
}

// GetByID mocks the GetByID method
func (m *MockTableRepository) GetByID(ctx context.Context, id string) (*entities.Table, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*entities.Table); ok {
		return t.Clone(), args.Error(1)
	}
	return nil, args.Error(1)
}

// List mocks the List method
func (m *MockTableRepository) List(ctx context.Context, filter repositories.TableFilter) ([]*entities.Table, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entities.Table), args.Error(1)
}

// Update mocks the Update method
func (m *MockTableRepository) Update(ctx context.Context, table *entities.Table) error {
	return m.Called(ctx, table).Error(0)
}

// Delete mocks the Delete method
func (m *MockTableRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockGameRepository is a mock implementation of repositories.GameRepository
type MockGameRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockGameRepository) Create(ctx context.Context, game *entities.Game) error {
	return m.Called(ctx, game).Error(0)
}

// GetByID mocks the GetByID method
func (m *MockGameRepository) GetByID(ctx context.Context, id string) (*entities.Game, error) {
	args := m.Called(ctx, id)
	if g, ok := args.Get(0).(*entities.Game); ok {
		return g.Clone(), args.Error(1)
	}
	return nil, args.Error(1)
}

// List mocks the List method
func (m *MockGameRepository) List(ctx context.Context, filter repositories.GameFilter) ([]*entities.Game, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entities.Game), args.Error(1)
}

// Update mocks the Update method
func (m *MockGameRepository) Update(ctx context.Context, game *entities.Game) error {
	return m.Called(ctx, game).Error(0)
}

// CountForTable mocks the CountForTable method
func (m *MockGameRepository) CountForTable(ctx context.Context, tableID string) (int, error) {
	args := m.Called(ctx, tableID)
	return args.Int(0), args.Error(1)
}
