package usecase

import (
	"context"
	"fmt"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/domain/repositories"
	"github.com/pokertrack/pokertrack-server/internal/logger"
)

// DefaultRecentGames is the size of the recent games listing
const DefaultRecentGames = 5

// GameUseCase handles game-related operations
type GameUseCase struct {
	games    repositories.GameRepository
	tables   repositories.TableRepository
	notifier Notifier
	deps
}

// NewGameUseCase creates a new game use case
func NewGameUseCase(games repositories.GameRepository, tables repositories.TableRepository, notifier Notifier) *GameUseCase {
	return &GameUseCase{
		games:    games,
		tables:   tables,
		notifier: notifier,
		deps:     defaultDeps(),
	}
}

// CreateGame starts a game at a table. The table moves to in_progress and
// points at the new game. A table runs one game at a time.
func (uc *GameUseCase) CreateGame(ctx context.Context, caller Caller, in *entities.Game) (*entities.Game, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	table, err := uc.tables.GetByID(ctx, in.TableID)
	if err != nil {
		return nil, err
	}
	if table.CreatorID != caller.UserID && table.Player(caller.UserID) == nil {
		return nil, forbidden("not a player at table %s", table.ID)
	}
	if table.GameID != nil && table.Status == entities.StatusInProgress {
		return nil, invalid("table %s already has game %s in progress", table.ID, *table.GameID)
	}
	tableStatus, err := entities.Transition(ctx, table.Status, entities.StatusInProgress)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	game := in.Clone()
	game.ID = uc.newID()
	game.CreatorID = caller.UserID
	if game.Status == "" {
		game.Status = entities.StatusInProgress
	}
	if game.Status != entities.StatusInProgress && game.Status != entities.StatusScheduled {
		return nil, invalid("a new game cannot be %s", game.Status)
	}
	if game.Players == nil {
		game.Players = []entities.GamePlayer{}
	}
	game.TotalPot = 0
	for i := range game.Players {
		p := &game.Players[i]
		if p.BuyIns == nil {
			p.BuyIns = []entities.BuyIn{}
		}
		if p.NotableHands == nil {
			p.NotableHands = []entities.NotableHand{}
		}
		game.TotalPot += p.TotalBuyIn()
	}
	game.AvailableCashOut = game.TotalPot
	game.Duration = entities.Duration{}
	game.CreatedAt = now
	game.UpdatedAt = now

	if err := game.Validate(); err != nil {
		return nil, err
	}
	if err := uc.games.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	logger.Info("Game %s started at table %s by %s", game.ID, table.ID, caller.UserID)
	uc.notifier.NotifyGame(game)

	gameID := game.ID
	table.GameID = &gameID
	table.Status = tableStatus
	table.UpdatedAt = now
	if err := uc.tables.Update(ctx, table); err != nil {
		return nil, fmt.Errorf("update table %s: %w", table.ID, err)
	}
	uc.notifier.NotifyTable(table)
	return game, nil
}

// GetGame returns a game the caller created or plays in
func (uc *GameUseCase) GetGame(ctx context.Context, caller Caller, id string) (*entities.Game, error) {
	game, err := uc.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !game.HasParticipant(caller.UserID) {
		return nil, forbidden("access denied")
	}
	return game, nil
}

// ListGames returns the caller's games, newest first
func (uc *GameUseCase) ListGames(ctx context.Context, caller Caller, filter repositories.GameFilter) ([]*entities.Game, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown status %q", filter.Status)
	}
	filter.PlayerID = caller.UserID
	return uc.games.List(ctx, filter)
}

// RecentGames returns the caller's latest games
func (uc *GameUseCase) RecentGames(ctx context.Context, caller Caller, limit int) ([]*entities.Game, error) {
	if limit <= 0 {
		limit = DefaultRecentGames
	}
	return uc.ListGames(ctx, caller, repositories.GameFilter{Limit: limit})
}

// UpdateGame applies a partial update. Only the creator may modify a game.
func (uc *GameUseCase) UpdateGame(ctx context.Context, caller Caller, id string, upd entities.GameUpdate) (*entities.Game, error) {
	game, err := uc.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.CreatorID != caller.UserID {
		return nil, forbidden("only the creator can modify the game")
	}
	if upd.Empty() {
		return game, nil
	}

	if upd.Venue != nil {
		game.Venue = *upd.Venue
	}
	if upd.Duration != nil {
		game.Duration = *upd.Duration
	}
	if upd.Players != nil {
		game.Players = append([]entities.GamePlayer{}, *upd.Players...)
	}
	if upd.TotalPot != nil {
		game.TotalPot = *upd.TotalPot
	}
	if upd.Status != nil {
		if game.Status, err = entities.Transition(ctx, game.Status, *upd.Status); err != nil {
			return nil, err
		}
	}
	if err := game.Validate(); err != nil {
		return nil, err
	}
	return uc.save(ctx, game)
}

// AddBuyIn records a purchase of chips by the caller. The pot and the
// amount available for cash-out grow by the same amount.
func (uc *GameUseCase) AddBuyIn(ctx context.Context, caller Caller, id string, buyIn entities.BuyIn) (*entities.Game, error) {
	if buyIn.Amount <= 0 {
		return nil, invalid("buy-in amount must be positive")
	}
	game, player, err := uc.playerGame(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if buyIn.Time.IsZero() {
		buyIn.Time = uc.now()
	}

	player.BuyIns = append(player.BuyIns, buyIn)
	player.NetProfit = player.CashOut - player.TotalBuyIn()
	game.TotalPot += buyIn.Amount
	game.AvailableCashOut += buyIn.Amount
	return uc.save(ctx, game)
}

// CashOut converts chips of the caller back to money. The amount may not
// exceed what is still available in the game.
func (uc *GameUseCase) CashOut(ctx context.Context, caller Caller, id string, cashOut entities.CashOut) (*entities.Game, error) {
	if cashOut.Amount <= 0 {
		return nil, invalid("cash-out amount must be positive")
	}
	game, player, err := uc.playerGame(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if cashOut.Amount > game.AvailableCashOut+entities.MoneyEpsilon {
		return nil, invalid("invalid cash out amount: %.2f available", game.AvailableCashOut)
	}

	player.CashOut += cashOut.Amount
	player.NetProfit = player.CashOut - player.TotalBuyIn()
	game.AvailableCashOut -= cashOut.Amount
	if game.AvailableCashOut < entities.MoneyEpsilon {
		game.AvailableCashOut = 0
	}
	return uc.save(ctx, game)
}

// EndGame completes a game once every chip has been cashed out. Only the
// creator may end a game; its table is completed along with it.
func (uc *GameUseCase) EndGame(ctx context.Context, caller Caller, id string) (*entities.Game, error) {
	game, err := uc.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.CreatorID != caller.UserID {
		return nil, forbidden("only the game creator can end the game")
	}
	if game.Status.Terminal() {
		return nil, invalid("game is already %s", game.Status)
	}
	if !game.Balanced() {
		return nil, invalid("cash-outs do not match buy-ins")
	}
	if game.Status, err = entities.Transition(ctx, game.Status, entities.StatusCompleted); err != nil {
		return nil, err
	}
	game.Duration = entities.DurationBetween(game.CreatedAt, uc.now())

	game, err = uc.save(ctx, game)
	if err != nil {
		return nil, err
	}
	logger.Info("Game %s ended after %dh%02dm", game.ID, game.Duration.Hours, game.Duration.Minutes)
	uc.completeTable(ctx, game)
	return game, nil
}

// completeTable moves the game's table to completed when it still points at
// the game. The game is already stored, so failures are only logged.
func (uc *GameUseCase) completeTable(ctx context.Context, game *entities.Game) {
	table, err := uc.tables.GetByID(ctx, game.TableID)
	if err != nil {
		logger.Warn("Table %s of game %s not updated: %v", game.TableID, game.ID, err)
		return
	}
	if table.GameID == nil || *table.GameID != game.ID {
		return
	}
	if table.Status, err = entities.Transition(ctx, table.Status, entities.StatusCompleted); err != nil {
		logger.Warn("Table %s of game %s not completed: %v", table.ID, game.ID, err)
		return
	}
	table.UpdatedAt = uc.now()
	if err := uc.tables.Update(ctx, table); err != nil {
		logger.Warn("Table %s of game %s not updated: %v", table.ID, game.ID, err)
		return
	}
	uc.notifier.NotifyTable(table)
}

// playerGame loads a running game and the caller's entry in it
func (uc *GameUseCase) playerGame(ctx context.Context, caller Caller, id string) (*entities.Game, *entities.GamePlayer, error) {
	game, err := uc.games.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	player := game.Player(caller.UserID)
	if player == nil {
		return nil, nil, forbidden("not a player in this game")
	}
	if game.Status.Terminal() {
		return nil, nil, invalid("game is %s", game.Status)
	}
	return game, player, nil
}

func (uc *GameUseCase) save(ctx context.Context, game *entities.Game) (*entities.Game, error) {
	game.UpdatedAt = uc.now()
	if err := uc.games.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}
	uc.notifier.NotifyGame(game)
	return game, nil
}
