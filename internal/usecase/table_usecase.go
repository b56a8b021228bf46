package usecase

import (
	"context"
	"fmt"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/domain/repositories"
	"github.com/pokertrack/pokertrack-server/internal/logger"
)

// TableUseCase handles table-related operations
type TableUseCase struct {
	tables   repositories.TableRepository
	games    repositories.GameRepository
	notifier Notifier
	deps
}

// NewTableUseCase creates a new table use case
func NewTableUseCase(tables repositories.TableRepository, games repositories.GameRepository, notifier Notifier) *TableUseCase {
	return &TableUseCase{
		tables:   tables,
		games:    games,
		notifier: notifier,
		deps:     defaultDeps(),
	}
}

// CreateTable stores a new scheduled table. The caller becomes its creator
// and first confirmed player.
func (uc *TableUseCase) CreateTable(ctx context.Context, caller Caller, in *entities.Table) (*entities.Table, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	table := in.Clone()
	table.ID = uc.newID()
	table.CreatorID = caller.UserID
	table.Status = entities.StatusScheduled
	table.GameID = nil
	table.Players = []entities.PlayerStatus{{
		UserID:   caller.UserID,
		Username: caller.Username,
		Status:   entities.PlayerConfirmed,
	}}
	table.CreatedAt = now
	table.UpdatedAt = now

	if err := table.Validate(); err != nil {
		return nil, err
	}
	if err := uc.tables.Create(ctx, table); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	logger.Info("Table %s created by %s", table.ID, caller.UserID)
	uc.notifier.NotifyTable(table)
	return table, nil
}

// GetTable returns a table the caller created or is seated at
func (uc *TableUseCase) GetTable(ctx context.Context, caller Caller, id string) (*entities.Table, error) {
	table, err := uc.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if table.CreatorID != caller.UserID && table.Player(caller.UserID) == nil {
		return nil, forbidden("access denied")
	}
	return table, nil
}

// ListTables returns the caller's tables, newest first
func (uc *TableUseCase) ListTables(ctx context.Context, caller Caller, status entities.GameStatus, offset, limit int) ([]*entities.Table, error) {
	if err := caller.validate(); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}
	return uc.tables.List(ctx, repositories.TableFilter{
		PlayerID: caller.UserID,
		Status:   status,
		Offset:   offset,
		Limit:    limit,
	})
}

// UpdateTable applies a partial update. Only the creator may modify a table;
// status changes must follow the lifecycle.
func (uc *TableUseCase) UpdateTable(ctx context.Context, caller Caller, id string, upd entities.TableUpdate) (*entities.Table, error) {
	table, err := uc.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if table.CreatorID != caller.UserID {
		return nil, forbidden("only the creator can modify the table")
	}
	if upd.Empty() {
		return table, nil
	}

	if upd.Name != nil {
		table.Name = *upd.Name
	}
	if upd.Date != nil {
		table.Date = *upd.Date
	}
	if upd.MinimumBuyIn != nil {
		table.MinimumBuyIn = *upd.MinimumBuyIn
	}
	if upd.MaximumPlayers != nil {
		table.MaximumPlayers = *upd.MaximumPlayers
	}
	if upd.GameType != nil {
		table.GameType = *upd.GameType
	}
	if upd.BlindStructure != nil {
		table.BlindStructure = *upd.BlindStructure
	}
	if upd.Description != nil {
		d := *upd.Description
		table.Description = &d
	}
	if upd.Venue != nil {
		table.Venue = *upd.Venue
	}
	if upd.Status != nil {
		if table.Status, err = entities.Transition(ctx, table.Status, *upd.Status); err != nil {
			return nil, err
		}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return uc.save(ctx, table)
}

// InvitePlayers seats new players as invited. Users already at the table are
// skipped. Only the creator may invite.
func (uc *TableUseCase) InvitePlayers(ctx context.Context, caller Caller, id string, invitees []entities.PlayerStatus) (*entities.Table, error) {
	for _, p := range invitees {
		if p.UserID == "" {
			return nil, invalid("invitee without user_id")
		}
	}
	table, err := uc.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if table.CreatorID != caller.UserID {
		return nil, forbidden("only the creator can invite players")
	}
	if table.Status.Terminal() {
		return nil, invalid("table is %s", table.Status)
	}

	added := 0
	for _, p := range invitees {
		if table.Player(p.UserID) != nil {
			continue
		}
		table.Players = append(table.Players, entities.PlayerStatus{
			UserID:   p.UserID,
			Username: p.Username,
			Status:   entities.PlayerInvited,
		})
		added++
	}
	if added == 0 {
		return table, nil
	}
	return uc.save(ctx, table)
}

// RespondToInvite records the caller's answer to an invitation. While the
// table's game is running, confirming also seats the caller in the game and
// declining removes them from it as long as they have not bought in. The
// answer stands even when the game cannot be updated.
func (uc *TableUseCase) RespondToInvite(ctx context.Context, caller Caller, id string, answer entities.PlayerStatusValue) (*entities.Table, error) {
	if answer != entities.PlayerConfirmed && answer != entities.PlayerDeclined {
		return nil, invalid("answer must be %s or %s", entities.PlayerConfirmed, entities.PlayerDeclined)
	}
	table, err := uc.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	seat := table.Player(caller.UserID)
	if seat == nil {
		return nil, invalid("cannot join table")
	}
	seat.Status = answer

	table, err = uc.save(ctx, table)
	if err != nil {
		return nil, err
	}
	if table.GameID != nil && table.Status == entities.StatusInProgress {
		if err := uc.syncGamePlayer(ctx, *table.GameID, *seat, answer); err != nil {
			logger.Warn("Game %s of table %s not synced for %s: %v", *table.GameID, table.ID, caller.UserID, err)
		}
	}
	return table, nil
}

func (uc *TableUseCase) syncGamePlayer(ctx context.Context, gameID string, seat entities.PlayerStatus, answer entities.PlayerStatusValue) error {
	game, err := uc.games.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("load game %s: %w", gameID, err)
	}

	switch existing := game.Player(seat.UserID); {
	case answer == entities.PlayerConfirmed && existing == nil:
		game.Players = append(game.Players, entities.GamePlayer{
			UserID:       seat.UserID,
			Username:     seat.Username,
			BuyIns:       []entities.BuyIn{},
			NotableHands: []entities.NotableHand{},
		})
	case answer == entities.PlayerDeclined && existing != nil && len(existing.BuyIns) == 0:
		players := game.Players[:0]
		for _, p := range game.Players {
			if p.UserID != seat.UserID {
				players = append(players, p)
			}
		}
		game.Players = players
	default:
		return nil
	}

	game.UpdatedAt = uc.now()
	if err := uc.games.Update(ctx, game); err != nil {
		return fmt.Errorf("update game %s: %w", gameID, err)
	}
	uc.notifier.NotifyGame(game)
	return nil
}

// DeleteTable removes a table. Tables that already hosted games are
// cancelled instead so their history survives.
func (uc *TableUseCase) DeleteTable(ctx context.Context, caller Caller, id string) error {
	table, err := uc.tables.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if table.CreatorID != caller.UserID {
		return forbidden("only the creator can delete the table")
	}

	count, err := uc.games.CountForTable(ctx, id)
	if err != nil {
		return fmt.Errorf("count games of table %s: %w", id, err)
	}
	if count == 0 {
		if err := uc.tables.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete table: %w", err)
		}
		logger.Info("Table %s deleted by %s", id, caller.UserID)
		return nil
	}

	if table.Status, err = entities.Transition(ctx, table.Status, entities.StatusCancelled); err != nil {
		return err
	}
	_, err = uc.save(ctx, table)
	return err
}

func (uc *TableUseCase) save(ctx context.Context, table *entities.Table) (*entities.Table, error) {
	table.UpdatedAt = uc.now()
	if err := uc.tables.Update(ctx, table); err != nil {
		return nil, fmt.Errorf("update table: %w", err)
	}
	uc.notifier.NotifyTable(table)
	return table, nil
}
