package entities

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// PlayerStatusValue is a player's answer to a table invitation
type PlayerStatusValue string

const (
	PlayerInvited   PlayerStatusValue = "invited"
	PlayerConfirmed PlayerStatusValue = "confirmed"
	PlayerDeclined  PlayerStatusValue = "declined"
)

// Valid reports whether v is a known invitation answer
func (v PlayerStatusValue) Valid() bool {
	return v == PlayerInvited || v == PlayerConfirmed || v == PlayerDeclined
}

// PlayerStatus is one seat at a table
type PlayerStatus struct {
	UserID   string            `json:"user_id"`
	Username string            `json:"username"`
	Status   PlayerStatusValue `json:"status"`
}

// Table is a scheduled poker session
type Table struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Date           time.Time      `json:"date"`
	MinimumBuyIn   float64        `json:"minimum_buy_in"`
	MaximumPlayers int            `json:"maximum_players"`
	GameType       string         `json:"game_type"`
	BlindStructure string         `json:"blind_structure"`
	Description    *string        `json:"description"`
	Venue          string         `json:"venue"`
	GameID         *string        `json:"game_id"`
	CreatorID      string         `json:"creator_id"`
	Status         GameStatus     `json:"status"`
	Players        []PlayerStatus `json:"players"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableUpdate carries the optional fields of a partial table update
type TableUpdate struct {
	Name           *string     `json:"name,omitempty"`
	Date           *time.Time  `json:"date,omitempty"`
	MinimumBuyIn   *float64    `json:"minimum_buy_in,omitempty"`
	MaximumPlayers *int        `json:"maximum_players,omitempty"`
	GameType       *string     `json:"game_type,omitempty"`
	BlindStructure *string     `json:"blind_structure,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Venue          *string     `json:"venue,omitempty"`
	Status         *GameStatus `json:"status,omitempty"`
}

// Empty reports whether the update changes nothing
func (u TableUpdate) Empty() bool {
	return u.Name == nil && u.Date == nil && u.MinimumBuyIn == nil && u.MaximumPlayers == nil &&
		u.GameType == nil && u.BlindStructure == nil && u.Description == nil && u.Venue == nil &&
		u.Status == nil
}

// Validate checks the fields a table needs before it is stored
func (t *Table) Validate() error {
	var missing []string
	if strings.TrimSpace(t.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(t.GameType) == "" {
		missing = append(missing, "game_type")
	}
	if strings.TrimSpace(t.Venue) == "" {
		missing = append(missing, "venue")
	}
	if t.Date.IsZero() {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if t.MinimumBuyIn < 0 {
		return fmt.Errorf("%w: minimum_buy_in must not be negative", ErrInvalidInput)
	}
	if t.MaximumPlayers < 2 {
		return fmt.Errorf("%w: maximum_players must be at least 2", ErrInvalidInput)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, t.Status)
	}
	return nil
}

// Player returns the seat of userID, or nil
func (t *Table) Player(userID string) *PlayerStatus {
	for i := range t.Players {
		if t.Players[i].UserID == userID {
			return &t.Players[i]
		}
	}
	return nil
}

// Clone returns a deep copy so that snapshots handed to the live broker are
// never mutated by later writes.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := *t
	c.Players = slices.Clone(t.Players)
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.GameID != nil {
		g := *t.GameID
		c.GameID = &g
	}
	return &c
}
