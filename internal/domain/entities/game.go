package entities

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// BuyIn is one purchase of chips
type BuyIn struct {
	Amount float64   `json:"amount"`
	Time   time.Time `json:"time"`
}

// CashOut is a request to convert chips back to money
type CashOut struct {
	Amount float64   `json:"amount"`
	Time   time.Time `json:"time"`
}

// NotableHand is a hand a player wants to remember
type NotableHand struct {
	HandID      string  `json:"hand_id"`
	Description string  `json:"description"`
	AmountWon   float64 `json:"amount_won"`
}

// GamePlayer is a player's money flow within one game
type GamePlayer struct {
	UserID       string        `json:"user_id"`
	Username     string        `json:"username"`
	BuyIns       []BuyIn       `json:"buy_ins"`
	CashOut      float64       `json:"cash_out"`
	NetProfit    float64       `json:"net_profit"`
	NotableHands []NotableHand `json:"notable_hands"`
}

// TotalBuyIn sums every buy-in of the player
func (p *GamePlayer) TotalBuyIn() float64 {
	var total float64
	for _, b := range p.BuyIns {
		total += b.Amount
	}
	return total
}

// Duration is the wall time a game lasted
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// DurationBetween rounds the elapsed time down to whole minutes
func DurationBetween(start, end time.Time) Duration {
	d := end.Sub(start)
	if d < 0 {
		d = 0
	}
	return Duration{Hours: int(d / time.Hour), Minutes: int((d % time.Hour) / time.Minute)}
}

// Game is the live play that happens at a table
type Game struct {
	ID               string       `json:"id"`
	TableID          string       `json:"table_id"`
	Date             time.Time    `json:"date"`
	Venue            string       `json:"venue"`
	Players          []GamePlayer `json:"players"`
	Status           GameStatus   `json:"status"`
	Duration         Duration     `json:"duration"`
	CreatorID        string       `json:"creator_id"`
	TotalPot         float64      `json:"total_pot"`
	AvailableCashOut float64      `json:"available_cash_out"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// GameUpdate carries the optional fields of a partial game update
type GameUpdate struct {
	Venue    *string       `json:"venue,omitempty"`
	Duration *Duration     `json:"duration,omitempty"`
	Players  *[]GamePlayer `json:"players,omitempty"`
	TotalPot *float64      `json:"total_pot,omitempty"`
	Status   *GameStatus   `json:"status,omitempty"`
}

// Empty reports whether the update changes nothing
func (u GameUpdate) Empty() bool {
	return u.Venue == nil && u.Duration == nil && u.Players == nil && u.TotalPot == nil && u.Status == nil
}

// Validate checks the fields a game needs before it is stored
func (g *Game) Validate() error {
	var missing []string
	if strings.TrimSpace(g.TableID) == "" {
		missing = append(missing, "table_id")
	}
	if strings.TrimSpace(g.Venue) == "" {
		missing = append(missing, "venue")
	}
	if g.Date.IsZero() {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !g.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, g.Status)
	}
	for _, p := range g.Players {
		if p.UserID == "" {
			return fmt.Errorf("%w: player without user_id", ErrInvalidInput)
		}
	}
	return nil
}

// Player returns the player entry of userID, or nil
func (g *Game) Player(userID string) *GamePlayer {
	for i := range g.Players {
		if g.Players[i].UserID == userID {
			return &g.Players[i]
		}
	}
	return nil
}

// HasParticipant reports whether userID plays in or created the game
func (g *Game) HasParticipant(userID string) bool {
	return g.CreatorID == userID || g.Player(userID) != nil
}

// MoneyEpsilon absorbs float rounding when comparing amounts
const MoneyEpsilon = 1e-6

// Balanced reports whether every chip bought has been cashed out
func (g *Game) Balanced() bool {
	var cashed float64
	for _, p := range g.Players {
		cashed += p.CashOut
	}
	return math.Abs(g.AvailableCashOut) < MoneyEpsilon && math.Abs(cashed-g.TotalPot) < MoneyEpsilon
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Players = slices.Clone(g.Players)
	for i, p := range c.Players {
		p.BuyIns = slices.Clone(p.BuyIns)
		p.NotableHands = slices.Clone(p.NotableHands)
		c.Players[i] = p
	}
	return &c
}
