package entities

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTable() *Table {
	return &Table{
		Name:           "Friday night",
		Date:           time.Date(2024, 5, 3, 20, 0, 0, 0, time.UTC),
		MinimumBuyIn:   50,
		MaximumPlayers: 8,
		GameType:       "texas_holdem",
		BlindStructure: "1/2",
		Venue:          "Dan's place",
		Status:         StatusScheduled,
		Players:        []PlayerStatus{{UserID: "u1", Username: "dan", Status: PlayerConfirmed}},
	}
}

func TestTransition(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		from, to GameStatus
		wantErr  error
	}{
		{StatusScheduled, StatusInProgress, nil},
		{StatusInProgress, StatusCompleted, nil},
		{StatusScheduled, StatusCancelled, nil},
		{StatusInProgress, StatusCancelled, nil},
		{StatusScheduled, StatusScheduled, nil},
		{StatusCompleted, StatusCompleted, nil},
		{StatusScheduled, StatusCompleted, ErrInvalidTransition},
		{StatusCompleted, StatusInProgress, ErrInvalidTransition},
		{StatusCancelled, StatusInProgress, ErrInvalidTransition},
		{StatusInProgress, StatusScheduled, ErrInvalidTransition},
		{StatusScheduled, GameStatus("paused"), ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			got, err := Transition(ctx, tt.from, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got)
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.False(t, GameStatus("").Valid())
}

func TestTableValidate(t *testing.T) {
	assert.NoError(t, validTable().Validate())

	missing := validTable()
	missing.Name = " "
	missing.Venue = ""
	err := missing.Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "name, venue")

	small := validTable()
	small.MaximumPlayers = 1
	assert.ErrorIs(t, small.Validate(), ErrInvalidInput)

	badStatus := validTable()
	badStatus.Status = "later"
	assert.ErrorIs(t, badStatus.Validate(), ErrInvalidInput)
}

func TestTableCloneIsDeep(t *testing.T) {
	desc := "bring snacks"
	table := validTable()
	table.Description = &desc

	clone := table.Clone()
	clone.Players[0].Status = PlayerDeclined
	*clone.Description = "no snacks"

	assert.Equal(t, PlayerConfirmed, table.Players[0].Status)
	assert.Equal(t, "bring snacks", *table.Description)
	assert.Nil(t, (*Table)(nil).Clone())
}

func TestGameMoneyHelpers(t *testing.T) {
	game := &Game{
		TableID: "t1",
		Venue:   "club",
		Date:    time.Now(),
		Status:  StatusInProgress,
		Players: []GamePlayer{
			{UserID: "u1", BuyIns: []BuyIn{{Amount: 50}, {Amount: 25}}, CashOut: 100},
			{UserID: "u2", BuyIns: []BuyIn{{Amount: 25}}, CashOut: 0},
		},
		TotalPot:         100,
		AvailableCashOut: 0,
	}
	require.NoError(t, game.Validate())

	assert.Equal(t, 75.0, game.Player("u1").TotalBuyIn())
	assert.Nil(t, game.Player("nobody"))
	assert.True(t, game.Balanced())

	game.AvailableCashOut = 10
	assert.False(t, game.Balanced())
}

func TestGameCloneKeepsEmptySlices(t *testing.T) {
	game := &Game{Players: []GamePlayer{{UserID: "u1", BuyIns: []BuyIn{}, NotableHands: []NotableHand{}}}}

	data, err := json.Marshal(game.Clone())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"buy_ins":[]`)
	assert.Contains(t, string(data), `"notable_hands":[]`)

	clone := game.Clone()
	clone.Players[0].BuyIns = append(clone.Players[0].BuyIns, BuyIn{Amount: 1})
	assert.Empty(t, game.Players[0].BuyIns)
}

func TestDurationBetween(t *testing.T) {
	start := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, Duration{Hours: 2, Minutes: 35}, DurationBetween(start, start.Add(2*time.Hour+35*time.Minute+59*time.Second)))
	assert.Equal(t, Duration{}, DurationBetween(start, start.Add(-time.Hour)))
}

func TestUpdatesEmpty(t *testing.T) {
	assert.True(t, TableUpdate{}.Empty())
	venue := "garage"
	assert.False(t, TableUpdate{Venue: &venue}.Empty())
	assert.True(t, GameUpdate{}.Empty())
	assert.False(t, GameUpdate{Venue: &venue}.Empty())
}
