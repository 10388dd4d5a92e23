package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
)

func TestNewGame(t *testing.T) {
	t.Run("DefaultRounds", func(t *testing.T) {
		// When: a game is created without a round limit
		game := NewGame("acme", 0)

		// Then: the default limit is used and the game waits for players
		assert.Equal(t, DefaultRounds, game.RoundLimit)
		assert.True(t, game.IsWaiting())
	})

	t.Run("ExplicitRounds", func(t *testing.T) {
		game := NewGame("acme", 4)

		assert.Equal(t, 4, game.RoundLimit)
	})
}

func TestGame_StatusTransitions(t *testing.T) {
	// Given: a waiting game
	game := NewGame("acme", 2)

	// When: it is started twice
	require.NoError(t, game.Start())
	err := game.Start()

	// Then: the second start fails and the status is unchanged
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.Equal(t, StatusInProgress, game.Status)

	// When: it is finished twice
	require.NoError(t, game.Finish())
	err = game.Finish()

	// Then: the second finish fails with ErrAlreadyFinished
	require.ErrorIs(t, err, apperror.ErrAlreadyFinished)
	require.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.Equal(t, StatusFinished, game.Status)

	// Then: a finished game never goes back
	require.ErrorIs(t, game.Start(), apperror.ErrInvalidTransition)
	assert.True(t, game.IsFinished())
}

func TestGame_CanBeJoined(t *testing.T) {
	game := NewGame("acme", 2)

	for i := range MaxPlayers {
		require.True(t, game.CanBeJoined(), "seat %d", i)
		game.Players = append(game.Players, &Player{ID: int64(i + 1)})
	}

	assert.False(t, game.CanBeJoined())

	game.Players = game.Players[:1]
	require.NoError(t, game.Start())

	assert.False(t, game.CanBeJoined())
}

func TestGame_NewRound(t *testing.T) {
	t.Run("NotStarted", func(t *testing.T) {
		game := NewGame("acme", 2)

		round, err := game.NewRound()

		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Nil(t, round)
		assert.Empty(t, game.Rounds)
	})

	t.Run("ContiguousOrder", func(t *testing.T) {
		// Given: a started game with two rounds
		game := NewGame("acme", 2)
		game.ID = 7
		require.NoError(t, game.Start())

		// When: rounds are created until the limit
		first, err := game.NewRound()
		require.NoError(t, err)
		second, err := game.NewRound()
		require.NoError(t, err)

		// Then: orders are 1 and 2 and no third round is possible
		assert.Equal(t, 1, first.Order)
		assert.Equal(t, 2, second.Order)
		assert.Equal(t, int64(7), second.GameID)
		assert.Same(t, second, game.CurrentRound())
		assert.False(t, game.CanStartNewRound())

		_, err = game.NewRound()
		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Len(t, game.Rounds, 2)
	})
}

func TestGame_TakeConsultant(t *testing.T) {
	game := NewGame("acme", 1)
	first := NewConsultant("Ada", 36_500)
	second := NewConsultant("Hugo", 40_150)
	game.AddConsultant(first)
	game.AddConsultant(second)

	taken, ok := game.TakeConsultant(first.ID)

	require.True(t, ok)
	assert.Same(t, first, taken)
	assert.Equal(t, []*Consultant{second}, game.Consultants)

	_, ok = game.TakeConsultant(first.ID)
	assert.False(t, ok)
}
