package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

func TestLobbyService_CreateGame(t *testing.T) {
	t.Run("DefaultRounds", func(t *testing.T) {
		f := newFixture(t)

		game, err := f.lobby.CreateGame(context.Background(), "  acme  ", 0)

		require.NoError(t, err)
		assert.NotZero(t, game.ID)
		assert.Equal(t, "acme", game.Name)
		assert.Equal(t, entity.DefaultRounds, game.RoundLimit)
		assert.True(t, game.IsWaiting())
	})

	t.Run("Invalid", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.lobby.CreateGame(context.Background(), " ", -1)

		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Equal(t, []string{"game name is required", "rounds must be positive"}, apperror.Messages(err))
	})

	t.Run("NameTaken", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.lobby.CreateGame(context.Background(), "acme", 2)
		require.NoError(t, err)

		_, err = f.lobby.CreateGame(context.Background(), "acme", 2)

		require.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestLobbyService_JoinGame(t *testing.T) {
	t.Run("FoundsCompany", func(t *testing.T) {
		f := newFixture(t)
		game, err := f.lobby.CreateGame(context.Background(), "acme", 2)
		require.NoError(t, err)

		// When: a player joins
		player, err := f.lobby.JoinGame(context.Background(), game.ID, "alice", "Alice Inc")

		// Then: the player is seated with a funded company
		require.NoError(t, err)
		require.True(t, player.HasCompany())

		company := f.company(t, player)
		assert.Equal(t, player.ID, company.PlayerID)
		assert.Equal(t, "Alice Inc", company.Name)
		assert.Equal(t, entity.DefaultTreasury, company.Treasury)

		stored := f.game(t, game.ID)
		require.Len(t, stored.Players, 1)
		assert.Equal(t, company.ID, stored.Players[0].CompanyID)
		f.notifier.AssertCalled(t, "UpdateCurrentGame", mock.Anything, game.ID)
	})

	t.Run("Full", func(t *testing.T) {
		f := newFixture(t)
		game, err := f.lobby.CreateGame(context.Background(), "acme", 2)
		require.NoError(t, err)

		for i := range entity.MaxPlayers {
			_, err = f.lobby.JoinGame(context.Background(), game.ID, fmt.Sprintf("player-%d", i), "Co")
			require.NoError(t, err)
		}

		_, err = f.lobby.JoinGame(context.Background(), game.ID, "late", "Co")

		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
		assert.Len(t, f.game(t, game.ID).Players, entity.MaxPlayers)
	})

	t.Run("AlreadyStarted", func(t *testing.T) {
		f := newFixture(t)
		game, _, _ := f.startGame(t, 2, "alice")

		_, err := f.lobby.JoinGame(context.Background(), game.ID, "bob", "Bob Inc")

		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})

	t.Run("NameTaken", func(t *testing.T) {
		f := newFixture(t)
		game, err := f.lobby.CreateGame(context.Background(), "acme", 2)
		require.NoError(t, err)
		_, err = f.lobby.JoinGame(context.Background(), game.ID, "alice", "Alice Inc")
		require.NoError(t, err)

		_, err = f.lobby.JoinGame(context.Background(), game.ID, "alice", "Other Inc")

		require.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("UnknownGame", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.lobby.JoinGame(context.Background(), 404, "alice", "Alice Inc")

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("MissingNames", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.lobby.JoinGame(context.Background(), 1, "", "")

		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Len(t, apperror.Messages(err), 2)
	})
}

func TestSnapshotter_Snapshot(t *testing.T) {
	f := newFixture(t)
	game, _, players := f.startGame(t, 2, "alice", "bob")
	f.hire(t, players[1], 3_650)

	overview, err := NewSnapshotter(f.store.Games(), f.store.Companies()).Snapshot(context.Background(), game.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, overview.PlayersCount)
	assert.Equal(t, 1, overview.CurrentRoundCount)
	require.NotNil(t, overview.Players[1].Company)
	assert.Len(t, overview.Players[1].Company.Employees, 1)
	assert.Len(t, overview.Consultants, DefaultConsultantsPerRound)
}
