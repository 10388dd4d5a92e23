package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
	"github.com/rocketscienceinc/tycoon-backend/internal/finance"
	"github.com/rocketscienceinc/tycoon-backend/internal/pkg/keylock"
	"github.com/rocketscienceinc/tycoon-backend/internal/repository/memory"
)

// scriptedRandom replays values in order and returns 0 once they run out.
type scriptedRandom struct {
	mu     sync.Mutex
	values []int
	calls  int
}

func (that *scriptedRandom) IntN(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.calls++
	if len(that.values) == 0 {
		return 0
	}

	value := that.values[0]
	that.values = that.values[1:]

	return value % n
}

func (that *scriptedRandom) Calls() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.calls
}

type notifierMock struct {
	mock.Mock
}

func (that *notifierMock) UpdateCurrentGame(ctx context.Context, gameID int64) {
	that.Called(ctx, gameID)
}

func newNotifierMock() *notifierMock {
	notifier := &notifierMock{}
	notifier.On("UpdateCurrentGame", mock.Anything, mock.Anything).Return()

	return notifier
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store    *memory.Store
	random   *scriptedRandom
	notifier *notifierMock
	locker   *keylock.Locker

	consultants *ConsultantFactory
	games       GameService
	rounds      RoundService
	lobby       LobbyService
}

// newFixture wires the engine over the in-memory store. randomValues drive the market event draw,
// consultants are generated from a separate source that always yields 0.
func newFixture(t *testing.T, randomValues ...int) *fixture {
	t.Helper()

	logger := discardLogger()
	store := memory.NewStore()
	locker := keylock.New()
	notifier := newNotifierMock()
	random := &scriptedRandom{values: randomValues}
	consultants := NewConsultantFactory(&scriptedRandom{})

	games := NewGameService(logger, store.Games(), store.Rounds(), consultants, DefaultConsultantsPerRound, notifier)

	return &fixture{
		store:       store,
		random:      random,
		notifier:    notifier,
		locker:      locker,
		consultants: consultants,
		games:       games,
		rounds: NewRoundService(logger, RoundServiceDeps{
			GameRepo:    store.Games(),
			RoundRepo:   store.Rounds(),
			PlayerRepo:  store.Players(),
			CompanyRepo: store.Companies(),
			Games:       games,
			Applier:     NewActionApplier(consultants),
			Payroll:     finance.NewPayroll(logger),
			Locker:      locker,
			Random:      random,
			Notifier:    notifier,
		}),
		lobby: NewLobbyService(logger, store.Games(), store.Players(), store.Companies(), locker, notifier, entity.DefaultRounds),
	}
}

// startGame creates a game with the given players, starts it and opens round 1.
func (that *fixture) startGame(t *testing.T, rounds int, playerNames ...string) (*entity.Game, *entity.Round, []*entity.Player) {
	t.Helper()

	ctx := context.Background()

	game, err := that.lobby.CreateGame(ctx, t.Name(), rounds)
	require.NoError(t, err)

	players := make([]*entity.Player, 0, len(playerNames))
	for _, name := range playerNames {
		player, err := that.lobby.JoinGame(ctx, game.ID, name, name+" Inc")
		require.NoError(t, err)
		players = append(players, player)
	}

	game = that.game(t, game.ID)
	require.NoError(t, that.games.Start(ctx, game))

	round, err := that.games.StartRound(ctx, game)
	require.NoError(t, err)

	return game, round, players
}

func (that *fixture) game(t *testing.T, id int64) *entity.Game {
	t.Helper()

	game, err := that.store.Games().GetByID(context.Background(), id)
	require.NoError(t, err)

	return game
}

func (that *fixture) round(t *testing.T, id int64) *entity.Round {
	t.Helper()

	round, err := that.store.Rounds().GetByID(context.Background(), id)
	require.NoError(t, err)

	return round
}

func (that *fixture) company(t *testing.T, player *entity.Player) *entity.Company {
	t.Helper()

	company, err := that.store.Companies().GetByID(context.Background(), player.CompanyID)
	require.NoError(t, err)

	return company
}

// hire puts a consultant with the given yearly salary straight into the player's company.
func (that *fixture) hire(t *testing.T, player *entity.Player, salary int) *entity.Employee {
	t.Helper()

	company := that.company(t, player)
	employee := company.Hire(entity.NewConsultant("Basile", salary))
	require.NoError(t, that.store.Companies().Save(context.Background(), company))

	return employee
}

func (that *fixture) submit(
	t *testing.T,
	round *entity.Round,
	player *entity.Player,
	kind entity.ActionKind,
	payload string,
) (*entity.Round, error) {
	t.Helper()

	roundID, playerID := round.ID, player.ID

	return that.rounds.SubmitAction(context.Background(), SubmitActionParams{
		ActionType:    kind,
		ActionPayload: []byte(payload),
		RoundID:       &roundID,
		PlayerID:      &playerID,
	})
}
