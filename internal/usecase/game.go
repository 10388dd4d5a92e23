package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
	"github.com/rocketscienceinc/tycoon-backend/internal/service"
)

// GameUseCase is what the transports talk to.
type GameUseCase interface {
	CreateGame(ctx context.Context, name string, rounds int) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID int64, playerName, companyName string) (*entity.Player, error)
	StartGame(ctx context.Context, gameID int64) (*entity.Round, error)

	SubmitAction(ctx context.Context, params service.SubmitActionParams) (*entity.Round, error)
	FinishRound(ctx context.Context, roundID int64) (*entity.Round, error)

	GetGame(ctx context.Context, gameID int64) (*entity.GameOverview, error)
}

type gameRepo interface {
	GetByID(ctx context.Context, id int64) (*entity.Game, error)
}

type gameLocker interface {
	Lock(ctx context.Context, key int64) (func(), error)
}

type snapshotter interface {
	Snapshot(ctx context.Context, gameID int64) (*entity.GameOverview, error)
}

type gameUseCase struct {
	gameRepo gameRepo
	locker   gameLocker

	lobby       service.LobbyService
	games       service.GameService
	rounds      service.RoundService
	snapshotter snapshotter
}

func NewGameUseCase(
	gameRepo gameRepo,
	locker gameLocker,
	lobby service.LobbyService,
	games service.GameService,
	rounds service.RoundService,
	snapshotter snapshotter,
) GameUseCase {
	return &gameUseCase{
		gameRepo:    gameRepo,
		locker:      locker,
		lobby:       lobby,
		games:       games,
		rounds:      rounds,
		snapshotter: snapshotter,
	}
}

func (that *gameUseCase) CreateGame(ctx context.Context, name string, rounds int) (*entity.Game, error) {
	game, err := that.lobby.CreateGame(ctx, name, rounds)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) JoinGame(ctx context.Context, gameID int64, playerName, companyName string) (*entity.Player, error) {
	player, err := that.lobby.JoinGame(ctx, gameID, playerName, companyName)
	if err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	return player, nil
}

// StartGame starts the game and opens its first round. A game started earlier whose first round
// could not be opened gets that round now.
func (that *gameUseCase) StartGame(ctx context.Context, gameID int64) (*entity.Round, error) {
	unlock, err := that.locker.Lock(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if !game.IsInProgress() || len(game.Rounds) > 0 {
		if err = that.games.Start(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to start game: %w", err)
		}
	}

	round, err := that.games.StartRound(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to start first round: %w", err)
	}

	return round, nil
}

func (that *gameUseCase) SubmitAction(ctx context.Context, params service.SubmitActionParams) (*entity.Round, error) {
	round, err := that.rounds.SubmitAction(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to submit action: %w", err)
	}

	return round, nil
}

func (that *gameUseCase) FinishRound(ctx context.Context, roundID int64) (*entity.Round, error) {
	round, err := that.rounds.Finalize(ctx, service.FinalizeParams{RoundID: &roundID})
	if err != nil {
		return nil, fmt.Errorf("failed to finish round: %w", err)
	}

	return round, nil
}

func (that *gameUseCase) GetGame(ctx context.Context, gameID int64) (*entity.GameOverview, error) {
	overview, err := that.snapshotter.Snapshot(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game overview: %w", err)
	}

	return overview, nil
}
