package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

const DefaultConsultantsPerRound = 3

// GameService drives the game lifecycle. It never locks; callers hold the game's lock.
type GameService interface {
	Start(ctx context.Context, game *entity.Game) error
	CanStartNewRound(game *entity.Game) bool
	StartRound(ctx context.Context, game *entity.Game) (*entity.Round, error)
	Finish(ctx context.Context, game *entity.Game) error
}

type gameRepo interface {
	GetByID(ctx context.Context, id int64) (*entity.Game, error)
	Save(ctx context.Context, game *entity.Game) error
}

type roundRepo interface {
	GetByID(ctx context.Context, id int64) (*entity.Round, error)
	Save(ctx context.Context, round *entity.Round) error
}

// Notifier tells observers that a game changed. Delivery is asynchronous and never fails the caller.
type Notifier interface {
	UpdateCurrentGame(ctx context.Context, gameID int64)
}

type gameService struct {
	logger *slog.Logger

	gameRepo            gameRepo
	roundRepo           roundRepo
	consultants         *ConsultantFactory
	consultantsPerRound int
	notifier            Notifier
}

func NewGameService(
	logger *slog.Logger,
	gameRepo gameRepo,
	roundRepo roundRepo,
	consultants *ConsultantFactory,
	consultantsPerRound int,
	notifier Notifier,
) GameService {
	if consultantsPerRound <= 0 {
		consultantsPerRound = DefaultConsultantsPerRound
	}

	return &gameService{
		logger:              logger.With("component", "game_service"),
		gameRepo:            gameRepo,
		roundRepo:           roundRepo,
		consultants:         consultants,
		consultantsPerRound: consultantsPerRound,
		notifier:            notifier,
	}
}

func (that *gameService) Start(ctx context.Context, game *entity.Game) error {
	if err := game.Start(); err != nil {
		return err
	}

	if err := that.gameRepo.Save(ctx, game); err != nil {
		return fmt.Errorf("failed to save started game: %w", err)
	}

	that.logger.Info("game started", "method", "Start", "gameID", game.ID)

	return nil
}

func (that *gameService) CanStartNewRound(game *entity.Game) bool {
	return game.CanStartNewRound()
}

// StartRound opens the next round and adds fresh consultants to the pool. Observers are notified
// once both the round and the pool are stored.
func (that *gameService) StartRound(ctx context.Context, game *entity.Game) (*entity.Round, error) {
	log := that.logger.With("method", "StartRound", "gameID", game.ID)

	round, err := game.NewRound()
	if err != nil {
		return nil, err
	}

	if err = that.roundRepo.Save(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}

	for range that.consultantsPerRound {
		game.AddConsultant(that.consultants.New())
	}

	if err = that.gameRepo.Save(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save consultant pool: %w", err)
	}

	log.Info("round started", "roundID", round.ID, "order", round.Order, "consultants", len(game.Consultants))

	that.notifier.UpdateCurrentGame(ctx, game.ID)

	return round, nil
}

func (that *gameService) Finish(ctx context.Context, game *entity.Game) error {
	if err := game.Finish(); err != nil {
		return err
	}

	if err := that.gameRepo.Save(ctx, game); err != nil {
		return fmt.Errorf("failed to save finished game: %w", err)
	}

	that.logger.Info("game finished", "method", "Finish", "gameID", game.ID, "rounds", len(game.Rounds))

	that.notifier.UpdateCurrentGame(ctx, game.ID)

	return nil
}
