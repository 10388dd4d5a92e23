package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

// LobbyService creates games and seats players before the first round.
type LobbyService interface {
	CreateGame(ctx context.Context, name string, rounds int) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID int64, playerName, companyName string) (*entity.Player, error)
}

type lobbyGameRepo interface {
	GetByID(ctx context.Context, id int64) (*entity.Game, error)
	IsNameAvailable(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, game *entity.Game) error
}

type lobbyPlayerRepo interface {
	IsNameAvailable(ctx context.Context, name string, gameID int64) (bool, error)
	Save(ctx context.Context, player *entity.Player) error
}

type lobbyService struct {
	logger *slog.Logger

	gameRepo    lobbyGameRepo
	playerRepo  lobbyPlayerRepo
	companyRepo companyRepo
	locker      gameLocker
	notifier    Notifier
	rounds      int
}

func NewLobbyService(
	logger *slog.Logger,
	gameRepo lobbyGameRepo,
	playerRepo lobbyPlayerRepo,
	companyRepo companyRepo,
	locker gameLocker,
	notifier Notifier,
	defaultRounds int,
) LobbyService {
	return &lobbyService{
		logger:      logger.With("component", "lobby_service"),
		gameRepo:    gameRepo,
		playerRepo:  playerRepo,
		companyRepo: companyRepo,
		locker:      locker,
		notifier:    notifier,
		rounds:      defaultRounds,
	}
}

func (that *lobbyService) CreateGame(ctx context.Context, name string, rounds int) (*entity.Game, error) {
	name = strings.TrimSpace(name)

	var messages []string
	if name == "" {
		messages = append(messages, "game name is required")
	}
	if rounds < 0 {
		messages = append(messages, "rounds must be positive")
	}
	if len(messages) > 0 {
		return nil, apperror.NewValidationError(messages...)
	}

	available, err := that.gameRepo.IsNameAvailable(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check game name: %w", err)
	}
	if !available {
		return nil, apperror.NewValidationError(fmt.Sprintf("game name %q is already taken", name))
	}

	if rounds == 0 {
		rounds = that.rounds
	}

	game := entity.NewGame(name, rounds)
	if err = that.gameRepo.Save(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "method", "CreateGame", "gameID", game.ID, "rounds", game.RoundLimit)

	return game, nil
}

// JoinGame seats a new player and founds the player's company.
func (that *lobbyService) JoinGame(ctx context.Context, gameID int64, playerName, companyName string) (*entity.Player, error) {
	playerName = strings.TrimSpace(playerName)
	companyName = strings.TrimSpace(companyName)

	var messages []string
	if playerName == "" {
		messages = append(messages, "player name is required")
	}
	if companyName == "" {
		messages = append(messages, "company name is required")
	}
	if len(messages) > 0 {
		return nil, apperror.NewValidationError(messages...)
	}

	unlock, err := that.locker.Lock(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if !game.CanBeJoined() {
		return nil, fmt.Errorf("%w: game %d is %s with %d of %d players",
			apperror.ErrInvalidTransition, game.ID, game.Status, len(game.Players), entity.MaxPlayers)
	}

	available, err := that.playerRepo.IsNameAvailable(ctx, playerName, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check player name: %w", err)
	}
	if !available {
		return nil, apperror.NewValidationError(fmt.Sprintf("player name %q is already taken in this game", playerName))
	}

	player := entity.NewPlayer(game.ID, playerName)
	if err = that.playerRepo.Save(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}

	company := entity.NewCompany(companyName, player.ID)
	if err = that.companyRepo.Save(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	player.CompanyID = company.ID
	if err = that.playerRepo.Save(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to link company: %w", err)
	}

	that.logger.Info("player joined", "method", "JoinGame", "gameID", game.ID, "playerID", player.ID, "companyID", company.ID)

	that.notifier.UpdateCurrentGame(ctx, game.ID)

	return player, nil
}
