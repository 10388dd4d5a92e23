package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

type GameRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Game, error)
	GetByPlayerID(ctx context.Context, playerID int64) (*entity.Game, error)
	Exists(ctx context.Context, id int64) (bool, error)
	IsNameAvailable(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, game *entity.Game) error
}

// gameRecord is what is stored under game:<id>. Players and rounds live under their own keys.
type gameRecord struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	RoundLimit  int                  `json:"round_limit"`
	Status      string               `json:"status"`
	Consultants []*entity.Consultant `json:"consultants"`
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

// Save inserts the game when it has no ID yet, otherwise overwrites its record. Unknown IDs are ErrGameNotFound.
func (that *dbGame) Save(ctx context.Context, game *entity.Game) error {
	isNew := game.ID == 0
	if isNew {
		id, err := nextID(ctx, that.client, "game")
		if err != nil {
			return err
		}
		game.ID = id
	}

	gameJSON, err := json.Marshal(gameRecord{
		ID:          game.ID,
		Name:        game.Name,
		RoundLimit:  game.RoundLimit,
		Status:      game.Status,
		Consultants: game.Consultants,
	})
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	var updated *redis.BoolCmd

	pipe := that.client.TxPipeline()
	if isNew {
		pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)
		pipe.SAdd(ctx, gameNamesKey, game.Name)
	} else {
		updated = pipe.SetXX(ctx, gameKey(game.ID), gameJSON, 0)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	if updated != nil && !updated.Val() {
		return ErrGameNotFound
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id int64) (*entity.Game, error) {
	var record gameRecord
	if err := getJSON(ctx, that.client, gameKey(id), &record, ErrGameNotFound); err != nil {
		return nil, err
	}

	players, err := getJSONList[entity.Player](ctx, that.client, gamePlayersKey(id), playerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load players of game %d: %w", id, err)
	}

	rounds, err := getJSONList[entity.Round](ctx, that.client, gameRoundsKey(id), roundKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds of game %d: %w", id, err)
	}

	consultants := record.Consultants
	if consultants == nil {
		consultants = []*entity.Consultant{}
	}

	return &entity.Game{
		ID:          record.ID,
		Name:        record.Name,
		RoundLimit:  record.RoundLimit,
		Status:      record.Status,
		Players:     players,
		Rounds:      rounds,
		Consultants: consultants,
	}, nil
}

func (that *dbGame) GetByPlayerID(ctx context.Context, playerID int64) (*entity.Game, error) {
	var player entity.Player
	if err := getJSON(ctx, that.client, playerKey(playerID), &player, ErrPlayerNotFound); err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	return that.GetByID(ctx, player.GameID)
}

func (that *dbGame) Exists(ctx context.Context, id int64) (bool, error) {
	count, err := that.client.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check game %d: %w", id, err)
	}

	return count > 0, nil
}

func (that *dbGame) IsNameAvailable(ctx context.Context, name string) (bool, error) {
	taken, err := that.client.SIsMember(ctx, gameNamesKey, name).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check game name: %w", err)
	}

	return !taken, nil
}
