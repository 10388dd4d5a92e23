package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

type PlayerRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Player, error)
	IsNameAvailable(ctx context.Context, name string, gameID int64) (bool, error)
	Save(ctx context.Context, player *entity.Player) error
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

// Save stores the player; a new player also joins its game's player list.
func (that *dbPlayer) Save(ctx context.Context, player *entity.Player) error {
	isNew := player.ID == 0
	if isNew {
		id, err := nextID(ctx, that.client, "player")
		if err != nil {
			return err
		}
		player.ID = id
	}

	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, playerKey(player.ID), playerJSON, 0)
	if isNew {
		pipe.RPush(ctx, gamePlayersKey(player.GameID), player.ID)
		pipe.SAdd(ctx, gamePlayerNamesKey(player.GameID), player.Name)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id int64) (*entity.Player, error) {
	var player entity.Player
	if err := getJSON(ctx, that.client, playerKey(id), &player, ErrPlayerNotFound); err != nil {
		return nil, err
	}

	return &player, nil
}

func (that *dbPlayer) IsNameAvailable(ctx context.Context, name string, gameID int64) (bool, error) {
	taken, err := that.client.SIsMember(ctx, gamePlayerNamesKey(gameID), name).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check player name: %w", err)
	}

	return !taken, nil
}
