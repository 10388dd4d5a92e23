package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

type RoundRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Round, error)
	Save(ctx context.Context, round *entity.Round) error
}

type dbRound struct {
	client *redis.Client
}

func NewRoundRepository(client *redis.Client) RoundRepository {
	return &dbRound{
		client: client,
	}
}

// Save stores the round; a new round is also appended to its game's round list.
func (that *dbRound) Save(ctx context.Context, round *entity.Round) error {
	isNew := round.ID == 0
	if isNew {
		id, err := nextID(ctx, that.client, "round")
		if err != nil {
			return err
		}
		round.ID = id
	}

	roundJSON, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("could not marshal round: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, roundKey(round.ID), roundJSON, 0)
	if isNew {
		pipe.RPush(ctx, gameRoundsKey(round.GameID), round.ID)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set round: %w", err)
	}

	return nil
}

func (that *dbRound) GetByID(ctx context.Context, id int64) (*entity.Round, error) {
	var round entity.Round
	if err := getJSON(ctx, that.client, roundKey(id), &round, ErrRoundNotFound); err != nil {
		return nil, err
	}

	return &round, nil
}
