package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
)

var (
	ErrGameNotFound    = fmt.Errorf("game %w", apperror.ErrNotFound)
	ErrRoundNotFound   = fmt.Errorf("round %w", apperror.ErrNotFound)
	ErrPlayerNotFound  = fmt.Errorf("player %w", apperror.ErrNotFound)
	ErrCompanyNotFound = fmt.Errorf("company %w", apperror.ErrNotFound)
)

const gameNamesKey = "game-names"

func gameKey(id int64) string {
	return "game:" + strconv.FormatInt(id, 10)
}

func gameRoundsKey(id int64) string {
	return gameKey(id) + ":rounds"
}

func gamePlayersKey(id int64) string {
	return gameKey(id) + ":players"
}

func gamePlayerNamesKey(id int64) string {
	return gameKey(id) + ":player-names"
}

func roundKey(id int64) string {
	return "round:" + strconv.FormatInt(id, 10)
}

func playerKey(id int64) string {
	return "player:" + strconv.FormatInt(id, 10)
}

func companyKey(id int64) string {
	return "company:" + strconv.FormatInt(id, 10)
}

// nextID hands out the next identifier of an entity sequence, starting at 1.
func nextID(ctx context.Context, client *redis.Client, sequence string) (int64, error) {
	id, err := client.Incr(ctx, "seq:"+sequence).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", sequence, err)
	}

	return id, nil
}

// getJSON loads key into v and returns notFound when the key does not exist.
func getJSON(ctx context.Context, client *redis.Client, key string, v any, notFound error) error {
	response, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return notFound
	}

	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err = json.Unmarshal(response, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return nil
}

// getJSONList loads the entities whose ids are stored in listKey, in list order.
func getJSONList[T any](ctx context.Context, client *redis.Client, listKey string, keyOf func(int64) string) ([]*T, error) {
	ids, err := client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", listKey, err)
	}

	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, rawID := range ids {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in %s: %w", rawID, listKey, err)
		}
		keys = append(keys, keyOf(id))
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s entries: %w", listKey, err)
	}

	items := make([]*T, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("missing record %s listed in %s", keys[i], listKey)
		}

		var item T
		if err = json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
		}
		items = append(items, &item)
	}

	return items, nil
}
