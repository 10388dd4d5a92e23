// Package memory keeps the entity store in process memory. Records are copied on every read and write,
// so callers observe the same isolation they get from the Redis repositories.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
	"github.com/rocketscienceinc/tycoon-backend/internal/repository"
)

type gameRecord struct {
	game        *entity.Game
	roundIDs    []int64
	playerIDs   []int64
	playerNames map[string]struct{}
}

type Store struct {
	mu sync.RWMutex

	seq       map[string]int64
	games     map[int64]*gameRecord
	gameNames map[string]struct{}
	rounds    map[int64]*entity.Round
	players   map[int64]*entity.Player
	companies map[int64]*entity.Company
}

func NewStore() *Store {
	return &Store{
		seq:       make(map[string]int64),
		games:     make(map[int64]*gameRecord),
		gameNames: make(map[string]struct{}),
		rounds:    make(map[int64]*entity.Round),
		players:   make(map[int64]*entity.Player),
		companies: make(map[int64]*entity.Company),
	}
}

func (that *Store) Games() repository.GameRepository {
	return &gameRepository{store: that}
}

func (that *Store) Rounds() repository.RoundRepository {
	return &roundRepository{store: that}
}

func (that *Store) Players() repository.PlayerRepository {
	return &playerRepository{store: that}
}

func (that *Store) Companies() repository.CompanyRepository {
	return &companyRepository{store: that}
}

// nextID must be called with mu held.
func (that *Store) nextID(sequence string) int64 {
	that.seq[sequence]++
	return that.seq[sequence]
}

func clone[T any](v *T) (*T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	var out T
	if err = json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return &out, nil
}

type gameRepository struct {
	store *Store
}

func (that *gameRepository) Save(_ context.Context, game *entity.Game) error {
	that.store.mu.Lock()
	defer that.store.mu.Unlock()

	isNew := game.ID == 0
	if isNew {
		game.ID = that.store.nextID("game")
		that.store.games[game.ID] = &gameRecord{playerNames: make(map[string]struct{})}
		that.store.gameNames[game.Name] = struct{}{}
	}

	record, ok := that.store.games[game.ID]
	if !ok || record.game == nil && !isNew {
		return repository.ErrGameNotFound
	}

	stored, err := clone(&entity.Game{
		ID:          game.ID,
		Name:        game.Name,
		RoundLimit:  game.RoundLimit,
		Status:      game.Status,
		Consultants: game.Consultants,
	})
	if err != nil {
		return err
	}
	record.game = stored

	return nil
}

func (that *gameRepository) GetByID(_ context.Context, id int64) (*entity.Game, error) {
	that.store.mu.RLock()
	defer that.store.mu.RUnlock()

	return that.store.loadGame(id)
}

func (that *gameRepository) GetByPlayerID(_ context.Context, playerID int64) (*entity.Game, error) {
	that.store.mu.RLock()
	defer that.store.mu.RUnlock()

	player, ok := that.store.players[playerID]
	if !ok {
		return nil, repository.ErrGameNotFound
	}

	return that.store.loadGame(player.GameID)
}

func (that *gameRepository) Exists(_ context.Context, id int64) (bool, error) {
	that.store.mu.RLock()
	defer that.store.mu.RUnlock()

	record, ok := that.store.games[id]

	return ok && record.game != nil, nil
}

func (that *gameRepository) IsNameAvailable(_ context.Context, name string) (bool, error) {
	that.store.mu.RLock()
	defer that.store.mu.RUnlock()

	_, taken := that.store.gameNames[name]

	return !taken, nil
}

// loadGame must be called with mu held.
func (that *Store) loadGame(id int64) (*entity.Game, error) {
	record, ok := that.games[id]
	if !ok || record.game == nil {
		return nil, repository.ErrGameNotFound
	}

	game, err := clone(record.game)
	if err != nil {
		return nil, err
	}

	game.Players = make([]*entity.Player, 0, len(record.playerIDs))
	for _, playerID := range record.playerIDs {
		player, err := clone(that.players[playerID])
		if err != nil {
			return nil, err
		}
		game.Players = append(game.Players, player)
	}

	game.Rounds = make([]*entity.Round, 0, len(record.roundIDs))
	for _, roundID := range record.roundIDs {
		round, err := clone(that.rounds[roundID])
		if err != nil {
			return nil, err
		}
		game.Rounds = append(game.Rounds, round)
	}

	if game.Consultants == nil {
		game.Consultants = []*entity.Consultant{}
	}

	return game, nil
}

// gameRecordFor returns the record of gameID, creating an empty one for children saved before their game.
// Must be called with mu held.
func (that *Store) gameRecordFor(gameID int64) *gameRecord {
	record, ok := that.games[gameID]
	if !ok {
		record = &gameRecord{playerNames: make(map[string]struct{})}
		that.games[gameID] = record
	}

	return record
}

type roundRepository struct {
	store *Store
}

func (that *roundRepository) Save(_ context.Context, round *entity.Round) error {
	that.store.mu.Lock()
	defer that.store.mu.Unlock()

	if round.ID == 0 {
		round.ID = that.store.nextID("round")
		record := that.store.gameRecordFor(round.GameID)
		record.roundIDs = append(record.roundIDs, round.ID)
	}

	stored, err := clone(round)
	if err != nil {
		return err
	}
	that.store.rounds[round.ID] = stored

	return nil
}

func (that *roundRepository) GetByID(_ context.Context, id int64) (*entity.Round, error) {
	that.store.mu.RLock()
	defer that.store.mu.RUnlock()

	round, ok := that.store.rounds[id]
	if !ok {
		return nil, repository.ErrRoundNotFound
	}

	return clone(round)
}

type playerRepository struct {
	store *Store
}

func (that *playerRepository) Save(_ context.Context, player *entity.Player) error {
	that.store.mu.Lock()
	defer that.store.mu.Unlock()

	if player.ID == 0 {
		player.ID = that.store.nextID("player")
		record := that.store.gameRecordFor(player.GameID)
		record.playerIDs = append(record.playerIDs, player.ID)
		record.playerNames[player.Name] = struct{}{}
	}

	stored, err := clone(player)
	if err != nil {
		return err
	}
	that.store.players[player.ID] = stored

	return nil
}

func (that *playerRepository) GetByID(_ context.Context, id int64) (*entity.Player, error) {
	that.store.mu.RLock()
	defer that.store.mu.RUnlock()

	player, ok := that.store.players[id]
	if !ok {
		return nil, repository.ErrPlayerNotFound
	}

	return clone(player)
}

func (that *playerRepository) IsNameAvailable(_ context.Context, name string, gameID int64) (bool, error) {
	that.store.mu.RLock()
	defer that.store.mu.RUnlock()

	record, ok := that.store.games[gameID]
	if !ok {
		return true, nil
	}

	_, taken := record.playerNames[name]

	return !taken, nil
}

type companyRepository struct {
	store *Store
}

func (that *companyRepository) Save(_ context.Context, company *entity.Company) error {
	that.store.mu.Lock()
	defer that.store.mu.Unlock()

	if company.ID == 0 {
		company.ID = that.store.nextID("company")
		for _, employee := range company.Employees {
			employee.CompanyID = company.ID
		}
	}

	stored, err := clone(company)
	if err != nil {
		return err
	}
	that.store.companies[company.ID] = stored

	return nil
}

func (that *companyRepository) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	that.store.mu.RLock()
	defer that.store.mu.RUnlock()

	company, ok := that.store.companies[id]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}

	return clone(company)
}
