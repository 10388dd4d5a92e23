package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
)

const (
	RoundOpen       = "open"
	RoundFinalizing = "finalizing"
	RoundClosed     = "closed"
)

type Round struct {
	ID      int64          `json:"id"`
	GameID  int64          `json:"game_id"`
	Order   int            `json:"order"`
	Status  string         `json:"status"`
	Actions []*RoundAction `json:"actions"`

	// Settlement is kept only while the round is finalizing.
	Settlement *Settlement `json:"settlement,omitempty"`
}

// Settlement is the state a finalizing round leaves behind once its actions are applied and salaries paid:
// the game's consultant pool and every company of the game.
type Settlement struct {
	Consultants []*Consultant `json:"consultants"`
	Companies   []*Company    `json:"companies"`
}

func NewRound(gameID int64, order int) *Round {
	return &Round{
		GameID:  gameID,
		Order:   order,
		Status:  RoundOpen,
		Actions: []*RoundAction{},
	}
}

func (that *Round) IsOpen() bool {
	return that.Status == RoundOpen
}

func (that *Round) IsFinalizing() bool {
	return that.Status == RoundFinalizing
}

func (that *Round) IsClosed() bool {
	return that.Status == RoundClosed
}

func (that *Round) HasActed(playerID int64) bool {
	for _, action := range that.Actions {
		if action.PlayerID == playerID {
			return true
		}
	}

	return false
}

// CanPlayerActIn reports whether the player takes part in the round's game and still owes an action.
func (that *Round) CanPlayerActIn(game *Game, playerID int64) bool {
	if playerID == SystemActorID || game == nil || game.ID != that.GameID {
		return false
	}

	return that.IsOpen() && game.HasPlayer(playerID) && !that.HasActed(playerID)
}

// EverybodyPlayed reports whether every eligible player has one recorded action.
func (that *Round) EverybodyPlayed(players []*Player) bool {
	if len(players) == 0 {
		return false
	}

	for _, player := range players {
		if !that.HasActed(player.ID) {
			return false
		}
	}

	return true
}

func (that *Round) AddAction(action *RoundAction) {
	that.Actions = append(that.Actions, action)
}

// BeginFinalize moves the round into finalizing. A finalizing round may be finalized again after a failure,
// a closed round never.
func (that *Round) BeginFinalize() error {
	if that.IsClosed() {
		return fmt.Errorf("round %d: %w", that.ID, apperror.ErrRoundClosed)
	}

	that.Status = RoundFinalizing

	return nil
}

// Settle records the outcome of finalizing. It is computed once, later attempts store it again.
func (that *Round) Settle(settlement *Settlement) {
	that.Settlement = settlement
}

func (that *Round) IsSettled() bool {
	return that.Settlement != nil
}

func (that *Round) Close() {
	that.Status = RoundClosed
	that.Settlement = nil
}
