package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
)

const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

const (
	MaxPlayers    = 3
	DefaultRounds = 15
)

type Game struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	RoundLimit  int           `json:"round_limit"`
	Status      string        `json:"status"`
	Players     []*Player     `json:"players,omitempty"`
	Rounds      []*Round      `json:"rounds,omitempty"`
	Consultants []*Consultant `json:"consultants,omitempty"`
}

func NewGame(name string, rounds int) *Game {
	if rounds <= 0 {
		rounds = DefaultRounds
	}

	return &Game{
		Name:       name,
		RoundLimit: rounds,
		Status:     StatusWaiting,
	}
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// CanBeJoined reports whether one more player fits in the lobby.
func (that *Game) CanBeJoined() bool {
	return that.IsWaiting() && len(that.Players) < MaxPlayers
}

func (that *Game) CanBeStarted() bool {
	return that.IsWaiting()
}

func (that *Game) CanStartNewRound() bool {
	return that.IsInProgress() && len(that.Rounds) < that.RoundLimit
}

// Start moves the game from waiting to in progress.
func (that *Game) Start() error {
	if !that.CanBeStarted() {
		return fmt.Errorf("%w: game %d is %s", apperror.ErrInvalidTransition, that.ID, that.Status)
	}

	that.Status = StatusInProgress

	return nil
}

// Finish moves the game to finished. Finishing twice is an error, skipping InProgress is not.
func (that *Game) Finish() error {
	if that.IsFinished() {
		return apperror.ErrAlreadyFinished
	}

	that.Status = StatusFinished

	return nil
}

// NewRound appends the next round. The returned round has no ID until it is saved.
func (that *Game) NewRound() (*Round, error) {
	if !that.CanStartNewRound() {
		return nil, apperror.NewValidationError(
			fmt.Sprintf("game %d cannot start a new round (status %s, %d of %d rounds played)",
				that.ID, that.Status, len(that.Rounds), that.RoundLimit),
		)
	}

	round := NewRound(that.ID, len(that.Rounds)+1)
	that.Rounds = append(that.Rounds, round)

	return round, nil
}

func (that *Game) Round(id int64) *Round {
	for _, round := range that.Rounds {
		if round.ID == id {
			return round
		}
	}

	return nil
}

// CurrentRound returns the latest round or nil when no round was started yet.
func (that *Game) CurrentRound() *Round {
	if len(that.Rounds) == 0 {
		return nil
	}

	return that.Rounds[len(that.Rounds)-1]
}

func (that *Game) Player(id int64) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func (that *Game) HasPlayer(id int64) bool {
	return that.Player(id) != nil
}

func (that *Game) AddConsultant(consultant *Consultant) {
	that.Consultants = append(that.Consultants, consultant)
}

// TakeConsultant removes the consultant from the pool and returns it.
func (that *Game) TakeConsultant(id string) (*Consultant, bool) {
	for i, consultant := range that.Consultants {
		if consultant.ID == id {
			that.Consultants = append(that.Consultants[:i], that.Consultants[i+1:]...)
			return consultant, true
		}
	}

	return nil, false
}
