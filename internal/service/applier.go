package service

import (
	"fmt"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

// ApplyState is everything an action may mutate. Companies are keyed by owning player ID.
type ApplyState struct {
	Game      *entity.Game
	Companies map[int64]*entity.Company
}

type ActionApplier interface {
	Apply(action *entity.RoundAction, state *ApplyState) error
}

type actionApplier struct {
	consultants *ConsultantFactory
}

func NewActionApplier(consultants *ConsultantFactory) ActionApplier {
	return &actionApplier{
		consultants: consultants,
	}
}

func (that *actionApplier) Apply(action *entity.RoundAction, state *ApplyState) error {
	switch payload := action.Payload.(type) {
	case entity.GenerateNewConsultantPayload:
		return that.generateNewConsultant(payload, state)
	case entity.HireConsultantPayload:
		return that.hireConsultant(action.PlayerID, payload, state)
	case entity.FireEmployeePayload:
		return that.fireEmployee(action.PlayerID, payload, state)
	case entity.SkipPayload:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnsupportedAction, action.Kind)
	}
}

func (that *actionApplier) generateNewConsultant(payload entity.GenerateNewConsultantPayload, state *ApplyState) error {
	if payload.GameID != state.Game.ID {
		return apperror.NewValidationError(
			fmt.Sprintf("consultant event for game %d applied to game %d", payload.GameID, state.Game.ID),
		)
	}

	state.Game.AddConsultant(that.consultants.New())

	return nil
}

func (that *actionApplier) hireConsultant(playerID int64, payload entity.HireConsultantPayload, state *ApplyState) error {
	company, err := companyOf(playerID, state)
	if err != nil {
		return err
	}

	consultant, ok := state.Game.TakeConsultant(payload.ConsultantID)
	if !ok {
		return fmt.Errorf("consultant %s %w in game %d", payload.ConsultantID, apperror.ErrNotFound, state.Game.ID)
	}

	company.Hire(consultant)

	return nil
}

func (that *actionApplier) fireEmployee(playerID int64, payload entity.FireEmployeePayload, state *ApplyState) error {
	company, err := companyOf(playerID, state)
	if err != nil {
		return err
	}

	employee, ok := company.Fire(payload.EmployeeID)
	if !ok {
		return fmt.Errorf("employee %s %w in company %d", payload.EmployeeID, apperror.ErrNotFound, company.ID)
	}

	state.Game.AddConsultant(employee.Release())

	return nil
}

func companyOf(playerID int64, state *ApplyState) (*entity.Company, error) {
	company, ok := state.Companies[playerID]
	if !ok || company == nil {
		return nil, fmt.Errorf("company of player %d %w", playerID, apperror.ErrNotFound)
	}

	return company, nil
}
