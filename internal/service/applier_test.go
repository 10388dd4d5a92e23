package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

type bribePayload struct{}

func (bribePayload) Kind() entity.ActionKind { return "bribe" }

func (bribePayload) Validate() error { return nil }

func newApplyState() *ApplyState {
	game := entity.NewGame("acme", 2)
	game.ID = 3

	company := entity.NewCompany("Initech", 1)
	company.ID = 30

	return &ApplyState{
		Game:      game,
		Companies: map[int64]*entity.Company{1: company},
	}
}

func mustAction(t *testing.T, playerID int64, payload entity.ActionPayload) *entity.RoundAction {
	t.Helper()

	action, err := entity.NewRoundActionFromPayload(playerID, payload)
	require.NoError(t, err)

	return action
}

func TestActionApplier_Apply(t *testing.T) {
	applier := NewActionApplier(NewConsultantFactory(&scriptedRandom{values: []int{2, 5}}))

	t.Run("GenerateNewConsultant", func(t *testing.T) {
		state := newApplyState()

		err := applier.Apply(mustAction(t, entity.SystemActorID, entity.GenerateNewConsultantPayload{GameID: 3}), state)

		require.NoError(t, err)
		require.Len(t, state.Game.Consultants, 1)
		assert.Equal(t, consultantNames[2], state.Game.Consultants[0].Name)
		assert.Equal(t, minConsultantSalary+5*consultantSalaryStep, state.Game.Consultants[0].Salary)
	})

	t.Run("GenerateForAnotherGame", func(t *testing.T) {
		state := newApplyState()

		err := applier.Apply(mustAction(t, entity.SystemActorID, entity.GenerateNewConsultantPayload{GameID: 4}), state)

		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Empty(t, state.Game.Consultants)
	})

	t.Run("HireConsultant", func(t *testing.T) {
		state := newApplyState()
		consultant := entity.NewConsultant("Chloe", 40_150)
		state.Game.AddConsultant(consultant)

		err := applier.Apply(mustAction(t, 1, entity.HireConsultantPayload{ConsultantID: consultant.ID}), state)

		require.NoError(t, err)
		assert.Empty(t, state.Game.Consultants)
		company := state.Companies[1]
		require.Len(t, company.Employees, 1)
		assert.Equal(t, consultant.ID, company.Employees[0].ID)
		assert.Equal(t, company.ID, company.Employees[0].CompanyID)
	})

	t.Run("HireMissingConsultant", func(t *testing.T) {
		state := newApplyState()

		err := applier.Apply(mustAction(t, 1, entity.HireConsultantPayload{ConsultantID: "ghost"}), state)

		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Empty(t, state.Companies[1].Employees)
	})

	t.Run("HireWithoutCompany", func(t *testing.T) {
		state := newApplyState()
		consultant := entity.NewConsultant("Chloe", 40_150)
		state.Game.AddConsultant(consultant)

		err := applier.Apply(mustAction(t, 2, entity.HireConsultantPayload{ConsultantID: consultant.ID}), state)

		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Len(t, state.Game.Consultants, 1)
	})

	t.Run("FireEmployee", func(t *testing.T) {
		state := newApplyState()
		employee := state.Companies[1].Hire(entity.NewConsultant("Dorian", 43_800))

		err := applier.Apply(mustAction(t, 1, entity.FireEmployeePayload{EmployeeID: employee.ID}), state)

		require.NoError(t, err)
		assert.Empty(t, state.Companies[1].Employees)
		require.Len(t, state.Game.Consultants, 1)
		assert.Equal(t, employee.Consultant, *state.Game.Consultants[0])
	})

	t.Run("FireMissingEmployee", func(t *testing.T) {
		state := newApplyState()

		err := applier.Apply(mustAction(t, 1, entity.FireEmployeePayload{EmployeeID: "ghost"}), state)

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Skip", func(t *testing.T) {
		state := newApplyState()

		err := applier.Apply(mustAction(t, 1, entity.SkipPayload{}), state)

		require.NoError(t, err)
		assert.Empty(t, state.Game.Consultants)
		assert.Equal(t, entity.DefaultTreasury, state.Companies[1].Treasury)
	})

	t.Run("UnsupportedPayload", func(t *testing.T) {
		state := newApplyState()

		err := applier.Apply(&entity.RoundAction{Kind: "bribe", PlayerID: 1, Payload: bribePayload{}}, state)

		require.ErrorIs(t, err, apperror.ErrUnsupportedAction)
	})
}
