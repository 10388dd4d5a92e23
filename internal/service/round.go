package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
	"github.com/rocketscienceinc/tycoon-backend/internal/finance"
)

// SubmitActionParams identifies the round and the actor either by id or by an already loaded entity,
// never both.
type SubmitActionParams struct {
	ActionType    entity.ActionKind
	ActionPayload json.RawMessage

	RoundID *int64
	Round   *entity.Round

	PlayerID *int64
	Player   *entity.Player
}

func (that SubmitActionParams) Validate() error {
	var messages []string

	if that.ActionType == "" {
		messages = append(messages, "action type is required")
	}

	messages = append(messages, exactlyOne("round", that.RoundID != nil, that.Round != nil)...)
	messages = append(messages, exactlyOne("player", that.PlayerID != nil, that.Player != nil)...)

	if len(messages) > 0 {
		return apperror.NewValidationError(messages...)
	}

	return nil
}

func (that SubmitActionParams) playerID() int64 {
	if that.Player != nil {
		return that.Player.ID
	}

	return *that.PlayerID
}

type FinalizeParams struct {
	RoundID *int64
	Round   *entity.Round
}

func (that FinalizeParams) Validate() error {
	if messages := exactlyOne("round", that.RoundID != nil, that.Round != nil); len(messages) > 0 {
		return apperror.NewValidationError(messages...)
	}

	return nil
}

func exactlyOne(name string, hasID, hasRef bool) []string {
	switch {
	case hasID && hasRef:
		return []string{fmt.Sprintf("either %s id or %s must be supplied, not both", name, name)}
	case !hasID && !hasRef:
		return []string{fmt.Sprintf("%s id or %s is required", name, name)}
	default:
		return nil
	}
}

// RoundService is the round engine: it records actions and finalizes complete rounds.
type RoundService interface {
	SubmitAction(ctx context.Context, params SubmitActionParams) (*entity.Round, error)
	Finalize(ctx context.Context, params FinalizeParams) (*entity.Round, error)
}

type playerRepo interface {
	GetByID(ctx context.Context, id int64) (*entity.Player, error)
}

type companyRepo interface {
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
	Save(ctx context.Context, company *entity.Company) error
}

type gameLocker interface {
	Lock(ctx context.Context, key int64) (func(), error)
}

type roundService struct {
	logger *slog.Logger

	gameRepo    gameRepo
	roundRepo   roundRepo
	playerRepo  playerRepo
	companyRepo companyRepo

	games    GameService
	applier  ActionApplier
	payroll  *finance.Payroll
	locker   gameLocker
	random   Random
	notifier Notifier
}

type RoundServiceDeps struct {
	GameRepo    gameRepo
	RoundRepo   roundRepo
	PlayerRepo  playerRepo
	CompanyRepo companyRepo

	Games    GameService
	Applier  ActionApplier
	Payroll  *finance.Payroll
	Locker   gameLocker
	Random   Random
	Notifier Notifier
}

func NewRoundService(logger *slog.Logger, deps RoundServiceDeps) RoundService {
	if deps.Random == nil {
		deps.Random = NewRandom()
	}

	return &roundService{
		logger:      logger.With("component", "round_service"),
		gameRepo:    deps.GameRepo,
		roundRepo:   deps.RoundRepo,
		playerRepo:  deps.PlayerRepo,
		companyRepo: deps.CompanyRepo,
		games:       deps.Games,
		applier:     deps.Applier,
		payroll:     deps.Payroll,
		locker:      deps.Locker,
		random:      deps.Random,
		notifier:    deps.Notifier,
	}
}

// SubmitAction records one action of a player. The action that completes the round finalizes it,
// and the round returned is then the one that is current afterwards.
func (that *roundService) SubmitAction(ctx context.Context, params SubmitActionParams) (*entity.Round, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	action, err := entity.NewRoundAction(params.ActionType, params.playerID(), params.ActionPayload)
	if err != nil {
		return nil, err
	}

	round, err := that.resolveRound(ctx, params.RoundID, params.Round)
	if err != nil {
		return nil, err
	}

	player := params.Player
	if player == nil {
		if player, err = that.playerRepo.GetByID(ctx, *params.PlayerID); err != nil {
			return nil, fmt.Errorf("failed to get player: %w", err)
		}
	}

	log := that.logger.With("method", "SubmitAction", "gameID", round.GameID, "roundID", round.ID, "playerID", player.ID)

	unlock, err := that.locker.Lock(ctx, round.GameID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	game, round, err := that.reload(ctx, round)
	if err != nil {
		return nil, err
	}

	if !round.IsOpen() {
		return nil, fmt.Errorf("round %d is %s: %w", round.ID, round.Status, apperror.ErrRoundClosed)
	}

	if !round.CanPlayerActIn(game, player.ID) {
		return nil, fmt.Errorf("player %d in round %d: %w", player.ID, round.ID, apperror.ErrIneligibleActor)
	}

	// player may be a caller-supplied reference, the game holds the stored one
	if err = that.checkActionState(ctx, game, round, game.Player(player.ID), action); err != nil {
		return nil, err
	}

	round.AddAction(action)
	if err = that.roundRepo.Save(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save round action: %w", err)
	}

	log.Info("action recorded", "kind", action.Kind, "actions", len(round.Actions))

	if !round.EverybodyPlayed(game.Players) {
		that.notifier.UpdateCurrentGame(ctx, game.ID)
		return round, nil
	}

	return that.finalize(ctx, game, round)
}

// Finalize force-finishes a round. A round left finalizing by a failed attempt is finalized again,
// and a closed round whose game never moved on gets its next round or the game's end.
func (that *roundService) Finalize(ctx context.Context, params FinalizeParams) (*entity.Round, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	round, err := that.resolveRound(ctx, params.RoundID, params.Round)
	if err != nil {
		return nil, err
	}

	unlock, err := that.locker.Lock(ctx, round.GameID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	game, round, err := that.reload(ctx, round)
	if err != nil {
		return nil, err
	}

	if round.IsClosed() && game.IsInProgress() && game.CurrentRound() == round {
		that.logger.Info("resuming closed round", "method", "Finalize", "gameID", game.ID, "roundID", round.ID)
		return that.advance(ctx, game, round)
	}

	return that.finalize(ctx, game, round)
}

// finalize must be called with the game locked. round must belong to game.Rounds.
//
// Actions and salaries are settled once and stored on the round before anything else is written.
// Every later step overwrites whole records, so an attempt that failed halfway is repeated as is.
func (that *roundService) finalize(ctx context.Context, game *entity.Game, round *entity.Round) (*entity.Round, error) {
	log := that.logger.With("method", "finalize", "gameID", game.ID, "roundID", round.ID)

	firstAttempt := round.IsOpen()
	if err := round.BeginFinalize(); err != nil {
		return nil, err
	}

	if !round.IsSettled() {
		if firstAttempt && that.random.IntN(2) == 1 {
			event, err := entity.NewRoundActionFromPayload(entity.SystemActorID, entity.GenerateNewConsultantPayload{GameID: game.ID})
			if err != nil {
				return nil, err
			}
			round.AddAction(event)
			log.Debug("market event injected", "kind", event.Kind)
		}

		if err := that.roundRepo.Save(ctx, round); err != nil {
			return nil, fmt.Errorf("failed to save finalizing round: %w", err)
		}

		settlement, err := that.settle(ctx, log, game, round)
		if err != nil {
			return nil, err
		}

		round.Settle(settlement)
		if err = that.roundRepo.Save(ctx, round); err != nil {
			return nil, fmt.Errorf("failed to save round settlement: %w", err)
		}
	} else {
		log.Info("storing settlement of a previous attempt")
	}

	game.Consultants = round.Settlement.Consultants
	if err := that.gameRepo.Save(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game after actions: %w", err)
	}

	for _, company := range round.Settlement.Companies {
		if err := that.companyRepo.Save(ctx, company); err != nil {
			return nil, fmt.Errorf("failed to save company treasury: %w", err)
		}
	}

	round.Close()
	if err := that.roundRepo.Save(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save closed round: %w", err)
	}

	log.Info("round closed", "order", round.Order, "actions", len(round.Actions))

	return that.advance(ctx, game, round)
}

// settle applies the round's actions in order and pays salaries once per company, without storing anything.
func (that *roundService) settle(
	ctx context.Context,
	log *slog.Logger,
	game *entity.Game,
	round *entity.Round,
) (*entity.Settlement, error) {
	companies, err := that.loadCompanies(ctx, game)
	if err != nil {
		return nil, err
	}

	state := &ApplyState{Game: game, Companies: companies}
	for i, action := range round.Actions {
		if err = that.applier.Apply(action, state); err != nil {
			log.Error("failed to apply action", "index", i, "kind", action.Kind, "error", err)
			return nil, fmt.Errorf("failed to apply action %d (%s) of round %d: %w", i, action.Kind, round.ID, err)
		}
	}

	settlement := &entity.Settlement{
		Consultants: game.Consultants,
		Companies:   make([]*entity.Company, 0, len(companies)),
	}

	for _, player := range game.Players {
		company, ok := companies[player.ID]
		if !ok {
			continue
		}

		report := that.payroll.DeductSalaries(company)
		if err = report.Err(); err != nil {
			log.Warn("salaries partially paid", "companyID", company.ID, "error", err)
		}

		settlement.Companies = append(settlement.Companies, company)
	}

	return settlement, nil
}

// advance starts the next round of the game or finishes it after round closed.
func (that *roundService) advance(ctx context.Context, game *entity.Game, round *entity.Round) (*entity.Round, error) {
	if that.games.CanStartNewRound(game) {
		next, err := that.games.StartRound(ctx, game)
		if err != nil {
			return nil, fmt.Errorf("failed to start next round: %w", err)
		}

		return next, nil
	}

	if err := that.games.Finish(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to finish game: %w", err)
	}

	return round, nil
}

func (that *roundService) resolveRound(ctx context.Context, id *int64, ref *entity.Round) (*entity.Round, error) {
	if ref != nil {
		return ref, nil
	}

	round, err := that.roundRepo.GetByID(ctx, *id)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	return round, nil
}

// reload fetches the current state of the round's game; the returned round is the game's own copy.
func (that *roundService) reload(ctx context.Context, round *entity.Round) (*entity.Game, *entity.Round, error) {
	game, err := that.gameRepo.GetByID(ctx, round.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game of round %d: %w", round.ID, err)
	}

	current := game.Round(round.ID)
	if current == nil {
		return nil, nil, fmt.Errorf("round %d %w in game %d", round.ID, apperror.ErrNotFound, game.ID)
	}

	return game, current, nil
}

// loadCompanies returns the companies of the game's players keyed by player ID.
func (that *roundService) loadCompanies(ctx context.Context, game *entity.Game) (map[int64]*entity.Company, error) {
	companies := make(map[int64]*entity.Company, len(game.Players))

	for _, player := range game.Players {
		if !player.HasCompany() {
			continue
		}

		company, err := that.companyRepo.GetByID(ctx, player.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("failed to get company of player %d: %w", player.ID, err)
		}
		companies[player.ID] = company
	}

	return companies, nil
}

// checkActionState rejects actions that could not be applied at finalize time.
func (that *roundService) checkActionState(
	ctx context.Context,
	game *entity.Game,
	round *entity.Round,
	player *entity.Player,
	action *entity.RoundAction,
) error {
	switch payload := action.Payload.(type) {
	case entity.HireConsultantPayload:
		if !player.HasCompany() {
			return apperror.NewValidationError("player has no company to hire into")
		}

		if !consultantInPool(game, payload.ConsultantID) {
			return apperror.NewValidationError(fmt.Sprintf("consultant %s is not available", payload.ConsultantID))
		}

		for _, recorded := range round.Actions {
			if hire, ok := recorded.Payload.(entity.HireConsultantPayload); ok && hire.ConsultantID == payload.ConsultantID {
				return apperror.NewValidationError(fmt.Sprintf("consultant %s is already being hired this round", payload.ConsultantID))
			}
		}
	case entity.FireEmployeePayload:
		if !player.HasCompany() {
			return apperror.NewValidationError("player has no company to fire from")
		}

		company, err := that.companyRepo.GetByID(ctx, player.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to get company: %w", err)
		}

		if !hasEmployee(company, payload.EmployeeID) {
			return apperror.NewValidationError(fmt.Sprintf("employee %s does not work for %s", payload.EmployeeID, company.Name))
		}
	case entity.GenerateNewConsultantPayload:
		return fmt.Errorf("%w: %s is reserved for the system", apperror.ErrIneligibleActor, action.Kind)
	case entity.SkipPayload:
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnsupportedAction, action.Kind)
	}

	return nil
}

func consultantInPool(game *entity.Game, id string) bool {
	for _, consultant := range game.Consultants {
		if consultant.ID == id {
			return true
		}
	}

	return false
}

func hasEmployee(company *entity.Company, id string) bool {
	for _, employee := range company.Employees {
		if employee.ID == id {
			return true
		}
	}

	return false
}
