package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
	"github.com/rocketscienceinc/tycoon-backend/internal/service"
)

type Handlers interface {
	CreateGame(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	JoinGame(w http.ResponseWriter, r *http.Request)
	StartGame(w http.ResponseWriter, r *http.Request)

	SubmitAction(w http.ResponseWriter, r *http.Request)
	FinishRound(w http.ResponseWriter, r *http.Request)
}

type gameUseCase interface {
	CreateGame(ctx context.Context, name string, rounds int) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID int64, playerName, companyName string) (*entity.Player, error)
	StartGame(ctx context.Context, gameID int64) (*entity.Round, error)

	SubmitAction(ctx context.Context, params service.SubmitActionParams) (*entity.Round, error)
	FinishRound(ctx context.Context, roundID int64) (*entity.Round, error)

	GetGame(ctx context.Context, gameID int64) (*entity.GameOverview, error)
}

type handlers struct {
	logger *slog.Logger
	games  gameUseCase
}

func NewHandlers(logger *slog.Logger, games gameUseCase) Handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

type createGameRequest struct {
	Name   string `json:"name"`
	Rounds int    `json:"rounds"`
}

type joinGameRequest struct {
	PlayerName  string `json:"player_name"`
	CompanyName string `json:"company_name"`
}

type submitActionRequest struct {
	PlayerID      *int64          `json:"player_id"`
	ActionType    string          `json:"action_type"`
	ActionPayload json.RawMessage `json:"action_payload"`
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

func (that *handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(r, &req); err != nil {
		that.writeError(w, r, err)
		return
	}

	game, err := that.games.CreateGame(r.Context(), req.Name, req.Rounds)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, game.ToJoinable())
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	overview, err := that.games.GetGame(r.Context(), gameID)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

func (that *handlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	var req joinGameRequest
	if err = decodeJSON(r, &req); err != nil {
		that.writeError(w, r, err)
		return
	}

	player, err := that.games.JoinGame(r.Context(), gameID, req.PlayerName, req.CompanyName)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, player)
}

func (that *handlers) StartGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathID(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	round, err := that.games.StartGame(r.Context(), gameID)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, round)
}

func (that *handlers) SubmitAction(w http.ResponseWriter, r *http.Request) {
	roundID, err := pathID(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	var req submitActionRequest
	if err = decodeJSON(r, &req); err != nil {
		that.writeError(w, r, err)
		return
	}

	round, err := that.games.SubmitAction(r.Context(), service.SubmitActionParams{
		ActionType:    entity.ActionKind(req.ActionType),
		ActionPayload: req.ActionPayload,
		RoundID:       &roundID,
		PlayerID:      req.PlayerID,
	})
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, round)
}

func (that *handlers) FinishRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := pathID(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	round, err := that.games.FinishRound(r.Context(), roundID)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, round)
}

func (that *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	log := that.logger.With("method", r.Method, "path", r.URL.Path, "requestID", middleware.GetReqID(r.Context()))
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
		writeJSON(w, status, errorResponse{Errors: []string{http.StatusText(status)}})
		return
	}

	log.Info("request rejected", "status", status, "error", err)
	writeJSON(w, status, errorResponse{Errors: apperror.Messages(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrUnsupportedAction):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrIneligibleActor):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidationError(fmt.Sprintf("invalid id %q", raw))
	}

	return id, nil
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(out); err != nil {
		return apperror.NewValidationError(fmt.Sprintf("malformed request body: %v", err))
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
