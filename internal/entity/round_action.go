package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
)

type ActionKind string

const (
	ActionGenerateNewConsultant ActionKind = "generate_new_consultant"
	ActionHireConsultant        ActionKind = "hire_consultant"
	ActionFireEmployee          ActionKind = "fire_employee"
	ActionSkip                  ActionKind = "skip"
)

// SystemActorID is the actor of actions generated by the game itself.
const SystemActorID int64 = 0

// ActionPayload is the kind-specific part of a RoundAction.
type ActionPayload interface {
	Kind() ActionKind
	Validate() error
}

type GenerateNewConsultantPayload struct {
	GameID int64 `json:"game_id"`
}

func (GenerateNewConsultantPayload) Kind() ActionKind { return ActionGenerateNewConsultant }

func (that GenerateNewConsultantPayload) Validate() error {
	if that.GameID == 0 {
		return apperror.NewValidationError("game_id is required")
	}

	return nil
}

type HireConsultantPayload struct {
	ConsultantID string `json:"consultant_id"`
}

func (HireConsultantPayload) Kind() ActionKind { return ActionHireConsultant }

func (that HireConsultantPayload) Validate() error {
	if that.ConsultantID == "" {
		return apperror.NewValidationError("consultant_id is required")
	}

	return nil
}

type FireEmployeePayload struct {
	EmployeeID string `json:"employee_id"`
}

func (FireEmployeePayload) Kind() ActionKind { return ActionFireEmployee }

func (that FireEmployeePayload) Validate() error {
	if that.EmployeeID == "" {
		return apperror.NewValidationError("employee_id is required")
	}

	return nil
}

type SkipPayload struct{}

func (SkipPayload) Kind() ActionKind { return ActionSkip }

func (SkipPayload) Validate() error { return nil }

// RoundAction is one immutable decision or event recorded in a round.
type RoundAction struct {
	Kind     ActionKind
	PlayerID int64
	Payload  ActionPayload
}

// NewRoundAction decodes raw into the payload registered for kind. Unknown kinds are rejected here,
// before the action can reach a round.
func NewRoundAction(kind ActionKind, playerID int64, raw json.RawMessage) (*RoundAction, error) {
	payload, err := decodePayload(kind, raw)
	if err != nil {
		return nil, err
	}

	return NewRoundActionFromPayload(playerID, payload)
}

func NewRoundActionFromPayload(playerID int64, payload ActionPayload) (*RoundAction, error) {
	if payload == nil {
		return nil, apperror.NewValidationError("action payload is required")
	}

	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", payload.Kind(), err)
	}

	return &RoundAction{
		Kind:     payload.Kind(),
		PlayerID: playerID,
		Payload:  payload,
	}, nil
}

func (that *RoundAction) IsSystem() bool {
	return that.PlayerID == SystemActorID
}

type roundActionJSON struct {
	Kind     ActionKind      `json:"kind"`
	PlayerID int64           `json:"player_id"`
	Payload  json.RawMessage `json:"payload"`
}

func (that RoundAction) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(that.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", that.Kind, err)
	}

	return json.Marshal(roundActionJSON{
		Kind:     that.Kind,
		PlayerID: that.PlayerID,
		Payload:  payload,
	})
}

func (that *RoundAction) UnmarshalJSON(data []byte) error {
	var raw roundActionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal round action: %w", err)
	}

	payload, err := decodePayload(raw.Kind, raw.Payload)
	if err != nil {
		return err
	}

	that.Kind = raw.Kind
	that.PlayerID = raw.PlayerID
	that.Payload = payload

	return nil
}

func decodePayload(kind ActionKind, raw json.RawMessage) (ActionPayload, error) {
	if kind == "" {
		return nil, apperror.NewValidationError("action type is required")
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if kind == ActionSkip {
			return SkipPayload{}, nil
		}

		return nil, apperror.NewValidationError("action payload is required")
	}

	var payload ActionPayload

	switch kind {
	case ActionGenerateNewConsultant:
		var p GenerateNewConsultantPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, malformedPayload(kind, err)
		}
		payload = p
	case ActionHireConsultant:
		var p HireConsultantPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, malformedPayload(kind, err)
		}
		payload = p
	case ActionFireEmployee:
		var p FireEmployeePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, malformedPayload(kind, err)
		}
		payload = p
	case ActionSkip:
		var p SkipPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, malformedPayload(kind, err)
		}
		payload = p
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnsupportedAction, kind)
	}

	return payload, nil
}

func malformedPayload(kind ActionKind, err error) error {
	return apperror.NewValidationError(fmt.Sprintf("malformed %s payload: %v", kind, err))
}
