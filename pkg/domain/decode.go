package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeViewAction builds a view action from its wire form, as received by
// the HTTP and MCP adapters. Payloads are generic maps (decoded JSON); only
// form input actions carry one.
func DecodeViewAction(actionType string, payload any) (Action, error) {
	t := ActionType(actionType)
	if !IsViewAction(t) {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, actionType)
	}

	switch t {
	case ActionAddFormInput, ActionEditFormInput:
		var data UserFormData
		if err := decodePayload(payload, &data); err != nil {
			return Action{}, fmt.Errorf("invalid payload for %s: %w", t, err)
		}
		return Action{Type: t, Payload: data}, nil
	}
	return Action{Type: t}, nil
}

func decodePayload(payload any, out any) error {
	if payload == nil {
		return fmt.Errorf("payload is required")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}
