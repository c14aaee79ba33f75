package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Callback data values carried by inline keyboard buttons. Option buttons are
// tagged with the originating step key and the option's position index, not
// the raw option string, so selection lookups are collision-free and robust
// to special characters.
const (
	CallbackStart      = "start"
	CallbackCancel     = "cancel"
	CallbackSkip       = "skip"
	CallbackConfirm    = "confirm"
	CallbackRegenerate = "regenerate"
	CallbackFinish     = "finish"

	callbackOptionPrefix = "opt"
	callbackSeparator    = ":"
)

// ErrUnknownCallback is returned when callback data does not match any known
// affordance. Such presses come from stale or foreign keyboards.
var ErrUnknownCallback = errors.New("unknown callback data")

// EncodeOptionCallback builds the callback data for one choice option.
func EncodeOptionCallback(stepKey string, optionIndex int) string {
	return strings.Join([]string{callbackOptionPrefix, stepKey, strconv.Itoa(optionIndex)}, callbackSeparator)
}

// ParseCallback translates inline-button callback data into an Action.
func ParseCallback(data string) (Action, error) {
	switch data {
	case CallbackStart:
		return Action{Type: ActionStart}, nil
	case CallbackCancel:
		return Action{Type: ActionCancel}, nil
	case CallbackSkip:
		return Action{Type: ActionSkip}, nil
	case CallbackConfirm:
		return Action{Type: ActionConfirmGeneration}, nil
	case CallbackRegenerate:
		return Action{Type: ActionRegenerate}, nil
	case CallbackFinish:
		return Action{Type: ActionFinishGeneration}, nil
	}

	parts := strings.Split(data, callbackSeparator)
	if len(parts) != 3 || parts[0] != callbackOptionPrefix || parts[1] == "" {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil || index < 0 {
		return Action{}, fmt.Errorf("%w: bad option index in %q", ErrUnknownCallback, data)
	}
	return Action{Type: ActionSelectOption, StepKey: parts[1], OptionIndex: index}, nil
}
