// Package models defines the core data structures for stroyhub-bot.
//
// It includes the per-user wizard session, the inbound action vocabulary
// produced by the Telegram transport, and shared error values.
package models

import (
	"errors"
	"time"
)

// SkippedSentinel is stored as the answer value when a user explicitly skips
// an optional free-text step, so the prompt builder can tell "explicitly
// skipped" from "never reached".
const SkippedSentinel = "_пропущено_"

// Phase represents where a user currently is in the wizard lifecycle.
type Phase string

const (
	// PhaseIdle means no wizard is in progress for the user.
	PhaseIdle Phase = "IDLE"
	// PhaseInWizard means the user is answering catalog steps.
	PhaseInWizard Phase = "IN_WIZARD"
	// PhaseConfirming means all steps are answered and the user decides
	// whether to generate (or regenerate) post variants.
	PhaseConfirming Phase = "CONFIRMING_GENERATION"
)

// IsValidPhase checks if the given phase is one of the known wizard phases.
func IsValidPhase(p Phase) bool {
	switch p {
	case PhaseIdle, PhaseInWizard, PhaseConfirming:
		return true
	default:
		return false
	}
}

// Session represents one user's mutable progress through the wizard.
// Sessions are mutated exclusively by the wizard engine.
type Session struct {
	UserID    string            `json:"user_id"`
	Phase     Phase             `json:"phase"`
	StepIndex int               `json:"step_index"`
	Answers   map[string]string `json:"answers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewSession returns a fresh idle session for the given user.
func NewSession(userID string) Session {
	now := time.Now()
	return Session{
		UserID:    userID,
		Phase:     PhaseIdle,
		StepIndex: 0,
		Answers:   make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CloneAnswers returns an independent copy of the collected answers. It is
// used to snapshot a GenerationRequest so a later regenerate reuses the exact
// same data, and by stores to keep saves atomic.
func (s Session) CloneAnswers() map[string]string {
	out := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		out[k] = v
	}
	return out
}

// ActionType identifies one inbound user action consumed by the wizard engine.
type ActionType string

const (
	// ActionStart begins a new wizard, discarding any prior progress.
	ActionStart ActionType = "start"
	// ActionCancel aborts the wizard and returns the user to idle.
	ActionCancel ActionType = "cancel"
	// ActionSubmitText carries a free-form message typed by the user.
	ActionSubmitText ActionType = "submit_text"
	// ActionSkip skips the current optional free-text step.
	ActionSkip ActionType = "skip"
	// ActionSelectOption carries a choice-button press, encoding both the
	// originating step key and the chosen option's position.
	ActionSelectOption ActionType = "select_option"
	// ActionConfirmGeneration requests generation after the summary.
	ActionConfirmGeneration ActionType = "confirm_generation"
	// ActionRegenerate requests another generation with the same answers.
	ActionRegenerate ActionType = "regenerate"
	// ActionFinishGeneration accepts the results and ends the wizard.
	ActionFinishGeneration ActionType = "finish_generation"
)

// Action is one parsed inbound user event. Text is set for ActionSubmitText;
// StepKey and OptionIndex are set for ActionSelectOption.
type Action struct {
	Type        ActionType
	Text        string
	StepKey     string
	OptionIndex int
}

// GenerationRequest is an immutable snapshot of the collected answers taken
// at the moment the wizard completes, passed by value to the prompt builder.
type GenerationRequest struct {
	Answers map[string]string
}

// ErrEmptyUserID is returned when an action arrives without a user identifier.
var ErrEmptyUserID = errors.New("user identifier cannot be empty")
