// Package wizard implements the form-filling state machine that walks a user
// through the step catalog, collects answers, and hands the completed record
// to the generation client.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Somati-x/stroyhub-bot/internal/catalog"
	"github.com/Somati-x/stroyhub-bot/internal/models"
	"github.com/Somati-x/stroyhub-bot/internal/session"
)

// Generator turns a (system prompt, user prompt) pair into generated text.
// It owns its own retry policy.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Engine drives phase transitions: it renders the correct prompt for each
// step, validates and stores answers, and runs the generation round-trip.
// Sessions are mutated exclusively here.
type Engine struct {
	catalog *catalog.Catalog
	store   session.Store
	sender  Sender
	gen     Generator

	locks *userLocks

	// generating marks users with an outstanding generation call so their
	// re-entrant actions get a "please wait" notice instead of queueing
	// behind a request that can take up to 90 seconds.
	genMu      sync.Mutex
	generating map[string]bool
}

// NewEngine creates a wizard engine over the given catalog, session store,
// outbound sender and generation client.
func NewEngine(cat *catalog.Catalog, store session.Store, sender Sender, gen Generator) *Engine {
	slog.Debug("Creating wizard engine", "steps", cat.Len())
	return &Engine{
		catalog:    cat,
		store:      store,
		sender:     sender,
		gen:        gen,
		locks:      newUserLocks(),
		generating: make(map[string]bool),
	}
}

// HandleAction applies one inbound user action to the user's session. Actions
// for the same user are serialized in arrival order; an action that matches
// no valid (phase, action) pair is logged and ignored, never an error.
func (e *Engine) HandleAction(ctx context.Context, userID string, action models.Action) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}

	if e.isGenerating(userID) {
		slog.Info("WizardEngine rejecting action during generation", "userID", userID, "action", action.Type)
		e.send(ctx, userID, msgPleaseWait, nil)
		return nil
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	sess, err := e.store.Get(userID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	slog.Debug("WizardEngine handling action", "userID", userID, "action", action.Type, "phase", sess.Phase, "stepIndex", sess.StepIndex)

	// Start re-enters the wizard from any phase.
	if action.Type == models.ActionStart {
		return e.startWizard(ctx, userID)
	}

	switch sess.Phase {
	case models.PhaseInWizard:
		switch action.Type {
		case models.ActionCancel:
			return e.cancelWizard(ctx, sess)
		case models.ActionSubmitText:
			return e.submitText(ctx, sess, action.Text)
		case models.ActionSkip:
			return e.skipStep(ctx, sess)
		case models.ActionSelectOption:
			return e.selectOption(ctx, sess, action)
		}

	case models.PhaseConfirming:
		switch action.Type {
		case models.ActionCancel:
			return e.cancelWizard(ctx, sess)
		case models.ActionConfirmGeneration:
			return e.runGeneration(ctx, sess)
		case models.ActionRegenerate:
			return e.runGeneration(ctx, sess)
		case models.ActionFinishGeneration:
			return e.finishWizard(ctx, sess)
		}
	}

	// No valid (phase, action) pair matched: no-op, never crash the session.
	slog.Info("WizardEngine ignoring action invalid for phase", "userID", userID, "action", action.Type, "phase", sess.Phase)
	return nil
}

// startWizard discards any prior progress and renders step 0.
func (e *Engine) startWizard(ctx context.Context, userID string) error {
	if err := e.store.Clear(userID); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	sess, err := e.store.Get(userID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	sess.Phase = models.PhaseInWizard
	sess.StepIndex = 0
	sess.UpdatedAt = time.Now()
	if err := e.store.Save(sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	step, err := e.catalog.At(0)
	if err != nil {
		return err
	}
	slog.Info("WizardEngine started wizard", "userID", userID)
	e.showStep(ctx, userID, step)
	return nil
}

// submitText handles a free-form message while in the wizard.
func (e *Engine) submitText(ctx context.Context, sess models.Session, text string) error {
	step, err := e.catalog.At(sess.StepIndex)
	if err != nil {
		return err
	}

	if step.Kind == catalog.KindChoice {
		// Typed text cannot answer a choice step; remind without mutating state.
		slog.Debug("WizardEngine text rejected for choice step", "userID", sess.UserID, "step", step.Key)
		e.send(ctx, sess.UserID, msgUseButtons, nil)
		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		slog.Debug("WizardEngine empty answer re-prompt", "userID", sess.UserID, "step", step.Key)
		e.send(ctx, sess.UserID, msgEmptyText, nil)
		e.showStep(ctx, sess.UserID, step)
		return nil
	}

	sess.Answers[step.Key] = text
	return e.advance(ctx, sess)
}

// skipStep stores the skip sentinel for the current free-text step.
func (e *Engine) skipStep(ctx context.Context, sess models.Session) error {
	step, err := e.catalog.At(sess.StepIndex)
	if err != nil {
		return err
	}
	if step.Kind != catalog.KindFreeText {
		// Choice steps offer no skip affordance; this press is stale UI.
		slog.Info("WizardEngine ignoring skip on choice step", "userID", sess.UserID, "step", step.Key)
		return nil
	}

	sess.Answers[step.Key] = models.SkippedSentinel
	slog.Debug("WizardEngine step skipped", "userID", sess.UserID, "step", step.Key)
	return e.advance(ctx, sess)
}

// selectOption stores the chosen option text if the press targets the current
// step with an in-bounds index; anything else is a stale UI artifact and is
// silently ignored.
func (e *Engine) selectOption(ctx context.Context, sess models.Session, action models.Action) error {
	step, err := e.catalog.At(sess.StepIndex)
	if err != nil {
		return err
	}

	if step.Kind != catalog.KindChoice || action.StepKey != step.Key {
		slog.Info("WizardEngine ignoring stale option press", "userID", sess.UserID, "pressed_step", action.StepKey, "current_step", step.Key)
		return nil
	}
	if action.OptionIndex < 0 || action.OptionIndex >= len(step.Options) {
		slog.Info("WizardEngine ignoring out-of-bounds option press", "userID", sess.UserID, "step", step.Key, "optionIndex", action.OptionIndex)
		return nil
	}

	sess.Answers[step.Key] = step.Options[action.OptionIndex]
	return e.advance(ctx, sess)
}

// advance increments the step index, then renders the next step or, when the
// catalog is exhausted, transitions to the confirmation phase and renders the
// summary.
func (e *Engine) advance(ctx context.Context, sess models.Session) error {
	sess.StepIndex++
	sess.UpdatedAt = time.Now()

	if sess.StepIndex >= e.catalog.Len() {
		sess.Phase = models.PhaseConfirming
		if err := e.store.Save(sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		slog.Info("WizardEngine wizard complete, awaiting confirmation", "userID", sess.UserID, "answers", len(sess.Answers))
		e.showSummary(ctx, sess.UserID, sess.Answers)
		return nil
	}

	if err := e.store.Save(sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	step, err := e.catalog.At(sess.StepIndex)
	if err != nil {
		return err
	}
	e.showStep(ctx, sess.UserID, step)
	return nil
}

// cancelWizard discards answers and returns the user to the idle entry point.
func (e *Engine) cancelWizard(ctx context.Context, sess models.Session) error {
	if err := e.store.Clear(sess.UserID); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	slog.Info("WizardEngine wizard cancelled", "userID", sess.UserID, "phase", sess.Phase, "stepIndex", sess.StepIndex)
	e.send(ctx, sess.UserID, msgCancelled, nil)
	e.showIdleMenu(ctx, sess.UserID)
	return nil
}

// finishWizard accepts the generated results and returns the user to idle.
func (e *Engine) finishWizard(ctx context.Context, sess models.Session) error {
	if err := e.store.Clear(sess.UserID); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	slog.Info("WizardEngine wizard finished", "userID", sess.UserID)
	e.send(ctx, sess.UserID, msgFinished, nil)
	e.showIdleMenu(ctx, sess.UserID)
	return nil
}

// runGeneration snapshots the answers, performs the generation round-trip and
// delivers the variants. The session stays in the confirming phase either
// way, so regenerate and retry reuse the collected answers without data loss.
func (e *Engine) runGeneration(ctx context.Context, sess models.Session) error {
	req := models.GenerationRequest{Answers: sess.CloneAnswers()}
	systemPrompt, userPrompt := BuildPrompt(req)

	e.send(ctx, sess.UserID, msgGenerating, nil)

	e.setGenerating(sess.UserID, true)
	text, err := e.gen.Generate(ctx, systemPrompt, userPrompt)
	e.setGenerating(sess.UserID, false)

	// The session cannot have been reset while the call was outstanding
	// (re-entrant actions are rejected above), but a crash-recovered or
	// externally cleared session would make the result stale: drop it.
	current, getErr := e.store.Get(sess.UserID)
	if getErr == nil && current.Phase != models.PhaseConfirming {
		slog.Warn("WizardEngine dropping generation result for reset session", "userID", sess.UserID, "phase", current.Phase)
		return nil
	}

	if err != nil {
		slog.Error("WizardEngine generation failed", "error", err, "userID", sess.UserID)
		e.showGenerationError(ctx, sess.UserID)
		return nil
	}

	variants := SplitVariants(text)
	slog.Info("WizardEngine generation succeeded", "userID", sess.UserID, "variants", len(variants))
	e.showVariants(ctx, sess.UserID, variants)
	return nil
}

func (e *Engine) isGenerating(userID string) bool {
	e.genMu.Lock()
	defer e.genMu.Unlock()
	return e.generating[userID]
}

func (e *Engine) setGenerating(userID string, v bool) {
	e.genMu.Lock()
	defer e.genMu.Unlock()
	if v {
		e.generating[userID] = true
	} else {
		delete(e.generating, userID)
	}
}
