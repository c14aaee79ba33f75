package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Somati-x/stroyhub-bot/internal/models"
	"github.com/Somati-x/stroyhub-bot/internal/telegram"
)

// secretTokenHeader is the header Telegram echoes the configured webhook
// secret in.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// webhookHandler receives one Telegram update, acknowledges it immediately
// and dispatches the translated action in the background. Telegram retries
// non-2xx deliveries, so translation problems are logged and acknowledged
// rather than surfaced.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.opts.SecretToken != "" && r.Header.Get(secretTokenHeader) != s.opts.SecretToken {
		slog.Warn("Webhook request with bad secret token", "remote_addr", r.RemoteAddr)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Error("Failed to decode webhook update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	userID, action, ok := s.translateUpdate(r.Context(), &update)
	if !ok {
		return
	}

	// The engine serializes actions per user; the generation round-trip can
	// take far longer than Telegram's delivery timeout, so processing happens
	// off the request goroutine.
	go func() {
		if err := s.engine.HandleAction(s.dispatchCtx, userID, action); err != nil {
			slog.Error("Failed to handle action", "error", err, "userID", userID, "action", action.Type)
		}
	}()
}

// translateUpdate converts a raw Telegram update into the wizard's action
// vocabulary. Updates that carry nothing actionable are dropped with a log.
func (s *Server) translateUpdate(ctx context.Context, update *telegram.Update) (string, models.Action, bool) {
	userID := telegram.ChatID(update)
	if userID == "" {
		slog.Debug("Webhook update without usable chat", "update_id", update.UpdateID)
		return "", models.Action{}, false
	}

	if cb := update.CallbackQuery; cb != nil {
		// Acknowledge the press so the client stops its spinner.
		if err := s.tg.AnswerCallbackQuery(ctx, cb.ID); err != nil {
			slog.Warn("Failed to answer callback query", "error", err, "userID", userID)
		}

		action, err := models.ParseCallback(cb.Data)
		if err != nil {
			slog.Info("Ignoring unknown callback data", "error", err, "userID", userID)
			return "", models.Action{}, false
		}
		return userID, action, true
	}

	if msg := update.Message; msg != nil && msg.Text != "" {
		return userID, messageToAction(msg.Text), true
	}

	slog.Debug("Webhook update carried no actionable content", "update_id", update.UpdateID, "userID", userID)
	return "", models.Action{}, false
}

// messageToAction maps message text to an action: start and cancel commands,
// everything else as a free-text submission.
func messageToAction(text string) models.Action {
	trimmed := strings.TrimSpace(text)
	// Commands may carry a @botname suffix in group chats.
	command := strings.ToLower(strings.SplitN(trimmed, "@", 2)[0])
	switch command {
	case "/start", "/newpost":
		return models.Action{Type: models.ActionStart}
	case "/cancel":
		return models.Action{Type: models.ActionCancel}
	default:
		return models.Action{Type: models.ActionSubmitText, Text: trimmed}
	}
}
