package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Somati-x/stroyhub-bot/internal/catalog"
	"github.com/Somati-x/stroyhub-bot/internal/models"
)

// Button is one inline affordance offered to the user.
type Button struct {
	Label string
	Data  string
}

// Sender is the outbound message delivery abstraction the engine talks to.
// Sends are fire-and-forget from the engine's perspective: a failure is
// logged and must not corrupt session state.
type Sender interface {
	SendMessage(ctx context.Context, to string, body string) error
	SendMessageWithButtons(ctx context.Context, to string, body string, buttons [][]Button) error
}

// User-facing copy.
const (
	msgIdleMenu         = "Привіт! Я допоможу скласти допис про нерухомість для соцмереж. Натисніть кнопку, щоб почати."
	msgCancelled        = "Добре, скасовано. Зібрані відповіді видалено."
	msgFinished         = "Чудово! Радий був допомогти. Повертайтеся за новим дописом 👋"
	msgEmptyText        = "Відповідь не може бути порожньою. Напишіть текст або натисніть «Пропустити»."
	msgUseButtons       = "Будь ласка, оберіть один із варіантів кнопками вище 👆"
	msgPleaseWait       = "Зачекайте, будь ласка: попередній запит ще обробляється ⏳"
	msgGenerating       = "Генерую текст, це може зайняти до хвилини… ✍️"
	msgGenerationFailed = "На жаль, не вдалося згенерувати текст 😔 Спробуємо ще раз?"
	msgSummaryHeader    = "Ось що ми зібрали:"
	msgSummaryFooter    = "Генеруємо текст допису?"
	msgSkippedValue     = "— пропущено —"

	labelStart      = "🏠 Новий допис"
	labelCancel     = "✖️ Скасувати"
	labelSkip       = "⏭ Пропустити"
	labelConfirm    = "🚀 Згенерувати"
	labelRegenerate = "🔄 Згенерувати ще"
	labelRetry      = "🔄 Спробувати ще раз"
	labelFinish     = "✅ Готово"
)

// showStep renders the question at the given step: one button per option for
// choice steps, a skip affordance for free-text steps, a cancel affordance
// always.
func (e *Engine) showStep(ctx context.Context, userID string, step catalog.Step) {
	var buttons [][]Button
	if step.Kind == catalog.KindChoice {
		for i, option := range step.Options {
			buttons = append(buttons, []Button{{
				Label: capitalizeLabel(option),
				Data:  models.EncodeOptionCallback(step.Key, i),
			}})
		}
	} else {
		buttons = append(buttons, []Button{{Label: labelSkip, Data: models.CallbackSkip}})
	}
	buttons = append(buttons, []Button{{Label: labelCancel, Data: models.CallbackCancel}})

	e.send(ctx, userID, step.Prompt, buttons)
}

// showSummary renders all collected label/value pairs plus the confirmation
// affordances.
func (e *Engine) showSummary(ctx context.Context, userID string, answers map[string]string) {
	var b strings.Builder
	b.WriteString(msgSummaryHeader)
	b.WriteString("\n\n")
	for _, step := range e.catalog.Steps() {
		value, ok := answers[step.Key]
		if !ok {
			continue
		}
		if value == models.SkippedSentinel {
			value = msgSkippedValue
		}
		fmt.Fprintf(&b, "• %s: %s\n", step.Label, value)
	}
	b.WriteString("\n")
	b.WriteString(msgSummaryFooter)

	buttons := [][]Button{
		{{Label: labelConfirm, Data: models.CallbackConfirm}},
		{{Label: labelCancel, Data: models.CallbackCancel}},
	}
	e.send(ctx, userID, b.String(), buttons)
}

// showVariants delivers one message per generated variant followed by the
// regenerate/finish affordance pair.
func (e *Engine) showVariants(ctx context.Context, userID string, variants []string) {
	for i, variant := range variants {
		body := fmt.Sprintf("Варіант %d:\n\n%s", i+1, variant)
		if len(variants) == 1 {
			body = variant
		}
		e.send(ctx, userID, body, nil)
	}

	buttons := [][]Button{
		{{Label: labelRegenerate, Data: models.CallbackRegenerate}},
		{{Label: labelFinish, Data: models.CallbackFinish}},
	}
	e.send(ctx, userID, "Що робимо далі?", buttons)
}

// showGenerationError surfaces a generation failure with a retry/finish pair.
// The session stays in the confirming phase so retry reuses the answers.
func (e *Engine) showGenerationError(ctx context.Context, userID string) {
	buttons := [][]Button{
		{{Label: labelRetry, Data: models.CallbackRegenerate}},
		{{Label: labelFinish, Data: models.CallbackFinish}},
	}
	e.send(ctx, userID, msgGenerationFailed, buttons)
}

// showIdleMenu renders the entry-point nudge after any terminal transition.
func (e *Engine) showIdleMenu(ctx context.Context, userID string) {
	buttons := [][]Button{
		{{Label: labelStart, Data: models.CallbackStart}},
	}
	e.send(ctx, userID, msgIdleMenu, buttons)
}

// send delivers a message best-effort: transport failures are logged and
// never propagated, so session state stays consistent.
func (e *Engine) send(ctx context.Context, userID, body string, buttons [][]Button) {
	var err error
	if len(buttons) > 0 {
		err = e.sender.SendMessageWithButtons(ctx, userID, body, buttons)
	} else {
		err = e.sender.SendMessage(ctx, userID, body)
	}
	if err != nil {
		slog.Error("WizardEngine send failed", "error", err, "userID", userID, "body_length", len(body))
	}
}

// capitalizeLabel normalizes an option string for button display by
// upper-casing its first rune.
func capitalizeLabel(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
