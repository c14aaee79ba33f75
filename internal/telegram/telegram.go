// Package telegram adapts the Telegram Bot API to the wizard's outbound
// sender: sending texts and inline keyboards, editing and deleting previous
// messages, answering callback queries and managing the webhook lifecycle.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Somati-x/stroyhub-bot/internal/wizard"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("TELEGRAM_TOKEN not set")

// Opts holds configuration options for the Telegram client.
type Opts struct {
	Token       string
	APIEndpoint string
	HTTPClient  *http.Client
}

// Option defines a configuration option for the Telegram client.
type Option func(*Opts)

// WithToken sets the bot token.
func WithToken(token string) Option {
	return func(o *Opts) {
		o.Token = token
	}
}

// WithAPIEndpoint overrides the Bot API endpoint format (two %s verbs, token
// then method), mainly for tests.
func WithAPIEndpoint(endpoint string) Option {
	return func(o *Opts) {
		o.APIEndpoint = endpoint
	}
}

// WithHTTPClient overrides the HTTP client used for Bot API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Opts) {
		o.HTTPClient = client
	}
}

// Client wraps the Bot API SDK. The SDK performs requests without contexts,
// so the ctx parameters required by the wizard.Sender seam are accepted but
// not propagated; per-call deadlines come from the HTTP client's timeout.
type Client struct {
	bot *tgbotapi.BotAPI
}

// Update is one inbound event pushed by Telegram to the webhook.
type Update = tgbotapi.Update

// NewClient creates a Telegram client and verifies the token against the API.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		slog.Error("Telegram client missing bot token")
		return nil, ErrMissingToken
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, httpClient)
	if err != nil {
		slog.Error("Telegram client authentication failed", "error", err)
		return nil, fmt.Errorf("failed to authenticate with Telegram: %w", err)
	}

	slog.Debug("Telegram client created", "username", bot.Self.UserName)
	return &Client{bot: bot}, nil
}

// SendMessage sends a plain text message to the given chat.
func (c *Client) SendMessage(ctx context.Context, to string, body string) error {
	chatID, err := parseChatID(to)
	if err != nil {
		return err
	}
	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, body)); err != nil {
		return fmt.Errorf("sendMessage failed: %w", err)
	}
	slog.Debug("Telegram message sent", "chat_id", to, "body_length", len(body))
	return nil
}

// SendMessageWithButtons sends a text message with an inline keyboard. Each
// inner slice is one keyboard row.
func (c *Client) SendMessageWithButtons(ctx context.Context, to string, body string, buttons [][]wizard.Button) error {
	chatID, err := parseChatID(to)
	if err != nil {
		return err
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		keyboardRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, keyboardRow)
	}

	msg := tgbotapi.NewMessage(chatID, body)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("sendMessage failed: %w", err)
	}
	slog.Debug("Telegram message with keyboard sent", "chat_id", to, "rows", len(rows))
	return nil
}

// EditMessageText replaces the text of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, to string, messageID int, body string) error {
	chatID, err := parseChatID(to)
	if err != nil {
		return err
	}
	if _, err := c.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, body)); err != nil {
		return fmt.Errorf("editMessageText failed: %w", err)
	}
	return nil
}

// DeleteMessage removes a previously sent message.
func (c *Client) DeleteMessage(ctx context.Context, to string, messageID int) error {
	chatID, err := parseChatID(to)
	if err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("deleteMessage failed: %w", err)
	}
	return nil
}

// AnswerCallbackQuery acknowledges a button press so the client stops showing
// a progress indicator. Best-effort: failures only degrade UX.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackQueryID, "")); err != nil {
		return fmt.Errorf("answerCallbackQuery failed: %w", err)
	}
	return nil
}

// SetWebhook tells Telegram to push updates to the given URL. The secret
// token, when set, is echoed back in a header so the webhook handler can
// authenticate requests.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secretToken)
	if _, err := c.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("setWebhook failed: %w", err)
	}
	slog.Info("Telegram webhook registered", "url", url, "secret_set", secretToken != "")
	return nil
}

// DeleteWebhook tells Telegram to stop pushing updates.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	if _, err := c.bot.MakeRequest("deleteWebhook", nil); err != nil {
		return fmt.Errorf("deleteWebhook failed: %w", err)
	}
	slog.Info("Telegram webhook removed")
	return nil
}

// ChatID returns the chat identifier the update belongs to as a string, or
// "" when the update carries no usable chat.
func ChatID(u *Update) string {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return strconv.FormatInt(u.Message.Chat.ID, 10)
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return strconv.FormatInt(u.CallbackQuery.Message.Chat.ID, 10)
	default:
		return ""
	}
}

// parseChatID converts the engine's string user identifier back to the
// numeric chat ID Telegram expects.
func parseChatID(to string) (int64, error) {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat identifier %q: %w", to, err)
	}
	return chatID, nil
}
