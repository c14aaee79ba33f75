package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Somati-x/stroyhub-bot/internal/wizard"
)

// recordedCall captures one Bot API request for assertions.
type recordedCall struct {
	method string
	values url.Values
}

// newAPIServer starts a Bot API stub that records calls. getMe (issued by the
// SDK during authentication) always succeeds; every other method answers with
// the given envelope.
func newAPIServer(t *testing.T, response string) (*httptest.Server, func(method string) []recordedCall) {
	t.Helper()

	var mu sync.Mutex
	var calls []recordedCall

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse request form: %v", err)
		}
		method := path.Base(r.URL.Path)

		mu.Lock()
		calls = append(calls, recordedCall{method: method, values: r.PostForm})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if method == "getMe" {
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Test","username":"stroyhub_test_bot"}}`))
			return
		}
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return srv, func(method string) []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		var out []recordedCall
		for _, c := range calls {
			if c.method == method {
				out = append(out, c)
			}
		}
		return out
	}
}

func newTestTelegramClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(WithToken("test-token"), WithAPIEndpoint(baseURL+"/bot%s/%s"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient()
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	srv, calls := newAPIServer(t, `{"ok":true,"result":{}}`)
	c := newTestTelegramClient(t, srv.URL)

	if err := c.SendMessage(context.Background(), "12345", "Привіт!"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	got := calls("sendMessage")
	if len(got) != 1 {
		t.Fatalf("expected 1 sendMessage call, got %d", len(got))
	}
	if got[0].values.Get("chat_id") != "12345" || got[0].values.Get("text") != "Привіт!" {
		t.Errorf("unexpected payload %v", got[0].values)
	}
}

func TestSendMessageRejectsNonNumericChat(t *testing.T) {
	srv, calls := newAPIServer(t, `{"ok":true,"result":{}}`)
	c := newTestTelegramClient(t, srv.URL)

	if err := c.SendMessage(context.Background(), "not-a-chat", "hi"); err == nil {
		t.Error("expected error for non-numeric chat identifier")
	}
	if len(calls("sendMessage")) != 0 {
		t.Error("invalid chat identifier must not reach the API")
	}
}

func TestSendMessageWithButtonsEncodesInlineKeyboard(t *testing.T) {
	srv, calls := newAPIServer(t, `{"ok":true,"result":{}}`)
	c := newTestTelegramClient(t, srv.URL)

	buttons := [][]wizard.Button{
		{{Label: "Instagram", Data: "opt:platform:0"}, {Label: "Facebook", Data: "opt:platform:1"}},
		{{Label: "Скасувати", Data: "cancel"}},
	}
	if err := c.SendMessageWithButtons(context.Background(), "12345", "Де публікуємо?", buttons); err != nil {
		t.Fatalf("SendMessageWithButtons failed: %v", err)
	}

	got := calls("sendMessage")
	if len(got) != 1 {
		t.Fatalf("expected 1 sendMessage call, got %d", len(got))
	}

	var markup struct {
		InlineKeyboard [][]struct {
			Text         string `json:"text"`
			CallbackData string `json:"callback_data"`
		} `json:"inline_keyboard"`
	}
	if err := json.Unmarshal([]byte(got[0].values.Get("reply_markup")), &markup); err != nil {
		t.Fatalf("reply_markup is not valid JSON: %v", err)
	}
	if len(markup.InlineKeyboard) != 2 || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected keyboard shape: %+v", markup.InlineKeyboard)
	}
	first := markup.InlineKeyboard[0][0]
	if first.Text != "Instagram" || first.CallbackData != "opt:platform:0" {
		t.Errorf("unexpected first button %+v", first)
	}
	if markup.InlineKeyboard[1][0].CallbackData != "cancel" {
		t.Errorf("unexpected cancel button %+v", markup.InlineKeyboard[1][0])
	}
}

func TestSendMessageSurfacesAPIRejection(t *testing.T) {
	srv, _ := newAPIServer(t, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	c := newTestTelegramClient(t, srv.URL)

	err := c.SendMessage(context.Background(), "12345", "hi")
	if err == nil {
		t.Fatal("expected error for ok:false envelope")
	}
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *tgbotapi.Error, got %T: %v", err, err)
	}
	if apiErr.Code != 400 || !strings.Contains(apiErr.Message, "chat not found") {
		t.Errorf("unexpected API error %+v", apiErr)
	}
}

func TestEditMessageText(t *testing.T) {
	srv, calls := newAPIServer(t, `{"ok":true,"result":{}}`)
	c := newTestTelegramClient(t, srv.URL)

	if err := c.EditMessageText(context.Background(), "12345", 42, "оновлено"); err != nil {
		t.Fatalf("EditMessageText failed: %v", err)
	}

	got := calls("editMessageText")
	if len(got) != 1 {
		t.Fatalf("expected 1 editMessageText call, got %d", len(got))
	}
	v := got[0].values
	if v.Get("chat_id") != "12345" || v.Get("message_id") != "42" || v.Get("text") != "оновлено" {
		t.Errorf("unexpected payload %v", v)
	}
}

func TestDeleteMessage(t *testing.T) {
	srv, calls := newAPIServer(t, `{"ok":true,"result":true}`)
	c := newTestTelegramClient(t, srv.URL)

	if err := c.DeleteMessage(context.Background(), "12345", 42); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}

	got := calls("deleteMessage")
	if len(got) != 1 {
		t.Fatalf("expected 1 deleteMessage call, got %d", len(got))
	}
	if got[0].values.Get("chat_id") != "12345" || got[0].values.Get("message_id") != "42" {
		t.Errorf("unexpected payload %v", got[0].values)
	}
}

func TestAnswerCallbackQuery(t *testing.T) {
	srv, calls := newAPIServer(t, `{"ok":true,"result":true}`)
	c := newTestTelegramClient(t, srv.URL)

	if err := c.AnswerCallbackQuery(context.Background(), "cb-42"); err != nil {
		t.Fatalf("AnswerCallbackQuery failed: %v", err)
	}

	got := calls("answerCallbackQuery")
	if len(got) != 1 {
		t.Fatalf("expected 1 answerCallbackQuery call, got %d", len(got))
	}
	if got[0].values.Get("callback_query_id") != "cb-42" {
		t.Errorf("unexpected payload %v", got[0].values)
	}
}

func TestSetWebhookIncludesSecretToken(t *testing.T) {
	srv, calls := newAPIServer(t, `{"ok":true,"result":true}`)
	c := newTestTelegramClient(t, srv.URL)

	if err := c.SetWebhook(context.Background(), "https://bot.example.com/webhook", "s3cret"); err != nil {
		t.Fatalf("SetWebhook failed: %v", err)
	}

	got := calls("setWebhook")
	if len(got) != 1 {
		t.Fatalf("expected 1 setWebhook call, got %d", len(got))
	}
	v := got[0].values
	if v.Get("url") != "https://bot.example.com/webhook" || v.Get("secret_token") != "s3cret" {
		t.Errorf("unexpected payload %v", v)
	}
}

func TestSetWebhookOmitsEmptySecret(t *testing.T) {
	srv, calls := newAPIServer(t, `{"ok":true,"result":true}`)
	c := newTestTelegramClient(t, srv.URL)

	if err := c.SetWebhook(context.Background(), "https://bot.example.com/webhook", ""); err != nil {
		t.Fatalf("SetWebhook failed: %v", err)
	}

	if _, present := calls("setWebhook")[0].values["secret_token"]; present {
		t.Error("empty secret must not be sent")
	}
}

func TestDeleteWebhook(t *testing.T) {
	srv, calls := newAPIServer(t, `{"ok":true,"result":true}`)
	c := newTestTelegramClient(t, srv.URL)

	if err := c.DeleteWebhook(context.Background()); err != nil {
		t.Fatalf("DeleteWebhook failed: %v", err)
	}
	if len(calls("deleteWebhook")) != 1 {
		t.Error("expected 1 deleteWebhook call")
	}
}

func TestChatID(t *testing.T) {
	msgUpdate := Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 777}}}
	if got := ChatID(&msgUpdate); got != "777" {
		t.Errorf("expected chat id from message, got %q", got)
	}

	cbUpdate := Update{CallbackQuery: &tgbotapi.CallbackQuery{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 888}}}}
	if got := ChatID(&cbUpdate); got != "888" {
		t.Errorf("expected chat id from callback message, got %q", got)
	}

	var empty Update
	if got := ChatID(&empty); got != "" {
		t.Errorf("expected empty chat id, got %q", got)
	}
}
