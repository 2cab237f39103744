package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"familycal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123:abc"

type apiCall struct {
	Method string
	Form   map[string]string
}

// fakeAPI answers Bot API calls and records them.
type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
	fail  map[string]bool
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefix := "/bot" + testToken + "/"
		assert.True(t, strings.HasPrefix(r.URL.Path, prefix), r.URL.Path)
		method := strings.TrimPrefix(r.URL.Path, prefix)
		assert.NoError(t, r.ParseForm())
		form := make(map[string]string)
		for k := range r.Form {
			form[k] = r.Form.Get(k)
		}
		f.mu.Lock()
		f.calls = append(f.calls, apiCall{Method: method, Form: form})
		fail := f.fail[method]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if fail {
			fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
			return
		}
		switch method {
		case "getMe":
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Family","username":"family_cal_bot"}}`)
		case "sendMessage":
			fmt.Fprintf(w, `{"ok":true,"result":{"message_id":42,"date":0,"chat":{"id":%s,"type":"group"},"text":"x"}}`, form["chat_id"])
		case "getFile":
			fmt.Fprint(w, `{"ok":true,"result":{"file_id":"voice-1","file_unique_id":"u","file_path":"voice/file_1.oga"}}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		}
	}
}

func (f *fakeAPI) last() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestMessenger(t *testing.T, api *fakeAPI) *Messenger {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	m, err := NewMessenger(Config{Token: testToken, Endpoint: srv.URL + "/bot%s/%s"}, logger)
	require.NoError(t, err)
	return m
}

func TestMessenger_Send(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(t, api)
	assert.Equal(t, "family_cal_bot", m.Username())

	id, err := m.Send(context.Background(), -100, "<b>hi</b>",
		domain.InlineButton{Text: "Delete", Data: domain.CallbackDeleteEvent + "e1"})
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	call := api.last()
	assert.Equal(t, "sendMessage", call.Method)
	assert.Equal(t, "-100", call.Form["chat_id"])
	assert.Equal(t, "<b>hi</b>", call.Form["text"])
	assert.Equal(t, "HTML", call.Form["parse_mode"])

	var markup struct {
		InlineKeyboard [][]struct {
			Text         string `json:"text"`
			CallbackData string `json:"callback_data"`
		} `json:"inline_keyboard"`
	}
	require.NoError(t, json.Unmarshal([]byte(call.Form["reply_markup"]), &markup))
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "delete_event:e1", markup.InlineKeyboard[0][0].CallbackData)
}

func TestMessenger_SendFailure(t *testing.T) {
	api := &fakeAPI{fail: map[string]bool{"sendMessage": true}}
	m := newTestMessenger(t, api)

	_, err := m.Send(context.Background(), 5, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestMessenger_SendCanceledContext(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(t, api)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Send(ctx, 5, "hi")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "getMe", api.last().Method)
}

func TestMessenger_EditAndAck(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(t, api)

	require.NoError(t, m.Edit(context.Background(), 7, 42, "🗑 deleted"))
	call := api.last()
	assert.Equal(t, "editMessageText", call.Method)
	assert.Equal(t, "42", call.Form["message_id"])
	assert.Equal(t, "🗑 deleted", call.Form["text"])

	require.NoError(t, m.AckCallback(context.Background(), "cb-1"))
	assert.Equal(t, "answerCallbackQuery", api.last().Method)
	assert.Equal(t, "cb-1", api.last().Form["callback_query_id"])
}

func TestMessenger_FileURL(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(t, api)

	url, err := m.FileURL(context.Background(), "voice-1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "/file/bot"+testToken+"/voice/file_1.oga"), url)
	assert.Equal(t, "voice-1", api.last().Form["file_id"])
}

func TestMessenger_RegisterCommands(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMessenger(t, api)

	require.NoError(t, m.RegisterCommands())
	call := api.last()
	assert.Equal(t, "setMyCommands", call.Method)
	assert.Contains(t, call.Form["commands"], `"command":"week"`)
}
