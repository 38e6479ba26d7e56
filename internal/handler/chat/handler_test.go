package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/myabroadportal/portal/backend/internal/clock"
	"github.com/myabroadportal/portal/backend/internal/model/chat"
	chatservice "github.com/myabroadportal/portal/backend/internal/service/chat"
	"github.com/myabroadportal/portal/backend/internal/service/handoff"
)

func setupRouter(t *testing.T) (*chi.Mux, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake()
	chatSvc := chatservice.NewService(
		chatservice.WithScheduler(fake),
		chatservice.WithHandoff(handoff.New("https://wa.me", "917990675093")),
	)
	handler := New(chatSvc, []string{"https://myabroadportal.example"}, zaptest.NewLogger(t))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, fake
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) chat.Snapshot {
	t.Helper()
	resp := do(t, r, http.MethodPost, "/session", nil)
	require.Equal(t, http.StatusCreated, resp.Code)
	var snap chat.Snapshot
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snap))
	return snap
}

func TestCreateSession(t *testing.T) {
	r, _ := setupRouter(t)

	snap := createSession(t, r)

	assert.NotEmpty(t, snap.ID)
	assert.Len(t, snap.Messages, 2)
}

func TestSendMessageFlow(t *testing.T) {
	r, fake := setupRouter(t)
	snap := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/"+snap.ID+"/messages", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusAccepted, resp.Code)

	fake.Advance(time.Second)

	resp = do(t, r, http.MethodGet, "/"+snap.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var got chat.Snapshot
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got.Messages, 4)
	assert.Equal(t, chat.SenderBot, got.Messages[3].Sender)
}

func TestSendMessageValidation(t *testing.T) {
	r, _ := setupRouter(t)
	snap := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/"+snap.ID+"/messages", map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(t, r, http.MethodPost, "/missing/messages", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	req := httptest.NewRequest(http.MethodPost, "/"+snap.ID+"/messages", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectWhatsAppOptionReturnsHandoff(t *testing.T) {
	r, _ := setupRouter(t)
	snap := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/"+snap.ID+"/options", map[string]string{"option": "Chat on WhatsApp"})
	require.Equal(t, http.StatusAccepted, resp.Code)

	var body struct {
		HandoffURL string `json:"handoffUrl"`
		State      string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body.HandoffURL, "https://wa.me/917990675093?text="))
	assert.Equal(t, "idle", body.State)
}

func TestCloseSession(t *testing.T) {
	r, _ := setupRouter(t)
	snap := createSession(t, r)

	resp := do(t, r, http.MethodDelete, "/"+snap.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = do(t, r, http.MethodGet, "/"+snap.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

type wsFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func TestWebSocketPushesMessages(t *testing.T) {
	r, fake := setupRouter(t)
	snap := createSession(t, r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/" + snap.ID + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "snapshot", frame.Type)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "text",
		"data": map[string]string{"text": "pricing"},
	}))

	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "message", frame.Type)
	var msg chat.Message
	require.NoError(t, json.Unmarshal(frame.Data, &msg))
	assert.Equal(t, chat.SenderUser, msg.Sender)

	require.Eventually(t, func() bool { return fake.Pending() == 1 }, time.Second, 5*time.Millisecond)
	fake.Advance(time.Second)

	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "message", frame.Type)
	require.NoError(t, json.Unmarshal(frame.Data, &msg))
	assert.Equal(t, chat.SenderBot, msg.Sender)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "option",
		"data": map[string]string{"option": "Confirm on WhatsApp 🟢"},
	}))
	// 用户回显与 handoff 链接由不同 goroutine 写出，顺序不定
	types := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.ReadJSON(&frame))
		types = append(types, frame.Type)
	}
	assert.ElementsMatch(t, []string{"message", "handoff"}, types)
}

func TestWebSocketUnknownSession(t *testing.T) {
	r, _ := setupRouter(t)

	resp := do(t, r, http.MethodGet, "/missing/ws", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestWebSocketChecksOrigin(t *testing.T) {
	r, _ := setupRouter(t)
	snap := createSession(t, r)

	srv := httptest.NewServer(r)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/" + snap.ID + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"https://myabroadportal.example"}})
	require.NoError(t, err)
	defer conn.Close()

	var frame wsFrame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "snapshot", frame.Type)
}
