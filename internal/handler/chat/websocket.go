package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	chatService "github.com/myabroadportal/portal/backend/internal/service/chat"
)

const writeWait = 10 * time.Second

// wsConn 串行化写操作，gorilla 连接同一时间只允许一个写者。
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msgType, sessionID string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(outgoingMessage{Type: msgType, SessionID: sessionID, Data: data})
}

// handleWebSocket 推送每条新追加的消息，并接收前端发来的
// {"type":"text"} 与 {"type":"option"} 帧。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	snap, updates, cancel, err := h.chatSvc.Subscribe(sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	defer cancel()

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("sessionId", sessionID), zap.Error(err))
		return
	}
	defer raw.Close()
	conn := &wsConn{conn: raw}

	if err := conn.send("snapshot", sessionID, snap); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range updates {
			if err := conn.send("message", sessionID, msg); err != nil {
				return
			}
		}
		// 会话已关闭
		_ = conn.send("closed", sessionID, nil)
		raw.Close()
	}()

	for {
		var in inboundMessage
		if err := raw.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.String("sessionId", sessionID), zap.Error(err))
			}
			break
		}
		if err := h.handleFrame(r, conn, sessionID, in); err != nil {
			if errors.Is(err, chatService.ErrSessionNotFound) {
				break
			}
			_ = conn.send("error", sessionID, err.Error())
		}
	}

	cancel()
	<-done
}

func (h *Handler) handleFrame(r *http.Request, conn *wsConn, sessionID string, in inboundMessage) error {
	ctx := r.Context()
	switch in.Type {
	case "text":
		var data textData
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return errors.New("invalid text frame")
		}
		_, err := h.chatSvc.SendMessage(ctx, sessionID, data.Text)
		return err
	case "option":
		var data optionData
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return errors.New("invalid option frame")
		}
		link, _, err := h.chatSvc.SelectOption(ctx, sessionID, data.Option)
		if err != nil {
			return err
		}
		if link != "" {
			return conn.send("handoff", sessionID, map[string]string{"url": link})
		}
		return nil
	case "ping":
		return conn.send("pong", sessionID, nil)
	default:
		return errors.New("unsupported frame type: " + in.Type)
	}
}
