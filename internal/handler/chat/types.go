package chat

import (
	"encoding/json"

	"github.com/myabroadportal/portal/backend/internal/model/chat"
)

type optionResponse struct {
	chat.Snapshot
	HandoffURL string `json:"handoffUrl,omitempty"`
}

// inboundMessage 前端通过 websocket 发来的帧
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type textData struct {
	Text string `json:"text"`
}

type optionData struct {
	Option string `json:"option"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}
