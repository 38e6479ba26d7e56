package chat

import "time"

// State 会话在线索收集流程中的位置
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingName  State = "awaiting_name"
	StateAwaitingPhone State = "awaiting_phone"
)

// Session 临时的匿名会话
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Typing    bool      `json:"typing"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot 会话及其消息记录的快照
type Snapshot struct {
	Session
	Messages []Message `json:"messages"`
}
