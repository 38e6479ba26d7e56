package lead

import "time"

// Source 线索来源组件
type Source string

const (
	SourceChat       Source = "chat"
	SourceQuiz       Source = "quiz"
	SourceMatchmaker Source = "matchmaker"
)

// Record 访客在一次会话中留下的信息，字段随收集逐步填充；
// 只有 Name 与 Phone 是所有来源共有的。
type Record struct {
	SessionID string `json:"sessionId,omitempty"`
	Source    Source `json:"source"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Interest  string `json:"interest,omitempty"`

	// 漏斗答案
	Goal      string `json:"goal,omitempty"`
	Budget    string `json:"budget,omitempty"`
	Education string `json:"education,omitempty"`
	Answers   []int  `json:"answers,omitempty"`

	// 漏斗结果
	Score          string `json:"score,omitempty"`
	Band           string `json:"band,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Repository 持久化完整的线索。
type Repository interface {
	SaveLead(lead Record) error
}
