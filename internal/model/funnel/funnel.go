package funnel

import (
	"time"
)

// Kind 漏斗类型
type Kind string

const (
	KindQuiz       Kind = "quiz"
	KindMatchmaker Kind = "matchmaker"
)

// Stage run 所处的阶段，只会向前推进。
type Stage string

const (
	StageQuestion  Stage = "question"
	StageAnalyzing Stage = "analyzing"
	StageGate      Stage = "gate"
	StageResult    Stage = "result"
)

// Question 一道单选题。Field 是所选选项写入的线索字段，只计分的题目为空。
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Field   string   `json:"field,omitempty"`
}

// Definition 描述一个漏斗：题目以及答完后的行为。
type Definition struct {
	Kind        Kind       `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	// AutoAdvance 选中选项即提交本题
	AutoAdvance bool `json:"autoAdvance"`

	AnalyzeDelay   time.Duration `json:"-"`
	StatusInterval time.Duration `json:"-"`
	StatusMessages []string      `json:"statusMessages,omitempty"`
}

// Outcome gate 解锁后展示的结果
type Outcome struct {
	Correct        int    `json:"correct,omitempty"`
	Score          string `json:"score,omitempty"`
	Band           string `json:"band,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Run 某个访客走漏斗过程的快照。
type Run struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Stage     Stage     `json:"stage"`
	Position  int       `json:"position"`
	Total     int       `json:"total"`
	Question  *Question `json:"question,omitempty"`
	Selected  *int      `json:"selected,omitempty"`
	Answers   []int     `json:"answers"`
	Status    string    `json:"status,omitempty"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`
	Handoff   string    `json:"handoffUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Steps 按漏斗顺序列出统计用的步骤键：每道题一个，之后是 analyzing、gate 与 result。
func (d Definition) Steps() []string {
	steps := make([]string, 0, len(d.Questions)+3)
	for _, q := range d.Questions {
		steps = append(steps, QuestionStep(q.ID))
	}
	return append(steps, string(StageAnalyzing), string(StageGate), string(StageResult))
}

// QuestionStep 题目对应的步骤键。
func QuestionStep(id string) string {
	return "question:" + id
}
