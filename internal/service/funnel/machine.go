package funnel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/myabroadportal/portal/backend/internal/model/funnel"
)

var (
	ErrUnknownFunnel   = errors.New("unknown funnel")
	ErrRunNotFound     = errors.New("funnel run not found")
	ErrNoAnswer        = errors.New("select an option before continuing")
	ErrInvalidOption   = errors.New("option index out of range")
	ErrWrongStage      = errors.New("operation not allowed at this stage")
	ErrContactRequired = errors.New("name and phone are required")
)

// Machine 线性推进 question → analyzing → gate → result。
// 非并发安全，由服务按 run 串行访问。
type Machine struct {
	def      funnel.Definition
	stage    funnel.Stage
	position int
	selected int
	answers  []int
	status   int
	name     string
	phone    string
}

// NewMachine 从第一题开始，没有题目的定义直接进入 analyzing。
func NewMachine(def funnel.Definition) *Machine {
	m := &Machine{
		def:      def,
		stage:    funnel.StageQuestion,
		selected: -1,
		answers:  make([]int, 0, len(def.Questions)),
	}
	if len(def.Questions) == 0 {
		m.stage = funnel.StageAnalyzing
	}
	return m
}

// Stage 返回当前阶段。
func (m *Machine) Stage() funnel.Stage { return m.stage }

// Select 记录当前题目的答案并覆盖之前的选择，返回本次选择是否提交了题目。
func (m *Machine) Select(index int) (bool, error) {
	if m.stage != funnel.StageQuestion {
		return false, fmt.Errorf("select in %s: %w", m.stage, ErrWrongStage)
	}
	q := m.def.Questions[m.position]
	if index < 0 || index >= len(q.Options) {
		return false, fmt.Errorf("option %d of %d: %w", index, len(q.Options), ErrInvalidOption)
	}
	m.selected = index
	if !m.def.AutoAdvance {
		return false, nil
	}
	return true, m.Next()
}

// Next 提交已选答案并进入下一题，最后一题之后进入 analyzing。
func (m *Machine) Next() error {
	if m.stage != funnel.StageQuestion {
		return fmt.Errorf("next in %s: %w", m.stage, ErrWrongStage)
	}
	if m.selected < 0 {
		return ErrNoAnswer
	}
	m.answers = append(m.answers, m.selected)
	m.selected = -1
	m.position++
	if m.position >= len(m.def.Questions) {
		m.stage = funnel.StageAnalyzing
	}
	return nil
}

// Analyzed 从 analyzing 进入 gate。其他阶段的调用被忽略，过期的定时器不会推动 run。
func (m *Machine) Analyzed() bool {
	if m.stage != funnel.StageAnalyzing {
		return false
	}
	m.stage = funnel.StageGate
	return true
}

// Tick 轮换分析中的状态文案，到达最后一条后保持不变。
func (m *Machine) Tick() bool {
	if m.stage != funnel.StageAnalyzing || m.status >= len(m.def.StatusMessages)-1 {
		return false
	}
	m.status++
	return true
}

// Submit 校验 gate 表单并进入 result。
func (m *Machine) Submit(name, phone string) error {
	if m.stage != funnel.StageGate {
		return fmt.Errorf("submit in %s: %w", m.stage, ErrWrongStage)
	}
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return ErrContactRequired
	}
	m.name, m.phone = name, phone
	m.stage = funnel.StageResult
	return nil
}

// Answers 返回已提交答案的副本。
func (m *Machine) Answers() []int {
	return append([]int(nil), m.answers...)
}

// Field 返回写入 field 的题目所选的选项文本。
func (m *Machine) Field(field string) string {
	for i, q := range m.def.Questions {
		if q.Field == field && i < len(m.answers) {
			return q.Options[m.answers[i]]
		}
	}
	return ""
}

// Contact 返回 gate 收集的姓名与电话。
func (m *Machine) Contact() (string, string) { return m.name, m.phone }

// Status 返回当前的分析状态文案。
func (m *Machine) Status() string {
	if m.stage != funnel.StageAnalyzing || len(m.def.StatusMessages) == 0 {
		return ""
	}
	return m.def.StatusMessages[m.status]
}

// View 填充 run 快照中与阶段相关的字段。
func (m *Machine) View(run *funnel.Run) {
	run.Kind = m.def.Kind
	run.Stage = m.stage
	run.Position = m.position
	run.Total = len(m.def.Questions)
	run.Answers = m.Answers()
	run.Status = m.Status()
	run.Name, run.Phone = m.name, m.phone
	run.Question, run.Selected = nil, nil
	if m.stage == funnel.StageQuestion {
		q := m.def.Questions[m.position]
		q.Options = append([]string(nil), q.Options...)
		run.Question = &q
		if m.selected >= 0 {
			sel := m.selected
			run.Selected = &sel
		}
	}
}
