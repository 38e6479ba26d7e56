package chat

import (
	"fmt"
	"strings"

	"github.com/myabroadportal/portal/backend/internal/analysis/intent"
	"github.com/myabroadportal/portal/backend/internal/model/chat"
	"github.com/myabroadportal/portal/backend/internal/model/lead"
)

const (
	phonePromptTemplate = "Nice to meet you, %s! 👋\n\nCould you please share your **WhatsApp number** so our team can send you the demo link?"
	confirmationText    = "Perfect! 🎉 I've generated a priority pass for you.\n\nClick the button below to confirm your slot on WhatsApp with our Senior Counselor."
	// ConfirmOption 收集到电话后提供的唯一选项
	ConfirmOption = "Confirm on WhatsApp 🟢"
	fallbackRule  = "fallback"
)

// Conversation 对话状态机操作的可变状态
type Conversation struct {
	State chat.State
	Lead  lead.Record
}

// Turn 处理一次输入的结果
type Turn struct {
	Reply intent.Reply
	// RuleID 命中的规则，未命中为 "fallback"，收集姓名与电话时为空
	RuleID string
	// Captured 本次输入补全了线索（收到电话）
	Captured bool
}

// Dialogue 在分类器之上驱动 姓名 → 电话 的线索收集流程。
type Dialogue struct {
	classifier *intent.Classifier
}

// NewDialogue 基于 c 创建 Dialogue。
func NewDialogue(c *intent.Classifier) *Dialogue {
	if c == nil {
		c = intent.NewClassifier(intent.Seed())
	}
	return &Dialogue{classifier: c}
}

// Handle 用一次用户输入推进 conv。收集字段期间的输入按原样保存，不做分类。
func (d *Dialogue) Handle(conv *Conversation, input string) Turn {
	if conv.State == "" {
		conv.State = chat.StateIdle
	}

	switch conv.State {
	case chat.StateAwaitingName:
		conv.Lead.Name = input
		conv.State = chat.StateAwaitingPhone
		return Turn{Reply: intent.Reply{Text: fmt.Sprintf(phonePromptTemplate, input)}}

	case chat.StateAwaitingPhone:
		conv.Lead.Phone = input
		conv.State = chat.StateIdle
		return Turn{
			Reply:    intent.Reply{Text: confirmationText, Options: []string{ConfirmOption}},
			Captured: true,
		}
	}

	rule, ok := d.classifier.Classify(input)
	if !ok {
		return Turn{Reply: intent.Fallback(), RuleID: fallbackRule}
	}
	if rule.Interest != "" {
		conv.Lead.Interest = rule.Interest
	}
	if rule.Trigger == intent.TriggerName {
		conv.State = chat.StateAwaitingName
	}
	return Turn{
		Reply:  intent.Reply{Text: rule.Response, Options: append([]string(nil), rule.Options...)},
		RuleID: rule.ID,
	}
}

// IsHandoffOption 判断选择 option 是否打开 WhatsApp handoff。
func IsHandoffOption(option string) bool {
	return strings.Contains(strings.ToLower(option), "whatsapp")
}
