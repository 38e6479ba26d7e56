// Package handoff 把线索渲染成即时通讯深链接。
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/myabroadportal/portal/backend/internal/model/lead"
)

const (
	// DefaultBaseURL WhatsApp 点击聊天的主机地址
	DefaultBaseURL = "https://wa.me"
	// DefaultInterest 聊天线索未命中带意向的规则时使用
	DefaultInterest = "Overseas Education"
)

// Formatter 生成 <base>/<destination>?text=<message> 形式的深链接。
type Formatter struct {
	baseURL     string
	destination string
}

// New 按主机与目标号码创建 Formatter。
func New(baseURL, destination string) *Formatter {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Formatter{
		baseURL:     strings.TrimRight(baseURL, "/"),
		destination: strings.TrimSpace(destination),
	}
}

// Format 生成 rec 的 handoff 链接。context 对聊天线索是意向，
// 对测验线索是分数段，对匹配线索是推荐结果。
func (f *Formatter) Format(rec lead.Record, context string) string {
	return f.Link(Message(rec, context))
}

// Link 把 message 百分号编码进深链接，空格编码为 %20，查询串中不出现空白字符。
func (f *Formatter) Link(message string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("%s/%s?text=%s", f.baseURL, f.destination, encoded)
}

// Message 生成 handoff 文本，电话号码按原样展示，不校验格式。
func Message(rec lead.Record, context string) string {
	switch rec.Source {
	case lead.SourceQuiz:
		return fmt.Sprintf("Hi, I just finished the test. My Name is %s and Phone is %s. My Predicted Band is %s. I want to join the batch.",
			rec.Name, rec.Phone, context)
	case lead.SourceMatchmaker:
		return fmt.Sprintf("Hi, I used the Country Matcher. My Name is %s and Phone is %s. My Goal is %s and Budget is %s. It recommended %s for me. Please guide me.",
			rec.Name, rec.Phone, rec.Goal, rec.Budget, context)
	default:
		if strings.TrimSpace(context) == "" {
			context = DefaultInterest
		}
		return fmt.Sprintf("Hi, I chatted with Priya (AI). I am interested in *%s*. My Name is *%s* and Phone is *%s*. Please guide me.",
			context, rec.Name, rec.Phone)
	}
}
