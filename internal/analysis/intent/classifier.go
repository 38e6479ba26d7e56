package intent

// Classifier 选出第一条关键词命中输入的知识库规则。无可变状态，可并发使用。
type Classifier struct {
	rules []Rule
}

// NewClassifier 基于 rules 的副本创建 Classifier，保持原有顺序。
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Classify 归一化输入并返回第一条命中的规则，ok 为 false 时调用方应使用兜底回复。
func (c *Classifier) Classify(input string) (rule Rule, ok bool) {
	normalized := Normalize(input)
	for _, candidate := range c.rules {
		for _, keyword := range candidate.Keywords {
			if Matches(normalized, keyword) {
				return candidate, true
			}
		}
	}
	return Rule{}, false
}
