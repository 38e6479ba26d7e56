package intent

import "strings"

// MaxDistance 词与关键词之间允许的最大编辑距离。
const MaxDistance = 2

// minFuzzyKeywordLen 容错匹配的最短关键词长度，更短的关键词只做包含匹配。
const minFuzzyKeywordLen = 4

// Normalize 匹配前转小写并去除首尾空白。
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Matches 判断归一化后的输入是否命中关键词：包含关键词即命中；
// 关键词不少于四个字符时，任一空白分隔的词与其编辑距离不超过 MaxDistance 也算命中。
func Matches(input, keyword string) bool {
	if len([]rune(keyword)) < minFuzzyKeywordLen {
		return strings.Contains(input, keyword)
	}
	if strings.Contains(input, keyword) {
		return true
	}

	// 空输入也产生一个空词，此时距离为 len(keyword)
	tokens := strings.Fields(input)
	if len(tokens) == 0 {
		tokens = []string{""}
	}
	for _, token := range tokens {
		if Distance(token, keyword) <= MaxDistance {
			return true
		}
	}
	return false
}

// Distance 按 rune 计算 a 与 b 的编辑距离，只计插入、删除与替换，不含换位。
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
