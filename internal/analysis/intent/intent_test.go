package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"", "abc", 3},
		{"abc", "", 3},
		{"visa", "visa", 0},
		{"ab", "ba", 2},
		{"counselor", "counsellor", 1},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Distance(tc.a, tc.b), "Distance(%q, %q)", tc.a, tc.b)
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	words := []string{"", "hi", "hello", "helo", "student", "stduent", "australia", "aussie", "₹15 lakhs"}
	for _, a := range words {
		assert.Equal(t, 0, Distance(a, a), "Distance(%q, %q)", a, a)
		for _, b := range words {
			assert.Equal(t, Distance(a, b), Distance(b, a), "asymmetric for %q/%q", a, b)
		}
	}
}

func TestMatchesShortKeywordsRequireContainment(t *testing.T) {
	assert.False(t, Matches("pe", "pr"), "short keyword must not fuzzy match")
	assert.False(t, Matches("ik", "uk"))
	assert.True(t, Matches("how to get pr in canada", "pr"))
	assert.True(t, Matches("hi there", "hi"))
}

func TestMatchesToleratesTypos(t *testing.T) {
	assert.True(t, Matches("helo", "hello"))
	assert.True(t, Matches("i am a stduent", "student"))
	assert.True(t, Matches("australa", "australia"))
	assert.False(t, Matches("zzzz", "visa"))
}

func TestMatchesSubstringAlwaysWins(t *testing.T) {
	keywords := []string{"student visa", "study abroad", "canada", "appointment", "permanent residence"}
	prefixes := []string{"", "please tell me about ", "xx"}
	for _, kw := range keywords {
		for _, p := range prefixes {
			input := p + kw + " thanks"
			assert.True(t, Matches(input, kw), "%q should match %q", input, kw)
		}
	}
}

func TestMatchesEmptyInput(t *testing.T) {
	assert.False(t, Matches("", "hello"))
	assert.False(t, Matches("", "hi"))
	assert.True(t, Matches("", ""))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "student visa", Normalize("  Student VISA \n"))
}

func TestClassifyGreeting(t *testing.T) {
	c := NewClassifier(Seed())

	rule, ok := c.Classify("hi")
	require.True(t, ok)
	assert.Equal(t, "greeting", rule.ID)
	assert.Len(t, rule.Options, 4)
	assert.Equal(t, NoTrigger, rule.Trigger)
}

func TestClassifyTalkToCounselorStartsNameFlow(t *testing.T) {
	c := NewClassifier(Seed())

	rule, ok := c.Classify("Talk to Counselor 👨‍💼")
	require.True(t, ok)
	assert.Equal(t, "book-counselor", rule.ID)
	assert.Equal(t, TriggerName, rule.Trigger)
}

func TestClassifyTopLevelOptions(t *testing.T) {
	c := NewClassifier(Seed())

	expected := map[string]string{
		"Student Visa 🎓":      "student-visa",
		"Visitor Visa ✈️":     "visitor-visa",
		"Work Permit & PR 🏆":  "work-permit-pr",
		"What are your fees?": "pricing",
	}
	for input, id := range expected {
		rule, ok := c.Classify(input)
		require.True(t, ok, input)
		assert.Equal(t, id, rule.ID, input)
	}
}

func TestClassifyRuleOrderOverlaps(t *testing.T) {
	c := NewClassifier(Seed())

	// 关键词 "us" 是 "australia" 的子串，usa 排在前面
	expected := map[string]string{
		"australia":            "usa",
		"canada visa":          "visitor-visa",
		"tell me about canada": "greeting",
	}
	for input, id := range expected {
		rule, ok := c.Classify(input)
		require.True(t, ok, input)
		assert.Equal(t, id, rule.ID, input)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	c := NewClassifier(Seed())

	_, ok := c.Classify("zzzz")
	assert.False(t, ok)
}

func TestClassifyFirstMatchWins(t *testing.T) {
	rules := []Rule{
		{ID: "broad", Keywords: []string{"visa"}},
		{ID: "specific", Keywords: []string{"student visa", "student", "study visa", "study abroad"}},
	}
	c := NewClassifier(rules)

	rule, ok := c.Classify("student visa")
	require.True(t, ok)
	assert.Equal(t, "broad", rule.ID)

	reversed := NewClassifier([]Rule{rules[1], rules[0]})
	rule, ok = reversed.Classify("student visa")
	require.True(t, ok)
	assert.Equal(t, "specific", rule.ID)
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier(Seed())
	inputs := []string{"hello", "canada", "where is your office", "book a demo", "zzzz"}
	for _, in := range inputs {
		first, okFirst := c.Classify(in)
		for i := 0; i < 5; i++ {
			again, ok := c.Classify(in)
			assert.Equal(t, okFirst, ok)
			assert.Equal(t, first.ID, again.ID)
		}
	}
}

func TestNewClassifierCopiesRules(t *testing.T) {
	rules := []Rule{{ID: "a", Keywords: []string{"alpha"}}}
	c := NewClassifier(rules)
	rules[0] = Rule{ID: "b", Keywords: []string{"beta"}}

	rule, ok := c.Classify("alpha")
	require.True(t, ok)
	assert.Equal(t, "a", rule.ID)
}

func TestFallbackOffersTopLevelMenu(t *testing.T) {
	fb := Fallback()
	assert.NotEmpty(t, fb.Text)
	assert.Equal(t, TopLevelOptions, fb.Options)

	fb.Options[0] = "mutated"
	assert.Equal(t, "Student Visa 🎓", TopLevelOptions[0])
}
