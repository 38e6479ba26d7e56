package funnel

import (
	"fmt"
	"time"

	"github.com/myabroadportal/portal/backend/internal/model/funnel"
)

// DefaultQuizAnalyzeDelay 测验进入 gate 前的"分析"时长。
const DefaultQuizAnalyzeDelay = 2 * time.Second

// QuizAnswerKey 每道题正确选项的下标。
var QuizAnswerKey = []int{1, 1, 0, 1, 1, 1, 1, 1, 1, 1}

// QuizDefinition 雅思分数预测测验。
func QuizDefinition(analyzeDelay time.Duration) funnel.Definition {
	if analyzeDelay <= 0 {
		analyzeDelay = DefaultQuizAnalyzeDelay
	}
	return funnel.Definition{
		Kind:         funnel.KindQuiz,
		Title:        "IELTS Band Predictor",
		Description:  "Answer 10 quick questions to get your predicted IELTS band.",
		AnalyzeDelay: analyzeDelay,
		Questions: []funnel.Question{
			{ID: "reading-inference", Prompt: "The passage implies that urban sprawl is 'inevitable'. What does the author mean?",
				Options: []string{"It is a deliberate choice", "It cannot be avoided", "It is environmentally beneficial"}},
			{ID: "vocabulary-synonym", Prompt: "Select the most accurate synonym for 'Substantial' in an academic context:",
				Options: []string{"Minimal", "Significant", "Fragile"}},
			{ID: "reading-tfng", Prompt: "TRUE/FALSE/NOT GIVEN: The text states that the team won despite the rain. The statement says 'Weather did not affect the outcome'.",
				Options: []string{"True", "False", "Not Given"}},
			{ID: "listening-idiom", Prompt: "If a speaker says they are 'on the fence' about a project, they are:",
				Options: []string{"Very supportive", "Undecided", "Highly critical"}},
			{ID: "listening-correction", Prompt: "A speaker says: 'I'll arrive at 6... actually, let's make it 7.' What time is the arrival?",
				Options: []string{"6:00 PM", "7:00 PM", "8:00 PM"}},
			{ID: "listening-signpost", Prompt: "Which word indicates a speaker is about to provide a summary?",
				Options: []string{"In contrast", "To recap", "Furthermore"}},
			{ID: "writing-connector", Prompt: "Which connector is used to introduce a contrasting academic argument?",
				Options: []string{"Moreover", "Nevertheless", "Subsequently"}},
			{ID: "writing-task1", Prompt: "Identify the correct structure for Task 1: 'The graph illustrates a ______ in sales.'",
				Options: []string{"Sharply decline", "Sharp decline", "Sharp declining"}},
			{ID: "speaking-filler", Prompt: "Which phrase is most appropriate to 'buy time' during a Speaking interview?",
				Options: []string{"I don't know", "That's an interesting question, let me think...", "Next question please"}},
			{ID: "speaking-vocabulary", Prompt: "Select the most 'Band 8+' vocabulary to describe a busy city:",
				Options: []string{"A very crowded place", "A bustling metropolis", "A place with many people"}},
		},
	}
}

// ScoreQuiz 统计与 QuizAnswerKey 一致的答案数并换算成分数段。
func ScoreQuiz(answers []int) funnel.Outcome {
	correct := 0
	for i, answer := range answers {
		if i < len(QuizAnswerKey) && answer == QuizAnswerKey[i] {
			correct++
		}
	}
	return funnel.Outcome{
		Correct: correct,
		Score:   fmt.Sprintf("%d/%d", correct, len(QuizAnswerKey)),
		Band:    Band(correct),
	}
}

// Band 把答对题数换算成预测分数段。
func Band(correct int) string {
	switch {
	case correct >= 9:
		return "Band 8.0 - 8.5"
	case correct >= 7:
		return "Band 7.0 - 7.5"
	case correct >= 5:
		return "Band 6.0 - 6.5"
	default:
		return "Band 5.0 - 5.5"
	}
}
