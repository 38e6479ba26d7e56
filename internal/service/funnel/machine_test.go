package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myabroadportal/portal/backend/internal/model/funnel"
)

func TestMachineRequiresAnswerBeforeNext(t *testing.T) {
	m := NewMachine(QuizDefinition(0))

	assert.ErrorIs(t, m.Next(), ErrNoAnswer)
	assert.Equal(t, funnel.StageQuestion, m.Stage())
}

func TestMachineSelectReplacesAnswer(t *testing.T) {
	m := NewMachine(QuizDefinition(0))

	_, err := m.Select(0)
	require.NoError(t, err)
	_, err = m.Select(2)
	require.NoError(t, err)
	require.NoError(t, m.Next())

	assert.Equal(t, []int{2}, m.Answers())
}

func TestMachineRejectsOutOfRangeOption(t *testing.T) {
	m := NewMachine(QuizDefinition(0))

	_, err := m.Select(3)
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = m.Select(-1)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestMachineQuizProgression(t *testing.T) {
	def := QuizDefinition(0)
	m := NewMachine(def)

	for i := range def.Questions {
		committed, err := m.Select(QuizAnswerKey[i])
		require.NoError(t, err)
		assert.False(t, committed)
		require.NoError(t, m.Next())
	}
	assert.Equal(t, funnel.StageAnalyzing, m.Stage())

	_, err := m.Select(0)
	assert.ErrorIs(t, err, ErrWrongStage)
	assert.ErrorIs(t, m.Submit("a", "b"), ErrWrongStage)

	assert.True(t, m.Analyzed())
	assert.False(t, m.Analyzed())
	assert.Equal(t, funnel.StageGate, m.Stage())

	assert.ErrorIs(t, m.Submit("Ravi", "  "), ErrContactRequired)
	assert.ErrorIs(t, m.Submit("", "98"), ErrContactRequired)
	assert.Equal(t, funnel.StageGate, m.Stage())

	require.NoError(t, m.Submit(" Ravi ", "98"))
	assert.Equal(t, funnel.StageResult, m.Stage())
	name, phone := m.Contact()
	assert.Equal(t, "Ravi", name)
	assert.Equal(t, "98", phone)
	assert.ErrorIs(t, m.Next(), ErrWrongStage)
}

func TestMachineAutoAdvance(t *testing.T) {
	m := NewMachine(MatchmakerDefinition(0, 0))

	committed, err := m.Select(1)
	require.NoError(t, err)
	assert.True(t, committed)

	var run funnel.Run
	m.View(&run)
	assert.Equal(t, 1, run.Position)
	require.NotNil(t, run.Question)
	assert.Equal(t, "budget", run.Question.ID)
	assert.Nil(t, run.Selected)

	_, err = m.Select(0)
	require.NoError(t, err)
	_, err = m.Select(1)
	require.NoError(t, err)

	assert.Equal(t, funnel.StageAnalyzing, m.Stage())
	assert.Equal(t, GoalPR, m.Field(FieldGoal))
	assert.Equal(t, BudgetLow, m.Field(FieldBudget))
	assert.Equal(t, EducationMasters, m.Field(FieldEducation))
}

func TestMachineStatusRotationStopsAtLast(t *testing.T) {
	def := MatchmakerDefinition(0, 0)
	m := NewMachine(def)
	for i := 0; i < 3; i++ {
		_, err := m.Select(0)
		require.NoError(t, err)
	}
	assert.Equal(t, def.StatusMessages[0], m.Status())

	for i := 1; i < len(def.StatusMessages); i++ {
		assert.True(t, m.Tick())
		assert.Equal(t, def.StatusMessages[i], m.Status())
	}
	assert.False(t, m.Tick())
	assert.Equal(t, def.StatusMessages[len(def.StatusMessages)-1], m.Status())
}

func TestScoreQuizBands(t *testing.T) {
	cases := []struct {
		correct int
		band    string
	}{
		{10, "Band 8.0 - 8.5"},
		{9, "Band 8.0 - 8.5"},
		{8, "Band 7.0 - 7.5"},
		{7, "Band 7.0 - 7.5"},
		{6, "Band 6.0 - 6.5"},
		{5, "Band 6.0 - 6.5"},
		{4, "Band 5.0 - 5.5"},
		{0, "Band 5.0 - 5.5"},
	}
	for _, tc := range cases {
		answers := make([]int, len(QuizAnswerKey))
		for i := range answers {
			if i < tc.correct {
				answers[i] = QuizAnswerKey[i]
			} else {
				answers[i] = QuizAnswerKey[i] + 1
			}
		}
		outcome := ScoreQuiz(answers)
		assert.Equal(t, tc.correct, outcome.Correct)
		assert.Equal(t, tc.band, outcome.Band, "correct=%d", tc.correct)
	}
}

func TestScoreQuizExampleAnswers(t *testing.T) {
	outcome := ScoreQuiz([]int{1, 1, 0, 1, 1, 1, 1, 1, 1, 1})
	assert.Equal(t, "10/10", outcome.Score)
	assert.Equal(t, "Band 8.0 - 8.5", outcome.Band)
}

func TestRecommendTable(t *testing.T) {
	assert.Equal(t, "Germany & Ireland", Recommend(GoalPR, BudgetLow))
	assert.Equal(t, "Germany & Ireland", Recommend(GoalROI, BudgetLow))
	assert.Equal(t, "Canada & Australia", Recommend(GoalPR, BudgetHigh))
	assert.Equal(t, "USA & UK", Recommend(GoalROI, BudgetMid))
	assert.Equal(t, "UK & USA", Recommend(GoalEducation, BudgetHigh))
	assert.Equal(t, "UK & USA", Recommend(GoalBudget, BudgetMid))
}
