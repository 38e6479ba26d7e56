package funnel

import (
	"time"

	"github.com/myabroadportal/portal/backend/internal/model/funnel"
)

const (
	DefaultMatchmakerAnalyzeDelay   = 3500 * time.Millisecond
	DefaultMatchmakerStatusInterval = 800 * time.Millisecond
)

const (
	GoalROI       = "High ROI / Salaries"
	GoalPR        = "Easy PR & Settlement"
	GoalEducation = "Top Tier Education"
	GoalBudget    = "Low Cost / Budget Friendly"

	BudgetLow  = "Under ₹15 Lakhs"
	BudgetMid  = "₹15 Lakhs - ₹25 Lakhs"
	BudgetHigh = "₹25 Lakhs + (No Limit)"

	EducationUndergrad = "12th Pass (Undergrad)"
	EducationMasters   = "Bachelor's (Masters)"
)

const (
	FieldGoal      = "goal"
	FieldBudget    = "budget"
	FieldEducation = "education"
)

// MatchmakerDefinition 国家匹配漏斗，选中选项即提交。
func MatchmakerDefinition(analyzeDelay, statusInterval time.Duration) funnel.Definition {
	if analyzeDelay <= 0 {
		analyzeDelay = DefaultMatchmakerAnalyzeDelay
	}
	if statusInterval <= 0 {
		statusInterval = DefaultMatchmakerStatusInterval
	}
	return funnel.Definition{
		Kind:           funnel.KindMatchmaker,
		Title:          "Country Matchmaker",
		Description:    "Three questions to find the study destination that fits your goals.",
		AutoAdvance:    true,
		AnalyzeDelay:   analyzeDelay,
		StatusInterval: statusInterval,
		StatusMessages: []string{
			"Analyzing University Database...",
			"Checking Visa Success Rates...",
			"Matching your Budget...",
			"Finalizing Recommendations...",
		},
		Questions: []funnel.Question{
			{ID: "goal", Field: FieldGoal, Prompt: "What is your #1 Priority?",
				Options: []string{GoalROI, GoalPR, GoalEducation, GoalBudget}},
			{ID: "budget", Field: FieldBudget, Prompt: "What is your Annual Budget?",
				Options: []string{BudgetLow, BudgetMid, BudgetHigh}},
			{ID: "education", Field: FieldEducation, Prompt: "Current Qualification?",
				Options: []string{EducationUndergrad, EducationMasters}},
		},
	}
}

// Recommend 查目的地表，第一条匹配的规则生效，因此预算限制优先于目标。
func Recommend(goal, budget string) string {
	switch {
	case budget == BudgetLow:
		return "Germany & Ireland"
	case goal == GoalPR:
		return "Canada & Australia"
	case goal == GoalROI:
		return "USA & UK"
	default:
		return "UK & USA"
	}
}
