// Package report renders a plan for the different presentation surfaces.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/profile"
)

// Band is the qualitative reading of a plan score.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
)

// ScoreBand maps a plan score to its band.
func ScoreBand(score int) Band {
	switch {
	case score > 85:
		return BandExcellent
	case score > 70:
		return BandGood
	default:
		return BandFair
	}
}

func calories(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " kcal"
}

func dayTitle(day string) string {
	if day == "" {
		return day
	}
	return strings.ToUpper(day[:1]) + day[1:]
}

// Text renders p as plain text for terminals.
func Text(prof profile.Profile, p *plan.Plan) string {
	var sb strings.Builder

	sb.WriteString("YOUR FITNESS PLAN\n")
	sb.WriteString(fmt.Sprintf("Profile: %s\n", prof))
	sb.WriteString(fmt.Sprintf("BMI: %.1f (%s)\n\n", prof.BMI(), prof.BMICategory()))
	sb.WriteString(fmt.Sprintf("Plan Score: %d/100 (%s)\n", p.PlanScore, ScoreBand(p.PlanScore)))
	sb.WriteString(p.MotivationalMessage + "\n\n")

	sb.WriteString("DIET PLAN\n")
	for _, day := range plan.Weekdays {
		diet, _ := p.DietPlan.Day(day)
		sb.WriteString(fmt.Sprintf("\n%s (%s)\n", dayTitle(day), calories(diet.TotalCalories)))
		for _, m := range diet.Meals() {
			sb.WriteString(fmt.Sprintf("  %-9s %s, %s\n", m.Label+":", m.Meal.Name, calories(m.Meal.Calories)))
			if m.Meal.Description != "" {
				sb.WriteString(fmt.Sprintf("            %s\n", m.Meal.Description))
			}
		}
	}

	sb.WriteString("\nEXERCISE PLAN\n")
	for _, w := range p.ExercisePlan {
		sb.WriteString(fmt.Sprintf("\n%s: %s\n", w.Day, w.Focus))
		for _, e := range w.Exercises {
			sb.WriteString(fmt.Sprintf("  - %s: %s x %s\n", e.Name, e.Sets, e.Reps))
			if e.Description != "" {
				sb.WriteString(fmt.Sprintf("    %s\n", e.Description))
			}
		}
	}

	if len(p.SupplementSuggestions) > 0 {
		sb.WriteString("\nSUPPLEMENT SUGGESTIONS\n")
		for _, s := range p.SupplementSuggestions {
			sb.WriteString(fmt.Sprintf("  - %s (%s): %s\n", s.Name, s.Dosage, s.Reason))
		}
	}

	return sb.String()
}

// MarkdownParts renders p as three Telegram Markdown messages: summary with
// diet, exercise plan and supplements. Each part stays well below the
// Telegram message limit for a normal plan.
func MarkdownParts(p *plan.Plan) (string, string, string) {
	var db strings.Builder
	db.WriteString(fmt.Sprintf("🏆 *Plan Score:* %d/100 (%s)\n", p.PlanScore, ScoreBand(p.PlanScore)))
	db.WriteString(fmt.Sprintf("_%s_\n\n", escapeMarkdown(p.MotivationalMessage)))
	db.WriteString("🥗 *Weekly Diet Plan*\n")
	for _, day := range plan.Weekdays {
		diet, _ := p.DietPlan.Day(day)
		db.WriteString(fmt.Sprintf("\n*%s* (%s)\n", dayTitle(day), calories(diet.TotalCalories)))
		for _, m := range diet.Meals() {
			db.WriteString(fmt.Sprintf("• %s: %s\n", m.Label, escapeMarkdown(m.Meal.Name)))
		}
	}

	var eb strings.Builder
	eb.WriteString("🏋️ *Exercise Plan*\n")
	for _, w := range p.ExercisePlan {
		eb.WriteString(fmt.Sprintf("\n*%s*: %s\n", escapeMarkdown(w.Day), escapeMarkdown(w.Focus)))
		for _, e := range w.Exercises {
			eb.WriteString(fmt.Sprintf("• %s: %s x %s\n", escapeMarkdown(e.Name), escapeMarkdown(e.Sets), escapeMarkdown(e.Reps)))
		}
	}

	var sb strings.Builder
	sb.WriteString("💊 *Supplement Suggestions*\n\n")
	if len(p.SupplementSuggestions) == 0 {
		sb.WriteString("_None suggested_\n")
	}
	for _, s := range p.SupplementSuggestions {
		sb.WriteString(fmt.Sprintf("• *%s* (%s)\n_%s_\n", escapeMarkdown(s.Name), escapeMarkdown(s.Dosage), escapeMarkdown(s.Reason)))
	}

	return db.String(), eb.String(), sb.String()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escapeMarkdown neutralises the legacy Markdown markers Telegram parses.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
