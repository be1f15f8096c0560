package planner

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"text/template"

	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/profile"
	"ai-fitness-planner/internal/schema"
)

//go:embed plan_prompt.md
var planPrompt string

var planTemplate = template.Must(template.New("plan").Parse(planPrompt))

type planPromptData struct {
	Age          int
	Gender       profile.Gender
	Weight       string
	Height       string
	BMI          string
	BMICategory  profile.BMICategory
	Goal         profile.Goal
	Restrictions string
	Instructions string
}

// BuildPrompt renders the generation prompt for p, including the response
// format derived from plan.Schema.
func BuildPrompt(p profile.Profile) (string, error) {
	data := planPromptData{
		Age:          p.Age,
		Gender:       p.Gender,
		Weight:       strconv.FormatFloat(p.WeightKg, 'f', -1, 64),
		Height:       strconv.FormatFloat(p.HeightCm, 'f', -1, 64),
		BMI:          strconv.FormatFloat(p.BMI(), 'f', 1, 64),
		BMICategory:  p.BMICategory(),
		Goal:         p.Goal,
		Restrictions: p.Restrictions(),
		Instructions: schema.Instructions(plan.Schema),
	}

	var buf bytes.Buffer
	if err := planTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render plan prompt: %w", err)
	}
	return buf.String(), nil
}
