package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/profile"
)

//go:embed report.html
var reportHTML string

var htmlTemplate = template.Must(template.New("report").Parse(reportHTML))

type htmlMeal struct {
	Label       string
	Name        string
	Description string
	Calories    string
}

type htmlDay struct {
	Key   string
	Title string
	Total string
	Meals []htmlMeal
}

type htmlData struct {
	Profile     string
	BMI         float64
	BMICategory profile.BMICategory
	Band        Band
	Plan        *plan.Plan
	Days        []htmlDay
}

// HTML writes a printable report of p to w.
func HTML(w io.Writer, prof profile.Profile, p *plan.Plan) error {
	data := htmlData{
		Profile:     prof.String(),
		BMI:         prof.BMI(),
		BMICategory: prof.BMICategory(),
		Band:        ScoreBand(p.PlanScore),
		Plan:        p,
	}

	for _, key := range plan.Weekdays {
		diet, _ := p.DietPlan.Day(key)
		day := htmlDay{Key: key, Title: dayTitle(key), Total: calories(diet.TotalCalories)}
		for _, m := range diet.Meals() {
			day.Meals = append(day.Meals, htmlMeal{
				Label:       m.Label,
				Name:        m.Meal.Name,
				Description: m.Meal.Description,
				Calories:    calories(m.Meal.Calories),
			})
		}
		data.Days = append(data.Days, day)
	}

	if err := htmlTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}
