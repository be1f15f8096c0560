// Package plan defines the generated fitness plan and the contract a model
// response has to satisfy to become one.
package plan

import (
	"encoding/json"
	"fmt"

	"ai-fitness-planner/internal/schema"
)

// Plan is a complete 7-day diet and exercise plan.
type Plan struct {
	PlanScore             int                    `json:"planScore"`
	MotivationalMessage   string                 `json:"motivationalMessage"`
	DietPlan              DietPlan               `json:"dietPlan"`
	ExercisePlan          []DailyWorkout         `json:"exercisePlan"`
	SupplementSuggestions []SupplementSuggestion `json:"supplementSuggestions"`
}

// DietPlan holds exactly one DailyDiet per weekday.
type DietPlan struct {
	Monday    DailyDiet `json:"monday"`
	Tuesday   DailyDiet `json:"tuesday"`
	Wednesday DailyDiet `json:"wednesday"`
	Thursday  DailyDiet `json:"thursday"`
	Friday    DailyDiet `json:"friday"`
	Saturday  DailyDiet `json:"saturday"`
	Sunday    DailyDiet `json:"sunday"`
}

// Weekdays lists the dietPlan keys in calendar order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Day returns the diet for a lowercase weekday name.
func (d *DietPlan) Day(name string) (DailyDiet, bool) {
	switch name {
	case "monday":
		return d.Monday, true
	case "tuesday":
		return d.Tuesday, true
	case "wednesday":
		return d.Wednesday, true
	case "thursday":
		return d.Thursday, true
	case "friday":
		return d.Friday, true
	case "saturday":
		return d.Saturday, true
	case "sunday":
		return d.Sunday, true
	}
	return DailyDiet{}, false
}

// DailyDiet is the four fixed meal slots for one day.
type DailyDiet struct {
	Breakfast     Meal    `json:"breakfast"`
	Lunch         Meal    `json:"lunch"`
	Dinner        Meal    `json:"dinner"`
	Snacks        Meal    `json:"snacks"`
	TotalCalories float64 `json:"totalCalories"`
}

// Meals returns the slots in serving order with their labels.
func (d DailyDiet) Meals() []LabeledMeal {
	return []LabeledMeal{
		{Label: "Breakfast", Meal: d.Breakfast},
		{Label: "Lunch", Meal: d.Lunch},
		{Label: "Dinner", Meal: d.Dinner},
		{Label: "Snacks", Meal: d.Snacks},
	}
}

// LabeledMeal pairs a meal with its slot name.
type LabeledMeal struct {
	Label string
	Meal  Meal
}

type Meal struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Calories    float64 `json:"calories"`
}

type DailyWorkout struct {
	Day       string     `json:"day"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise keeps sets and reps as text since models answer with ranges
// ("3-4") or durations ("30 seconds").
type Exercise struct {
	Name        string `json:"name"`
	Sets        string `json:"sets"`
	Reps        string `json:"reps"`
	Description string `json:"description"`
}

type SupplementSuggestion struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
	Reason string `json:"reason"`
}

// Validate checks raw against s and decodes it into a Plan. Validation
// failures are returned as *schema.ParseError.
func Validate(s *schema.Schema, raw []byte) (*Plan, error) {
	if err := schema.Validate(s, raw); err != nil {
		return nil, err
	}

	var p Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &schema.ParseError{Path: "$", Reason: fmt.Sprintf("failed to decode plan: %v", err)}
	}
	if p.ExercisePlan == nil {
		p.ExercisePlan = []DailyWorkout{}
	}
	if p.SupplementSuggestions == nil {
		p.SupplementSuggestions = []SupplementSuggestion{}
	}
	return &p, nil
}

// Parse validates raw against the fitness plan Schema.
func Parse(raw []byte) (*Plan, error) {
	return Validate(Schema, raw)
}
