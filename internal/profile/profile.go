package profile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Gender is the biological profile used to size the plan.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Goal is the fitness outcome the plan is built for.
type Goal string

const (
	GoalLoseWeight     Goal = "Lose Weight"
	GoalGainMuscle     Goal = "Gain Muscle"
	GoalMaintainWeight Goal = "Maintain Weight"
)

const (
	MinAge = 18
	MaxAge = 80
)

var (
	ErrInvalidAge    = errors.New("Please enter an age between 18 and 80.")
	ErrInvalidWeight = errors.New("Please enter a weight greater than zero.")
	ErrInvalidHeight = errors.New("Please enter a height greater than zero.")
	ErrInvalidGender = errors.New("Please choose a gender: Male, Female or Other.")
	ErrInvalidGoal   = errors.New("Please choose a goal: Lose Weight, Gain Muscle or Maintain Weight.")
)

// Profile is the user-supplied input that drives plan generation.
// It is treated as an immutable value once submitted.
type Profile struct {
	Age                 int     `json:"age"`
	Gender              Gender  `json:"gender"`
	WeightKg            float64 `json:"weight"`
	HeightCm            float64 `json:"height"`
	Goal                Goal    `json:"goal"`
	DietaryRestrictions string  `json:"dietaryRestrictions"`
}

// Validate applies the form rules: age 18-80, positive measurements and known enums.
func (p Profile) Validate() error {
	if p.Age < MinAge || p.Age > MaxAge {
		return ErrInvalidAge
	}
	if !(p.WeightKg > 0) || math.IsInf(p.WeightKg, 0) {
		return ErrInvalidWeight
	}
	if !(p.HeightCm > 0) || math.IsInf(p.HeightCm, 0) {
		return ErrInvalidHeight
	}
	if _, err := ParseGender(string(p.Gender)); err != nil {
		return err
	}
	if _, err := ParseGoal(string(p.Goal)); err != nil {
		return err
	}
	return nil
}

// Restrictions returns the dietary restrictions, or "None" when empty.
func (p Profile) Restrictions() string {
	if r := strings.TrimSpace(p.DietaryRestrictions); r != "" {
		return r
	}
	return "None"
}

// Parse builds a validated Profile from raw form values.
func Parse(age, gender, weight, height, goal, restrictions string) (Profile, error) {
	a, err := strconv.Atoi(strings.TrimSpace(age))
	if err != nil {
		return Profile{}, ErrInvalidAge
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	if err != nil {
		return Profile{}, ErrInvalidWeight
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(height), 64)
	if err != nil {
		return Profile{}, ErrInvalidHeight
	}
	g, err := ParseGender(gender)
	if err != nil {
		return Profile{}, err
	}
	gl, err := ParseGoal(goal)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		Age:                 a,
		Gender:              g,
		WeightKg:            w,
		HeightCm:            h,
		Goal:                gl,
		DietaryRestrictions: strings.TrimSpace(restrictions),
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ParseGender accepts any casing of Male, Female or Other.
func ParseGender(s string) (Gender, error) {
	switch normalize(s) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	case "other":
		return GenderOther, nil
	}
	return "", ErrInvalidGender
}

// ParseGoal accepts the display names as well as forms like "lose-weight" or "GAIN_MUSCLE".
func ParseGoal(s string) (Goal, error) {
	switch strings.ReplaceAll(normalize(s), " ", "") {
	case "loseweight", "lose":
		return GoalLoseWeight, nil
	case "gainmuscle", "gain":
		return GoalGainMuscle, nil
	case "maintainweight", "maintain":
		return GoalMaintainWeight, nil
	}
	return "", ErrInvalidGoal
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

// String renders the profile in a single human-readable line.
func (p Profile) String() string {
	return fmt.Sprintf("%d y/o %s, %s kg, %s cm, goal: %s, restrictions: %s",
		p.Age, p.Gender, formatNumber(p.WeightKg), formatNumber(p.HeightCm), p.Goal, p.Restrictions())
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
