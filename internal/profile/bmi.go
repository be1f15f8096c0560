package profile

import "math"

// BMICategory buckets a body mass index.
type BMICategory string

const (
	Underweight   BMICategory = "Underweight"
	HealthyWeight BMICategory = "Healthy Weight"
	Overweight    BMICategory = "Overweight"
	Obese         BMICategory = "Obese"
)

// BMI returns weight / height² rounded to one decimal, or 0 when the profile
// has no usable measurements.
func (p Profile) BMI() float64 {
	if p.WeightKg <= 0 || p.HeightCm <= 0 {
		return 0
	}
	m := p.HeightCm / 100
	return math.Round(p.WeightKg/(m*m)*10) / 10
}

// BMICategory classifies the rounded BMI. A value on a band's upper edge
// (24.9, 29.9) belongs to the next band up.
func (p Profile) BMICategory() BMICategory {
	return Categorize(p.BMI())
}

// Categorize classifies an arbitrary BMI value.
func Categorize(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 24.9:
		return HealthyWeight
	case bmi < 29.9:
		return Overweight
	default:
		return Obese
	}
}
