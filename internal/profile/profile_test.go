package profile

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		args    [6]string
		want    Profile
		wantErr error
	}{
		{
			name: "valid form",
			args: [6]string{"25", "Male", "70", "175", "Lose Weight", ""},
			want: Profile{Age: 25, Gender: GenderMale, WeightKg: 70, HeightCm: 175, Goal: GoalLoseWeight},
		},
		{
			name: "lenient enums and trimmed restrictions",
			args: [6]string{" 40 ", "female", "62.5", "168", "gain-muscle", "  vegan "},
			want: Profile{Age: 40, Gender: GenderFemale, WeightKg: 62.5, HeightCm: 168, Goal: GoalGainMuscle, DietaryRestrictions: "vegan"},
		},
		{
			name:    "age below range",
			args:    [6]string{"17", "Male", "70", "175", "Lose Weight", ""},
			wantErr: ErrInvalidAge,
		},
		{
			name:    "age above range",
			args:    [6]string{"81", "Male", "70", "175", "Lose Weight", ""},
			wantErr: ErrInvalidAge,
		},
		{
			name:    "age not a number",
			args:    [6]string{"twenty", "Male", "70", "175", "Lose Weight", ""},
			wantErr: ErrInvalidAge,
		},
		{
			name:    "zero weight",
			args:    [6]string{"30", "Male", "0", "175", "Lose Weight", ""},
			wantErr: ErrInvalidWeight,
		},
		{
			name:    "negative height",
			args:    [6]string{"30", "Male", "70", "-1", "Lose Weight", ""},
			wantErr: ErrInvalidHeight,
		},
		{
			name:    "unknown gender",
			args:    [6]string{"30", "robot", "70", "175", "Lose Weight", ""},
			wantErr: ErrInvalidGender,
		},
		{
			name:    "unknown goal",
			args:    [6]string{"30", "Other", "70", "175", "Run a marathon", ""},
			wantErr: ErrInvalidGoal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.args[0], tt.args[1], tt.args[2], tt.args[3], tt.args[4], tt.args[5])
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestValidateBoundaries(t *testing.T) {
	base := Profile{Gender: GenderOther, WeightKg: 80, HeightCm: 180, Goal: GoalMaintainWeight}
	for _, age := range []int{MinAge, MaxAge} {
		p := base
		p.Age = age
		if err := p.Validate(); err != nil {
			t.Errorf("Age %d should be valid, got %v", age, err)
		}
	}
}

func TestRestrictions(t *testing.T) {
	if got := (Profile{}).Restrictions(); got != "None" {
		t.Errorf("Expected 'None', got %q", got)
	}
	if got := (Profile{DietaryRestrictions: " gluten-free "}).Restrictions(); got != "gluten-free" {
		t.Errorf("Expected 'gluten-free', got %q", got)
	}
}

func TestBMI(t *testing.T) {
	tests := []struct {
		weight, height float64
		wantBMI        float64
		wantCategory   BMICategory
	}{
		{weight: 50, height: 175, wantBMI: 16.3, wantCategory: Underweight},
		{weight: 70, height: 175, wantBMI: 22.9, wantCategory: HealthyWeight},
		{weight: 85, height: 175, wantBMI: 27.8, wantCategory: Overweight},
		{weight: 110, height: 175, wantBMI: 35.9, wantCategory: Obese},
		{weight: 0, height: 175, wantBMI: 0, wantCategory: Underweight},
	}
	for _, tt := range tests {
		p := Profile{WeightKg: tt.weight, HeightCm: tt.height}
		if got := p.BMI(); got != tt.wantBMI {
			t.Errorf("BMI(%v, %v) = %v, want %v", tt.weight, tt.height, got, tt.wantBMI)
		}
		if got := p.BMICategory(); got != tt.wantCategory {
			t.Errorf("BMICategory(%v, %v) = %v, want %v", tt.weight, tt.height, got, tt.wantCategory)
		}
	}
}

func TestCategorizeEdges(t *testing.T) {
	cases := map[float64]BMICategory{
		18.4: Underweight,
		18.5: HealthyWeight,
		24.8: HealthyWeight,
		24.9: Overweight,
		29.8: Overweight,
		29.9: Obese,
	}
	for bmi, want := range cases {
		if got := Categorize(bmi); got != want {
			t.Errorf("Categorize(%v) = %v, want %v", bmi, got, want)
		}
	}
}
