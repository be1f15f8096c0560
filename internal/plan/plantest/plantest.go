// Package plantest provides plan fixtures for tests.
package plantest

import (
	"encoding/json"

	"ai-fitness-planner/internal/plan"
)

// ValidJSON is a complete plan that satisfies plan.Schema.
const ValidJSON = `{
  "planScore": 88,
  "motivationalMessage": "Every step counts. Stay consistent and the results will follow!",
  "dietPlan": {
    "monday": {
      "breakfast": {
        "name": "Oatmeal with Berries",
        "description": "Rolled oats cooked in almond milk, topped with blueberries",
        "calories": 350
      },
      "lunch": {
        "name": "Grilled Chicken Salad",
        "description": "Mixed greens, grilled chicken breast, cherry tomatoes, olive oil",
        "calories": 450
      },
      "dinner": {
        "name": "Baked Salmon",
        "description": "Salmon fillet with roasted broccoli and quinoa",
        "calories": 550
      },
      "snacks": {
        "name": "Greek Yogurt",
        "description": "Plain Greek yogurt with a handful of almonds",
        "calories": 200
      },
      "totalCalories": 1550
    },
    "tuesday": {
      "breakfast": {
        "name": "Oatmeal with Berries",
        "description": "Rolled oats cooked in almond milk, topped with blueberries",
        "calories": 350
      },
      "lunch": {
        "name": "Grilled Chicken Salad",
        "description": "Mixed greens, grilled chicken breast, cherry tomatoes, olive oil",
        "calories": 450
      },
      "dinner": {
        "name": "Baked Salmon",
        "description": "Salmon fillet with roasted broccoli and quinoa",
        "calories": 550
      },
      "snacks": {
        "name": "Greek Yogurt",
        "description": "Plain Greek yogurt with a handful of almonds",
        "calories": 200
      },
      "totalCalories": 1550
    },
    "wednesday": {
      "breakfast": {
        "name": "Oatmeal with Berries",
        "description": "Rolled oats cooked in almond milk, topped with blueberries",
        "calories": 350
      },
      "lunch": {
        "name": "Grilled Chicken Salad",
        "description": "Mixed greens, grilled chicken breast, cherry tomatoes, olive oil",
        "calories": 450
      },
      "dinner": {
        "name": "Baked Salmon",
        "description": "Salmon fillet with roasted broccoli and quinoa",
        "calories": 550
      },
      "snacks": {
        "name": "Greek Yogurt",
        "description": "Plain Greek yogurt with a handful of almonds",
        "calories": 200
      },
      "totalCalories": 1550
    },
    "thursday": {
      "breakfast": {
        "name": "Oatmeal with Berries",
        "description": "Rolled oats cooked in almond milk, topped with blueberries",
        "calories": 350
      },
      "lunch": {
        "name": "Grilled Chicken Salad",
        "description": "Mixed greens, grilled chicken breast, cherry tomatoes, olive oil",
        "calories": 450
      },
      "dinner": {
        "name": "Baked Salmon",
        "description": "Salmon fillet with roasted broccoli and quinoa",
        "calories": 550
      },
      "snacks": {
        "name": "Greek Yogurt",
        "description": "Plain Greek yogurt with a handful of almonds",
        "calories": 200
      },
      "totalCalories": 1550
    },
    "friday": {
      "breakfast": {
        "name": "Oatmeal with Berries",
        "description": "Rolled oats cooked in almond milk, topped with blueberries",
        "calories": 350
      },
      "lunch": {
        "name": "Grilled Chicken Salad",
        "description": "Mixed greens, grilled chicken breast, cherry tomatoes, olive oil",
        "calories": 450
      },
      "dinner": {
        "name": "Baked Salmon",
        "description": "Salmon fillet with roasted broccoli and quinoa",
        "calories": 550
      },
      "snacks": {
        "name": "Greek Yogurt",
        "description": "Plain Greek yogurt with a handful of almonds",
        "calories": 200
      },
      "totalCalories": 1550
    },
    "saturday": {
      "breakfast": {
        "name": "Oatmeal with Berries",
        "description": "Rolled oats cooked in almond milk, topped with blueberries",
        "calories": 350
      },
      "lunch": {
        "name": "Grilled Chicken Salad",
        "description": "Mixed greens, grilled chicken breast, cherry tomatoes, olive oil",
        "calories": 450
      },
      "dinner": {
        "name": "Baked Salmon",
        "description": "Salmon fillet with roasted broccoli and quinoa",
        "calories": 550
      },
      "snacks": {
        "name": "Greek Yogurt",
        "description": "Plain Greek yogurt with a handful of almonds",
        "calories": 200
      },
      "totalCalories": 1550
    },
    "sunday": {
      "breakfast": {
        "name": "Oatmeal with Berries",
        "description": "Rolled oats cooked in almond milk, topped with blueberries",
        "calories": 350
      },
      "lunch": {
        "name": "Grilled Chicken Salad",
        "description": "Mixed greens, grilled chicken breast, cherry tomatoes, olive oil",
        "calories": 450
      },
      "dinner": {
        "name": "Baked Salmon",
        "description": "Salmon fillet with roasted broccoli and quinoa",
        "calories": 550
      },
      "snacks": {
        "name": "Greek Yogurt",
        "description": "Plain Greek yogurt with a handful of almonds",
        "calories": 200
      },
      "totalCalories": 1550
    }
  },
  "exercisePlan": [
    {
      "day": "Monday",
      "focus": "Cardio",
      "exercises": [
        {
          "name": "Brisk Walk",
          "sets": "1",
          "reps": "30 minutes",
          "description": "Walk at a pace that raises your heart rate"
        }
      ]
    },
    {
      "day": "Wednesday",
      "focus": "Full Body Strength",
      "exercises": [
        {
          "name": "Bodyweight Squats",
          "sets": "3",
          "reps": "12-15",
          "description": "Keep your chest up and knees behind your toes"
        },
        {
          "name": "Push-ups",
          "sets": "3-4",
          "reps": "8-10",
          "description": "Lower until your chest nearly touches the floor"
        }
      ]
    },
    {
      "day": "Friday",
      "focus": "Core",
      "exercises": [
        {
          "name": "Plank",
          "sets": "3",
          "reps": "45 seconds",
          "description": "Hold a straight line from head to heels"
        }
      ]
    }
  ],
  "supplementSuggestions": [
    {
      "name": "Vitamin D3",
      "dosage": "1000 IU daily",
      "reason": "Supports bone health and energy levels"
    },
    {
      "name": "Whey Protein",
      "dosage": "1 scoop after workouts",
      "reason": "Helps preserve lean muscle while in a calorie deficit"
    }
  ]
}`

// Valid returns ValidJSON decoded into a Plan.
func Valid() *plan.Plan {
	p, err := plan.Parse([]byte(ValidJSON))
	if err != nil {
		panic("plantest: fixture no longer matches the plan schema: " + err.Error())
	}
	return p
}

// Without returns ValidJSON with the top-level field removed.
func Without(field string) string {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(ValidJSON), &doc); err != nil {
		panic("plantest: " + err.Error())
	}
	delete(doc, field)
	out, err := json.Marshal(doc)
	if err != nil {
		panic("plantest: " + err.Error())
	}
	return string(out)
}

// With returns ValidJSON with the top-level field replaced by the raw JSON value.
func With(field, value string) string {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(ValidJSON), &doc); err != nil {
		panic("plantest: " + err.Error())
	}
	doc[field] = json.RawMessage(value)
	out, err := json.Marshal(doc)
	if err != nil {
		panic("plantest: " + err.Error())
	}
	return string(out)
}
