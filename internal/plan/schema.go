package plan

import "ai-fitness-planner/internal/schema"

// Schema is the contract for a generated Plan. It is rendered into the
// prompt, sent to the model as its response schema and used to validate the
// answer.
var Schema = buildSchema()

func buildSchema() *schema.Schema {
	meal := func(slot string) *schema.Schema {
		return schema.Object("Details for "+slot,
			schema.Field("name", schema.String("Name of the meal")),
			schema.Field("description", schema.String("Brief description of the meal, including ingredients")),
			schema.Field("calories", schema.NonNegative("Estimated calories for the meal")),
		)
	}

	dailyDiet := schema.Object("Meals for one day",
		schema.Field("breakfast", meal("breakfast")),
		schema.Field("lunch", meal("lunch")),
		schema.Field("dinner", meal("dinner")),
		schema.Field("snacks", meal("snacks")),
		schema.Field("totalCalories", schema.NonNegative("Total estimated calories for the day, the sum of the four meals")),
	)

	days := make([]schema.Property, 0, len(Weekdays))
	for _, d := range Weekdays {
		days = append(days, schema.Field(d, dailyDiet))
	}

	exercise := schema.Object("A single exercise",
		schema.Field("name", schema.String("Name of the exercise")),
		schema.Field("sets", schema.String("Number of sets, e.g. '3' or '3-4'")),
		schema.Field("reps", schema.String("Number of repetitions or a duration, e.g. '10-12' or '30 seconds'")),
		schema.Field("description", schema.String("Short instructions on how to perform the exercise")),
	)

	workout := schema.Object("Workout for one day",
		schema.Field("day", schema.String("Day of the week, e.g. 'Monday'")),
		schema.Field("focus", schema.String("Focus of the workout, e.g. 'Cardio', 'Upper Body Strength', 'Rest'")),
		schema.Field("exercises", schema.ArrayOf("Exercises for the day", exercise)),
	)

	supplement := schema.Object("A supplement suggestion",
		schema.Field("name", schema.String("Name of the supplement")),
		schema.Field("dosage", schema.String("Recommended dosage")),
		schema.Field("reason", schema.String("Why this supplement helps with the user's goal")),
	)

	return schema.Object("A personalized 7-day fitness plan",
		schema.Field("planScore", schema.Integer("Score from 0 to 100 rating how well the plan fits the user's profile and goal", 0, 100)),
		schema.Field("motivationalMessage", schema.Text("A short, encouraging message for the user")),
		schema.Field("dietPlan", schema.Object("Diet plan for the week, keyed by lowercase weekday name", days...)),
		schema.Field("exercisePlan", schema.ArrayOf("Workout schedule for the week, 3 to 7 days", workout)),
		schema.Field("supplementSuggestions", schema.ArrayOf("2 or 3 optional supplement suggestions, may be empty", supplement)),
	)
}
