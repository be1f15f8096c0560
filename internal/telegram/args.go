package telegram

import (
	"errors"
	"strings"

	"ai-fitness-planner/internal/profile"
)

var errNoProfile = errors.New("Please send your age, gender, weight, height and goal.")

// profileKeys maps accepted argument names to profile fields.
var profileKeys = map[string]string{
	"age":          "age",
	"gender":       "gender",
	"sex":          "gender",
	"weight":       "weight",
	"height":       "height",
	"goal":         "goal",
	"restrictions": "restrictions",
	"diet":         "restrictions",
}

// parseProfileArgs reads "key=value" pairs. A word without a known key
// continues the previous value, so "goal=lose weight" and
// "restrictions=no dairy, vegetarian" need no quoting.
func parseProfileArgs(text string) (profile.Profile, error) {
	values := make(map[string]string)
	current := ""

	for _, word := range strings.Fields(text) {
		if k, v, ok := strings.Cut(word, "="); ok {
			if field, known := profileKeys[strings.ToLower(k)]; known {
				current = field
				values[current] = v
				continue
			}
		}
		if current == "" {
			continue
		}
		values[current] = strings.TrimSpace(values[current] + " " + word)
	}

	if len(values) == 0 {
		return profile.Profile{}, errNoProfile
	}
	return profile.Parse(values["age"], values["gender"], values["weight"], values["height"],
		values["goal"], values["restrictions"])
}
