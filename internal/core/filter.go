package core

import "strings"

// FilterMeals returns the meals whose name contains query, ignoring case.
// An empty query returns every meal.
func FilterMeals(meals []Meal, query string) []Meal {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Meal, 0, len(meals))
	for _, m := range meals {
		if q == "" || strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}

// FilterWorkouts is FilterMeals for workouts.
func FilterWorkouts(workouts []Workout, query string) []Workout {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Workout, 0, len(workouts))
	for _, w := range workouts {
		if q == "" || strings.Contains(strings.ToLower(w.Name), q) {
			out = append(out, w)
		}
	}
	return out
}
