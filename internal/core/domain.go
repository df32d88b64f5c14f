package core

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	KindMeal    EntryKind = "meal"
	KindWorkout EntryKind = "workout"

	// DefaultCalorieLimit is the daily limit used when none has been stored.
	DefaultCalorieLimit int64 = 2000

	// MaxCalories bounds a single entry so running totals stay far from
	// int64 overflow.
	MaxCalories int64 = 100_000

	maxNameLength = 100
)

type (
	EntryKind string

	// Meal adds its calories to the running total.
	Meal struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Calories int64  `json:"calories"`
	}

	// Workout subtracts its calories from the running total.
	Workout struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Calories int64  `json:"calories"`
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrNameTooLong      = errors.New("name too long (max 100 characters)")
	ErrNegativeCalories = errors.New("calories cannot be negative")
	ErrInvalidCalories  = errors.New("invalid calories")
	ErrTooManyCalories  = errors.New("calories too large (max 100000)")
	ErrTotalOverflow    = errors.New("total calories out of range")
)

// NewID returns a fresh opaque identifier for a meal or workout.
func NewID() string {
	return uuid.NewString()
}

// NewMeal creates a validated meal with a generated id.
func NewMeal(name string, calories int64) (Meal, error) {
	m := Meal{ID: NewID(), Name: strings.TrimSpace(name), Calories: calories}
	if err := m.Validate(); err != nil {
		return Meal{}, err
	}
	return m, nil
}

// NewWorkout creates a validated workout with a generated id.
func NewWorkout(name string, calories int64) (Workout, error) {
	w := Workout{ID: NewID(), Name: strings.TrimSpace(name), Calories: calories}
	if err := w.Validate(); err != nil {
		return Workout{}, err
	}
	return w, nil
}

func (m Meal) Validate() error {
	return validateEntry(m.Name, m.Calories)
}

func (w Workout) Validate() error {
	return validateEntry(w.Name, w.Calories)
}

func (k EntryKind) String() string {
	return string(k)
}

// IsValid reports whether k names a known entry kind.
func (k EntryKind) IsValid() bool {
	switch k {
	case KindMeal, KindWorkout:
		return true
	default:
		return false
	}
}

func validateEntry(name string, calories int64) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}
	if calories < 0 {
		return ErrNegativeCalories
	}
	if calories > MaxCalories {
		return ErrTooManyCalories
	}
	return nil
}

// AddCalories returns total+delta, or ErrTotalOverflow when the sum does not
// fit in an int64.
func AddCalories(total, delta int64) (int64, error) {
	if (delta > 0 && total > math.MaxInt64-delta) || (delta < 0 && total < math.MinInt64-delta) {
		return 0, ErrTotalOverflow
	}
	return total + delta, nil
}

// SumMeals returns the calories consumed by meals.
func SumMeals(meals []Meal) int64 {
	var total int64
	for _, m := range meals {
		total += m.Calories
	}
	return total
}

// SumWorkouts returns the calories burned by workouts.
func SumWorkouts(workouts []Workout) int64 {
	var total int64
	for _, w := range workouts {
		total += w.Calories
	}
	return total
}
