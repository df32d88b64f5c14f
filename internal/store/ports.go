package store

import "context"

// Backend is the raw key-value capability a Store is built on. Values are
// opaque bytes; a missing key is reported with ok=false and a nil error.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Persisted key space.
const (
	KeyCalorieLimit  = "calorieLimit"
	KeyTotalCalories = "totalCalories"
	KeyMeals         = "meals"
	KeyWorkouts      = "workouts"
)

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}
