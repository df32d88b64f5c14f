// Package store implements the tracker's persistence accessors on top of a
// flat key-value Backend. Values are JSON encoded, one key per concern, and
// the last write wins.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"calorie/internal/core"
)

// Store provides named accessors for the calorie limit, the running total and
// the meal and workout lists.
type Store struct {
	backend      Backend
	namespace    string
	defaultLimit int64
}

// Option customises a Store.
type Option func(*Store)

// WithNamespace prefixes every key, so several trackers can share a backend.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		s.namespace = ns
	}
}

// WithDefaultLimit overrides the limit returned when none has been stored.
func WithDefaultLimit(limit int64) Option {
	return func(s *Store) {
		s.defaultLimit = limit
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, defaultLimit: core.DefaultCalorieLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the backend key for name in this store's namespace.
func (s *Store) Key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

func (s *Store) CalorieLimit(ctx context.Context) (int64, error) {
	limit := s.defaultLimit
	if _, err := s.read(ctx, KeyCalorieLimit, &limit); err != nil {
		return 0, err
	}
	return limit, nil
}

func (s *Store) SetCalorieLimit(ctx context.Context, limit int64) error {
	return s.write(ctx, KeyCalorieLimit, limit)
}

func (s *Store) TotalCalories(ctx context.Context) (int64, error) {
	var total int64
	if _, err := s.read(ctx, KeyTotalCalories, &total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateTotalCalories(ctx context.Context, total int64) error {
	return s.write(ctx, KeyTotalCalories, total)
}

func (s *Store) Meals(ctx context.Context) ([]core.Meal, error) {
	meals := []core.Meal{}
	if _, err := s.read(ctx, KeyMeals, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

// SaveMeal appends meal to the stored list.
func (s *Store) SaveMeal(ctx context.Context, meal core.Meal) error {
	meals, err := s.Meals(ctx)
	if err != nil {
		return err
	}
	return s.write(ctx, KeyMeals, append(meals, meal))
}

// RemoveMeal deletes the meal with the given id from the stored list.
func (s *Store) RemoveMeal(ctx context.Context, id string) error {
	meals, err := s.Meals(ctx)
	if err != nil {
		return err
	}
	kept := meals[:0]
	for _, m := range meals {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return s.write(ctx, KeyMeals, kept)
}

// ReplaceMeals overwrites the stored meal list with meals.
func (s *Store) ReplaceMeals(ctx context.Context, meals []core.Meal) error {
	if meals == nil {
		meals = []core.Meal{}
	}
	return s.write(ctx, KeyMeals, meals)
}

func (s *Store) Workouts(ctx context.Context) ([]core.Workout, error) {
	workouts := []core.Workout{}
	if _, err := s.read(ctx, KeyWorkouts, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (s *Store) SaveWorkout(ctx context.Context, workout core.Workout) error {
	workouts, err := s.Workouts(ctx)
	if err != nil {
		return err
	}
	return s.write(ctx, KeyWorkouts, append(workouts, workout))
}

func (s *Store) RemoveWorkout(ctx context.Context, id string) error {
	workouts, err := s.Workouts(ctx)
	if err != nil {
		return err
	}
	kept := workouts[:0]
	for _, w := range workouts {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	return s.write(ctx, KeyWorkouts, kept)
}

func (s *Store) ReplaceWorkouts(ctx context.Context, workouts []core.Workout) error {
	if workouts == nil {
		workouts = []core.Workout{}
	}
	return s.write(ctx, KeyWorkouts, workouts)
}

// ClearAll removes the total and both lists. The calorie limit is a
// preference and survives.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.Key(KeyTotalCalories), s.Key(KeyMeals), s.Key(KeyWorkouts)); err != nil {
		return fmt.Errorf("clear %s: %w", s.namespaceLabel(), err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, name string, dst any) (bool, error) {
	key := s.Key(name)
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, name string, v any) error {
	key := s.Key(name)
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) namespaceLabel() string {
	if s.namespace == "" {
		return "store"
	}
	return "store " + s.namespace
}
