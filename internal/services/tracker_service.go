package services

import (
	"context"
	"fmt"

	"calorie/internal/core"
	"calorie/internal/log"
	"calorie/internal/session"
	"calorie/internal/tracker"
	"calorie/internal/view"
)

// TrackerService runs tracker operations for a session, rendering the
// resulting display commands to an optional Display.
type TrackerService struct {
	sessions *session.Manager
	logger   *log.StructuredLogger
}

func NewTrackerService(sessions *session.Manager, logger *log.Logger) *TrackerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentTracker)
	}
	return &TrackerService{sessions: sessions, logger: log.NewStructuredLogger(logger)}
}

// Run executes fn under the session lock. While fn runs, d (if not nil)
// receives the display commands for every event the tracker emits.
func (s *TrackerService) Run(ctx context.Context, sessionID string, d view.Display, fn func(*tracker.Tracker) error) error {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	return sess.Do(func(tr *tracker.Tracker) error {
		if d != nil {
			unsubscribe := tr.Subscribe(view.NewPresenter(d))
			defer unsubscribe()
		}
		return fn(tr)
	})
}

func (s *TrackerService) AddMeal(ctx context.Context, sessionID, name string, calories int64, d view.Display) (core.Meal, error) {
	meal, err := core.NewMeal(name, calories)
	if err != nil {
		return core.Meal{}, err
	}
	var limit, total int64
	err = s.Run(ctx, sessionID, d, func(tr *tracker.Tracker) error {
		if err := tr.AddMeal(ctx, meal); err != nil {
			return err
		}
		limit, total = tr.Limit(), tr.Total()
		return nil
	})
	if err != nil {
		return core.Meal{}, s.fail(ctx, log.OpAddMeal, sessionID, err)
	}
	s.logger.LogEntryChange(ctx, log.OpAddMeal, sessionID, core.KindMeal.String(), meal.ID, meal.Name, meal.Calories, limit, total)
	return meal, nil
}

func (s *TrackerService) AddWorkout(ctx context.Context, sessionID, name string, calories int64, d view.Display) (core.Workout, error) {
	workout, err := core.NewWorkout(name, calories)
	if err != nil {
		return core.Workout{}, err
	}
	var limit, total int64
	err = s.Run(ctx, sessionID, d, func(tr *tracker.Tracker) error {
		if err := tr.AddWorkout(ctx, workout); err != nil {
			return err
		}
		limit, total = tr.Limit(), tr.Total()
		return nil
	})
	if err != nil {
		return core.Workout{}, s.fail(ctx, log.OpAddWorkout, sessionID, err)
	}
	s.logger.LogEntryChange(ctx, log.OpAddWorkout, sessionID, core.KindWorkout.String(), workout.ID, workout.Name, workout.Calories, limit, total)
	return workout, nil
}

// RemoveMeal removes a meal; an unknown id succeeds without changes.
func (s *TrackerService) RemoveMeal(ctx context.Context, sessionID, id string, d view.Display) error {
	err := s.Run(ctx, sessionID, d, func(tr *tracker.Tracker) error {
		return tr.RemoveMeal(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, log.OpRemoveMeal, sessionID, err)
	}
	return nil
}

// RemoveWorkout removes a workout; an unknown id succeeds without changes.
func (s *TrackerService) RemoveWorkout(ctx context.Context, sessionID, id string, d view.Display) error {
	err := s.Run(ctx, sessionID, d, func(tr *tracker.Tracker) error {
		return tr.RemoveWorkout(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, log.OpRemoveWorkout, sessionID, err)
	}
	return nil
}

func (s *TrackerService) SetLimit(ctx context.Context, sessionID string, limit int64, d view.Display) error {
	err := s.Run(ctx, sessionID, d, func(tr *tracker.Tracker) error {
		return tr.SetLimit(ctx, limit)
	})
	if err != nil {
		return s.fail(ctx, log.OpSetLimit, sessionID, err)
	}
	return nil
}

func (s *TrackerService) Reset(ctx context.Context, sessionID string, d view.Display) error {
	err := s.Run(ctx, sessionID, d, func(tr *tracker.Tracker) error {
		return tr.Reset(ctx)
	})
	if err != nil {
		return s.fail(ctx, log.OpReset, sessionID, err)
	}
	return nil
}

// Show draws the whole tracker on d: every card, then the figures.
func (s *TrackerService) Show(ctx context.Context, sessionID string, d view.Display) error {
	return s.Run(ctx, sessionID, d, func(tr *tracker.Tracker) error {
		tr.LoadItems(ctx)
		tr.Refresh(ctx)
		return nil
	})
}

func (s *TrackerService) Snapshot(ctx context.Context, sessionID string) (tracker.Snapshot, error) {
	var snap tracker.Snapshot
	err := s.Run(ctx, sessionID, nil, func(tr *tracker.Tracker) error {
		snap = tr.Snapshot()
		return nil
	})
	return snap, err
}

// FilterMeals returns the session's meals whose name contains query.
func (s *TrackerService) FilterMeals(ctx context.Context, sessionID, query string) ([]core.Meal, error) {
	var meals []core.Meal
	err := s.Run(ctx, sessionID, nil, func(tr *tracker.Tracker) error {
		meals = core.FilterMeals(tr.Meals(), query)
		return nil
	})
	return meals, err
}

func (s *TrackerService) FilterWorkouts(ctx context.Context, sessionID, query string) ([]core.Workout, error) {
	var workouts []core.Workout
	err := s.Run(ctx, sessionID, nil, func(tr *tracker.Tracker) error {
		workouts = core.FilterWorkouts(tr.Workouts(), query)
		return nil
	})
	return workouts, err
}

func (s *TrackerService) fail(ctx context.Context, op, sessionID string, err error) error {
	s.logger.LogError(ctx, "Tracker operation failed", err, op, log.NewFields().WithSession(sessionID))
	return fmt.Errorf("%s: %w", op, err)
}

// ActiveSessions returns the number of trackers held in memory.
func (s *TrackerService) ActiveSessions() int {
	return s.sessions.Active()
}

// StoredSessions returns the ids of every session with stored data.
func (s *TrackerService) StoredSessions(ctx context.Context) ([]string, error) {
	return s.sessions.Sessions(ctx)
}
