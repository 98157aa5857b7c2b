package service

import (
	"context"
	"errors"
	"lessonhub/internal/domain"
	"lessonhub/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service Interface ---
type RoutineService interface {
	// GetRoutine returns the normalized schedule, or the empty template if none was saved.
	GetRoutine(ctx context.Context, userID primitive.ObjectID) (domain.Schedule, error)
	SaveRoutine(ctx context.Context, userID primitive.ObjectID, schedule domain.Schedule) (domain.Schedule, error)
	ResetRoutine(ctx context.Context, userID primitive.ObjectID) error
}

// --- Service Implementation ---

// routineService implements the RoutineService interface.
type routineService struct {
	routineRepo repository.RoutineRepository
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(routineRepo repository.RoutineRepository) RoutineService {
	return &routineService{routineRepo: routineRepo}
}

func (s *routineService) GetRoutine(ctx context.Context, userID primitive.ObjectID) (domain.Schedule, error) {
	routine, err := s.routineRepo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewEmptySchedule(), nil
	}
	if err != nil {
		return nil, err
	}
	return domain.NormalizeSchedule(routine.Schedule), nil
}

// SaveRoutine validates, normalizes and overwrites the whole schedule.
func (s *routineService) SaveRoutine(ctx context.Context, userID primitive.ObjectID, schedule domain.Schedule) (domain.Schedule, error) {
	if err := domain.ValidateSchedule(schedule); err != nil {
		return nil, validationError("%v", err)
	}
	normalized := domain.NormalizeSchedule(schedule)
	if err := s.routineRepo.Save(ctx, &domain.WeeklyRoutine{UserID: userID, Schedule: normalized}); err != nil {
		return nil, err
	}
	return normalized, nil
}

func (s *routineService) ResetRoutine(ctx context.Context, userID primitive.ObjectID) error {
	return s.routineRepo.Delete(ctx, userID)
}
