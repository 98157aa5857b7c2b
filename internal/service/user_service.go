package service

import (
	"context"
	"errors"
	"fmt"
	"lessonhub/internal/domain"
	"lessonhub/internal/repository"
	"strings"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service Interface ---
type UserService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddUser(ctx context.Context, name string) (*domain.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, name, avatar string) (*domain.User, error)
	// DeleteUser removes the profile together with its progress and routine.
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

// --- Service Implementation ---

// userService implements the UserService interface.
type userService struct {
	userRepo     repository.UserRepository
	progressRepo repository.ProgressRepository
	routineRepo  repository.RoutineRepository
	logger       *log.Logger
}

// NewUserService creates a new instance of userService.
func NewUserService(
	userRepo repository.UserRepository,
	progressRepo repository.ProgressRepository,
	routineRepo repository.RoutineRepository,
	logger *log.Logger,
) UserService {
	return &userService{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		routineRepo:  routineRepo,
		logger:       logger,
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	return user, mapUserErr(err)
}

// AddUser creates a profile with a placeholder avatar.
func (s *userService) AddUser(ctx context.Context, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}

	user := &domain.User{Name: name, Avatar: domain.DefaultAvatarURL(name)}
	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	s.logger.Info("profile added", "id", id.Hex(), "name", name)
	return user, nil
}

// UpdateUser renames the profile. An empty avatar is regenerated from the name.
func (s *userService) UpdateUser(ctx context.Context, id primitive.ObjectID, name, avatar string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	avatar = strings.TrimSpace(avatar)
	if name == "" {
		return nil, validationError("name is required")
	}
	if avatar != "" && !isHTTPURL(avatar) {
		return nil, validationError("avatar must be an absolute http(s) URL")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}
	user.Name = name
	if avatar == "" {
		avatar = domain.DefaultAvatarURL(name)
	}
	user.Avatar = avatar

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return mapUserErr(err)
	}
	if err := s.progressRepo.DeleteForUser(ctx, id); err != nil {
		s.logger.Error("profile deleted but progress purge failed", "id", id.Hex(), "err", err)
		return fmt.Errorf("purge progress for user %s: %w", id.Hex(), err)
	}
	if err := s.routineRepo.Delete(ctx, id); err != nil {
		s.logger.Error("profile deleted but routine purge failed", "id", id.Hex(), "err", err)
		return fmt.Errorf("purge routine for user %s: %w", id.Hex(), err)
	}
	s.logger.Info("profile deleted", "id", id.Hex())
	return nil
}

func mapUserErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
