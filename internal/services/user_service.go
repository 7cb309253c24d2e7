package services

import (
	"context"
	"errors"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserService struct {
	userRepo    *repository.UserRepository
	earningRepo *repository.EarningRepository
}

func NewUserService(userRepo *repository.UserRepository, earningRepo *repository.EarningRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		earningRepo: earningRepo,
	}
}

// GetOrCreateByEmail backs the OAuth sign-in hook: look the user up by email,
// create a fresh record when absent.
func (s *UserService) GetOrCreateByEmail(ctx context.Context, email, name string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{
		UserFields: models.UserFields{
			Name:              name,
			Email:             email,
			Status:            models.UserStatusActive,
			ActiveBounties:    []string{},
			SubmittedBounties: []string{},
			CompletedBounties: []string{},
		},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if airtable.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetEarnings(ctx context.Context, userID string) ([]models.Earning, error) {
	return s.earningRepo.ListForUser(ctx, userID)
}
