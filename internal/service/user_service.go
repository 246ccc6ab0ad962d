package service

import (
	"context"

	"gradebook/internal/domain"
	"gradebook/internal/dto"
)

// UserService exposes profile lookups for the authenticated user.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
}

type userService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo domain.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}

	return &dto.UserProfileResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		SeatNumber: user.SeatNumber,
		Role:       string(user.Role),
	}, nil
}
