package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clipcast/clipcast/internal/models"
	"github.com/clipcast/clipcast/internal/repository"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{
		u: u,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id string) (*models.User, error) {
	user, isExist, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user info: %w", err)
	}

	if !isExist {
		err = fmt.Errorf("%w: user", ErrNotFound)
		slog.Info(err.Error())
		return nil, err
	}

	return user, nil
}
