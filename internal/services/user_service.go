package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/villageofwisdom/genius-backend/internal/models"
	pgrepo "github.com/villageofwisdom/genius-backend/internal/repositories/postgres"
	"github.com/villageofwisdom/genius-backend/internal/utils"
)

type UserService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	users pgrepo.UserRepository
}

func NewUserService(users pgrepo.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	const op = "UserService.Register"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email, password, and name are required", nil)
	}
	if len(password) < 8 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "password must be at least 8 characters", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "an account with this email already exists", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing account", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create account", err)
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	const op = "UserService.Authenticate"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid email or password", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load account", err)
	}
	if err := utils.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid email or password", err)
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "UserService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user id is required", nil)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	return u, nil
}
