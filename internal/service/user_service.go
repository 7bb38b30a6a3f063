package service

import (
	"context"
	"errors"

	"pennypost/internal/models"
	"pennypost/internal/repository"
	"pennypost/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles account creation and authentication. New accounts are
// seeded with a starting penny grant; pennies otherwise only enter the system
// through that grant and leave through publish fees.
type UserService struct {
	users           repository.UserRepository
	ledger          repository.LedgerRepository
	startingPennies int64
}

func NewUserService(users repository.UserRepository, ledger repository.LedgerRepository, startingPennies int64) *UserService {
	return &UserService{
		users:           users,
		ledger:          ledger,
		startingPennies: startingPennies,
	}
}

// Register creates an account with a hashed password and the starting grant.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Pennies:  s.startingPennies,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewValidationError("username or email already taken")
		}
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and returns the account.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("invalid credentials")
	}
	return user, nil
}

// GetUser returns a user's profile.
func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Balance returns the user's current penny balance straight from the ledger.
func (s *UserService) Balance(ctx context.Context, userID uint) (int64, error) {
	return s.ledger.Balance(ctx, userID)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Err != nil {
		return errors.Is(appErr.Err, gorm.ErrDuplicatedKey)
	}
	return false
}
