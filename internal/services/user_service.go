package services

import (
	"errors"
	"fmt"

	"subcanvas/internal/models"
	"subcanvas/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles self-service account management and the admin user
// surface.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// UpdateUserInput is the patch applied by UpdateUser. Zero values leave the
// corresponding field untouched.
type UpdateUserInput struct {
	Nickname        string
	Password        string
	CurrentPassword string
}

// GetByID returns a user with their SNS accounts, password hash stripped.
func (s *UserService) GetByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateUser applies a nickname and/or password change. Password changes are
// limited to LOCAL accounts and require the correct current password.
func (s *UserService) UpdateUser(userID string, in UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	if in.Nickname != "" {
		user.Nickname = in.Nickname
	}

	if in.Password != "" {
		if user.AuthProvider != models.ProviderLocal {
			return nil, fmt.Errorf("social accounts cannot change a password: %w", ErrBadRequest)
		}
		if in.CurrentPassword == "" {
			return nil, fmt.Errorf("current password required: %w", ErrBadRequest)
		}
		if user.PasswordHash == "" {
			return nil, fmt.Errorf("no password set on account: %w", ErrBadRequest)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			return nil, fmt.Errorf("current password incorrect: %w", ErrBadRequest)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// DeleteUser removes the caller's own account. LOCAL accounts must confirm
// with their current password. Owned pages and SNS accounts cascade away.
func (s *UserService) DeleteUser(userID, currentPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return err
	}

	if user.AuthProvider == models.ProviderLocal && user.PasswordHash != "" {
		if currentPassword == "" {
			return fmt.Errorf("current password required to delete account: %w", ErrBadRequest)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
			return fmt.Errorf("password incorrect: %w", ErrForbidden)
		}
	}

	return s.userRepo.Delete(userID)
}

// AdminDeleteUser removes any account without a password check.
func (s *UserService) AdminDeleteUser(userID string) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return err
	}
	return s.userRepo.Delete(userID)
}

// AddSnsAccount links an SNS profile URL to the caller's account.
func (s *UserService) AddSnsAccount(userID, snsType, snsUrl string) (*models.SnsAccount, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	account := &models.SnsAccount{
		UserID:  userID,
		SnsType: snsType,
		SnsUrl:  snsUrl,
	}
	if err := s.userRepo.CreateSnsAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteSnsAccount removes one of the caller's own SNS accounts.
func (s *UserService) DeleteSnsAccount(userID string, snsAccountID uint) error {
	account, err := s.userRepo.GetSnsAccountByID(snsAccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("sns account %d: %w", snsAccountID, ErrNotFound)
		}
		return err
	}
	if account.UserID != userID {
		return fmt.Errorf("sns account belongs to another user: %w", ErrForbidden)
	}
	return s.userRepo.DeleteSnsAccount(snsAccountID)
}

// ListUsers returns a page of users, newest first, with the total count.
func (s *UserService) ListUsers(skip, take int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(skip, take)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

// UpdateUserStatus moves a user between ACTIVE, DORMANT and BANNED. A
// non-ACTIVE status blocks both password and token authentication from the
// next request on.
func (s *UserService) UpdateUserStatus(userID, status string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	user.Status = status
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}
