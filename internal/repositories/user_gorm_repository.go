package repositories

import (
	"errors"
	"fmt"

	"subcanvas/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user, generating a UUID when none is set.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID, with their SNS accounts attached.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("SnsAccounts").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetByIDAndEmail retrieves a user matching both token claims. Used by the
// auth guard so a stale token stops working when the account changes.
func (r *GORMUserRepository) GetByIDAndEmail(id, email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ? AND email = ?", id, email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s and email: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// Update persists all fields of an existing user.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Save(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s for update: %w", user.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a user. Owned pages, contents, visits and SNS accounts go
// with it via the FK cascades.
func (r *GORMUserRepository) Delete(id string) error {
	res := r.db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// List returns a page of users, newest first, with the total count.
func (r *GORMUserRepository) List(skip, take int) ([]models.User, int64, error) {
	var users []models.User
	var total int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := r.db.Order("created_at DESC").Offset(skip).Limit(take).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// CreateSnsAccount attaches an SNS account to a user.
func (r *GORMUserRepository) CreateSnsAccount(account *models.SnsAccount) error {
	if err := r.db.Create(account).Error; err != nil {
		return fmt.Errorf("failed to create sns account: %w", err)
	}
	return nil
}

// GetSnsAccountByID retrieves a single SNS account.
func (r *GORMUserRepository) GetSnsAccountByID(id uint) (*models.SnsAccount, error) {
	var account models.SnsAccount
	if err := r.db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sns account %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sns account %d: %w", id, err)
	}
	return &account, nil
}

// DeleteSnsAccount removes a single SNS account.
func (r *GORMUserRepository) DeleteSnsAccount(id uint) error {
	res := r.db.Delete(&models.SnsAccount{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete sns account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("sns account %d for deletion: %w", id, ErrNotFound)
	}
	return nil
}
