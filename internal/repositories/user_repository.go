package repositories

import "subcanvas/internal/models"

// UserRepository defines the interface for user and SNS-account data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByIDAndEmail(id, email string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id string) error
	List(skip, take int) ([]models.User, int64, error)

	CreateSnsAccount(account *models.SnsAccount) error
	GetSnsAccountByID(id uint) (*models.SnsAccount, error)
	DeleteSnsAccount(id uint) error
}
