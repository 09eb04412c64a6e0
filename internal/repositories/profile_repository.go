package repositories

import (
	"time"

	"subcanvas/internal/models"
)

// ProfileRepository defines the interface for profile page, content and
// visit data access.
type ProfileRepository interface {
	CreatePage(page *models.ProfilePage) error
	GetPageByID(id uint) (*models.ProfilePage, error)
	GetPageDetailByID(id uint) (*models.ProfilePage, error)
	GetPageDetailByPath(pagePath string) (*models.ProfilePage, error)
	FindPageByPath(pagePath string) (*models.ProfilePage, error)
	ListPagesByUser(userID string) ([]models.ProfilePage, error)
	UpdatePage(page *models.ProfilePage) error
	DeletePage(id uint) error

	CreateContent(content *models.ProfileContent) error
	GetContentByID(id uint) (*models.ProfileContent, error)
	UpdateContent(content *models.ProfileContent) error
	DeleteContent(id uint) error
	MaxDisplayOrder(profileID uint) (int, error)

	CreateVisit(visit *models.PageVisit) error
	CountVisits(profileID uint, from, to time.Time) (total int64, unique int64, err error)
}
