package repositories

import (
	"errors"
	"fmt"
	"time"

	"subcanvas/internal/models"

	"gorm.io/gorm"
)

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	db *gorm.DB
}

// NewGORMProfileRepository creates a new instance of GORMProfileRepository.
func NewGORMProfileRepository(db *gorm.DB) *GORMProfileRepository {
	return &GORMProfileRepository{
		db: db,
	}
}

// CreatePage creates a new profile page.
func (r *GORMProfileRepository) CreatePage(page *models.ProfilePage) error {
	if err := r.db.Create(page).Error; err != nil {
		return fmt.Errorf("failed to create profile page: %w", err)
	}
	return nil
}

// GetPageByID retrieves a bare page row, without contents or counts. Used for
// ownership checks before mutations.
func (r *GORMProfileRepository) GetPageByID(id uint) (*models.ProfilePage, error) {
	var page models.ProfilePage
	if err := r.db.First(&page, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile page %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile page %d: %w", id, err)
	}
	return &page, nil
}

// GetPageDetailByID retrieves a page with its ordered contents, owner summary
// and total visit count.
func (r *GORMProfileRepository) GetPageDetailByID(id uint) (*models.ProfilePage, error) {
	var page models.ProfilePage
	err := r.db.
		Preload("Contents", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&page, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile page %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile page %d: %w", id, err)
	}
	if err := r.decorate(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPageDetailByPath is GetPageDetailByID keyed by the public page path.
func (r *GORMProfileRepository) GetPageDetailByPath(pagePath string) (*models.ProfilePage, error) {
	var page models.ProfilePage
	err := r.db.
		Preload("Contents", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&page, "page_path = ?", pagePath).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile page %q: %w", pagePath, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile page %q: %w", pagePath, err)
	}
	if err := r.decorate(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FindPageByPath retrieves a bare page row by path, for uniqueness checks.
func (r *GORMProfileRepository) FindPageByPath(pagePath string) (*models.ProfilePage, error) {
	var page models.ProfilePage
	if err := r.db.First(&page, "page_path = ?", pagePath).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile page %q: %w", pagePath, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile page %q: %w", pagePath, err)
	}
	return &page, nil
}

// ListPagesByUser returns a user's pages, newest first, each carrying its
// content and visit counts.
func (r *GORMProfileRepository) ListPagesByUser(userID string) ([]models.ProfilePage, error) {
	var pages []models.ProfilePage
	if err := r.db.Order("created_at DESC").Find(&pages, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to list profile pages for user %s: %w", userID, err)
	}
	for i := range pages {
		if err := r.db.Model(&models.ProfileContent{}).
			Where("profile_id = ?", pages[i].ID).
			Count(&pages[i].ContentCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count contents for page %d: %w", pages[i].ID, err)
		}
		if err := r.db.Model(&models.PageVisit{}).
			Where("profile_id = ?", pages[i].ID).
			Count(&pages[i].VisitCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count visits for page %d: %w", pages[i].ID, err)
		}
	}
	return pages, nil
}

// UpdatePage persists all fields of an existing page.
func (r *GORMProfileRepository) UpdatePage(page *models.ProfilePage) error {
	res := r.db.Save(page)
	if res.Error != nil {
		return fmt.Errorf("failed to update profile page: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile page %d for update: %w", page.ID, ErrNotFound)
	}
	return nil
}

// DeletePage removes a page. Contents and visit records go with it via the
// FK cascades.
func (r *GORMProfileRepository) DeletePage(id uint) error {
	res := r.db.Delete(&models.ProfilePage{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete profile page: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile page %d for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// CreateContent creates a new content block.
func (r *GORMProfileRepository) CreateContent(content *models.ProfileContent) error {
	if err := r.db.Create(content).Error; err != nil {
		return fmt.Errorf("failed to create profile content: %w", err)
	}
	return nil
}

// GetContentByID retrieves a single content block.
func (r *GORMProfileRepository) GetContentByID(id uint) (*models.ProfileContent, error) {
	var content models.ProfileContent
	if err := r.db.First(&content, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile content %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile content %d: %w", id, err)
	}
	return &content, nil
}

// UpdateContent persists all fields of an existing content block.
func (r *GORMProfileRepository) UpdateContent(content *models.ProfileContent) error {
	res := r.db.Save(content)
	if res.Error != nil {
		return fmt.Errorf("failed to update profile content: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile content %d for update: %w", content.ID, ErrNotFound)
	}
	return nil
}

// DeleteContent removes a single content block.
func (r *GORMProfileRepository) DeleteContent(id uint) error {
	res := r.db.Delete(&models.ProfileContent{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete profile content: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile content %d for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// MaxDisplayOrder returns the highest display order on a page, 0 when the
// page has no contents yet.
func (r *GORMProfileRepository) MaxDisplayOrder(profileID uint) (int, error) {
	var maxOrder int
	err := r.db.Model(&models.ProfileContent{}).
		Where("profile_id = ?", profileID).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max display order for page %d: %w", profileID, err)
	}
	return maxOrder, nil
}

// CreateVisit records a single page visit.
func (r *GORMProfileRepository) CreateVisit(visit *models.PageVisit) error {
	if visit.VisitedAt.IsZero() {
		visit.VisitedAt = time.Now()
	}
	if err := r.db.Create(visit).Error; err != nil {
		return fmt.Errorf("failed to create page visit: %w", err)
	}
	return nil
}

// CountVisits returns the total visits and distinct visitor hashes within
// [from, to].
func (r *GORMProfileRepository) CountVisits(profileID uint, from, to time.Time) (int64, int64, error) {
	var total int64
	err := r.db.Model(&models.PageVisit{}).
		Where("profile_id = ? AND visited_at >= ? AND visited_at <= ?", profileID, from, to).
		Count(&total).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count visits for page %d: %w", profileID, err)
	}

	var unique int64
	err = r.db.Model(&models.PageVisit{}).
		Where("profile_id = ? AND visited_at >= ? AND visited_at <= ?", profileID, from, to).
		Distinct("visitor_ip_hash").
		Count(&unique).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count unique visitors for page %d: %w", profileID, err)
	}
	return total, unique, nil
}

// decorate fills the derived owner summary and counts on a loaded page.
func (r *GORMProfileRepository) decorate(page *models.ProfilePage) error {
	var owner models.User
	if err := r.db.Select("id", "nickname").First(&owner, "id = ?", page.UserID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to get owner of page %d: %w", page.ID, err)
		}
	} else {
		page.Owner = &models.PageOwner{ID: owner.ID, Nickname: owner.Nickname}
	}
	page.ContentCount = int64(len(page.Contents))
	if err := r.db.Model(&models.PageVisit{}).
		Where("profile_id = ?", page.ID).
		Count(&page.VisitCount).Error; err != nil {
		return fmt.Errorf("failed to count visits for page %d: %w", page.ID, err)
	}
	return nil
}
