package repositories

import (
	"errors"
	"fmt"

	"subcanvas/internal/models"

	"gorm.io/gorm"
)

// GORMReportRepository is a GORM implementation of ReportRepository.
type GORMReportRepository struct {
	db *gorm.DB
}

// NewGORMReportRepository creates a new instance of GORMReportRepository.
func NewGORMReportRepository(db *gorm.DB) *GORMReportRepository {
	return &GORMReportRepository{
		db: db,
	}
}

// Create files a new abuse report.
func (r *GORMReportRepository) Create(report *models.AbuseReport) error {
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create abuse report: %w", err)
	}
	return nil
}

// GetByID retrieves a single abuse report.
func (r *GORMReportRepository) GetByID(id uint) (*models.AbuseReport, error) {
	var report models.AbuseReport
	if err := r.db.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("abuse report %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get abuse report %d: %w", id, err)
	}
	return &report, nil
}

// Update persists all fields of an existing report.
func (r *GORMReportRepository) Update(report *models.AbuseReport) error {
	res := r.db.Save(report)
	if res.Error != nil {
		return fmt.Errorf("failed to update abuse report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("abuse report %d for update: %w", report.ID, ErrNotFound)
	}
	return nil
}

// List returns a page of reports, newest first, optionally filtered by
// status, with the total count. Each report carries summaries of the
// reported page, its owner and the reporter.
func (r *GORMReportRepository) List(status string, skip, take int) ([]models.AbuseReport, int64, error) {
	query := r.db.Model(&models.AbuseReport{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count abuse reports: %w", err)
	}

	var reports []models.AbuseReport
	if err := query.Order("created_at DESC").Offset(skip).Limit(take).Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list abuse reports: %w", err)
	}

	for i := range reports {
		if err := r.decorate(&reports[i]); err != nil {
			return nil, 0, err
		}
	}
	return reports, total, nil
}

// decorate fills the derived page and reporter summaries on a report. A page
// or user removed since the report was filed just leaves its summary nil.
func (r *GORMReportRepository) decorate(report *models.AbuseReport) error {
	var page models.ProfilePage
	err := r.db.First(&page, "id = ?", report.ReportedProfileID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to get reported page %d: %w", report.ReportedProfileID, err)
	}
	if err == nil {
		summary := &models.ReportedPage{ID: page.ID, PagePath: page.PagePath}
		var owner models.User
		if ownerErr := r.db.Select("id", "nickname").First(&owner, "id = ?", page.UserID).Error; ownerErr == nil {
			summary.User = &models.PageOwner{ID: owner.ID, Nickname: owner.Nickname}
		}
		report.ReportedProfile = summary
	}

	if report.ReporterUserID != nil {
		var reporter models.User
		if reporterErr := r.db.Select("id", "nickname", "email").
			First(&reporter, "id = ?", *report.ReporterUserID).Error; reporterErr == nil {
			report.ReporterUser = &models.Reporter{
				ID:       reporter.ID,
				Nickname: reporter.Nickname,
				Email:    reporter.Email,
			}
		}
	}
	return nil
}
