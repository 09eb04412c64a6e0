package repositories

import "subcanvas/internal/models"

// ReportRepository defines the interface for abuse-report data access.
type ReportRepository interface {
	Create(report *models.AbuseReport) error
	GetByID(id uint) (*models.AbuseReport, error)
	Update(report *models.AbuseReport) error
	List(status string, skip, take int) ([]models.AbuseReport, int64, error)
}
