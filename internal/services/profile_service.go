package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"subcanvas/internal/models"
	"subcanvas/internal/repositories"

	"github.com/google/uuid"
)

// FileStorage is the slice of the storage service the profile domain needs.
type FileStorage interface {
	Upload(ctx context.Context, data []byte, key, mimeType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ReportEventPublisher pushes moderation events for new abuse reports.
// Publishing is best effort; a nil publisher disables it.
type ReportEventPublisher interface {
	PublishReportCreated(event map[string]interface{}) error
}

// ProfileService handles profile pages, content blocks, visits, uploads and
// abuse reports.
type ProfileService struct {
	profileRepo repositories.ProfileRepository
	reportRepo  repositories.ReportRepository
	storage     FileStorage
	publisher   ReportEventPublisher
}

// NewProfileService creates a new ProfileService. publisher may be nil.
func NewProfileService(
	profileRepo repositories.ProfileRepository,
	reportRepo repositories.ReportRepository,
	fileStorage FileStorage,
	publisher ReportEventPublisher,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		reportRepo:  reportRepo,
		storage:     fileStorage,
		publisher:   publisher,
	}
}

// CreatePage creates a page for ownerID. Fails with ErrConflict when the
// path is already taken by any user.
func (s *ProfileService) CreatePage(ownerID, pagePath, designConcept string) (*models.ProfilePage, error) {
	_, err := s.profileRepo.FindPageByPath(pagePath)
	if err == nil {
		return nil, fmt.Errorf("page path %q already in use: %w", pagePath, ErrConflict)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check page path: %w", err)
	}

	page := &models.ProfilePage{
		UserID:        ownerID,
		PagePath:      pagePath,
		DesignConcept: designConcept,
	}
	if err := s.profileRepo.CreatePage(page); err != nil {
		return nil, err
	}
	return page, nil
}

// ListPagesForUser returns the owner's pages, newest first, with content and
// visit counts.
func (s *ProfileService) ListPagesForUser(ownerID string) ([]models.ProfilePage, error) {
	return s.profileRepo.ListPagesByUser(ownerID)
}

// GetPageByID returns a page with owner summary and ordered contents.
func (s *ProfileService) GetPageByID(id uint) (*models.ProfilePage, error) {
	page, err := s.profileRepo.GetPageDetailByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("profile page %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return page, nil
}

// GetPageByPath returns a page by its public path. When visitorIP is
// non-empty the view is recorded as a PageVisit carrying only a hash of the
// address, so repeated calls grow the visit count.
func (s *ProfileService) GetPageByPath(pagePath, visitorIP string) (*models.ProfilePage, error) {
	page, err := s.profileRepo.GetPageDetailByPath(pagePath)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("profile page %q: %w", pagePath, ErrNotFound)
		}
		return nil, err
	}

	if visitorIP != "" {
		visit := &models.PageVisit{
			ProfileID:     page.ID,
			VisitorIPHash: hashIP(visitorIP),
			VisitedAt:     time.Now(),
		}
		if err := s.profileRepo.CreateVisit(visit); err != nil {
			return nil, fmt.Errorf("failed to record visit: %w", err)
		}
		page.VisitCount++
	}

	return page, nil
}

// UpdatePageInput is the patch applied by UpdatePage. Empty fields are left
// unchanged.
type UpdatePageInput struct {
	PagePath      string
	DesignConcept string
}

// UpdatePage updates a page the caller owns. Changing the path to one used
// by another page fails with ErrConflict.
func (s *ProfileService) UpdatePage(ownerID string, pageID uint, in UpdatePageInput) (*models.ProfilePage, error) {
	page, err := s.getOwnedPage(ownerID, pageID)
	if err != nil {
		return nil, err
	}

	if in.PagePath != "" && in.PagePath != page.PagePath {
		_, err := s.profileRepo.FindPageByPath(in.PagePath)
		if err == nil {
			return nil, fmt.Errorf("page path %q already in use: %w", in.PagePath, ErrConflict)
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to check page path: %w", err)
		}
		page.PagePath = in.PagePath
	}
	if in.DesignConcept != "" {
		page.DesignConcept = in.DesignConcept
	}

	if err := s.profileRepo.UpdatePage(page); err != nil {
		return nil, err
	}
	return page, nil
}

// DeletePage deletes a page the caller owns. Contents and visit records
// cascade away with it.
func (s *ProfileService) DeletePage(ownerID string, pageID uint) error {
	if _, err := s.getOwnedPage(ownerID, pageID); err != nil {
		return err
	}
	return s.profileRepo.DeletePage(pageID)
}

// CreateContent appends a content block to a page the caller owns. The new
// block lands after the page's current highest display order, at 1 on an
// empty page.
func (s *ProfileService) CreateContent(ownerID string, pageID uint, contentType, contentValue string) (*models.ProfileContent, error) {
	if _, err := s.getOwnedPage(ownerID, pageID); err != nil {
		return nil, err
	}

	maxOrder, err := s.profileRepo.MaxDisplayOrder(pageID)
	if err != nil {
		return nil, err
	}

	content := &models.ProfileContent{
		ProfileID:    pageID,
		ContentType:  contentType,
		ContentValue: contentValue,
		DisplayOrder: maxOrder + 1,
	}
	if err := s.profileRepo.CreateContent(content); err != nil {
		return nil, err
	}
	return content, nil
}

// UpdateContentInput is the patch applied by UpdateContent. Empty fields are
// left unchanged; DisplayOrder moves the block only when set.
type UpdateContentInput struct {
	ContentType  string
	ContentValue string
	DisplayOrder *int
}

// UpdateContent updates a block on a page the caller owns.
func (s *ProfileService) UpdateContent(ownerID string, contentID uint, in UpdateContentInput) (*models.ProfileContent, error) {
	content, err := s.getOwnedContent(ownerID, contentID)
	if err != nil {
		return nil, err
	}

	if in.ContentType != "" {
		content.ContentType = in.ContentType
	}
	if in.ContentValue != "" {
		content.ContentValue = in.ContentValue
	}
	if in.DisplayOrder != nil {
		content.DisplayOrder = *in.DisplayOrder
	}

	if err := s.profileRepo.UpdateContent(content); err != nil {
		return nil, err
	}
	return content, nil
}

// DeleteContent deletes a block on a page the caller owns.
func (s *ProfileService) DeleteContent(ownerID string, contentID uint) error {
	if _, err := s.getOwnedContent(ownerID, contentID); err != nil {
		return err
	}
	return s.profileRepo.DeleteContent(contentID)
}

// UploadImage stores an image and returns its URL. Uploads are best effort:
// if every storage tier fails the caller still gets a locally-served URL
// derived from the stored name rather than an error.
func (s *ProfileService) UploadImage(ctx context.Context, ownerID string, data []byte, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	storedName := uuid.New().String() + ext
	key := "profiles/" + storedName

	url, err := s.storage.Upload(ctx, data, key, mimeTypeFor(ext))
	if err != nil {
		log.Printf("Image upload for user %s fell back to local URL: %v", ownerID, err)
		return "/uploads/" + key, nil
	}
	return url, nil
}

// VisitStats is the aggregate returned by GetVisitStats.
type VisitStats struct {
	TotalVisits    int64     `json:"totalVisits"`
	UniqueVisitors int64     `json:"uniqueVisitors"`
	Period         string    `json:"period"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

// GetVisitStats counts visits to a page the caller owns within the period
// window: day is the start of today, week 7 days back, month one month back,
// each through now. Unknown periods fall back to day.
func (s *ProfileService) GetVisitStats(ownerID string, pageID uint, period string) (*VisitStats, error) {
	if _, err := s.getOwnedPage(ownerID, pageID); err != nil {
		return nil, err
	}

	now := time.Now()
	var start time.Time
	switch period {
	case "week":
		start = now.AddDate(0, 0, -7)
	case "month":
		start = now.AddDate(0, -1, 0)
	default:
		period = "day"
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	total, unique, err := s.profileRepo.CountVisits(pageID, start, now)
	if err != nil {
		return nil, err
	}

	return &VisitStats{
		TotalVisits:    total,
		UniqueVisitors: unique,
		Period:         period,
		StartDate:      start,
		EndDate:        now,
	}, nil
}

// ReportAbusivePage files a report against a page. reporterID is nil for
// anonymous reporters. A moderation event is published best effort.
func (s *ProfileService) ReportAbusivePage(reporterID *string, pageID uint, category, details string) (*models.AbuseReport, error) {
	if _, err := s.profileRepo.GetPageByID(pageID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("reported page %d: %w", pageID, ErrNotFound)
		}
		return nil, err
	}

	report := &models.AbuseReport{
		ReportedProfileID: pageID,
		ReporterUserID:    reporterID,
		ReportCategory:    category,
		ReportDetails:     details,
		Status:            models.ReportStatusPending,
	}
	if err := s.reportRepo.Create(report); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := map[string]interface{}{
			"reportId":  report.ID,
			"profileId": pageID,
			"category":  category,
			"status":    report.Status,
		}
		if err := s.publisher.PublishReportCreated(event); err != nil {
			log.Printf("Warning: failed to publish report event for report %d: %v", report.ID, err)
		}
	}

	return report, nil
}

// ListAbuseReports returns a page of reports for admin triage, optionally
// filtered by status, with the total count.
func (s *ProfileService) ListAbuseReports(status string, skip, take int) ([]models.AbuseReport, int64, error) {
	return s.reportRepo.List(status, skip, take)
}

// UpdateReportStatus sets a report's status. Any transition is allowed;
// admins may reopen resolved reports.
func (s *ProfileService) UpdateReportStatus(reportID uint, status string) (*models.AbuseReport, error) {
	report, err := s.reportRepo.GetByID(reportID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("abuse report %d: %w", reportID, ErrNotFound)
		}
		return nil, err
	}

	report.Status = status
	if err := s.reportRepo.Update(report); err != nil {
		return nil, err
	}
	return report, nil
}

// getOwnedPage fetches a page and verifies ownership: ErrNotFound when the
// page is absent, ErrForbidden when it belongs to someone else.
func (s *ProfileService) getOwnedPage(ownerID string, pageID uint) (*models.ProfilePage, error) {
	page, err := s.profileRepo.GetPageByID(pageID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("profile page %d: %w", pageID, ErrNotFound)
		}
		return nil, err
	}
	if page.UserID != ownerID {
		return nil, fmt.Errorf("page %d belongs to another user: %w", pageID, ErrForbidden)
	}
	return page, nil
}

// getOwnedContent resolves a content block through its page and verifies the
// page's ownership.
func (s *ProfileService) getOwnedContent(ownerID string, contentID uint) (*models.ProfileContent, error) {
	content, err := s.profileRepo.GetContentByID(contentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("profile content %d: %w", contentID, ErrNotFound)
		}
		return nil, err
	}
	page, err := s.profileRepo.GetPageByID(content.ProfileID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("page of content %d: %w", contentID, ErrNotFound)
		}
		return nil, err
	}
	if page.UserID != ownerID {
		return nil, fmt.Errorf("content %d belongs to another user's page: %w", contentID, ErrForbidden)
	}
	return content, nil
}

// hashIP returns the hex SHA-256 of a raw IP. Only this hash is ever stored.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// mimeTypeFor maps an image extension to its content type.
func mimeTypeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
