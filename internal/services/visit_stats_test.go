package services_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"subcanvas/internal/models"
	"subcanvas/internal/repositories"
	"subcanvas/internal/services"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestProfileService_GetVisitStats_DayWindowFiltersByDate runs the day window
// against a real database: a visit from yesterday must fall out of both the
// total and the unique count, while a visit from today stays in.
func TestProfileService_GetVisitStats_DayWindowFiltersByDate(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.ProfilePage{}, &models.ProfileContent{}, &models.PageVisit{}))

	repo := repositories.NewGORMProfileRepository(db)
	service := services.NewProfileService(repo, new(MockReportRepository), &stubStorage{}, nil)

	page := &models.ProfilePage{UserID: "owner", PagePath: "windowed"}
	assert.NoError(t, repo.CreatePage(page))

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Yesterday's visit sits outside the day window.
	assert.NoError(t, repo.CreateVisit(&models.PageVisit{
		ProfileID:     page.ID,
		VisitorIPHash: "hash-yesterday",
		VisitedAt:     now.Add(-24 * time.Hour),
	}))
	// Today's visit sits at the inclusive start of the window.
	assert.NoError(t, repo.CreateVisit(&models.PageVisit{
		ProfileID:     page.ID,
		VisitorIPHash: "hash-today",
		VisitedAt:     midnight,
	}))

	stats, err := service.GetVisitStats("owner", page.ID, "day")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVisits)
	assert.Equal(t, int64(1), stats.UniqueVisitors)
	assert.Equal(t, "day", stats.Period)

	// The week window reaches back far enough to include both visitors.
	stats, err = service.GetVisitStats("owner", page.ID, "week")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalVisits)
	assert.Equal(t, int64(2), stats.UniqueVisitors)
}
