package models

import "time"

// Abuse report statuses. Admins may move a report between any of these; no
// transition order is enforced.
const (
	ReportStatusPending   = "PENDING"
	ReportStatusReviewing = "REVIEWING"
	ReportStatusResolved  = "RESOLVED"
)

// ReportedPage is the page summary attached to a report in admin listings.
type ReportedPage struct {
	ID       uint       `json:"id"`
	PagePath string     `json:"pagePath"`
	User     *PageOwner `json:"user,omitempty"`
}

// Reporter identifies the reporting user in admin listings. Nil for
// anonymous reports.
type Reporter struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// AbuseReport is a flag filed against a profile page, triaged by admins.
type AbuseReport struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ReportedProfileID uint      `json:"reportedProfileId" gorm:"index;not null"`
	ReporterUserID    *string   `json:"reporterUserId" gorm:"type:varchar(36)"`
	ReportCategory    string    `json:"reportCategory" gorm:"type:varchar(50);not null"`
	ReportDetails     string    `json:"reportDetails,omitempty" gorm:"type:text"`
	Status            string    `json:"status" gorm:"type:varchar(20);not null;default:PENDING"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	// Derived summaries for admin listings, not persisted.
	ReportedProfile *ReportedPage `json:"reportedProfile,omitempty" gorm:"-"`
	ReporterUser    *Reporter     `json:"reporterUser,omitempty" gorm:"-"`
}
