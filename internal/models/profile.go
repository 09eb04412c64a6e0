package models

import "time"

// Content block types.
const (
	ContentTypeImage   = "IMAGE"
	ContentTypeBioText = "BIO_TEXT"
	ContentTypeLink    = "LINK"
)

// PageOwner is the owner summary embedded in public page payloads.
// Deliberately excludes email and status.
type PageOwner struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// ProfilePage is a user-owned, path-addressable page composed of ordered
// content blocks. PagePath is globally unique.
type ProfilePage struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	PagePath      string    `json:"pagePath" gorm:"uniqueIndex;type:varchar(100);not null"`
	DesignConcept string    `json:"designConcept,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Contents []ProfileContent `json:"contents,omitempty" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	Visits   []PageVisit      `json:"-" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`

	// Derived fields filled by the service layer, not persisted.
	Owner        *PageOwner `json:"user,omitempty" gorm:"-"`
	ContentCount int64      `json:"contentCount" gorm:"-"`
	VisitCount   int64      `json:"visitCount" gorm:"-"`
}

// ProfileContent is one block on a page. DisplayOrder starts at 1 and new
// blocks append after the current maximum; reordering only happens through
// explicit client updates.
type ProfileContent struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProfileID    uint      `json:"profileId" gorm:"index;not null"`
	ContentType  string    `json:"contentType" gorm:"type:varchar(20);not null"`
	ContentValue string    `json:"contentValue" gorm:"type:text;not null"`
	DisplayOrder int       `json:"displayOrder" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
