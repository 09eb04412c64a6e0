package models

import "time"

// PageVisit is an anonymous record of a page view. Only a SHA-256 hash of the
// visitor IP is stored; the raw address never reaches the database.
type PageVisit struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProfileID     uint      `json:"profileId" gorm:"index;not null"`
	VisitorIPHash string    `json:"visitorIpHash" gorm:"column:visitor_ip_hash;type:varchar(64);index"`
	VisitedAt     time.Time `json:"visitedAt" gorm:"index"`
}
