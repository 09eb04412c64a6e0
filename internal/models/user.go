package models

import "time"

// Auth providers. Non-LOCAL users authenticate only through the social login flow.
const (
	ProviderLocal  = "LOCAL"
	ProviderGoogle = "GOOGLE"
	ProviderKakao  = "KAKAO"
)

// User roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Account statuses. Anything other than ACTIVE blocks authentication.
const (
	StatusActive  = "ACTIVE"
	StatusDormant = "DORMANT"
	StatusBanned  = "BANNED"
)

// User represents a registered account, local or social.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Nickname     string     `json:"nickname" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255)"` // empty for social accounts
	AuthProvider string     `json:"authProvider" gorm:"type:varchar(20);not null;default:LOCAL"`
	ProviderID   string     `json:"-" gorm:"type:varchar(255)"`
	Role         string     `json:"role" gorm:"type:varchar(20);not null;default:USER"`
	Status       string     `json:"status" gorm:"type:varchar(20);not null;default:ACTIVE"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	SnsAccounts  []SnsAccount  `json:"snsAccounts,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	ProfilePages []ProfilePage `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// SnsAccount is a social-network link shown on a user's account settings.
// Belongs to exactly one user and is deleted only by that user.
type SnsAccount struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	SnsType   string    `json:"snsType" gorm:"type:varchar(50);not null"`
	SnsUrl    string    `json:"snsUrl" gorm:"type:varchar(500);not null"`
	CreatedAt time.Time `json:"createdAt"`
}
