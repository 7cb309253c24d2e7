package models

import (
	"time"

	"gorm.io/gorm"
)

// APIToken is operational data owned by this service and lives in the local
// database, not the remote base. UserID is the user's remote record ID.
type APIToken struct {
	gorm.Model
	UserID    string    `gorm:"not null;index;size:32" json:"user_id"`
	Email     string    `gorm:"index" json:"email"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}
