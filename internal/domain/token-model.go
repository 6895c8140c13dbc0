package domain

import "gorm.io/gorm"

// AuthToken records an issued access/refresh pair. Exactly one of UserID or
// BusinessID is set per row.
type AuthToken struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uint  `gorm:"index" json:"user_id,omitempty"`
	BusinessID *uint  `gorm:"index" json:"business_id,omitempty"`
	Token      string `gorm:"type:text;not null" json:"token"`
	Refresh    string `gorm:"type:text" json:"refresh"`
	gorm.Model
}
