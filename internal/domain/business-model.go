package domain

import "gorm.io/gorm"

type Business struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `json:"-"`
	Name         string  `gorm:"type:varchar(150);not null" json:"name"`
	Phone        *string `json:"phone,omitempty"`
	Status       string  `gorm:"type:varchar(20);not null;default:active" json:"status"`
	gorm.Model
}
