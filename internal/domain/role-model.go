package domain

import (
	"time"

	"gorm.io/gorm"
)

// Row status values. Associations are soft-deleted by flipping Status,
// never removed.
const (
	StatusActive  = "ACTIVE"
	StatusDeleted = "DELETED"
)

type Role struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Code   string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN | DIRUSER | BUSINESS
	Name   string `gorm:"type:varchar(100);not null" json:"name"`
	Status string `gorm:"type:varchar(20);not null;default:ACTIVE" json:"status"`
	gorm.Model
}

type Permission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // USRCREALL, BURCREALL, ...
	Description string `gorm:"type:varchar(255)" json:"description"`
	Status      string `gorm:"type:varchar(20);not null;default:ACTIVE" json:"status"`
	gorm.Model
}

// RolePermission grants a permission to a role. Composite-keyed, so no
// gorm.Model here.
type RolePermission struct {
	RoleID         uint      `gorm:"primaryKey;autoIncrement:false" json:"role_id"`
	PermissionID   uint      `gorm:"primaryKey;autoIncrement:false" json:"permission_id"`
	CreationUserID uint      `gorm:"not null" json:"creation_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type UserRole struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null;uniqueIndex:uidx_user_roles_user_role" json:"user_id"`
	RoleID uint   `gorm:"index;not null;uniqueIndex:uidx_user_roles_user_role" json:"role_id"`
	Status string `gorm:"type:varchar(20);not null;default:ACTIVE" json:"status"`
	gorm.Model
}

// BusinessRole assigns a role to a business principal. A business may hold
// several active assignments; (role_id, business_id) is the unique key.
type BusinessRole struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BusinessID uint   `gorm:"index;not null;uniqueIndex:uidx_business_roles_role_business" json:"business_id"`
	RoleID     uint   `gorm:"index;not null;uniqueIndex:uidx_business_roles_role_business" json:"role_id"`
	Status     string `gorm:"type:varchar(20);not null;default:ACTIVE" json:"status"`
	gorm.Model
}
