package repository

import (
	"context"
	"errors"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRoleRepository interface {
	// FindRoleIDsByUserID returns the distinct active role ids assigned to
	// the user. Soft-deleted assignments never count.
	FindRoleIDsByUserID(ctx context.Context, userID uint) ([]uint, error)
	GetRolesByUserID(ctx context.Context, userID uint) ([]domain.Role, error)
	ReplaceUserRoles(ctx context.Context, userID uint, roleIDs []uint) error
	RevokeAll(ctx context.Context, userID uint) error
}

type userRoleRepository struct {
	db *gorm.DB
}

func NewUserRoleRepository(db *gorm.DB) UserRoleRepository {
	return &userRoleRepository{db: db}
}

func (ur *userRoleRepository) FindRoleIDsByUserID(ctx context.Context, userID uint) ([]uint, error) {
	var roleIDs []uint
	err := ur.db.WithContext(ctx).
		Table("user_roles").
		Distinct("role_id").
		Where("user_id = ? AND status <> ?", userID, domain.StatusDeleted).
		Scan(&roleIDs).Error
	if err != nil {
		return nil, err
	}
	return roleIDs, nil
}

func (ur *userRoleRepository) GetRolesByUserID(ctx context.Context, userID uint) ([]domain.Role, error) {
	var roles []domain.Role
	err := ur.db.WithContext(ctx).
		Model(&domain.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND user_roles.status <> ?", userID, domain.StatusDeleted).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// ReplaceUserRoles soft-revokes every current assignment, then re-activates
// or inserts the requested ones. The (user_id, role_id) unique key makes
// the upsert necessary for pairs that were revoked earlier.
func (ur *userRoleRepository) ReplaceUserRoles(ctx context.Context, userID uint, roleIDs []uint) error {
	if userID == 0 {
		return errors.New("invalid user_id")
	}

	return ur.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.UserRole{}).
			Where("user_id = ?", userID).
			Update("status", domain.StatusDeleted).Error
		if err != nil {
			return err
		}

		if len(roleIDs) == 0 {
			return nil
		}

		links := make([]domain.UserRole, 0, len(roleIDs))
		for _, rid := range roleIDs {
			links = append(links, domain.UserRole{
				UserID: userID,
				RoleID: rid,
				Status: domain.StatusActive,
			})
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "role_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"status": domain.StatusActive}),
		}).Create(&links).Error
	})
}

func (ur *userRoleRepository) RevokeAll(ctx context.Context, userID uint) error {
	if userID == 0 {
		return errors.New("invalid user_id")
	}
	return ur.db.WithContext(ctx).
		Model(&domain.UserRole{}).
		Where("user_id = ?", userID).
		Update("status", domain.StatusDeleted).Error
}
