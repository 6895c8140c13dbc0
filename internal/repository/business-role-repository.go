package repository

import (
	"context"
	"errors"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BusinessRoleRepository interface {
	FindRoleIDsByBusinessID(ctx context.Context, businessID uint) ([]uint, error)
	GetRolesByBusinessID(ctx context.Context, businessID uint) ([]domain.Role, error)
	ReplaceBusinessRoles(ctx context.Context, businessID uint, roleIDs []uint) error
	RevokeAll(ctx context.Context, businessID uint) error
}

type businessRoleRepository struct {
	db *gorm.DB
}

func NewBusinessRoleRepository(db *gorm.DB) BusinessRoleRepository {
	return &businessRoleRepository{db: db}
}

func (br *businessRoleRepository) FindRoleIDsByBusinessID(ctx context.Context, businessID uint) ([]uint, error) {
	var roleIDs []uint
	err := br.db.WithContext(ctx).
		Table("business_roles").
		Distinct("role_id").
		Where("business_id = ? AND status <> ?", businessID, domain.StatusDeleted).
		Scan(&roleIDs).Error
	if err != nil {
		return nil, err
	}
	return roleIDs, nil
}

func (br *businessRoleRepository) GetRolesByBusinessID(ctx context.Context, businessID uint) ([]domain.Role, error) {
	var roles []domain.Role
	err := br.db.WithContext(ctx).
		Model(&domain.Role{}).
		Joins("JOIN business_roles ON business_roles.role_id = roles.id").
		Where("business_roles.business_id = ? AND business_roles.status <> ?", businessID, domain.StatusDeleted).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (br *businessRoleRepository) ReplaceBusinessRoles(ctx context.Context, businessID uint, roleIDs []uint) error {
	if businessID == 0 {
		return errors.New("invalid business_id")
	}

	return br.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.BusinessRole{}).
			Where("business_id = ?", businessID).
			Update("status", domain.StatusDeleted).Error
		if err != nil {
			return err
		}

		if len(roleIDs) == 0 {
			return nil
		}

		links := make([]domain.BusinessRole, 0, len(roleIDs))
		for _, rid := range roleIDs {
			links = append(links, domain.BusinessRole{
				BusinessID: businessID,
				RoleID:     rid,
				Status:     domain.StatusActive,
			})
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}, {Name: "business_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"status": domain.StatusActive}),
		}).Create(&links).Error
	})
}

func (br *businessRoleRepository) RevokeAll(ctx context.Context, businessID uint) error {
	if businessID == 0 {
		return errors.New("invalid business_id")
	}
	return br.db.WithContext(ctx).
		Model(&domain.BusinessRole{}).
		Where("business_id = ?", businessID).
		Update("status", domain.StatusDeleted).Error
}
