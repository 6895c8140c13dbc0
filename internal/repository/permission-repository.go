package repository

import (
	"context"
	"errors"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Permission, error)
	FindByCodes(ctx context.Context, codes []string) ([]domain.Permission, error)
	List(ctx context.Context, limit, offset int) ([]domain.Permission, error)
	Create(ctx context.Context, perm *domain.Permission) error
	// FindCodesByRoleIDs expands role ids into the distinct permission codes
	// they grant.
	FindCodesByRoleIDs(ctx context.Context, roleIDs []uint) ([]string, error)
	GrantToRole(ctx context.Context, roleID uint, permissionIDs []uint, creationUserID uint) error
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) FindByCode(ctx context.Context, code string) (*domain.Permission, error) {
	var perm domain.Permission
	err := r.db.WithContext(ctx).
		Where("code = ? AND status <> ?", code, domain.StatusDeleted).
		First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}
	return &perm, nil
}

func (r *permissionRepository) FindByCodes(ctx context.Context, codes []string) ([]domain.Permission, error) {
	var perms []domain.Permission
	if len(codes) == 0 {
		return perms, nil
	}
	err := r.db.WithContext(ctx).
		Where("code IN ? AND status <> ?", codes, domain.StatusDeleted).
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) List(ctx context.Context, limit, offset int) ([]domain.Permission, error) {
	var perms []domain.Permission
	err := r.db.WithContext(ctx).
		Where("status <> ?", domain.StatusDeleted).
		Order("id ASC").Limit(limit).Offset(offset).
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) Create(ctx context.Context, perm *domain.Permission) error {
	if perm.Status == "" {
		perm.Status = domain.StatusActive
	}
	return r.db.WithContext(ctx).Create(perm).Error
}

// Note: role_permissions rows themselves carry no status filter here; an
// assignment counts as long as the row exists.
func (r *permissionRepository) FindCodesByRoleIDs(ctx context.Context, roleIDs []uint) ([]string, error) {
	var codes []string
	if len(roleIDs) == 0 {
		return codes, nil
	}
	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Distinct("permissions.code").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Scan(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *permissionRepository) GrantToRole(ctx context.Context, roleID uint, permissionIDs []uint, creationUserID uint) error {
	if roleID == 0 {
		return errors.New("invalid role_id")
	}
	if len(permissionIDs) == 0 {
		return nil
	}

	grants := make([]domain.RolePermission, 0, len(permissionIDs))
	for _, pid := range permissionIDs {
		grants = append(grants, domain.RolePermission{
			RoleID:         roleID,
			PermissionID:   pid,
			CreationUserID: creationUserID,
		})
	}
	// Re-granting a held permission is a no-op, not a key violation.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role_id"}, {Name: "permission_id"}},
		DoNothing: true,
	}).Create(&grants).Error
}
