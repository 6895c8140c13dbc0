package repository

import (
	"context"
	"errors"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"gorm.io/gorm"
)

var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrPermissionNotFound = errors.New("permission not found")
)

type RoleRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Role, error)
	FindByCodes(ctx context.Context, codes []string) ([]domain.Role, error)
	List(ctx context.Context, limit, offset int) ([]domain.Role, error)
	Create(ctx context.Context, role *domain.Role) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByCode(ctx context.Context, code string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).
		Where("code = ? AND status <> ?", code, domain.StatusDeleted).
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByCodes(ctx context.Context, codes []string) ([]domain.Role, error) {
	var roles []domain.Role
	if len(codes) == 0 {
		return roles, nil
	}
	err := r.db.WithContext(ctx).
		Where("code IN ? AND status <> ?", codes, domain.StatusDeleted).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) List(ctx context.Context, limit, offset int) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.WithContext(ctx).
		Where("status <> ?", domain.StatusDeleted).
		Order("id ASC").Limit(limit).Offset(offset).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	if role.Status == "" {
		role.Status = domain.StatusActive
	}
	return r.db.WithContext(ctx).Create(role).Error
}
