package repository

import (
	"context"
	"errors"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"gorm.io/gorm"
)

var ErrBusinessNotFound = errors.New("business not found")

type BusinessRepository interface {
	CreateBusiness(ctx context.Context, business *domain.Business) (*domain.Business, error)
	FindBusinessByEmail(ctx context.Context, email string) (*domain.Business, error)
	FindBusinessById(ctx context.Context, businessID uint) (*domain.Business, error)
	SaveBusiness(ctx context.Context, business *domain.Business) error
	List(ctx context.Context, limit, offset int) ([]domain.Business, error)
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) CreateBusiness(ctx context.Context, business *domain.Business) (*domain.Business, error) {
	if err := r.db.WithContext(ctx).Create(business).Error; err != nil {
		return nil, err
	}
	return business, nil
}

func (r *businessRepository) FindBusinessByEmail(ctx context.Context, email string) (*domain.Business, error) {
	var business domain.Business
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&business).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindBusinessById(ctx context.Context, businessID uint) (*domain.Business, error) {
	var business domain.Business
	err := r.db.WithContext(ctx).First(&business, businessID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) SaveBusiness(ctx context.Context, business *domain.Business) error {
	return r.db.WithContext(ctx).Save(business).Error
}

func (r *businessRepository) List(ctx context.Context, limit, offset int) ([]domain.Business, error) {
	var businesses []domain.Business
	err := r.db.WithContext(ctx).
		Order("id ASC").Limit(limit).Offset(offset).
		Find(&businesses).Error
	if err != nil {
		return nil, err
	}
	return businesses, nil
}
