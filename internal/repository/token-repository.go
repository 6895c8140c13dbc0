package repository

import (
	"context"
	"errors"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"gorm.io/gorm"
)

var ErrTokenNotFound = errors.New("token not found")

type TokenRepository interface {
	Save(ctx context.Context, token *domain.AuthToken) error
	FindByRefresh(ctx context.Context, refresh string) (*domain.AuthToken, error)
	DeleteForUser(ctx context.Context, userID uint) error
	DeleteForBusiness(ctx context.Context, businessID uint) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Save(ctx context.Context, token *domain.AuthToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) FindByRefresh(ctx context.Context, refresh string) (*domain.AuthToken, error) {
	var token domain.AuthToken
	err := r.db.WithContext(ctx).Where("refresh = ?", refresh).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) DeleteForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.AuthToken{}).Error
}

func (r *tokenRepository) DeleteForBusiness(ctx context.Context, businessID uint) error {
	return r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Delete(&domain.AuthToken{}).Error
}
