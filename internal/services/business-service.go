package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/dto"
	"github.com/SundayYogurt/directory_service/internal/helper"
	"github.com/SundayYogurt/directory_service/internal/interfaces"
	"github.com/SundayYogurt/directory_service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBusinessRole is assigned when a business registers.
const DefaultBusinessRole = "BUSINESS"

type BusinessService interface {
	Register(ctx context.Context, input dto.BusinessRegisterRequest) error
	Login(ctx context.Context, input dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, businessID uint) error

	GetProfile(ctx context.Context, businessID uint) (*dto.BusinessProfileResponse, error)
	List(ctx context.Context, limit, offset int) ([]dto.BusinessProfileResponse, error)

	SetRoles(ctx context.Context, businessID uint, input dto.SetRolesRequest) error
}

type businessService struct {
	repo             repository.BusinessRepository
	roleRepo         repository.RoleRepository
	businessRoleRepo repository.BusinessRoleRepository
	tokenRepo        repository.TokenRepository
	auth             helper.Auth
	producer         interfaces.ProducerHandler
	logger           *zap.Logger
}

func NewBusinessService(
	repo repository.BusinessRepository,
	roleRepo repository.RoleRepository,
	businessRoleRepo repository.BusinessRoleRepository,
	tokenRepo repository.TokenRepository,
	auth helper.Auth,
	producer interfaces.ProducerHandler,
	logger *zap.Logger,
) BusinessService {
	return &businessService{
		repo:             repo,
		roleRepo:         roleRepo,
		businessRoleRepo: businessRoleRepo,
		tokenRepo:        tokenRepo,
		auth:             auth,
		producer:         producer,
		logger:           logger,
	}
}

func (b *businessService) Register(ctx context.Context, input dto.BusinessRegisterRequest) error {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)

	if email == "" || strings.TrimSpace(input.Password) == "" || name == "" {
		return errors.New("invalid inputs")
	}
	if len(input.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	existing, err := b.repo.FindBusinessByEmail(ctx, email)
	if err == nil && existing != nil && existing.ID != 0 {
		return errors.New("email already exists")
	}

	hashedPassword, err := helper.HashPassword(input.Password)
	if err != nil {
		return err
	}

	business, err := b.repo.CreateBusiness(ctx, &domain.Business{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Phone:        input.Phone,
		Status:       "active",
	})
	if err != nil {
		return err
	}
	if business == nil || business.ID == 0 {
		return errors.New("failed to create business")
	}

	roleObj, err := b.roleRepo.FindByCode(ctx, DefaultBusinessRole)
	if err != nil {
		return err
	}
	if err := b.businessRoleRepo.ReplaceBusinessRoles(ctx, business.ID, []uint{roleObj.ID}); err != nil {
		return err
	}

	if b.producer != nil {
		payload := fmt.Sprintf(`{"event":"business.registered","business_id":%d,"email":"%s"}`, business.ID, business.Email)
		_ = b.producer.PublishMessage([]byte("business.registered"), []byte(payload))
	}
	return nil
}

// Login issues tokens carrying the isBusiness discriminant.
func (b *businessService) Login(ctx context.Context, input dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if email == "" || password == "" {
		return nil, errors.New("invalid email or password")
	}

	business, err := b.repo.FindBusinessByEmail(ctx, email)
	if err != nil || business == nil || business.ID == 0 {
		return nil, errors.New("invalid email or password")
	}
	if business.Status != "" && business.Status != "active" {
		return nil, errors.New("account is not active")
	}
	if err := b.auth.VerifyPassword(password, business.PasswordHash); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token, err := b.auth.GenerateToken(business.ID, business.Email, true)
	if err != nil {
		return nil, err
	}
	refresh, err := b.auth.GenerateRefreshToken(business.ID, true)
	if err != nil {
		return nil, err
	}

	businessID := business.ID
	record := &domain.AuthToken{
		ID:         uuid.NewString(),
		BusinessID: &businessID,
		Token:      token,
		Refresh:    refresh,
	}
	if err := b.tokenRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{Token: token, Refresh: refresh}, nil
}

func (b *businessService) Logout(ctx context.Context, businessID uint) error {
	return b.tokenRepo.DeleteForBusiness(ctx, businessID)
}

func (b *businessService) GetProfile(ctx context.Context, businessID uint) (*dto.BusinessProfileResponse, error) {
	business, err := b.repo.FindBusinessById(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return toBusinessProfile(business), nil
}

func (b *businessService) List(ctx context.Context, limit, offset int) ([]dto.BusinessProfileResponse, error) {
	businesses, err := b.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BusinessProfileResponse, 0, len(businesses))
	for i := range businesses {
		out = append(out, *toBusinessProfile(&businesses[i]))
	}
	return out, nil
}

func (b *businessService) SetRoles(ctx context.Context, businessID uint, input dto.SetRolesRequest) error {
	codes := make([]string, 0, len(input.Roles))
	for _, code := range input.Roles {
		code = strings.TrimSpace(strings.ToUpper(code))
		if code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return errors.New("no roles provided")
	}

	roles, err := b.roleRepo.FindByCodes(ctx, codes)
	if err != nil {
		return err
	}
	if len(roles) != len(codes) {
		return repository.ErrRoleNotFound
	}

	roleIDs := make([]uint, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}
	if err := b.businessRoleRepo.ReplaceBusinessRoles(ctx, businessID, roleIDs); err != nil {
		return err
	}

	if b.logger != nil {
		b.logger.Info("business roles replaced",
			zap.Uint("business_id", businessID),
			zap.Strings("roles", codes))
	}
	if b.producer != nil {
		payload := fmt.Sprintf(`{"event":"role.assigned","business_id":%d,"roles":"%s"}`, businessID, strings.Join(codes, ","))
		_ = b.producer.PublishMessage([]byte("role.assigned"), []byte(payload))
	}
	return nil
}

func toBusinessProfile(business *domain.Business) *dto.BusinessProfileResponse {
	return &dto.BusinessProfileResponse{
		ID:        business.ID,
		Email:     business.Email,
		Name:      business.Name,
		Phone:     business.Phone,
		Status:    business.Status,
		CreatedAt: business.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
