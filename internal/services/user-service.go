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

// DefaultUserRole is assigned on registration.
const DefaultUserRole = "DIRUSER"

type UserService interface {
	// Auth
	Register(ctx context.Context, input dto.RegisterRequest) error
	Login(ctx context.Context, input dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refresh string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userID uint) error

	// Profile
	GetProfile(ctx context.Context, userID uint) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uint, input dto.UpdateUserProfile) (*dto.UserProfileResponse, error)
	List(ctx context.Context, limit, offset int) ([]dto.UserProfileResponse, error)
	Delete(ctx context.Context, userID uint) error

	// Admin: Role & Status
	SetStatus(ctx context.Context, userID uint, status string) error
	SetRoles(ctx context.Context, userID uint, input dto.SetRolesRequest) error
}

type userService struct {
	repo         repository.UserRepository
	roleRepo     repository.RoleRepository
	userRoleRepo repository.UserRoleRepository
	tokenRepo    repository.TokenRepository
	auth         helper.Auth
	producer     interfaces.ProducerHandler
	logger       *zap.Logger
}

func NewUserService(
	repo repository.UserRepository,
	roleRepo repository.RoleRepository,
	userRoleRepo repository.UserRoleRepository,
	tokenRepo repository.TokenRepository,
	auth helper.Auth,
	producer interfaces.ProducerHandler,
	logger *zap.Logger,
) UserService {
	return &userService{
		repo:         repo,
		roleRepo:     roleRepo,
		userRoleRepo: userRoleRepo,
		tokenRepo:    tokenRepo,
		auth:         auth,
		producer:     producer,
		logger:       logger,
	}
}

func (u *userService) Register(ctx context.Context, input dto.RegisterRequest) error {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	displayName := strings.TrimSpace(input.DisplayName)

	if email == "" || strings.TrimSpace(input.Password) == "" || displayName == "" {
		return errors.New("invalid inputs")
	}
	if len(input.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	existing, err := u.repo.FindUserByEmail(ctx, email)
	if err == nil && existing != nil && existing.ID != 0 {
		return errors.New("email already exists")
	}

	hashedPassword, err := helper.HashPassword(input.Password)
	if err != nil {
		return err
	}

	newUser := &domain.User{
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
		Phone:        input.Phone,
		Status:       "active",
	}

	usr, err := u.repo.CreateUser(ctx, newUser)
	if err != nil {
		return err
	}
	if usr == nil || usr.ID == 0 {
		return errors.New("failed to create user")
	}

	roleObj, err := u.roleRepo.FindByCode(ctx, DefaultUserRole)
	if err != nil {
		return err
	}
	if err := u.userRoleRepo.ReplaceUserRoles(ctx, usr.ID, []uint{roleObj.ID}); err != nil {
		return err
	}

	if u.producer != nil {
		payload := fmt.Sprintf(`{"event":"user.registered","user_id":%d,"email":"%s"}`, usr.ID, usr.Email)
		_ = u.producer.PublishMessage([]byte("user.registered"), []byte(payload))
	}

	return nil
}

func (u *userService) Login(ctx context.Context, input dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if email == "" || password == "" {
		return nil, errors.New("invalid email or password")
	}

	user, err := u.repo.FindUserByEmail(ctx, email)
	if err != nil || user == nil || user.ID == 0 {
		return nil, errors.New("invalid email or password")
	}
	if user.Status != "" && user.Status != "active" {
		return nil, errors.New("account is not active")
	}
	if err := u.auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, errors.New("invalid email or password")
	}

	return u.issueTokens(ctx, user)
}

func (u *userService) issueTokens(ctx context.Context, user *domain.User) (*dto.LoginResponse, error) {
	token, err := u.auth.GenerateToken(user.ID, user.Email, false)
	if err != nil {
		return nil, err
	}
	refresh, err := u.auth.GenerateRefreshToken(user.ID, false)
	if err != nil {
		return nil, err
	}

	userID := user.ID
	record := &domain.AuthToken{
		ID:      uuid.NewString(),
		UserID:  &userID,
		Token:   token,
		Refresh: refresh,
	}
	if err := u.tokenRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{Token: token, Refresh: refresh}, nil
}

func (u *userService) Refresh(ctx context.Context, refresh string) (*dto.LoginResponse, error) {
	claims, err := u.auth.VerifyToken(refresh)
	if err != nil || claims.IsBusiness {
		return nil, errors.New("invalid refresh token")
	}

	record, err := u.tokenRepo.FindByRefresh(ctx, refresh)
	if err != nil || record.UserID == nil {
		return nil, errors.New("invalid refresh token")
	}

	user, err := u.repo.FindUserById(ctx, *record.UserID)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	return u.issueTokens(ctx, user)
}

func (u *userService) Logout(ctx context.Context, userID uint) error {
	return u.tokenRepo.DeleteForUser(ctx, userID)
}

func (u *userService) GetProfile(ctx context.Context, userID uint) (*dto.UserProfileResponse, error) {
	user, err := u.repo.FindUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserProfile(user), nil
}

func (u *userService) UpdateProfile(ctx context.Context, userID uint, input dto.UpdateUserProfile) (*dto.UserProfileResponse, error) {
	user, err := u.repo.FindUserById(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.DisplayName); name != "" {
		user.DisplayName = name
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if err := u.repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return toUserProfile(user), nil
}

func (u *userService) List(ctx context.Context, limit, offset int) ([]dto.UserProfileResponse, error) {
	users, err := u.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserProfileResponse, 0, len(users))
	for i := range users {
		out = append(out, *toUserProfile(&users[i]))
	}
	return out, nil
}

// Delete removes the account and soft-revokes every role assignment so the
// next resolution sees an empty permission set.
func (u *userService) Delete(ctx context.Context, userID uint) error {
	if err := u.userRoleRepo.RevokeAll(ctx, userID); err != nil {
		return err
	}
	if err := u.tokenRepo.DeleteForUser(ctx, userID); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, userID); err != nil {
		return err
	}

	if u.producer != nil {
		// The consumer dispatches on the "event" field, not the message key.
		payload := fmt.Sprintf(`{"event":"user.deleted","user_id":%d}`, userID)
		_ = u.producer.PublishMessage([]byte("user.deleted"), []byte(payload))
	}
	return nil
}

func (u *userService) SetStatus(ctx context.Context, userID uint, status string) error {
	user, err := u.repo.FindUserById(ctx, userID)
	if err != nil {
		return err
	}
	user.Status = status
	return u.repo.SaveUser(ctx, user)
}

func (u *userService) SetRoles(ctx context.Context, userID uint, input dto.SetRolesRequest) error {
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

	roles, err := u.roleRepo.FindByCodes(ctx, codes)
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
	if err := u.userRoleRepo.ReplaceUserRoles(ctx, userID, roleIDs); err != nil {
		return err
	}

	if u.logger != nil {
		u.logger.Info("user roles replaced",
			zap.Uint("user_id", userID),
			zap.Strings("roles", codes))
	}
	if u.producer != nil {
		payload := fmt.Sprintf(`{"event":"role.assigned","user_id":%d,"roles":"%s"}`, userID, strings.Join(codes, ","))
		_ = u.producer.PublishMessage([]byte("role.assigned"), []byte(payload))
	}
	return nil
}

func toUserProfile(user *domain.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		Status:      user.Status,
		CreatedAt:   user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
