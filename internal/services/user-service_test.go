package services

import (
	"context"
	"testing"
	"time"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/dto"
	"github.com/SundayYogurt/directory_service/internal/helper"
	"github.com/SundayYogurt/directory_service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	nextID uint
	users  map[uint]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*domain.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindUserById(_ context.Context, userID uint) (*domain.User, error) {
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) SaveUser(_ context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, userID uint) error {
	delete(f.users, userID)
	return nil
}

type fakeTokenRepo struct {
	tokens []*domain.AuthToken
}

func (f *fakeTokenRepo) Save(_ context.Context, token *domain.AuthToken) error {
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeTokenRepo) FindByRefresh(_ context.Context, refresh string) (*domain.AuthToken, error) {
	for _, token := range f.tokens {
		if token.Refresh == refresh {
			return token, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (f *fakeTokenRepo) DeleteForUser(_ context.Context, userID uint) error {
	kept := f.tokens[:0]
	for _, token := range f.tokens {
		if token.UserID == nil || *token.UserID != userID {
			kept = append(kept, token)
		}
	}
	f.tokens = kept
	return nil
}

func (f *fakeTokenRepo) DeleteForBusiness(_ context.Context, businessID uint) error {
	kept := f.tokens[:0]
	for _, token := range f.tokens {
		if token.BusinessID == nil || *token.BusinessID != businessID {
			kept = append(kept, token)
		}
	}
	f.tokens = kept
	return nil
}

type fakeProducer struct {
	events   []string
	payloads map[string]string
}

func (f *fakeProducer) PublishMessage(key, value []byte) error {
	if f.payloads == nil {
		f.payloads = map[string]string{}
	}
	f.events = append(f.events, string(key))
	f.payloads[string(key)] = string(value)
	return nil
}

type userServiceFixture struct {
	svc       UserService
	users     *fakeUserRepo
	userRoles *fakeUserRoleRepo
	tokens    *fakeTokenRepo
	producer  *fakeProducer
}

func newUserServiceFixture() *userServiceFixture {
	f := &userServiceFixture{
		users: newFakeUserRepo(),
		userRoles: &fakeUserRoleRepo{
			roles: map[uint][]uint{},
		},
		tokens:   &fakeTokenRepo{},
		producer: &fakeProducer{},
	}
	roles := &fakeRoleRepo{byCode: map[string]*domain.Role{
		DefaultUserRole: {ID: 3, Code: DefaultUserRole, Status: domain.StatusActive},
		"ADMIN":         {ID: 1, Code: "ADMIN", Status: domain.StatusActive},
	}}
	auth := helper.SetupAuth("user-service-test-secret", time.Hour, time.Hour)
	f.svc = NewUserService(f.users, roles, f.userRoles, f.tokens, auth, f.producer, zap.NewNop())
	return f
}

func (f *userServiceFixture) register(t *testing.T, email, password string) *domain.User {
	t.Helper()
	err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: "Jane",
	})
	require.NoError(t, err)
	user, err := f.users.FindUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return user
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	f := newUserServiceFixture()

	user := f.register(t, "jane@example.com", "hunter22")

	assert.Equal(t, []uint{3}, f.userRoles.roles[user.ID])
	assert.Contains(t, f.producer.events, "user.registered")
}

func TestRegisterNormalizesEmail(t *testing.T) {
	f := newUserServiceFixture()

	user := f.register(t, "  Jane@Example.COM ", "hunter22")

	assert.Equal(t, "jane@example.com", user.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newUserServiceFixture()
	f.register(t, "jane@example.com", "hunter22")

	err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Email:       "jane@example.com",
		Password:    "hunter22",
		DisplayName: "Other Jane",
	})

	assert.EqualError(t, err, "email already exists")
}

func TestRegisterShortPassword(t *testing.T) {
	f := newUserServiceFixture()

	err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Email:       "jane@example.com",
		Password:    "abc",
		DisplayName: "Jane",
	})

	assert.Error(t, err)
}

func TestLoginIssuesTokens(t *testing.T) {
	f := newUserServiceFixture()
	user := f.register(t, "jane@example.com", "hunter22")

	resp, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "hunter22",
	})

	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.Refresh)
	require.Len(t, f.tokens.tokens, 1)
	require.NotNil(t, f.tokens.tokens[0].UserID)
	assert.Equal(t, user.ID, *f.tokens.tokens[0].UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newUserServiceFixture()
	f.register(t, "jane@example.com", "hunter22")

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong-password",
	})

	assert.EqualError(t, err, "invalid email or password")
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newUserServiceFixture()

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})

	assert.EqualError(t, err, "invalid email or password")
}

func TestLoginInactiveAccount(t *testing.T) {
	f := newUserServiceFixture()
	user := f.register(t, "jane@example.com", "hunter22")
	require.NoError(t, f.svc.SetStatus(context.Background(), user.ID, "suspended"))

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "hunter22",
	})

	assert.EqualError(t, err, "account is not active")
}

func TestRefreshReissuesTokens(t *testing.T) {
	f := newUserServiceFixture()
	f.register(t, "jane@example.com", "hunter22")
	first, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	second, err := f.svc.Refresh(context.Background(), first.Refresh)

	require.NoError(t, err)
	assert.NotEmpty(t, second.Token)
	assert.NotEmpty(t, second.Refresh)
}

func TestRefreshUnknownToken(t *testing.T) {
	f := newUserServiceFixture()

	_, err := f.svc.Refresh(context.Background(), "not-a-token")

	assert.EqualError(t, err, "invalid refresh token")
}

func TestSetRolesUnknownRole(t *testing.T) {
	f := newUserServiceFixture()
	user := f.register(t, "jane@example.com", "hunter22")

	err := f.svc.SetRoles(context.Background(), user.ID, dto.SetRolesRequest{
		Roles: []string{"ADMIN", "NOSUCHROLE"},
	})

	assert.ErrorIs(t, err, repository.ErrRoleNotFound)
}

func TestSetRolesNormalizesCodes(t *testing.T) {
	f := newUserServiceFixture()
	user := f.register(t, "jane@example.com", "hunter22")

	err := f.svc.SetRoles(context.Background(), user.ID, dto.SetRolesRequest{
		Roles: []string{" admin "},
	})

	require.NoError(t, err)
	assert.Equal(t, []uint{1}, f.userRoles.roles[user.ID])
	assert.Contains(t, f.producer.events, "role.assigned")
}

func TestDeleteRevokesRolesAndTokens(t *testing.T) {
	f := newUserServiceFixture()
	user := f.register(t, "jane@example.com", "hunter22")
	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), user.ID))

	assert.Empty(t, f.userRoles.roles[user.ID])
	assert.Empty(t, f.tokens.tokens)
	assert.Contains(t, f.producer.events, "user.deleted")
	_, err = f.users.FindUserById(context.Background(), user.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
