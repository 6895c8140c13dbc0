package services

import (
	"context"
	"testing"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type accountEventFixture struct {
	handler       *AccountEventHandler
	userRoles     *fakeUserRoleRepo
	businessRoles *fakeBusinessRoleRepo
	tokens        *fakeTokenRepo
}

func newAccountEventFixture() *accountEventFixture {
	f := &accountEventFixture{
		userRoles:     &fakeUserRoleRepo{roles: map[uint][]uint{}},
		businessRoles: &fakeBusinessRoleRepo{roles: map[uint][]uint{}},
		tokens:        &fakeTokenRepo{},
	}
	f.handler = NewAccountEventHandler(f.userRoles, f.businessRoles, f.tokens, zap.NewNop())
	return f
}

func TestAccountEventUserDeleted(t *testing.T) {
	f := newAccountEventFixture()
	f.userRoles.roles[5] = []uint{1, 2}
	userID := uint(5)
	f.tokens.tokens = append(f.tokens.tokens, &domain.AuthToken{ID: "t1", UserID: &userID})

	err := f.handler.HandleMessage(`{"event":"user.deleted","user_id":5}`)

	require.NoError(t, err)
	assert.Empty(t, f.userRoles.roles[5])
	assert.Empty(t, f.tokens.tokens)
}

func TestAccountEventBusinessDeleted(t *testing.T) {
	f := newAccountEventFixture()
	f.businessRoles.roles[7] = []uint{3}
	businessID := uint(7)
	f.tokens.tokens = append(f.tokens.tokens, &domain.AuthToken{ID: "t1", BusinessID: &businessID})

	err := f.handler.HandleMessage(`{"event":"business.deleted","business_id":7}`)

	require.NoError(t, err)
	assert.Empty(t, f.businessRoles.roles[7])
	assert.Empty(t, f.tokens.tokens)
}

func TestAccountEventMissingID(t *testing.T) {
	f := newAccountEventFixture()

	assert.Error(t, f.handler.HandleMessage(`{"event":"user.deleted"}`))
	assert.Error(t, f.handler.HandleMessage(`{"event":"business.deleted"}`))
}

func TestAccountEventMalformedJSON(t *testing.T) {
	f := newAccountEventFixture()

	assert.Error(t, f.handler.HandleMessage(`not json`))
}

func TestAccountEventUnknownIgnored(t *testing.T) {
	f := newAccountEventFixture()
	f.userRoles.roles[5] = []uint{1}

	err := f.handler.HandleMessage(`{"event":"user.updated","user_id":5}`)

	require.NoError(t, err)
	assert.Equal(t, []uint{1}, f.userRoles.roles[5])
}

// The deletion payload the user service publishes must be the envelope the
// consumer handler dispatches on, or revocation never fires for our own
// events.
func TestDeletedUserEventRoundTrip(t *testing.T) {
	f := newUserServiceFixture()
	user := f.register(t, "jane@example.com", "hunter22")
	require.NoError(t, f.svc.Delete(context.Background(), user.ID))

	payload := f.producer.payloads["user.deleted"]
	require.NotEmpty(t, payload)

	// Re-seed an assignment, then replay the captured payload through the
	// consumer handler: it must revoke again.
	f.userRoles.roles[user.ID] = []uint{3}
	handler := NewAccountEventHandler(f.userRoles, &fakeBusinessRoleRepo{}, f.tokens, zap.NewNop())
	require.NoError(t, handler.HandleMessage(payload))
	assert.Empty(t, f.userRoles.roles[user.ID])
}

// Role assignment events carry the envelope too, so downstream consumers can
// dispatch uniformly.
func TestRoleAssignedEventCarriesEnvelope(t *testing.T) {
	f := newUserServiceFixture()
	user := f.register(t, "jane@example.com", "hunter22")

	require.NoError(t, f.svc.SetRoles(context.Background(), user.ID, dto.SetRolesRequest{
		Roles: []string{"ADMIN"},
	}))

	assert.Contains(t, f.producer.payloads["role.assigned"], `"event":"role.assigned"`)
}
