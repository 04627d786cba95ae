package services

import (
	"context"
	"testing"
	"time"

	"stormbringer/internal/users/dto"
	"stormbringer/internal/users/models"
	"stormbringer/pkg/docstore"
	"stormbringer/pkg/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(admins ...string) (*Service, *TokenService, *middleware.Authorizer) {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	authorizer := middleware.NewMemoryAuthorizer()
	return NewService(NewRepository(docstore.NewMemoryStore()), tokens, authorizer, admins), tokens, authorizer
}

func TestRegister(t *testing.T) {
	svc, _, authorizer := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, dto.RegisterRequest{Username: "elric", Password: "stormbringer"})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "elric", user.DisplayName)
	assert.Equal(t, []string{middleware.RolePlayer}, user.Roles)
	assert.NotEqual(t, "stormbringer", user.PasswordHash)

	ok, err := authorizer.Allowed(&middleware.AuthenticatedUser{UserID: user.ID}, middleware.ResourceCampaigns, middleware.ActionWrite)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = authorizer.Allowed(&middleware.AuthenticatedUser{UserID: user.ID}, middleware.ResourceCatalog, middleware.ActionWrite)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegister_Admin(t *testing.T) {
	svc, _, authorizer := newTestService("Arioch")

	user, err := svc.Register(context.Background(), dto.RegisterRequest{Username: "arioch", Password: "chaos-lord", DisplayName: "Arioch"})
	require.NoError(t, err)
	assert.Contains(t, user.Roles, middleware.RoleAdmin)

	ok, err := authorizer.Allowed(&middleware.AuthenticatedUser{UserID: user.ID}, middleware.ResourceCatalog, middleware.ActionWrite)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "Moonglum", Password: "password1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "MOONGLUM", Password: "password2"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegister_Invalid(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"short username", dto.RegisterRequest{Username: "ab", Password: "password1"}},
		{"spaces", dto.RegisterRequest{Username: "two words", Password: "password1"}},
		{"short password", dto.RegisterRequest{Username: "yyrkoon", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, tokens, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{Username: "Cymoril", Password: "melnibone!", DisplayName: "Cymoril"})
	require.NoError(t, err)

	session, err := svc.Login(ctx, dto.LoginRequest{Username: "cymoril", Password: "melnibone!"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, session.User.ID)
	require.NotNil(t, session.User.LastLogin)

	user, err := tokens.ValidateJWT(session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.UserID)
	assert.Equal(t, "Cymoril", user.UserName)
	assert.Equal(t, []string{middleware.RolePlayer}, user.Roles)
	assert.NotEmpty(t, user.SessionID)

	again, err := svc.Login(ctx, dto.LoginRequest{Username: "Cymoril", Password: "melnibone!"})
	require.NoError(t, err)
	second, err := tokens.ValidateJWT(again.Token)
	require.NoError(t, err)
	assert.NotEqual(t, user.SessionID, second.SessionID)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "cymoril", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, dto.RegisterRequest{Username: "rackhir", Password: "red-archer"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "rackhir", me.Username)

	_, err = svc.Me(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

var sampleUser = &models.User{ID: "u1", DisplayName: "Sample", Roles: []string{middleware.RolePlayer}}

func TestValidateJWT_Rejects(t *testing.T) {
	tokens := NewTokenService([]byte("secret-a"), time.Hour)
	other := NewTokenService([]byte("secret-b"), time.Hour)

	issued, _, err := other.Issue(sampleUser)
	require.NoError(t, err)
	_, err = tokens.ValidateJWT(issued)
	assert.Error(t, err, "foreign signature")

	expired := NewTokenService([]byte("secret-a"), time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(sampleUser)
	require.NoError(t, err)
	_, err = tokens.ValidateJWT(old)
	assert.Error(t, err, "expired")

	_, err = tokens.ValidateJWT("not-a-token")
	assert.Error(t, err)
}
