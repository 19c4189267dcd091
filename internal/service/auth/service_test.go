package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberhq/booking-api/internal/model"
	"github.com/barberhq/booking-api/pkg/auth"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.users == nil {
		f.users = make(map[uuid.UUID]*model.User)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperrors.NewNotFound("user", errors.New("no rows"))
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperrors.NewNotFound("user", errors.New("no rows"))
}

func newAuthService() (*Service, *fakeUserRepo) {
	users := &fakeUserRepo{}
	jwtSvc := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", ExpiryHours: 1})
	return NewService(users, jwtSvc), users
}

func registerRequest() *model.RegisterRequest {
	return &model.RegisterRequest{
		Email:    "client@example.com",
		Name:     "A Client",
		Password: "s3cret-pass",
		Role:     "client",
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, users := newAuthService()

	resp, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, model.RoleClient, resp.User.Role)

	stored, err := users.GetByEmail(context.Background(), "client@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash, "passwords must be hashed")
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthService()

	req := registerRequest()
	req.Role = "admin"

	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &model.LoginRequest{Email: "client@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "client@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}
