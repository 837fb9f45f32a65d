package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gifshop/internal/lib/jwt"
	"github.com/magabrotheeeer/gifshop/internal/lib/password"
	"github.com/magabrotheeeer/gifshop/internal/models"
	"github.com/magabrotheeeer/gifshop/internal/services/auth"
	"github.com/magabrotheeeer/gifshop/internal/storage"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) SetUserActive(ctx context.Context, uid string, active bool) error {
	return m.Called(ctx, uid, active).Error(0)
}

func (m *UserRepoMock) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(username, role, userUID string) (string, error) {
	args := m.Called(username, role, userUID)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*jwt.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Claims), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *UserRepoMock)
		wantUID    string
		wantErr    error
	}{
		{
			name: "success",
			setupMocks: func(r *UserRepoMock) {
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Username == "alice" &&
						u.Role == models.RoleUser &&
						u.IsActive &&
						password.CompareHash(u.PasswordHash, "secret") == nil
				})).Return("uid-1", nil).Once()
			},
			wantUID: "uid-1",
		},
		{
			name: "duplicate username",
			setupMocks: func(r *UserRepoMock) {
				r.On("CreateUser", mock.Anything, mock.Anything).Return("", storage.ErrAlreadyExists).Once()
			},
			wantErr: storage.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)

			svc := auth.New(repo, new(JwtMakerMock), newNoopLogger())
			uid, err := svc.Register(context.Background(), "alice@example.com", "alice", "secret")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUID, uid)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := password.GetHash("secret")
	require.NoError(t, err)

	active := &models.User{UUID: "uid-1", Username: "alice", Role: models.RoleUser, PasswordHash: hash, IsActive: true}
	inactive := &models.User{UUID: "uid-2", Username: "bob", Role: models.RoleUser, PasswordHash: hash}

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
	}{
		{
			name:     "success",
			username: "alice",
			password: "secret",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").Return(active, nil).Once()
				j.On("GenerateToken", "alice", models.RoleUser, "uid-1").Return("token", nil).Once()
			},
			wantToken: "token",
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: "secret",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "nope",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").Return(active, nil).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			username: "bob",
			password: "secret",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "bob").Return(inactive, nil).Once()
			},
			wantErr: auth.ErrInactiveUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, maker := new(UserRepoMock), new(JwtMakerMock)
			tt.setupMocks(repo, maker)

			svc := auth.New(repo, maker, newNoopLogger())
			token, user, err := svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				maker.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, "uid-1", user.UUID)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		setupMocks func(r *UserRepoMock, m *JwtMakerMock)
		wantUser   *models.User
		wantErr    error
	}{
		{
			name:  "active admin",
			token: "good",
			setupMocks: func(r *UserRepoMock, m *JwtMakerMock) {
				m.On("ParseToken", "good").Return(&jwt.Claims{Username: "admin", Role: models.RoleAdmin, UserUID: "uid-9"}, nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-9").
					Return(&models.User{UUID: "uid-9", Username: "admin", Role: models.RoleAdmin, IsActive: true}, nil).Once()
			},
			wantUser: &models.User{UUID: "uid-9", Username: "admin", Role: models.RoleAdmin, IsActive: true},
		},
		{
			name:  "role is taken from the store",
			token: "stale",
			setupMocks: func(r *UserRepoMock, m *JwtMakerMock) {
				m.On("ParseToken", "stale").Return(&jwt.Claims{Username: "bob", Role: models.RoleAdmin, UserUID: "uid-bob"}, nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-bob").
					Return(&models.User{UUID: "uid-bob", Username: "bob", Role: models.RoleUser, IsActive: true}, nil).Once()
			},
			wantUser: &models.User{UUID: "uid-bob", Username: "bob", Role: models.RoleUser, IsActive: true},
		},
		{
			name:  "deactivated user",
			token: "bob",
			setupMocks: func(r *UserRepoMock, m *JwtMakerMock) {
				m.On("ParseToken", "bob").Return(&jwt.Claims{Username: "bob", Role: models.RoleUser, UserUID: "uid-bob"}, nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-bob").
					Return(&models.User{UUID: "uid-bob", Username: "bob", Role: models.RoleUser, IsActive: false}, nil).Once()
			},
			wantErr: auth.ErrInactiveUser,
		},
		{
			name:  "deleted user",
			token: "ghost",
			setupMocks: func(r *UserRepoMock, m *JwtMakerMock) {
				m.On("ParseToken", "ghost").Return(&jwt.Claims{Username: "ghost", Role: models.RoleUser, UserUID: "uid-ghost"}, nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-ghost").Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:  "bad token",
			token: "bad",
			setupMocks: func(_ *UserRepoMock, m *JwtMakerMock) {
				m.On("ParseToken", "bad").Return(nil, jwt.ErrInvalidToken).Once()
			},
			wantErr: jwt.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, maker := new(UserRepoMock), new(JwtMakerMock)
			tt.setupMocks(repo, maker)

			user, err := auth.New(repo, maker, newNoopLogger()).ValidateToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUser, user)
			}
			repo.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestService_SetActive(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("SetUserActive", mock.Anything, "uid-bob", false).Return(nil).Once()
	repo.On("GetUserByUID", mock.Anything, "uid-bob").
		Return(&models.User{UUID: "uid-bob", Username: "bob", IsActive: false}, nil).Once()
	repo.On("SetUserActive", mock.Anything, "ghost", true).Return(storage.ErrNotFound).Once()

	svc := auth.New(repo, new(JwtMakerMock), newNoopLogger())

	user, err := svc.SetActive(context.Background(), "uid-bob", false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	_, err = svc.SetActive(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestService_DeleteUser(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("DeleteUser", mock.Anything, "uid-1").Return(nil).Once()
	repo.On("DeleteUser", mock.Anything, "ghost").Return(storage.ErrNotFound).Once()

	svc := auth.New(repo, new(JwtMakerMock), newNoopLogger())
	require.NoError(t, svc.DeleteUser(context.Background(), "uid-1"))
	assert.True(t, errors.Is(svc.DeleteUser(context.Background(), "ghost"), storage.ErrNotFound))
}
