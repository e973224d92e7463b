package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-connect-api/internal/models"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail    *models.User
	userByID       *models.User
	findByEmailErr error
	findByIDErr    error
	createErr      error
	created        []*models.User
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "new-user"
	m.created = append(m.created, user)
	return nil
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, NewValidator(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "campus-connect"})
}

func TestAuthServiceRegister(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newTestAuthService(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{Name: "  Asha  ", Email: "Asha@MMMUT.ac.in ", Password: "secret1"})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	created := repo.created[0]
	assert.Equal(t, "asha@mmmut.ac.in", created.Email)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret1")))
	cost, err := bcrypt.Cost([]byte(created.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)

	assert.Equal(t, "Welcome to MMMUT, **Asha**! Your account is ready.", res.Answer)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "new-user", res.User.ID)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Asha", Email: "not-an-email", Password: "secret1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "Please enter a valid email address.", appErr.Message)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Name: "Asha", Email: "asha@mmmut.ac.in", Password: "123"})
	require.Error(t, err)
	assert.Equal(t, "password must be at least 6 characters.", appErrors.FromError(err).Message)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	conflict := appErrors.Clone(appErrors.ErrConflict, "An account with this email already exists. Try logging in.")
	svc := newTestAuthService(&mockAuthRepo{createErr: conflict})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Asha", Email: "asha@mmmut.ac.in", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, conflict.Message, appErrors.FromError(err).Message)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "123", Name: "Admin", Email: "admin@mmmut.ac.in", PasswordHash: string(password), Role: models.RoleAdmin}}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "ADMIN@mmmut.ac.in", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
	assert.Contains(t, res.Answer, "Welcome back, **Admin**")

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "123", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "campus-connect", claims.Issuer)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "123", Email: "user@mmmut.ac.in", PasswordHash: string(password)}}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@mmmut.ac.in", Password: "wrong"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	repo.userByEmail = nil
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@mmmut.ac.in", Password: "password"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	repo.findByEmailErr = errors.New("connection reset")
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "user@mmmut.ac.in", Password: "password"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceMe(t *testing.T) {
	repo := &mockAuthRepo{userByID: &models.User{ID: "u1", Name: "Student", Email: "student@mmmut.ac.in", Role: models.RoleUser}}
	svc := newTestAuthService(repo)

	info, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Student", info.Name)

	repo.userByID = nil
	_, err = svc.Me(context.Background(), "gone")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.generateAccessToken(&models.User{ID: "u1", Role: models.RoleUser})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTokenExpired))
}

func TestValidateTokenRejectsForeignSignatures(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "other"})
	token, err := other.generateAccessToken(&models.User{ID: "u1"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.True(t, errors.Is(err, appErrors.ErrTokenInvalid))

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: "u1"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(raw)
	assert.True(t, errors.Is(err, appErrors.ErrTokenInvalid))

	_, err = svc.ValidateToken("garbage")
	assert.True(t, errors.Is(err, appErrors.ErrTokenInvalid))
}
