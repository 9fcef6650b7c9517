package usersrv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siivi-app/siivi-server/pkg/device"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/iam/user"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// Fakes
// ============================================================================

type fakeUserRepo struct {
	byEmail map[string]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]user.User)}
}

func (f *fakeUserRepo) Insert(ctx context.Context, u user.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return user.ErrUserAlreadyExists()
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	return &u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u user.User) error {
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id kernel.UserID) error {
	for email, u := range f.byEmail {
		if u.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return user.ErrUserNotFound()
}

// fakePasswords marks hashes so VerifyPassword can check without bcrypt.
type fakePasswords struct{}

func (fakePasswords) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakePasswords) VerifyPassword(hashedPassword, password string) bool {
	return hashedPassword == "hashed:"+password
}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(userID kernel.UserID, email string) (string, error) {
	return "token-for-" + userID.String(), nil
}

func (fakeTokens) ValidateAccessToken(token string) (*user.TokenClaims, error) {
	return nil, nil
}

type fakeDeviceGate struct {
	allow      bool
	increments int
}

func (f *fakeDeviceGate) CanCreateAccount(ctx context.Context, deviceID kernel.DeviceID) (bool, error) {
	return f.allow, nil
}

func (f *fakeDeviceGate) IncrementAccountCount(ctx context.Context, deviceID kernel.DeviceID) (bool, error) {
	if !f.allow {
		return false, nil
	}
	f.increments++
	return true, nil
}

func newTestService() (*UserService, *fakeUserRepo, *fakeDeviceGate) {
	repo := newFakeUserRepo()
	gate := &fakeDeviceGate{allow: true}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewUserServiceWithNow(repo, fakePasswords{}, fakeTokens{}, gate, func() time.Time { return now })
	return svc, repo, gate
}

func registerReq() user.RegisterRequest {
	return user.RegisterRequest{
		Email:       "Ada@Example.com",
		Password:    "correct horse",
		DisplayName: "Ada",
		DeviceID:    "dev-1",
	}
}

// ============================================================================
// Register
// ============================================================================

func TestRegisterNormalizesEmailAndAdvancesDeviceCounter(t *testing.T) {
	svc, repo, gate := newTestService()

	resp, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, 1, gate.increments)

	stored, ok := repo.byEmail["ada@example.com"]
	require.True(t, ok)
	assert.Equal(t, kernel.NewDeviceID("dev-1"), stored.DeviceID)
	assert.Equal(t, "hashed:correct horse", stored.PasswordHash)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, repo, _ := newTestService()

	req := registerReq()
	req.Password = "short"
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, user.CodeWeakPassword))
	assert.Empty(t, repo.byEmail)
}

func TestRegisterBlockedByDeviceLimit(t *testing.T) {
	svc, repo, gate := newTestService()
	gate.allow = false

	_, err := svc.Register(context.Background(), registerReq())
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, device.CodeAccountLimitReached))
	assert.Empty(t, repo.byEmail, "no account row created")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	// Same address with different casing still collides.
	req := registerReq()
	req.Email = "ADA@example.COM"
	_, err = svc.Register(ctx, req)
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, user.CodeUserAlreadyExists))
}

// ============================================================================
// Login
// ============================================================================

func TestLoginSucceeds(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, user.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)
}

func TestLoginFailsUniformly(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	// Unknown email and wrong password answer with the same error.
	_, unknownErr := svc.Login(ctx, user.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, unknownErr)
	assert.True(t, errx.IsCode(unknownErr, user.CodeInvalidCredentials))

	_, wrongErr := svc.Login(ctx, user.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	require.Error(t, wrongErr)
	assert.True(t, errx.IsCode(wrongErr, user.CodeInvalidCredentials))
}

// ============================================================================
// Profile
// ============================================================================

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	newName := "Ada Lovelace"
	updated, err := svc.UpdateProfile(ctx, registered.User.ID, user.UpdateProfileRequest{DisplayName: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.DisplayName)

	fetched, err := svc.Get(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", fetched.DisplayName)
}
