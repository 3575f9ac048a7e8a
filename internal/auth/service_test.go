package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/portfolio-site/internal/apperr"
	"github.com/ayush/portfolio-site/internal/models"
	"github.com/ayush/portfolio-site/internal/store"
)

func newTestService(t *testing.T, allowAdmin bool) (*Service, *store.MemoryStore) {
	t.Helper()
	users := store.NewMemoryStore()
	svc := NewService(users, NewSigner([]byte("test-secret"), time.Hour), NewMemoryRevocations(), Options{
		AllowAdminRegistration: allowAdmin,
		BcryptCost:             bcrypt.MinCost,
	})
	return svc, users
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t, true)

	sess, err := svc.Register(ctx, "alice", "secret1", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "alice", sess.User.Username)
	assert.Equal(t, models.RoleAdmin, sess.User.Role)

	stored, err := users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	login, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	user, err := svc.Validate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User, user)
}

func TestRegister_DefaultRoleAndValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)

	sess, err := svc.Register(ctx, "bob", "hunter22", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, sess.User.Role)

	_, err = svc.Register(ctx, "", "hunter22", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Register(ctx, "carol", "123", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Register(ctx, "carol", "hunter22", "root")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegister_DuplicateLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t, true)

	_, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other-pass", "admin")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "User already exists", apperr.Message(err))

	n, err := users.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRegister_AdminDisabled(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, err := svc.Register(context.Background(), "mallory", "secret1", "admin")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestLogin_GenericFailure(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	_, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, "alice", "wrong")
	_, noUser := svc.Login(ctx, "nobody", "secret1")

	for _, err := range []error{wrongPass, noUser} {
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.Equal(t, "Invalid username or password", apperr.Message(err))
	}
}

func TestValidate_DeletedUserLosesAccess(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t, true)

	sess, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)
	require.NoError(t, users.DeleteUser(ctx, sess.User.ID))

	_, err = svc.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestValidate_RejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t, true)

	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Validate(context.Background(), tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized, tok)
	}
}

func TestAuthorize_Roles(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)

	admin, err := svc.Register(ctx, "alice", "secret1", "admin")
	require.NoError(t, err)
	user, err := svc.Register(ctx, "bob", "secret2", "")
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, admin.Token, models.RoleAdmin)
	assert.NoError(t, err)

	got, err := svc.Authorize(ctx, user.Token, "")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	_, err = svc.Authorize(ctx, user.Token, models.RoleAdmin)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Authorize(ctx, "", models.RoleAdmin)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLogout_RevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)

	sess, err := svc.Register(ctx, "alice", "secret1", "")
	require.NoError(t, err)
	other, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))

	_, err = svc.Validate(ctx, sess.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Validate(ctx, other.Token)
	assert.NoError(t, err, "other sessions stay valid")
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t, true)

	created, err := svc.EnsureAdmin(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.False(t, created)

	n, err := users.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	sess, err := svc.Login(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, sess.User.Role)
}

func TestEnsureAdmin_SkipsWhenUsersExist(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	_, err := svc.Register(ctx, "bob", "secret2", "")
	require.NoError(t, err)

	created, err := svc.EnsureAdmin(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin", "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestListUsers_HidesHashes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	_, err := svc.Register(ctx, "alice", "secret1", "admin")
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.PublicUser{ID: users[0].ID, Username: "alice", Role: "admin"}, users[0])
}

func TestMemoryRevocations_Expire(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRevocations()
	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, m.Revoke(ctx, "old", now.Add(-time.Minute)))

	ok, _ := m.IsRevoked(ctx, "a")
	assert.True(t, ok)
	ok, _ = m.IsRevoked(ctx, "old")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = m.IsRevoked(ctx, "a")
	assert.False(t, ok)
}

func TestOpenAdminRegistration(t *testing.T) {
	ctx := context.Background()

	open, _ := newTestService(t, true)
	exposed, err := open.OpenAdminRegistration(ctx)
	require.NoError(t, err)
	assert.False(t, exposed, "no admin yet")

	_, err = open.Register(ctx, "bob", "secret2", "")
	require.NoError(t, err)
	exposed, err = open.OpenAdminRegistration(ctx)
	require.NoError(t, err)
	assert.False(t, exposed, "only plain users")

	_, err = open.Register(ctx, "alice", "secret1", "admin")
	require.NoError(t, err)
	exposed, err = open.OpenAdminRegistration(ctx)
	require.NoError(t, err)
	assert.True(t, exposed)

	closed, _ := newTestService(t, false)
	_, err = closed.EnsureAdmin(ctx, "admin", "password123")
	require.NoError(t, err)
	exposed, err = closed.OpenAdminRegistration(ctx)
	require.NoError(t, err)
	assert.False(t, exposed)
}
