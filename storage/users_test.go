package storage

import (
	"testing"

	"ctiscope/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserStore(t *testing.T) *UserStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewUserStore(t.TempDir(), "admin", string(hash), bcrypt.MinCost)
}

func TestUserStoreCreateAndAuthenticate(t *testing.T) {
	store := newTestUserStore(t)

	user, err := store.Create("alice", "password1", core.RoleAnalyst)
	require.NoError(t, err)
	assert.Equal(t, "1", user.ID)
	assert.Equal(t, core.RoleAnalyst, user.Role)

	got, err := store.Authenticate("alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = store.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = store.Authenticate("nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserStoreStaticAdmin(t *testing.T) {
	store := newTestUserStore(t)

	admin, err := store.Authenticate("admin", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, core.AdminUserID, admin.ID)
	assert.True(t, admin.IsAdmin())

	_, err = store.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := store.GetByID(core.AdminUserID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)
}

func TestUserStoreCreateValidation(t *testing.T) {
	store := newTestUserStore(t)

	_, err := store.Create("ab", "password1", core.RoleAnalyst)
	assert.ErrorContains(t, err, "username must be at least")

	_, err = store.Create("alice", "short", core.RoleAnalyst)
	assert.ErrorContains(t, err, "password must be at least")

	_, err = store.Create("admin", "password1", core.RoleAnalyst)
	assert.ErrorIs(t, err, ErrReservedUsername)

	_, err = store.Create("alice", "password1", core.RoleAnalyst)
	require.NoError(t, err)
	_, err = store.Create("alice", "password2", core.RoleAnalyst)
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// Unknown roles collapse to analyst
	user, err := store.Create("bob", "password1", "superuser")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAnalyst, user.Role)
}

func TestUserStoreIDsIncrement(t *testing.T) {
	store := newTestUserStore(t)

	a, err := store.Create("alice", "password1", core.RoleAnalyst)
	require.NoError(t, err)
	b, err := store.Create("bob", "password1", core.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "1", a.ID)
	assert.Equal(t, "2", b.ID)

	require.NoError(t, store.Delete(a.ID))
	c, err := store.Create("carol", "password1", core.RoleAnalyst)
	require.NoError(t, err)
	assert.Equal(t, "3", c.ID, "ids keep incrementing past deletions")
}

func TestUserStoreSetPassword(t *testing.T) {
	store := newTestUserStore(t)

	user, err := store.Create("alice", "password1", core.RoleAnalyst)
	require.NoError(t, err)

	require.NoError(t, store.SetPassword(user.ID, "password2"))

	_, err = store.Authenticate("alice", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = store.Authenticate("alice", "password2")
	assert.NoError(t, err)

	assert.ErrorIs(t, store.SetPassword("99", "password2"), ErrUserNotFound)
	assert.ErrorContains(t, store.SetPassword(user.ID, "short"), "password must be at least")
}

func TestUserStoreList(t *testing.T) {
	store := newTestUserStore(t)
	_, err := store.Create("alice", "password1", core.RoleAnalyst)
	require.NoError(t, err)
	_, err = store.Create("bob", "password1", core.RoleAdmin)
	require.NoError(t, err)

	users, err := store.List()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, core.AdminUserID, users[0].ID)
	assert.Equal(t, "alice", users[1].Username)
	assert.Equal(t, "bob", users[2].Username)
}
