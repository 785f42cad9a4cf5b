package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminID = 999

func TestAccountService_ListAccounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultSecurityPolicy())
	for i := 0; i < 3; i++ {
		f.createApproved(t, fmt.Sprintf("user%d", i))
	}

	out, err := f.admin.ListAccounts(ctx, pagination.New(1, 2))
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, int64(3), out.Meta.Total)
	assert.Equal(t, 2, out.Meta.TotalPages)
	assert.True(t, out.Meta.HasNext)
	assert.Equal(t, "user0", out.Items[0].Username)

	out, err = f.admin.ListAccounts(ctx, pagination.New(2, 2))
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, "user2", out.Items[0].Username)
	assert.False(t, out.Meta.HasNext)
	assert.True(t, out.Meta.HasPrev)
}

func TestAccountService_GetAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultSecurityPolicy())
	account := f.createApproved(t, "alice")

	detail, err := f.admin.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.Username)
	assert.True(t, detail.Approved)

	_, err = f.admin.GetAccount(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountService_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("disable and enable", func(t *testing.T) {
		f := newFixture(t, domain.DefaultSecurityPolicy())
		account := f.createApproved(t, "alice")
		_, err := f.login("alice", testPassword)
		require.NoError(t, err)

		detail, err := f.admin.Disable(ctx, account.ID, testAdminID)
		require.NoError(t, err)
		assert.False(t, detail.Enabled)
		assert.Equal(t, 0, f.refreshTokens.active(account.ID))

		detail, err = f.admin.Enable(ctx, account.ID, testAdminID)
		require.NoError(t, err)
		assert.True(t, detail.Enabled)

		_, err = f.login("alice", testPassword)
		assert.NoError(t, err)
	})

	t.Run("unlock clears the administrative and temporary locks", func(t *testing.T) {
		f := newFixture(t, domain.DefaultSecurityPolicy())
		account := f.createApproved(t, "alice")
		for i := 0; i < 5; i++ {
			_, _ = f.login("alice", "Wrong@123")
		}
		_, err := f.admin.Lock(ctx, account.ID, testAdminID)
		require.NoError(t, err)

		detail, err := f.admin.Unlock(ctx, account.ID, testAdminID)
		require.NoError(t, err)
		assert.False(t, detail.AccountLocked)
		assert.Equal(t, 0, detail.FailedLoginAttempts)
		assert.Nil(t, detail.LockedUntil)

		_, err = f.login("alice", testPassword)
		assert.NoError(t, err)
	})

	t.Run("approve", func(t *testing.T) {
		f := newFixture(t, domain.DefaultSecurityPolicy())
		resp, err := f.auth.SignUp(ctx, &SignUpInput{Username: "alice", Email: "alice@x.com", Password: testPassword})
		require.NoError(t, err)

		detail, err := f.admin.Approve(ctx, resp.ID, testAdminID)
		require.NoError(t, err)
		assert.True(t, detail.Approved)

		_, err = f.login("alice", testPassword)
		assert.NoError(t, err)
	})

	t.Run("soft delete", func(t *testing.T) {
		f := newFixture(t, domain.DefaultSecurityPolicy())
		account := f.createApproved(t, "alice")

		detail, err := f.admin.SoftDelete(ctx, account.ID, testAdminID, "root")
		require.NoError(t, err)
		assert.True(t, detail.Deleted)
		assert.False(t, detail.Enabled)
		assert.Equal(t, "root", detail.DeletedBy)
		require.NotNil(t, detail.DeletedAt)
		assert.True(t, detail.DeletedAt.Equal(f.clock.Now()))
	})

	t.Run("admin cannot lock out own account", func(t *testing.T) {
		f := newFixture(t, domain.DefaultSecurityPolicy())
		account := f.createApproved(t, "alice")

		_, err := f.admin.Disable(ctx, account.ID, account.ID)
		assert.ErrorIs(t, err, domain.ErrCannotModifySelf)
		_, err = f.admin.Lock(ctx, account.ID, account.ID)
		assert.ErrorIs(t, err, domain.ErrCannotModifySelf)
		_, err = f.admin.SoftDelete(ctx, account.ID, account.ID, "alice")
		assert.ErrorIs(t, err, domain.ErrCannotModifySelf)
	})

	t.Run("missing account", func(t *testing.T) {
		f := newFixture(t, domain.DefaultSecurityPolicy())

		_, err := f.admin.Enable(ctx, 404, testAdminID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAccountService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultSecurityPolicy())
	account := f.createApproved(t, "alice")
	session, err := f.login("alice", testPassword)
	require.NoError(t, err)

	err = f.admin.ChangePassword(ctx, account.ID, &ChangePasswordInput{CurrentPassword: "Wrong@123", NewPassword: "NewSecret@456"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = f.admin.ChangePassword(ctx, account.ID, &ChangePasswordInput{CurrentPassword: testPassword, NewPassword: "nouppercase1@"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	err = f.admin.ChangePassword(ctx, account.ID, &ChangePasswordInput{CurrentPassword: testPassword, NewPassword: testPassword})
	assert.ErrorIs(t, err, domain.ErrPasswordUnchanged)

	err = f.admin.ChangePassword(ctx, account.ID, &ChangePasswordInput{CurrentPassword: testPassword, NewPassword: "Passw0rd!" + strings.Repeat("a", 70)})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)
	assert.Equal(t, 1, f.refreshTokens.active(account.ID), "rejected changes keep the session")

	f.clock.Advance(time.Hour)
	err = f.admin.ChangePassword(ctx, account.ID, &ChangePasswordInput{CurrentPassword: testPassword, NewPassword: "NewSecret@456"})
	require.NoError(t, err)

	stored := f.accounts.get(t, account.ID)
	assert.True(t, stored.PasswordChangedAt.Equal(f.clock.Now()))
	assert.Equal(t, 0, f.refreshTokens.active(account.ID))

	_, err = f.auth.RefreshToken(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)

	_, err = f.login("alice", "NewSecret@456")
	assert.NoError(t, err)
}
