package models

import (
	"context"
	"testing"

	"github.com/legendsansar/legendsansar/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserDuplicateEmail(t *testing.T) {
	gdb := testDB(t)
	ctx := context.Background()

	seedUser(t, gdb, "sita", "sita@example.com")

	_, err := NewUser(ctx, gdb, "othersita", "sita@example.com", "hashed")
	require.Error(t, err)
	appErr, ok := err.(*utils.CustomError)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, "User already exists", appErr.Message)
}

func TestNewUserNormalizesEmail(t *testing.T) {
	gdb := testDB(t)

	u, err := NewUser(context.Background(), gdb, "ram", "  Ram@Example.COM ", "hashed")
	require.NoError(t, err)
	assert.Equal(t, "ram@example.com", u.Email)
	assert.False(t, u.IsVerified)
	assert.False(t, u.IsAdmin)
}

func TestUserByNotFound(t *testing.T) {
	gdb := testDB(t)

	_, err := UserBy(context.Background(), gdb, "email = ?", "nobody@example.com")
	require.Error(t, err)
	appErr, ok := err.(*utils.CustomError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
	assert.Equal(t, "User not found", appErr.Message)
}

func TestCachedUserByIDWithoutRedis(t *testing.T) {
	gdb := testDB(t)
	u := seedUser(t, gdb, "gita", "gita@example.com")

	got, err := CachedUserByID(context.Background(), nil, gdb, u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "gita", got.Username)
}

func TestSaveUserUsernameConflict(t *testing.T) {
	gdb := testDB(t)
	ctx := context.Background()

	seedUser(t, gdb, "hari", "hari@example.com")
	other := seedUser(t, gdb, "shyam", "shyam@example.com")

	other.Username = "hari"
	err := SaveUser(ctx, nil, gdb, other)
	require.Error(t, err)
	appErr, ok := err.(*utils.CustomError)
	require.True(t, ok)
	assert.Equal(t, "Username already taken", appErr.Message)
}

func TestSaveUserMarksVerified(t *testing.T) {
	gdb := testDB(t)
	ctx := context.Background()

	u := seedUser(t, gdb, "maya", "maya@example.com")
	u.IsVerified = true
	require.NoError(t, SaveUser(ctx, nil, gdb, u))

	got, err := UserBy(ctx, gdb, "id = ?", u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
}
