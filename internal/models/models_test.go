package models

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database keeps every pooled connection on the same
	// data while staying isolated per test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(RegisterModels()...))
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username, email string) *User {
	t.Helper()
	u, err := NewUser(context.Background(), gdb, username, email, "hashed-password")
	require.NoError(t, err)
	return u
}

func seedFolktale(t *testing.T, gdb *gorm.DB, title string) *Folktale {
	t.Helper()
	f, err := NewFolktale(context.Background(), gdb, title,
		"Long ago in the hills of Mustang...", "Himalayas", "Legend", "All Ages",
		"https://assets.local/folktales/"+strings.ToLower(title)+".jpg")
	require.NoError(t, err)
	return f
}
