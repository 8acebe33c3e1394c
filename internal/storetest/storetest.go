// Package storetest opens throwaway migrated databases for tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/fashion_store/internal/models"
	"github.com/Skotchmaster/fashion_store/pkg/db"
)

// Open returns a migrated in-memory sqlite database closed at test cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, gdb.AutoMigrate(models.All()...))
	return gdb
}

func SeedProduct(t testing.TB, gdb *gorm.DB, name, category string, price float64, stock int) models.Product {
	t.Helper()

	p := models.Product{
		Name:        name,
		Description: name + " description",
		Price:       price,
		ImageURL:    "https://img.example/" + name + ".png",
		Stock:       stock,
		Category:    category,
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func SeedUser(t testing.TB, gdb *gorm.DB, email string, isAdmin bool) models.User {
	t.Helper()

	u := models.User{Email: email, PasswordHash: "x", IsAdmin: isAdmin}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}
