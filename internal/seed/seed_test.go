package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/internal/repo/repotest"
)

func TestRunIsIdempotent(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, db))
	require.NoError(t, Run(ctx, db))

	var books, users int64
	require.NoError(t, db.Model(&models.Book{}).Count(&books).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, len(catalog()), books)
	assert.EqualValues(t, 2, users)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@bookstore.com").First(&admin).Error)
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.CheckPassword("admin123"))

	var demo models.User
	require.NoError(t, db.Where("email = ?", "demo@bookstore.com").First(&demo).Error)
	assert.False(t, demo.IsAdmin)
	assert.True(t, demo.CheckPassword("demo123"))
}

func TestRunKeepsExistingAccounts(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()

	existing := models.User{Username: "demo-owner", Email: "demo@bookstore.com"}
	require.NoError(t, existing.SetPassword("mine123"))
	require.NoError(t, db.Create(&existing).Error)

	require.NoError(t, Run(ctx, db))

	var demo models.User
	require.NoError(t, db.Where("email = ?", "demo@bookstore.com").First(&demo).Error)
	assert.Equal(t, "demo-owner", demo.Username)
	assert.True(t, demo.CheckPassword("mine123"))
}

func TestRunSkipsWhenCatalogHasBooks(t *testing.T) {
	db := repotest.NewDB(t)
	require.NoError(t, db.Create(&models.Book{Title: "Mine", Author: "Me"}).Error)

	require.NoError(t, Run(context.Background(), db))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
