// Package repotest opens throwaway migrated databases for tests.
package repotest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bookstore/internal/repo"
	"github.com/Skotchmaster/bookstore/pkg/db"
)

var seq atomic.Int64

// NewDB returns an in-memory sqlite database with the schema applied. Each
// call gets its own named shared-cache database so parallel tests stay isolated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:bookstore_test_%d?mode=memory&cache=shared", seq.Add(1))
	gdb, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
