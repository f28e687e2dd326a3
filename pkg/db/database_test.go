package db

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bookstore/pkg/logging"
)

func TestDialector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dsn      string
		driver   string
		embedded bool
	}{
		{name: "sqlite scheme", dsn: "sqlite://bookstore.db", driver: "sqlite", embedded: true},
		{name: "sqlite memory", dsn: ":memory:", driver: "sqlite", embedded: true},
		{name: "sqlite file uri", dsn: "file:test.db?cache=shared", driver: "sqlite", embedded: true},
		{name: "postgres url", dsn: "postgres://u:p@localhost:5432/books?sslmode=disable", driver: "postgres"},
		{name: "postgres kv", dsn: "host=localhost user=u dbname=books", driver: "postgres"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, embedded, err := Dialector(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.driver, d.Name())
			assert.Equal(t, tt.embedded, embedded)
		})
	}
}

func TestDialector_BadPostgresURL(t *testing.T) {
	t.Parallel()

	_, _, err := Dialector("postgres://%zz")
	require.Error(t, err)
}

func TestWithForeignKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", withForeignKeys(":memory:"))
	assert.Equal(t, "file:x.db?cache=shared&_pragma=foreign_keys(1)", withForeignKeys("file:x.db?cache=shared"))
	assert.Equal(t, "x.db?_pragma=foreign_keys(0)", withForeignKeys("x.db?_pragma=foreign_keys(0)"))
}

func TestOpen_SQLiteMemory(t *testing.T) {
	t.Parallel()

	db, err := Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestOpen_EmptyDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "")
	require.EqualError(t, err, "DATABASE_URL is empty")
}

func TestOpen_SQLiteLowerFoldsUnicode(t *testing.T) {
	t.Parallel()

	db, err := Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var lowered string
	require.NoError(t, db.Raw("SELECT LOWER(?)", "ÉMILE Zola").Scan(&lowered).Error)
	assert.Equal(t, "émile zola", lowered)

	var match bool
	require.NoError(t, db.Raw("SELECT LOWER(?) LIKE ?", "Émile", "%émile%").Scan(&match).Error)
	assert.True(t, match)
}

func TestOpen_LogsThroughContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&buf, "debug"))

	db, err := Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "gorm", rec["component"])
	assert.Contains(t, buf.String(), "no_such_table")
}
