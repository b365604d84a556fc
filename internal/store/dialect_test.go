package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewritePlaceholders(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		query   string
		want    string
	}{
		{"sqlite unchanged", "sqlite", "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"mysql unchanged", "mysql", "DELETE FROM t WHERE id = ?", "DELETE FROM t WHERE id = ?"},
		{"postgres numbered", "postgres", "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"postgres no params", "postgres", "SELECT COUNT(*) FROM t", "SELECT COUNT(*) FROM t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DialectFor(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.RewriteQuery(tt.query))
		})
	}
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = DialectFor("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, "pgx", d.DriverName())
	assert.False(t, d.SupportsLastInsertID())

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}

func TestUpsert(t *testing.T) {
	cols := []string{"value"}

	sqlite, _ := DialectFor("sqlite")
	assert.Equal(t,
		"INSERT INTO meta (name, value) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET value = excluded.value",
		sqlite.Upsert("meta", "name", cols))

	mysql, _ := DialectFor("mysql")
	assert.Equal(t,
		"INSERT INTO meta (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)",
		mysql.Upsert("meta", "name", cols))
}

func TestDSN(t *testing.T) {
	sqlite, _ := DialectFor("sqlite")
	dsn, err := sqlite.DSN(DBConfig{Path: "/tmp/x.db"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db?_foreign_keys=on&_busy_timeout=5000", dsn)

	_, err = sqlite.DSN(DBConfig{})
	assert.Error(t, err)

	mysql, _ := DialectFor("mysql")
	dsn, err = mysql.DSN(DBConfig{URL: "user:pw@tcp(localhost:3306)/study"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	pg, _ := DialectFor("postgres")
	_, err = pg.DSN(DBConfig{})
	assert.Error(t, err)
}
