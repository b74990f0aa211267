package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/elevate", "pgx5://u:p@localhost:5432/elevate"},
		{"postgresql://u:p@db/elevate?sslmode=disable", "pgx5://u:p@db/elevate?sslmode=disable"},
		{"pgx5://already", "pgx5://already"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MigrateURL(tt.in))
		})
	}
}

func TestEmbeddedMigrations_Paired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}

	for _, base := range []string{"0001_create_products", "0002_create_users"} {
		assert.True(t, names[base+".up.sql"], base+" up migration missing")
		assert.True(t, names[base+".down.sql"], base+" down migration missing")
	}
}
