package database

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "planner", Password: "secret", Name: "course_planner", SSLMode: "require"})
	assert.Equal(t, "host=db port=5433 user=planner password=secret dbname=course_planner sslmode=require", dsn)
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	src, err := migrationSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, name, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "create_catalogs", name)

	body, err := io.ReadAll(up)
	require.NoError(t, err)
	for _, table := range []string{"catalogs", "catalog_entries", "catalog_segments"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
