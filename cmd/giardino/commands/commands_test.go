package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/config"
	"github.com/diewo77/giardino/internal/dbtest"
	"github.com/diewo77/giardino/internal/models"
)

// useStore points the commands at a test store.
func useStore(t *testing.T) *gorm.DB {
	t.Helper()
	gdb := dbtest.Open(t)
	prev := openDB
	openDB = func(*config.Config, *zap.Logger) (*gorm.DB, error) { return gdb, nil }
	t.Cleanup(func() { openDB = prev })
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SQL_MIGRATIONS", "false")
	return gdb
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file="))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAdminCreate(t *testing.T) {
	gdb := useStore(t)

	out, err := run(t, "admin", "create", "--email", "Anna@Example.com", "--password", "long-enough", "--role", "admin")
	require.NoError(t, err, out)
	assert.Contains(t, out, "created anna@example.com (admin)")

	var u models.AdminUser
	require.NoError(t, gdb.Where("email = ?", "anna@example.com").First(&u).Error)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.NotEqual(t, "long-enough", u.PasswordHash)

	_, err = run(t, "admin", "create", "--email", "x@example.com", "--password", "long-enough", "--role", "owner")
	assert.ErrorContains(t, err, "unknown role")

	_, err = run(t, "admin", "create", "--email", "x@example.com", "--password", "short", "--role", "staff")
	assert.ErrorContains(t, err, "at least 8 characters")
}

func TestMigrateAndSeed(t *testing.T) {
	gdb := useStore(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	_, err = run(t, "seed")
	require.NoError(t, err)
	first := dbtest.Count(t, gdb, &models.Service{})
	assert.Positive(t, first)

	_, err = run(t, "seed")
	require.NoError(t, err)
	assert.Equal(t, first, dbtest.Count(t, gdb, &models.Service{}), "seeding twice adds nothing")
}

func TestServeRequiresSessionSecret(t *testing.T) {
	useStore(t)
	t.Setenv("DEV", "false")

	t.Setenv("SESSION_SECRET", "")
	_, err := run(t, "serve")
	assert.ErrorContains(t, err, "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", config.DevSessionSecret)
	_, err = run(t, "serve")
	assert.ErrorContains(t, err, "SESSION_SECRET")
}
