package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RezaEskandarii/jobboard/custom_errors"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "NODE_ENV", "PORT", "DATABASE_URL", "SQLITE_PATH", "ADMIN_PASSWORD",
		"ADMIN_PASSWORD_HASH", "SESSION_SECRET", "STATS_SCHEDULE", "LOG_LEVEL", "RATE_LIMIT",
	} {
		t.Setenv(key, env[key])
	}
}

func TestNewContainer_InvalidConfigKeepsCause(t *testing.T) {
	setEnv(t, map[string]string{"APP_ENV": "production"})

	_, err := newContainer()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid configuration: "), err.Error())
	assert.True(t, custom_errors.IsValidationError(err))
}

func TestNewContainer_Development(t *testing.T) {
	setEnv(t, map[string]string{"SQLITE_PATH": filepath.Join(t.TempDir(), "jobs.db")})

	c, err := newContainer()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	assert.False(t, c.Config.IsProduction())
}

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"hash-password", "s3cret"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}
