package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gestionale-jos/jos_backend/internal/cli"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes jos_admin against a throwaway in-memory store.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("IS_PRODUCTION", "false")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "0")

	var out bytes.Buffer
	root := cli.NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestMigrateUp_MemoryStoreIsNoop(t *testing.T) {
	out, err := run(t, "migrate", "up")

	require.NoError(t, err)
	assert.Contains(t, out, "Migrations up applied on memory store")
}

func TestCashState_EmptyDay(t *testing.T) {
	out, err := run(t, "cash", "state", "--date", "2026-03-02")

	require.NoError(t, err)
	var state dto.DailyStateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &state), out)
	assert.Equal(t, "2026-03-02", state.Date)
	assert.False(t, state.Opened)
	assert.False(t, state.Closed)
	assert.Empty(t, state.Movements)
}

func TestCashState_InvalidDate(t *testing.T) {
	_, err := run(t, "cash", "state", "--date", "2026-13-01")

	assert.Error(t, err)
}

func TestUserCreate_FirstUserBecomesAdmin(t *testing.T) {
	out, err := run(t, "user", "create",
		"--username", "Mario",
		"--name", "Mario Rossi",
		"--password", "segreto123",
		"--role", "operator")

	require.NoError(t, err)
	var user dto.UserResponse
	require.NoError(t, json.Unmarshal([]byte(out), &user), out)
	assert.Equal(t, "mario", user.Username)
	assert.Equal(t, "admin", string(user.Role))
}

func TestUserCreate_PasswordFromEnv(t *testing.T) {
	t.Setenv("JOS_USER_PASSWORD", "dallambiente")

	_, err := run(t, "user", "create", "--username", "anna", "--name", "Anna")

	assert.NoError(t, err)
}

func TestUserCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "missing password",
			args: []string{"user", "create", "--username", "anna", "--name", "Anna"},
			want: "password is required",
		},
		{
			name: "unknown role",
			args: []string{"user", "create", "--username", "anna", "--name", "Anna", "--password", "segreto123", "--role", "owner"},
			want: "unknown role",
		},
		{
			name: "missing username",
			args: []string{"user", "create", "--name", "Anna", "--password", "segreto123"},
			want: "username",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JOS_USER_PASSWORD", "")
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSeedProducts(t *testing.T) {
	out, err := run(t, "seed", "products")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Seeded "), out)
}

func TestReportMonthly_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marzo.xlsx")

	out, err := run(t, "report", "monthly", "--year", "2026", "--month", "3", "--format", "xlsx", "--out", path)

	require.NoError(t, err)
	assert.Contains(t, out, path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestReportMonthly_RejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "report", "monthly", "--format", "csv")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
