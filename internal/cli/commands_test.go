package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func createToken(t *testing.T, dir string, kind string, account string) string {
	t.Helper()
	out, err := runCLI(t, "--dir", dir, "--format", "json", "create", kind, account)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "expected object data, got %T", resp.Data)
	token, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestCreateListFollowFlow(t *testing.T) {
	dir := t.TempDir()
	token := createToken(t, dir, "follow", "acct1")

	contents, err := os.ReadFile(filepath.Join(dir, "promises.json"))
	require.NoError(t, err)
	assert.Contains(t, string(contents), token)
	assert.Contains(t, string(contents), `"kind":"follow"`)

	out, err := runCLI(t, "--dir", dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, token+"\tfollow\tacct1")

	out, err = runCLI(t, "--dir", dir, "follow", token, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob added\n", out)

	out, err = runCLI(t, "--dir", dir, "follow", token, "carol")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "PROMISE_INVALID_TOKEN")

	out, err = runCLI(t, "--dir", dir, "list")
	require.NoError(t, err)
	assert.Equal(t, "no promises\n", out)
}

func TestAccountAddFlow(t *testing.T) {
	dir := t.TempDir()
	token := createToken(t, dir, "account-add", "acct1")
	key := base58.Encode(bytes.Repeat([]byte{7}, 32))

	out, err := runCLI(t, "--dir", dir, "account-add", token, "--bytes", key)
	require.Error(t, err)
	assert.Contains(t, out, "PROMISE_INVALID")

	out, err = runCLI(t, "--dir", dir, "--format", "json", "account-add", token, "--bytes", key, "--consent", "signed")
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, map[string]any{"added": true}, resp.Data)
}

func TestRevokeAndHealth(t *testing.T) {
	dir := t.TempDir()
	token := createToken(t, dir, "follow", "acct1")

	out, err := runCLI(t, "--dir", dir, "revoke", token)
	require.NoError(t, err)
	assert.Equal(t, "revoked\n", out)

	out, err = runCLI(t, "--dir", dir, "--format", "yaml", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "status: ok")
	assert.Contains(t, out, "state: ready")
	assert.Contains(t, out, "promises: 0")
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	out, err := runCLI(t, "--dir", t.TempDir(), "create", "unfollow", "acct1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, strings.HasPrefix(out, "Error [PROMISE_INVALID]"), "unexpected output %q", out)
}

func TestListRejectsUnknownKindFilter(t *testing.T) {
	out, err := runCLI(t, "--dir", t.TempDir(), "list", "--kind", "unfollow")
	require.Error(t, err)
	assert.Contains(t, out, "PROMISE_INVALID")
}
