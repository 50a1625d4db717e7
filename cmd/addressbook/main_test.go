package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "addressbook/internal/jwt_token"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ADDRESSBOOK_CREDENTIALS_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("ADDRESSBOOK_DRIVER", "sqlite")
	t.Setenv("KAFKA_BROKERS", "")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAddFindDelete(t *testing.T) {
	dir := setupEnv(t)
	db := filepath.Join(dir, "book.db")

	out, err := execute(t, "--sqlite-path", db, "add",
		"--first", "John", "--last", "Smith", "--street", "123 Main Street",
		"--city", "San Francisco", "--state", "ca", "--zip", "12345",
		"--phone", "555-555-1234", "--email", "john.smith@example.com")
	require.NoError(t, err, out)
	contactID := strings.TrimSpace(out)
	require.NotEmpty(t, contactID)

	out, err = execute(t, "--sqlite-path", db, "find", "smi")
	require.NoError(t, err)
	assert.Contains(t, out, "Smith, John")
	assert.Contains(t, out, "San Francisco, CA 12345")

	out, err = execute(t, "--sqlite-path", db, "find", "--remote", "SMI")
	require.NoError(t, err)
	assert.Contains(t, out, contactID)

	_, err = execute(t, "--sqlite-path", db, "delete", contactID)
	require.NoError(t, err)

	out, err = execute(t, "--sqlite-path", db, "list")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestAddRejectsInvalidContact(t *testing.T) {
	dir := setupEnv(t)

	out, err := execute(t, "--sqlite-path", filepath.Join(dir, "book.db"), "add",
		"--first", "John", "--last", "Smith", "--street", "1 Main", "--city", "SF",
		"--state", "CA", "--zip", "123", "--phone", "555-555-1234", "--email", "j@example.com")
	require.Error(t, err)
	assert.Contains(t, out, "zip code must be a 5 digit number")
}

func TestImportExportRoundTrip(t *testing.T) {
	dir := setupEnv(t)
	src := filepath.Join(dir, "contacts.txt")
	require.NoError(t, os.WriteFile(src, []byte(strings.Join([]string{
		"Ada", "Lovelace", "12 St James Sq", "London", "LN 10001", "020-7946-0018", "ada@example.org",
		"",
		"Bad", "Zip", "1 Nowhere", "Nowhere", "NO 12", "555-555-0000", "bad@example.org",
	}, "\n")), 0o600))

	first := filepath.Join(dir, "first.db")
	out, err := execute(t, "--sqlite-path", first, "import", src)
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 1 contacts")
	assert.Contains(t, out, "skipped record 2")

	exported := filepath.Join(dir, "export.txt")
	out, err = execute(t, "--sqlite-path", first, "export", exported)
	require.NoError(t, err, out)
	assert.Contains(t, out, "exported 1 contacts")

	second := filepath.Join(dir, "second.db")
	out, err = execute(t, "--sqlite-path", second, "import", exported)
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 1 contacts")

	out, err = execute(t, "--sqlite-path", second, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lovelace, Ada")
}

func TestImportUnknownFormat(t *testing.T) {
	setupEnv(t)
	_, err := execute(t, "import", "--format", "csv", "whatever.txt")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	setupEnv(t)

	t.Run("requires a signing key", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", "")
		_, err := execute(t, "token")
		assert.ErrorContains(t, err, "JWT_SIGNING_KEY")
	})

	t.Run("issues a verifiable token", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", "test-signing-key")
		out, err := execute(t, "token", "--subject", "ops")
		require.NoError(t, err)

		claims, err := jwttoken.NewJWTService("test-signing-key", "addressbook", jwttoken.DefaultAudience).
			ValidateToken(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, "ops", claims.Subject)
	})
}
