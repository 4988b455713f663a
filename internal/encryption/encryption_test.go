package encryption

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	dir := t.TempDir()
	enc, err := NewEncryptor("passphrase", dir)
	require.NoError(t, err)

	sealed, err := enc.Seal([]byte(`{"2025-03-03":[]}`))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "2025-03-03")

	plain, err := enc.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"2025-03-03":[]}`, string(plain))
}

func TestSaltIsReused(t *testing.T) {
	dir := t.TempDir()
	a, err := NewEncryptor("passphrase", dir)
	require.NoError(t, err)
	sealed, err := a.Seal([]byte("hello"))
	require.NoError(t, err)

	salt, err := os.ReadFile(filepath.Join(dir, saltFile))
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize)

	b, err := NewEncryptor("passphrase", dir)
	require.NoError(t, err)
	plain, err := b.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))
}

func TestOpen_WrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	a, err := NewEncryptor("right", dir)
	require.NoError(t, err)
	sealed, err := a.Seal([]byte("secret"))
	require.NoError(t, err)

	b, err := NewEncryptor("wrong", dir)
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.Error(t, err)
}

func TestOpen_Garbage(t *testing.T) {
	enc, err := NewEncryptor("p", t.TempDir())
	require.NoError(t, err)

	_, err = enc.Open("not base64!")
	assert.Error(t, err)
	_, err = enc.Open("YWJj")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestNewEncryptor_EmptyPassphrase(t *testing.T) {
	_, err := NewEncryptor("", t.TempDir())
	assert.Error(t, err)
}

func TestClearSalt(t *testing.T) {
	dir := t.TempDir()
	_, err := NewEncryptor("p", dir)
	require.NoError(t, err)
	require.NoError(t, ClearSalt(dir))
	assert.NoFileExists(t, filepath.Join(dir, saltFile))
	assert.NoError(t, ClearSalt(dir))
}

func TestNewEncryptor_CorruptSaltIsKept(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, saltFile)
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := NewEncryptor("p", dir)
	assert.ErrorIs(t, err, ErrBadSalt)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))
}

func TestNewEncryptor_UnreadableSalt(t *testing.T) {
	dir := t.TempDir()
	// a directory where the salt file should be cannot be read as one
	require.NoError(t, os.Mkdir(filepath.Join(dir, saltFile), 0o700))

	_, err := NewEncryptor("p", dir)
	assert.Error(t, err)
	assert.DirExists(t, filepath.Join(dir, saltFile))
}
