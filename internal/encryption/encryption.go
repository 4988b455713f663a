package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Key derivation parameters
	SaltSize   = 32
	KeySize    = 32
	Iterations = 100000

	saltFile = "salt"
)

var (
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	// ErrBadSalt means the salt file exists but cannot be used.
	ErrBadSalt = errors.New("salt file is corrupt")
)

// Encryptor seals stored values with AES-GCM under a passphrase-derived key.
type Encryptor struct {
	gcm cipher.AEAD
}

// NewEncryptor derives a key from password and the salt kept in dataDir,
// creating the salt on first use.
func NewEncryptor(password, dataDir string) (*Encryptor, error) {
	if password == "" {
		return nil, errors.New("empty passphrase")
	}
	salt, err := getOrCreateSalt(filepath.Join(dataDir, saltFile))
	if err != nil {
		return nil, fmt.Errorf("failed to get salt: %w", err)
	}
	return newWithSalt(password, salt)
}

func newWithSalt(password string, salt []byte) (*Encryptor, error) {
	key := pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Encryptor{gcm: gcm}, nil
}

// getOrCreateSalt reads the existing salt, creating one only when the file
// does not exist. A damaged salt file is an error and is left untouched.
func getOrCreateSalt(saltPath string) ([]byte, error) {
	salt, err := os.ReadFile(saltPath)
	switch {
	case err == nil && len(salt) == SaltSize:
		return salt, nil
	case err == nil:
		return nil, fmt.Errorf("%w: %s has %d bytes, want %d", ErrBadSalt, saltPath, len(salt), SaltSize)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}

	salt = make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(saltPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create salt directory: %w", err)
	}
	if err := os.WriteFile(saltPath, salt, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write salt file: %w", err)
	}
	return salt, nil
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext).
func (e *Encryptor) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	ciphertext := e.gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal.
func (e *Encryptor) Open(sealed string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	nonceSize := e.gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// ClearSalt removes the salt file in dataDir. Values sealed under the old
// salt can no longer be opened.
func ClearSalt(dataDir string) error {
	if err := os.Remove(filepath.Join(dataDir, saltFile)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
