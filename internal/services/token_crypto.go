package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TokenCrypto seals access tokens with AES-256-GCM before they touch the
// cache table. The key comes from configuration, or from a per-install key
// file created on first use when no key is configured.
type TokenCrypto struct {
	key []byte
}

// NewTokenCrypto builds a TokenCrypto from a hex-encoded 32-byte key. An
// empty hexKey falls back to a key file stored next to keyFilePath.
func NewTokenCrypto(hexKey, keyFilePath string) (*TokenCrypto, error) {
	if hexKey != "" {
		key, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("token encryption key is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("token encryption key must be 32 bytes, got %d", len(key))
		}
		return &TokenCrypto{key: key}, nil
	}

	key, err := loadOrCreateKeyFile(keyFilePath)
	if err != nil {
		return nil, err
	}
	return &TokenCrypto{key: key}, nil
}

func loadOrCreateKeyFile(path string) ([]byte, error) {
	if data, err := os.ReadFile(path); err == nil {
		key, err := hex.DecodeString(string(data))
		if err == nil && len(key) == 32 {
			return key, nil
		}
		// Unreadable key file means previously sealed tokens are lost;
		// a fresh key forces re-authentication.
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext and returns a base64 string of nonce||ciphertext
func (t *TokenCrypto) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(t.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt
func (t *TokenCrypto) Decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed token: %w", err)
	}

	block, err := aes.NewCipher(t.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(sealed) < gcm.NonceSize() {
		return "", fmt.Errorf("sealed token too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed token: %w", err)
	}
	return string(plaintext), nil
}
