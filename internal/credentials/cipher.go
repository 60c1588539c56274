// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Cipher errors
var (
	// ErrKeyMissing indicates no encryption key was configured.
	ErrKeyMissing = errors.New("encryption key not configured")

	// ErrDecryptionFailed indicates the decryption operation failed.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidCiphertext indicates the ciphertext is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// hkdfInfo binds derived keys to this use. Changing it invalidates every
// stored token.
const hkdfInfo = "upsync-credential-encryption"

// Cipher provides AES-256-GCM encryption for bearer tokens at rest.
// The AES key is derived from the configured master secret via HKDF-SHA256,
// so the master secret itself never touches the block cipher.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a cipher from the master secret. The secret is treated
// as opaque keying material; it must carry at least 32 bytes of entropy
// (enforced at config load).
func NewCipher(masterKey string) (*Cipher, error) {
	if masterKey == "" {
		return nil, ErrKeyMissing
	}

	key, err := deriveKey([]byte(masterKey), []byte(hkdfInfo), 32)
	if err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM cipher: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// deriveKey derives a key using HKDF-SHA256.
func deriveKey(secret, info []byte, keyLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, info)
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt encrypts the plaintext token and returns base64-encoded ciphertext
// with the nonce prepended. Empty strings are returned as-is.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends the ciphertext to the nonce slice
	ciphertext := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts base64-encoded ciphertext and returns the plaintext token.
// Empty strings are returned as-is.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode failed", ErrInvalidCiphertext)
	}

	// Minimum is nonce + one byte + auth tag
	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize+1+c.aead.Overhead() {
		return "", fmt.Errorf("%w: data too short", ErrInvalidCiphertext)
	}

	nonce := data[:nonceSize]
	encrypted := data[nonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, encrypted, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrDecryptionFailed, err.Error())
	}

	return string(plaintext), nil
}

// ValidateEncryptionSetup performs an encrypt/decrypt round trip. Called at
// startup so a misconfigured key fails fast instead of on the first sync.
func (c *Cipher) ValidateEncryptionSetup() error {
	const probe = "upsync-cipher-probe"

	sealed, err := c.Encrypt(probe)
	if err != nil {
		return fmt.Errorf("encryption probe failed: %w", err)
	}

	opened, err := c.Decrypt(sealed)
	if err != nil {
		return fmt.Errorf("decryption probe failed: %w", err)
	}

	if opened != probe {
		return errors.New("encryption round trip mismatch")
	}

	return nil
}

// MaskCredential returns a display-safe form of a token: the last four
// characters prefixed with asterisks. Short tokens are fully masked. Used
// for log fields and metric labels, never for storage.
func MaskCredential(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

// GenerateEncryptionKey generates a cryptographically secure master secret,
// base64-encoded for direct use as UPSYNC_ENCRYPTION_KEY.
func GenerateEncryptionKey() (string, error) {
	key := make([]byte, 32) // 256 bits
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("generate random key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
