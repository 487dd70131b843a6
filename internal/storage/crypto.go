// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/prepped-health/prepped-tui/internal/util"
)

// =============================================================================
// CACHE ENCRYPTION
// =============================================================================

// Key derivation parameters. scrypt N=2^15 keeps unlock under ~100ms on
// typical laptops while still resisting offline brute force of the keyfile.
const (
	keyFileName = "cache.key"
	keyFileSize = 32
	scryptN     = 1 << 15
	scryptR     = 8
	scryptP     = 1
	saltSize    = 16
)

// ErrCipherTampered indicates a cached ciphertext failed authentication.
var ErrCipherTampered = errors.New("cached data failed authentication")

// cacheCipher seals and opens briefing cache rows with ChaCha20-Poly1305.
// The AEAD key is derived from a random keyfile secret plus a per-row salt,
// so rows from different machines never share key material.
type cacheCipher struct {
	secret []byte
}

// newCacheCipher loads (or creates) the keyfile in dir.
func newCacheCipher(dir string) (*cacheCipher, error) {
	path := filepath.Join(dir, keyFileName)

	secret, err := os.ReadFile(path)
	if err == nil && len(secret) == keyFileSize {
		return &cacheCipher{secret: secret}, nil
	}

	secret = make([]byte, keyFileSize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, fmt.Errorf("failed to generate cache key: %w", err)
	}
	if err := util.AtomicWriteFile(path, secret, 0600); err != nil {
		return nil, fmt.Errorf("failed to persist cache key: %w", err)
	}
	return &cacheCipher{secret: secret}, nil
}

// Seal encrypts plaintext and returns ciphertext plus the salt|nonce header
// needed to open it again.
func (c *cacheCipher) Seal(plaintext []byte) (ciphertext, header []byte, err error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := c.aead(salt)
	if err != nil {
		return nil, nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	header = append(append([]byte{}, salt...), nonce...)
	return aead.Seal(nil, nonce, plaintext, nil), header, nil
}

// Open decrypts a ciphertext sealed by Seal.
func (c *cacheCipher) Open(ciphertext, header []byte) ([]byte, error) {
	if len(header) != saltSize+chacha20poly1305.NonceSize {
		return nil, ErrCipherTampered
	}
	salt, nonce := header[:saltSize], header[saltSize:]

	aead, err := c.aead(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrCipherTampered
	}
	return plaintext, nil
}

// aead derives the per-salt AEAD.
func (c *cacheCipher) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(c.secret, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init failed: %w", err)
	}
	return aead, nil
}
