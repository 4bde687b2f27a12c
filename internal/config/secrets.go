package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

var errBadCiphertext = errors.New("config: ciphertext too short")

// decryptToken decodes a base64(nonce||ciphertext) blob sealed with AES-GCM.
// The key is hex-encoded and must be 16, 24 or 32 bytes once decoded.
func decryptToken(encoded, hexKey string) (string, error) {
	if hexKey == "" {
		return "", errors.New("config: SETTINGS_KEY required to decrypt API token")
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return "", fmt.Errorf("config: decode settings key: %w", err)
	}
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("config: decode token: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("config: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("config: gcm: %w", err)
	}
	if len(blob) < gcm.NonceSize() {
		return "", errBadCiphertext
	}
	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("config: decrypt token: %w", err)
	}
	return string(plain), nil
}

// EncryptToken seals a token for storage in SMARTFLOW_API_TOKEN_ENC.
// Exposed so operators can produce the encrypted form with a one-off command.
func EncryptToken(token, hexKey string) (string, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return "", fmt.Errorf("config: decode settings key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("config: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("config: gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("config: nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}
