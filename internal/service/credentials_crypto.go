package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"strings"
)

const (
	credentialsKeyEnv     = "CP_CREDENTIALS_ENCRYPTION_KEY"
	credentialsPrevKeyEnv = "CP_CREDENTIALS_ENCRYPTION_PREV_KEY"
)

type encryptedCredentials struct {
	Enc   string `json:"enc"`
	Nonce string `json:"nonce"`
	Data  string `json:"data"`
}

// CredentialCipher encrypts stored credential bundles at rest. Without a
// configured key it degrades to plaintext passthrough, so local setups work
// unkeyed and production sets the env key. A previous key is tried on decrypt
// to allow rotation.
type CredentialCipher struct {
	primary  cipher.AEAD
	fallback []cipher.AEAD
}

func NewCredentialCipherFromEnv() *CredentialCipher {
	c := &CredentialCipher{}
	if gcm := gcmFromKey(os.Getenv(credentialsKeyEnv)); gcm != nil {
		c.primary = gcm
		c.fallback = append(c.fallback, gcm)
	}
	if gcm := gcmFromKey(os.Getenv(credentialsPrevKeyEnv)); gcm != nil {
		c.fallback = append(c.fallback, gcm)
	}
	return c
}

// Seal encrypts raw with the (businessID, platform) pair as associated data,
// binding a stored bundle to its owning row.
func (c *CredentialCipher) Seal(businessID, platform string, raw []byte) []byte {
	if c == nil || c.primary == nil {
		return raw
	}
	nonce := make([]byte, c.primary.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return raw
	}
	ct := c.primary.Seal(nil, nonce, raw, aad(businessID, platform))
	payload := encryptedCredentials{
		Enc:   "aes-gcm-v1",
		Nonce: base64.StdEncoding.EncodeToString(nonce),
		Data:  base64.StdEncoding.EncodeToString(ct),
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return raw
	}
	return out
}

func (c *CredentialCipher) Open(businessID, platform string, raw []byte) []byte {
	if c == nil || len(raw) == 0 {
		return raw
	}
	var payload encryptedCredentials
	if err := json.Unmarshal(raw, &payload); err != nil {
		return raw
	}
	if payload.Enc != "aes-gcm-v1" || payload.Nonce == "" || payload.Data == "" {
		return raw
	}
	nonce, err := base64.StdEncoding.DecodeString(payload.Nonce)
	if err != nil {
		return raw
	}
	ct, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return raw
	}
	for _, gcm := range c.fallback {
		if pt, err := gcm.Open(nil, nonce, ct, aad(businessID, platform)); err == nil {
			return pt
		}
	}
	return raw
}

func aad(businessID, platform string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(businessID)) + "|" + strings.ToLower(strings.TrimSpace(platform)))
}

func gcmFromKey(key string) cipher.AEAD {
	keyBytes := normalizeKey(strings.TrimSpace(key))
	if len(keyBytes) == 0 {
		return nil
	}
	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil
	}
	return gcm
}

func normalizeKey(k string) []byte {
	if k == "" {
		return nil
	}
	// Prefer base64 keys, fall back to raw bytes.
	keyBytes, err := base64.StdEncoding.DecodeString(k)
	if err != nil {
		keyBytes = []byte(k)
	}
	switch {
	case len(keyBytes) >= 32:
		return keyBytes[:32]
	case len(keyBytes) >= 24:
		return keyBytes[:24]
	case len(keyBytes) >= 16:
		return keyBytes[:16]
	default:
		return nil
	}
}
