package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// NewToken cria um token aleatório seguro em base64 URL-safe.
// Usado tanto para tokens de convite quanto para refresh tokens.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken produz hash SHA-256 base64 para persistir refresh tokens.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RefreshRedisKey monta a chave do estado do refresh no Redis.
func RefreshRedisKey(hash string) string {
	return fmt.Sprintf("refresh:louvores:%s", hash)
}
