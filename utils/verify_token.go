package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Token xác thực một lần có dạng "<userID>.<secret>"; DB chỉ lưu hash bcrypt của secret.

func GenerateVerifyToken(userID string) (token string, secret string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	secret = base64.RawURLEncoding.EncodeToString(b)
	return userID + "." + secret, secret, nil
}

// SplitVerifyToken tách token thành userID và secret.
func SplitVerifyToken(token string) (userID, secret string, ok bool) {
	i := strings.LastIndex(token, ".")
	if i <= 0 || i == len(token)-1 {
		return "", "", false
	}
	return token[:i], token[i+1:], true
}

func HashVerifySecret(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty token")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(hash), err
}

func CheckVerifySecret(hashed, secret string) bool {
	if hashed == "" || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}
