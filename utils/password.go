package utils

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes là độ dài tối đa bcrypt chấp nhận.
const MaxPasswordBytes = 72

func HashPassword(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
