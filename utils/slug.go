package utils

import (
	"crypto/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Slugify chuyển tiêu đề thành chuỗi a-z0-9 nối bằng "-", bỏ dấu tiếng Việt.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}
	plain = strings.NewReplacer("đ", "d", "Đ", "D").Replace(plain)

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 48 {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}

// RandomSuffix trả về n ký tự ngẫu nhiên trong [a-z0-9].
func RandomSuffix(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = slugAlphabet[int(buf[i])%len(slugAlphabet)]
	}
	return string(buf)
}

// NewSlug ghép slug của tiêu đề với hậu tố ngẫu nhiên để tránh trùng.
func NewSlug(title string) string {
	base := Slugify(title)
	if base == "" {
		base = "form"
	}
	return base + "-" + RandomSuffix(6)
}
