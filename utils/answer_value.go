package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedAnswer = errors.New("giá trị câu trả lời không được hỗ trợ")

// EncodeAnswer chuyển giá trị JSON client gửi lên thành chuỗi lưu DB:
// chuỗi giữ nguyên, mảng được JSON-encode, số/bool giữ dạng literal, null thành "".
func EncodeAnswer(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '[':
		var items []interface{}
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			switch v := it.(type) {
			case string:
				out = append(out, v)
			case float64, bool:
				out = append(out, fmt.Sprint(v))
			default:
				return "", ErrUnsupportedAnswer
			}
		}
		b, err := json.Marshal(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case '{':
		return "", ErrUnsupportedAnswer
	default:
		// số hoặc true/false
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

// DecodeChoices trả về các lựa chọn trong một câu trả lời: mảng JSON được tách ra,
// giá trị đơn trả về một phần tử, chuỗi rỗng trả về nil.
func DecodeChoices(value string) []string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	if strings.HasPrefix(v, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(v), &arr); err == nil {
			return arr
		}
	}
	return []string{value}
}

// DecodeAnswer dùng khi trả dữ liệu ra API: mảng JSON thành []string, còn lại giữ chuỗi.
func DecodeAnswer(value string) interface{} {
	if strings.HasPrefix(strings.TrimSpace(value), "[") {
		var arr []string
		if err := json.Unmarshal([]byte(value), &arr); err == nil {
			return arr
		}
	}
	return value
}
