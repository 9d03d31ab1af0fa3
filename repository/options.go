package repository

import (
	"encoding/json"

	"github.com/vnkhanh/form-server/models"
)

// EncodeOptions trả về giá trị cột options: nil với câu hỏi không phải dạng chọn.
func EncodeOptions(questionType string, options []string) *string {
	if !models.IsChoice(questionType) {
		return nil
	}
	if options == nil {
		options = []string{}
	}
	b, _ := json.Marshal(options)
	s := string(b)
	return &s
}

// DecodeOptions đọc cột options; giá trị rỗng hoặc hỏng trả về slice rỗng.
func DecodeOptions(raw *string) []string {
	if raw == nil || *raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(*raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
