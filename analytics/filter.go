// Package analytics tổng hợp phản hồi của một form: số đếm theo nguồn,
// phân bố theo câu hỏi, chuỗi thời gian theo ngày và file xuất Excel.
//
// Mọi view nhận cùng một Filter và lọc trên cùng một tập phản hồi nên tổng
// số giữa các view luôn khớp nhau.
package analytics

import (
	"errors"
	"strings"
	"time"

	"github.com/vnkhanh/form-server/models"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate   = errors.New("ngày không hợp lệ (YYYY-MM-DD hoặc RFC3339)")
	ErrInvalidSource = errors.New("source phải là qr, web hoặc all")
	ErrInvalidRange  = errors.New("startDate phải trước endDate")
)

// Filter giới hạn tập phản hồi. Hai đầu mút đều được tính (inclusive).
// Source rỗng nghĩa là mọi nguồn.
type Filter struct {
	From   *time.Time
	To     *time.Time
	Source string
}

// ParseFilter đọc query startDate/endDate/source.
// Ngày dạng YYYY-MM-DD được hiểu là cả ngày (UTC): startDate từ 00:00,
// endDate tới hết 23:59:59.999999999.
func ParseFilter(startDate, endDate, source string) (Filter, error) {
	var f Filter

	if startDate = strings.TrimSpace(startDate); startDate != "" {
		t, _, err := parseInstant(startDate)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if endDate = strings.TrimSpace(endDate); endDate != "" {
		t, dateOnly, err := parseInstant(endDate)
		if err != nil {
			return f, err
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.To = &t
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, ErrInvalidRange
	}

	switch s := strings.ToLower(strings.TrimSpace(source)); s {
	case "", "all":
	case models.SourceQR, models.SourceWeb:
		f.Source = s
	default:
		return f, ErrInvalidSource
	}
	return f, nil
}

func parseInstant(s string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, ErrInvalidDate
}

// Match báo phản hồi r có nằm trong bộ lọc hay không.
func (f Filter) Match(r models.Response) bool {
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	if f.From != nil && r.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// Apply trả về các phản hồi thoả bộ lọc, giữ nguyên thứ tự.
func (f Filter) Apply(responses []models.Response) []models.Response {
	out := make([]models.Response, 0, len(responses))
	for _, r := range responses {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
