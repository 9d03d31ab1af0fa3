package analytics

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/repository"
	"github.com/vnkhanh/form-server/utils"
)

// maxTrendDays chặn chuỗi thời gian quá dài khi client gửi khoảng ngày tuỳ ý.
const maxTrendDays = 3660

var ErrRangeTooLarge = errors.New("khoảng thời gian quá dài")

type Summary struct {
	Total int `json:"total"`
	QR    int `json:"qr"`
	Web   int `json:"web"`
}

// QuestionStat là thống kê của một câu hỏi. Distribution và TextResponses
// luôn có mặt (rỗng khi chưa có câu trả lời).
type QuestionStat struct {
	QuestionID     string         `json:"question_id"`
	Text           string         `json:"text"`
	Type           string         `json:"type"`
	TotalResponses int            `json:"total_responses"`
	Distribution   map[string]int `json:"distribution"`
	TextResponses  []string       `json:"text_responses"`
	Average        *float64       `json:"average"`
	Options        []string       `json:"options,omitempty"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	QR    int    `json:"qr"`
	Web   int    `json:"web"`
	Total int    `json:"total"`
}

// ResponseRow là một phản hồi thô với câu trả lời đã giải mã, khoá theo id câu hỏi.
type ResponseRow struct {
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	CreatedAt time.Time              `json:"created_at"`
	Answers   map[string]interface{} `json:"answers"`
}

func Summarize(responses []models.Response, f Filter) Summary {
	var s Summary
	for _, r := range responses {
		if !f.Match(r) {
			continue
		}
		s.Total++
		switch r.Source {
		case models.SourceQR:
			s.QR++
		case models.SourceWeb:
			s.Web++
		}
	}
	return s
}

// QuestionStats trả về một mục cho mỗi câu hỏi, theo thứ tự của questions.
func QuestionStats(questions []models.Question, responses []models.Response, f Filter) []QuestionStat {
	stats := make([]QuestionStat, len(questions))
	index := make(map[string]int, len(questions))
	ratingSum := make([]float64, len(questions))
	ratingCount := make([]int, len(questions))

	for i, q := range questions {
		stats[i] = QuestionStat{
			QuestionID:    q.ID,
			Text:          q.Text,
			Type:          q.Type,
			Distribution:  map[string]int{},
			TextResponses: []string{},
		}
		if models.IsChoice(q.Type) {
			stats[i].Options = repository.DecodeOptions(q.Options)
		}
		index[q.ID] = i
	}

	for _, r := range responses {
		if !f.Match(r) {
			continue
		}
		for _, a := range r.Answers {
			i, ok := index[a.QuestionID]
			if !ok || strings.TrimSpace(a.Value) == "" {
				continue
			}
			st := &stats[i]
			st.TotalResponses++

			switch {
			case models.IsChoice(st.Type):
				for _, v := range utils.DecodeChoices(a.Value) {
					st.Distribution[v]++
				}
			case st.Type == models.QuestionRating:
				v := strings.TrimSpace(a.Value)
				st.Distribution[v]++
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					ratingSum[i] += n
					ratingCount[i]++
				}
			default:
				st.TextResponses = append(st.TextResponses, a.Value)
			}
		}
	}

	for i := range stats {
		if ratingCount[i] > 0 {
			avg := ratingSum[i] / float64(ratingCount[i])
			stats[i].Average = &avg
		}
	}
	return stats
}

// Trends đếm phản hồi theo ngày (UTC), lấp 0 cho những ngày không có phản hồi.
// Khoảng ngày lấy từ bộ lọc; thiếu đầu nào thì dùng phản hồi sớm nhất/muộn nhất.
func Trends(responses []models.Response, f Filter) ([]TrendPoint, error) {
	matched := f.Apply(responses)

	var start, end time.Time
	if f.From != nil {
		start = day(*f.From)
	}
	if f.To != nil {
		end = day(*f.To)
	}
	if len(matched) > 0 {
		first, last := matched[0].CreatedAt, matched[0].CreatedAt
		for _, r := range matched[1:] {
			if r.CreatedAt.Before(first) {
				first = r.CreatedAt
			}
			if r.CreatedAt.After(last) {
				last = r.CreatedAt
			}
		}
		if f.From == nil {
			start = day(first)
		}
		if f.To == nil {
			end = day(last)
		}
	}
	switch {
	case start.IsZero() && end.IsZero():
		return []TrendPoint{}, nil
	case start.IsZero():
		start = end
	case end.IsZero():
		end = start
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxTrendDays {
		return nil, ErrRangeTooLarge
	}

	points := make([]TrendPoint, days)
	for i := range points {
		points[i].Date = start.AddDate(0, 0, i).Format(dateLayout)
	}
	for _, r := range matched {
		i := int(day(r.CreatedAt).Sub(start).Hours() / 24)
		if i < 0 || i >= days {
			continue
		}
		switch r.Source {
		case models.SourceQR:
			points[i].QR++
		case models.SourceWeb:
			points[i].Web++
		}
		points[i].Total++
	}
	return points, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Page lọc và phân trang phản hồi, mới nhất trước. Trả về tổng số sau lọc.
func Page(responses []models.Response, f Filter, page, limit int) ([]ResponseRow, int) {
	matched := f.Apply(responses)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if limit <= 0 || page < 1 || page-1 >= (total+limit-1)/limit {
		return []ResponseRow{}, total
	}
	offset := (page - 1) * limit
	stop := offset + limit
	if stop > total {
		stop = total
	}

	rows := make([]ResponseRow, 0, stop-offset)
	for _, r := range matched[offset:stop] {
		rows = append(rows, toRow(r))
	}
	return rows, total
}

func toRow(r models.Response) ResponseRow {
	answers := make(map[string]interface{}, len(r.Answers))
	for _, a := range r.Answers {
		answers[a.QuestionID] = utils.DecodeAnswer(a.Value)
	}
	return ResponseRow{ID: r.ID, Source: r.Source, CreatedAt: r.CreatedAt, Answers: answers}
}
