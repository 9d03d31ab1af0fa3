// Package reconcile đưa section/câu hỏi đã lưu của một form về đúng bản nháp
// mà trình soạn form gửi lên.
//
// Thứ tự luôn là: section (tạo/sửa, dựng bảng ánh xạ placeholder → id) →
// xoá section thừa → xoá câu hỏi thừa → câu hỏi (tạo/sửa). Bảng ánh xạ phải
// đầy đủ trước khi xử lý bất kỳ câu hỏi nào. Mỗi thao tác chạy tuần tự; lỗi đầu
// tiên dừng toàn bộ và các thay đổi đã ghi không được hoàn tác.
package reconcile

//go:generate mockgen -destination=mocks/store.go -package=mocks github.com/vnkhanh/form-server/reconcile Store

import (
	"context"
	"fmt"

	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/repository"
)

// Store là các thao tác lưu trữ mà quá trình reconcile cần.
type Store interface {
	ListSections(ctx context.Context, formID string) ([]models.Section, error)
	ListQuestions(ctx context.Context, formID string) ([]models.Question, error)
	CreateSection(ctx context.Context, s *models.Section) error
	UpdateSection(ctx context.Context, s *models.Section) error
	DeleteSection(ctx context.Context, id string) error
	CreateQuestion(ctx context.Context, q *models.Question) error
	UpdateQuestion(ctx context.Context, q *models.Question) error
	DeleteQuestion(ctx context.Context, id string) error
}

type DraftSection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type DraftQuestion struct {
	Order    int        `json:"order"`
	Type     string     `json:"type"`
	Text     string     `json:"text"`
	Required bool       `json:"required"`
	Options  []string   `json:"options"`
	Section  SectionRef `json:"section_ref"`
}

// Report đếm các thao tác đã ghi và ánh xạ placeholder (theo order) → id thật.
type Report struct {
	SectionsCreated  int            `json:"sections_created"`
	SectionsUpdated  int            `json:"sections_updated"`
	SectionsDeleted  int            `json:"sections_deleted"`
	QuestionsCreated int            `json:"questions_created"`
	QuestionsUpdated int            `json:"questions_updated"`
	QuestionsDeleted int            `json:"questions_deleted"`
	SectionIDs       map[int]string `json:"section_ids"`
}

func (r *Report) Creates() int { return r.SectionsCreated + r.QuestionsCreated }
func (r *Report) Deletes() int { return r.SectionsDeleted + r.QuestionsDeleted }

// OpError cho biết thao tác lưu trữ nào đã thất bại.
type OpError struct {
	Op   string // list | create | update | delete
	Kind string // section | question
	Ref  string
	Err  error
}

func (e *OpError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s %q: %v", e.Op, e.Kind, e.Ref, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// sectionMapping là cầu nối giữa không gian placeholder và id thật.
type sectionMapping struct {
	byPlaceholder map[int]string
	byID          map[string]string
}

func (m *sectionMapping) record(realID string, order int) {
	m.byPlaceholder[order] = realID
	m.byID[realID] = realID
}

// Apply tạo/sửa/xoá section và câu hỏi của formID cho khớp với bản nháp.
// Chỉ xoá bản ghi cũ không được bản nháp nào khớp (theo id, rồi theo vị trí với
// section, theo text và loại với câu hỏi). Vì vậy câu hỏi đổi loại được tạo mới
// và bản cũ bị xoá cùng các câu trả lời của nó.
func Apply(ctx context.Context, store Store, formID string, sections []DraftSection, questions []DraftQuestion) (*Report, error) {
	existingSections, err := store.ListSections(ctx, formID)
	if err != nil {
		return nil, &OpError{Op: "list", Kind: "section", Err: err}
	}
	existingQuestions, err := store.ListQuestions(ctx, formID)
	if err != nil {
		return nil, &OpError{Op: "list", Kind: "question", Err: err}
	}

	report := &Report{SectionIDs: map[int]string{}}
	mapping := &sectionMapping{byPlaceholder: map[int]string{}, byID: map[string]string{}}

	// 1. Section: khớp theo tiêu đề, không có thì theo vị trí.
	sectionMatches := matchSections(sections, existingSections)
	for i, ds := range sections {
		row := models.Section{
			FormID:      formID,
			Title:       ds.Title,
			Description: ds.Description,
			Order:       ds.Order,
		}
		if idx := sectionMatches[i]; idx >= 0 {
			row.ID = existingSections[idx].ID
			if err := store.UpdateSection(ctx, &row); err != nil {
				return report, &OpError{Op: "update", Kind: "section", Ref: row.ID, Err: err}
			}
			report.SectionsUpdated++
		} else {
			if err := store.CreateSection(ctx, &row); err != nil {
				return report, &OpError{Op: "create", Kind: "section", Ref: ds.Title, Err: err}
			}
			report.SectionsCreated++
		}
		mapping.record(row.ID, ds.Order)
		report.SectionIDs[ds.Order] = row.ID
	}

	// 2. Xoá các section cũ không được bản nháp nào nhận.
	claimedSections := claimed(sectionMatches)
	surviving := make(map[string]bool, len(existingSections))
	for idx, es := range existingSections {
		if claimedSections[idx] {
			surviving[es.ID] = true
			continue
		}
		if err := store.DeleteSection(ctx, es.ID); err != nil {
			return report, &OpError{Op: "delete", Kind: "section", Ref: es.ID, Err: err}
		}
		report.SectionsDeleted++
	}

	// 3. Xoá các câu hỏi cũ không khớp (text, type) với câu hỏi nào trong bản nháp.
	questionMatches := matchQuestions(questions, existingQuestions)
	claimedQuestions := claimed(questionMatches)
	for idx, eq := range existingQuestions {
		if claimedQuestions[idx] {
			continue
		}
		if err := store.DeleteQuestion(ctx, eq.ID); err != nil {
			return report, &OpError{Op: "delete", Kind: "question", Ref: eq.ID, Err: err}
		}
		report.QuestionsDeleted++
	}

	// 4–5. Giải section_ref rồi sửa/tạo câu hỏi.
	for i, dq := range questions {
		row := models.Question{
			FormID:    formID,
			SectionID: resolveSection(dq.Section, mapping, surviving),
			Type:      dq.Type,
			Text:      dq.Text,
			Required:  dq.Required,
			Options:   repository.EncodeOptions(dq.Type, dq.Options),
			Order:     dq.Order,
		}
		if idx := questionMatches[i]; idx >= 0 {
			row.ID = existingQuestions[idx].ID
			if err := store.UpdateQuestion(ctx, &row); err != nil {
				return report, &OpError{Op: "update", Kind: "question", Ref: row.ID, Err: err}
			}
			report.QuestionsUpdated++
		} else {
			if err := store.CreateQuestion(ctx, &row); err != nil {
				return report, &OpError{Op: "create", Kind: "question", Ref: dq.Text, Err: err}
			}
			report.QuestionsCreated++
		}
	}

	return report, nil
}

// matchSections trả về chỉ số section cũ khớp với từng section nháp (-1 = tạo mới).
// Ưu tiên tiêu đề trùng khớp; nếu không có, lấy section cũ ở vị trí Order khi
// section đó chưa bị nhận và tiêu đề của nó không được section nháp nào dùng.
func matchSections(drafts []DraftSection, existing []models.Section) []int {
	out := make([]int, len(drafts))
	taken := make([]bool, len(existing))

	wanted := make(map[string]bool, len(drafts))
	for _, d := range drafts {
		wanted[d.Title] = true
	}

	for i, d := range drafts {
		out[i] = -1
		for j, e := range existing {
			if !taken[j] && e.Title == d.Title {
				out[i] = j
				taken[j] = true
				break
			}
		}
	}

	for i, d := range drafts {
		if out[i] >= 0 {
			continue
		}
		j := d.Order
		if j >= 0 && j < len(existing) && !taken[j] && !wanted[existing[j].Title] {
			out[i] = j
			taken[j] = true
		}
	}
	return out
}

// matchQuestions khớp theo (text, type); mỗi câu hỏi cũ chỉ được nhận một lần,
// lần xuất hiện đầu tiên chưa bị nhận sẽ thắng.
func matchQuestions(drafts []DraftQuestion, existing []models.Question) []int {
	out := make([]int, len(drafts))
	taken := make([]bool, len(existing))
	for i, d := range drafts {
		out[i] = -1
		for j, e := range existing {
			if !taken[j] && e.Text == d.Text && e.Type == d.Type {
				out[i] = j
				taken[j] = true
				break
			}
		}
	}
	return out
}

func claimed(matches []int) map[int]bool {
	out := make(map[int]bool, len(matches))
	for _, idx := range matches {
		if idx >= 0 {
			out[idx] = true
		}
	}
	return out
}

func resolveSection(ref SectionRef, m *sectionMapping, surviving map[string]bool) *string {
	if order, ok := ref.Placeholder(); ok {
		if id, found := m.byPlaceholder[order]; found {
			return &id
		}
		return nil
	}
	if id, ok := ref.PersistedID(); ok {
		if mapped, found := m.byID[id]; found {
			return &mapped
		}
		if surviving[id] {
			return &id
		}
	}
	return nil
}
