package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vnkhanh/form-server/models"
	"gorm.io/gorm"
)

var ErrUnknownQuestion = errors.New("câu hỏi không thuộc form")

type ResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Submit ghi một Response và các Answer trong cùng transaction.
// Mọi Answer phải trỏ tới câu hỏi của formID.
func (r *ResponseRepository) Submit(ctx context.Context, formID, source string, answers []models.Answer) (*models.Response, error) {
	resp := &models.Response{FormID: formID, Source: source, CreatedAt: time.Now().UTC()}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(answers) > 0 {
			ids := make([]string, 0, len(answers))
			seen := make(map[string]bool, len(answers))
			for _, a := range answers {
				if !seen[a.QuestionID] {
					seen[a.QuestionID] = true
					ids = append(ids, a.QuestionID)
				}
			}
			var count int64
			if err := tx.Model(&models.Question{}).
				Where("form_id = ? AND id IN ?", formID, ids).
				Count(&count).Error; err != nil {
				return err
			}
			if count != int64(len(ids)) {
				return ErrUnknownQuestion
			}
		}

		if err := tx.Create(resp).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].ResponseID = resp.ID
			if err := tx.Create(&answers[i]).Error; err != nil {
				return fmt.Errorf("lưu câu trả lời cho câu hỏi %s: %w", answers[i].QuestionID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp.Answers = answers
	return resp, nil
}

// ListWithAnswers trả về mọi phản hồi của form (cũ → mới) kèm câu trả lời.
func (r *ResponseRepository) ListWithAnswers(ctx context.Context, formID string) ([]models.Response, error) {
	var out []models.Response
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("form_id = ?", formID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
