package repository

import (
	"context"

	"github.com/vnkhanh/form-server/models"
	"gorm.io/gorm"
)

// ContentRepository đọc/ghi section và câu hỏi của form; đây là Store của reconcile.
type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) ListSections(ctx context.Context, formID string) ([]models.Section, error) {
	var out []models.Section
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("sort_order ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *ContentRepository) ListQuestions(ctx context.Context, formID string) ([]models.Question, error) {
	var out []models.Question
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("sort_order ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *ContentRepository) CreateSection(ctx context.Context, s *models.Section) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ContentRepository) UpdateSection(ctx context.Context, s *models.Section) error {
	return r.db.WithContext(ctx).Model(&models.Section{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"title":       s.Title,
			"description": s.Description,
			"sort_order":  s.Order,
		}).Error
}

// DeleteSection xoá section; câu hỏi thuộc section được đưa về "không section".
func (r *ContentRepository) DeleteSection(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Question{}).Where("section_id = ?", id).Update("section_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Section{}).Error
	})
}

func (r *ContentRepository) CreateQuestion(ctx context.Context, q *models.Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *ContentRepository) UpdateQuestion(ctx context.Context, q *models.Question) error {
	return r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", q.ID).
		Updates(map[string]interface{}{
			"sort_order": q.Order,
			"type":       q.Type,
			"text":       q.Text,
			"required":   q.Required,
			"options":    q.Options,
			"section_id": q.SectionID,
		}).Error
}

// DeleteQuestion xoá câu hỏi cùng các câu trả lời của nó.
func (r *ContentRepository) DeleteQuestion(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Question{}).Error
	})
}

// NextQuestionOrder = MAX(sort_order)+1 (0-based).
func (r *ContentRepository) NextQuestionOrder(ctx context.Context, formID string) (int, error) {
	var next struct{ Next int }
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("form_id = ?", formID).
		Select("COALESCE(MAX(sort_order), -1) + 1 AS next").
		Scan(&next).Error
	return next.Next, err
}

func (r *ContentRepository) CountQuestions(ctx context.Context, formID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Question{}).Where("form_id = ?", formID).Count(&n).Error
	return n, err
}
