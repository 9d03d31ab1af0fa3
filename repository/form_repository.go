package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const slugAttempts = 5

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

// FormSummary là một dòng trong danh sách form của user.
type FormSummary struct {
	models.Form
	ResponseCount int64 `json:"response_count"`
}

// Create tạo form nháp với slug duy nhất; newSlug được gọi lại khi unique index
// trên slug từ chối bản ghi, kể cả khi hai request cùng tạo một slug.
func (r *FormRepository) Create(ctx context.Context, f *models.Form, newSlug func() string) error {
	if f.Status == "" {
		f.Status = models.FormStatusDraft
	}
	f.Settings = datatypes.NewJSONType(utils.NormalizeSettings(f.Settings.Data()))

	for i := 0; i < slugAttempts; i++ {
		f.Slug = newSlug()
		err := r.db.WithContext(ctx).Create(f).Error
		if isDuplicateKey(err) {
			continue
		}
		return err
	}
	return ErrSlugTaken
}

func (r *FormRepository) FindByID(ctx context.Context, id string) (*models.Form, error) {
	var f models.Form
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// FindPublishedBySlug chỉ trả về form đang published; form nháp coi như không tồn tại.
func (r *FormRepository) FindPublishedBySlug(ctx context.Context, slug string) (*models.Form, error) {
	var f models.Form
	err := r.db.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, models.FormStatusPublished).
		First(&f).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (r *FormRepository) ListByUser(ctx context.Context, userID string) ([]FormSummary, error) {
	var forms []models.Form
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&forms).Error; err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return []FormSummary{}, nil
	}

	ids := make([]string, len(forms))
	for i, f := range forms {
		ids[i] = f.ID
	}
	var counts []struct {
		FormID string
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Response{}).
		Select("form_id, COUNT(*) AS total").
		Where("form_id IN ?", ids).
		Group("form_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byForm := make(map[string]int64, len(counts))
	for _, c := range counts {
		byForm[c.FormID] = c.Total
	}

	out := make([]FormSummary, len(forms))
	for i, f := range forms {
		out[i] = FormSummary{Form: f, ResponseCount: byForm[f.ID]}
	}
	return out, nil
}

// UpdateDetails đổi tiêu đề/mô tả; nil = giữ nguyên.
func (r *FormRepository) UpdateDetails(ctx context.Context, id string, title, description *string) error {
	updates := map[string]interface{}{}
	if title != nil {
		updates["title"] = *title
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Form{}).Where("id = ?", id).Updates(updates).Error
}

func (r *FormRepository) UpdateSettings(ctx context.Context, id string, s utils.PresentationSettings) error {
	return r.db.WithContext(ctx).Model(&models.Form{}).
		Where("id = ?", id).
		Update("settings", datatypes.NewJSONType(s)).Error
}

// SetStatus chuyển trạng thái draft ⇄ published.
func (r *FormRepository) SetStatus(ctx context.Context, id, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == models.FormStatusPublished {
		updates["published_at"] = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).Model(&models.Form{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete xoá form cùng toàn bộ section, câu hỏi, phản hồi và câu trả lời.
func (r *FormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		responseIDs := tx.Model(&models.Response{}).Select("id").Where("form_id = ?", id)
		if err := tx.Where("response_id IN (?)", responseIDs).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.Section{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Form{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// IsNotFound tiện cho controllers.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
