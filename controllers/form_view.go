package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/repository"
)

type questionView struct {
	ID        string   `json:"id"`
	SectionID *string  `json:"section_id"`
	Type      string   `json:"type"`
	Text      string   `json:"text"`
	Required  bool     `json:"required"`
	Options   []string `json:"options"`
	Order     int      `json:"order"`
}

func toQuestionView(q models.Question) questionView {
	v := questionView{
		ID:        q.ID,
		SectionID: q.SectionID,
		Type:      q.Type,
		Text:      q.Text,
		Required:  q.Required,
		Order:     q.Order,
	}
	if models.IsChoice(q.Type) {
		v.Options = repository.DecodeOptions(q.Options)
	}
	return v
}

// formContent nạp section và câu hỏi (đã sắp xếp) của form.
func formContent(ctx context.Context, formID string) ([]models.Section, []models.Question, error) {
	content := repository.NewContentRepository(config.DB)
	sections, err := content.ListSections(ctx, formID)
	if err != nil {
		return nil, nil, err
	}
	questions, err := content.ListQuestions(ctx, formID)
	if err != nil {
		return nil, nil, err
	}
	return sections, questions, nil
}

// formDetail dựng JSON đầy đủ của form; withOwner=false dùng cho trang public.
func formDetail(ctx context.Context, f *models.Form, withOwner bool) (gin.H, error) {
	sections, questions, err := formContent(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	if sections == nil {
		sections = []models.Section{}
	}
	qs := make([]questionView, len(questions))
	for i, q := range questions {
		qs[i] = toQuestionView(q)
	}

	out := gin.H{
		"id":          f.ID,
		"title":       f.Title,
		"description": f.Description,
		"slug":        f.Slug,
		"settings":    f.Settings.Data(),
		"sections":    sections,
		"questions":   qs,
	}
	if withOwner {
		out["user_id"] = f.UserID
		out["status"] = f.Status
		out["published_at"] = f.PublishedAt
		out["created_at"] = f.CreatedAt
		out["updated_at"] = f.UpdatedAt
		out["public_url"] = publicFormURL(f)
	}
	return out, nil
}

func publicFormURL(f *models.Form) string {
	return config.Cfg.Server.PublicBaseURL + "/f/" + f.Slug
}
