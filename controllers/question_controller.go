package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/middleware"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/repository"
)

type addQuestionReq struct {
	Type      string   `json:"type" binding:"required"`
	Text      string   `json:"text" binding:"required"`
	Required  bool     `json:"required"`
	Options   []string `json:"options"`
	SectionID *string  `json:"section_id"`
}

// POST /api/forms/:id/questions: thêm một câu hỏi vào cuối form.
func AddQuestion(c *gin.Context) {
	f := middleware.CurrentForm(c)
	ctx := c.Request.Context()

	var req addQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
		return
	}
	if !models.ValidQuestionType(req.Type) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Loại câu hỏi không hợp lệ"})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Nội dung câu hỏi không được để trống"})
		return
	}

	content := repository.NewContentRepository(config.DB)

	// section_id (nếu có) phải thuộc form này
	if req.SectionID != nil && *req.SectionID != "" {
		sections, err := content.ListSections(ctx, f.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
			return
		}
		found := false
		for _, s := range sections {
			if s.ID == *req.SectionID {
				found = true
				break
			}
		}
		if !found {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Section không thuộc form"})
			return
		}
	} else {
		req.SectionID = nil
	}

	order, err := content.NextQuestionOrder(ctx, f.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}

	q := &models.Question{
		FormID:    f.ID,
		SectionID: req.SectionID,
		Type:      req.Type,
		Text:      text,
		Required:  req.Required,
		Options:   repository.EncodeOptions(req.Type, req.Options),
		Order:     order,
	}
	if err := content.CreateQuestion(ctx, q); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo câu hỏi"})
		return
	}
	c.JSON(http.StatusCreated, toQuestionView(*q))
}
