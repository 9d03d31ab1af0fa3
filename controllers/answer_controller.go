package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/live"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/repository"
	"github.com/vnkhanh/form-server/utils"
)

type submitAnswer struct {
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

type submitReq struct {
	Source  string         `json:"source"`
	Answers []submitAnswer `json:"answers"`
}

// POST /api/submit/:slug
// Không kiểm tra câu hỏi bắt buộc ở server; trình duyệt đã kiểm tra trước khi gửi.
func SubmitForm(c *gin.Context) {
	ctx := c.Request.Context()

	f, err := repository.NewFormRepository(config.DB).FindPublishedBySlug(ctx, c.Param("slug"))
	if repository.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form không tồn tại hoặc chưa được xuất bản"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}

	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Dữ liệu JSON không hợp lệ", "error": err.Error()})
		return
	}

	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		source = models.SourceWeb
	}
	if !models.ValidSource(source) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "source phải là qr hoặc web"})
		return
	}

	answers := make([]models.Answer, 0, len(req.Answers))
	for i, a := range req.Answers {
		if a.QuestionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Thiếu questionId", "index": i})
			return
		}
		value, err := utils.EncodeAnswer(a.Answer)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Giá trị câu trả lời không hợp lệ", "index": i})
			return
		}
		answers = append(answers, models.Answer{QuestionID: a.QuestionID, Value: value})
	}

	resp, err := repository.NewResponseRepository(config.DB).Submit(ctx, f.ID, source, answers)
	if errors.Is(err, repository.ErrUnknownQuestion) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Câu trả lời chứa câu hỏi không thuộc form"})
		return
	}
	if err != nil {
		zap.L().Error("submit response", zap.String("form_id", f.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lưu phản hồi"})
		return
	}

	config.Live.Publish(live.Event{
		Type:       live.EventResponse,
		FormID:     f.ID,
		ResponseID: resp.ID,
		Source:     resp.Source,
		CreatedAt:  resp.CreatedAt,
	})

	c.JSON(http.StatusCreated, gin.H{"message": "Gửi khảo sát thành công", "response_id": resp.ID})
}
