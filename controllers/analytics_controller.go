package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-server/analytics"
	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/middleware"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/repository"
)

// loadResponses đọc bộ lọc từ query và nạp toàn bộ phản hồi của form.
// Trả về ok=false khi đã ghi lỗi ra response.
func loadResponses(c *gin.Context) (*models.Form, analytics.Filter, []models.Response, bool) {
	f := middleware.CurrentForm(c)

	filter, err := analytics.ParseFilter(c.Query("startDate"), c.Query("endDate"), c.Query("source"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return nil, filter, nil, false
	}

	responses, err := repository.NewResponseRepository(config.DB).ListWithAnswers(c.Request.Context(), f.ID)
	if err != nil {
		zap.L().Error("list responses", zap.String("form_id", f.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy danh sách phản hồi"})
		return nil, filter, nil, false
	}
	return f, filter, responses, true
}

// GET /api/forms/:id/analytics/summary
func GetAnalyticsSummary(c *gin.Context) {
	f, filter, responses, ok := loadResponses(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"form_id": f.ID,
		"summary": analytics.Summarize(responses, filter),
	})
}

// GET /api/forms/:id/analytics/questions
func GetQuestionAnalytics(c *gin.Context) {
	f, filter, responses, ok := loadResponses(c)
	if !ok {
		return
	}
	questions, err := repository.NewContentRepository(config.DB).ListQuestions(c.Request.Context(), f.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không tìm thấy câu hỏi"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"form_id":   f.ID,
		"summary":   analytics.Summarize(responses, filter),
		"questions": analytics.QuestionStats(questions, responses, filter),
	})
}

// GET /api/forms/:id/analytics/trends
func GetAnalyticsTrends(c *gin.Context) {
	f, filter, responses, ok := loadResponses(c)
	if !ok {
		return
	}
	points, err := analytics.Trends(responses, filter)
	if errors.Is(err, analytics.ErrRangeTooLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tính xu hướng"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"form_id": f.ID, "trends": points})
}

// GET /api/forms/:id/responses?page=1&limit=10&startDate=2025-09-01&endDate=2025-09-21
func GetResponses(c *gin.Context) {
	f, filter, responses, ok := loadResponses(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, total := analytics.Page(responses, filter, page, limit)
	c.JSON(http.StatusOK, gin.H{
		"form_id":   f.ID,
		"page":      page,
		"limit":     limit,
		"total":     total,
		"responses": rows,
	})
}
