package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/middleware"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/reconcile"
	"github.com/vnkhanh/form-server/repository"
	"github.com/vnkhanh/form-server/utils"
)

const (
	PendingFormCookie = "pending_form_id"
	pendingFormMaxAge = 5 * 60
)

/* ========== Tạo form nháp ========== */

type createFormReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func CreateForm(c *gin.Context) {
	u := middleware.CurrentUser(c)

	var req createFormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Tiêu đề không được để trống"})
		return
	}

	f := &models.Form{
		UserID:      u.ID,
		Title:       title,
		Description: req.Description,
		Status:      models.FormStatusDraft,
	}
	err := repository.NewFormRepository(config.DB).Create(c.Request.Context(), f, func() string {
		return utils.NewSlug(title)
	})
	if errors.Is(err, repository.ErrSlugTaken) {
		c.JSON(http.StatusConflict, gin.H{"message": "Không thể tạo slug duy nhất, vui lòng thử lại"})
		return
	}
	if err != nil {
		zap.L().Error("create form", zap.String("user_id", u.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo form"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(PendingFormCookie, f.ID, pendingFormMaxAge, "/", "", config.Cfg.Auth.CookieSecure, true)

	c.JSON(http.StatusCreated, gin.H{
		"id":          f.ID,
		"title":       f.Title,
		"description": f.Description,
		"slug":        f.Slug,
		"status":      f.Status,
		"created_at":  f.CreatedAt,
	})
}

// GET /api/forms/pending: form nháp vừa tạo (qua cookie pending_form_id).
func GetPendingForm(c *gin.Context) {
	u := middleware.CurrentUser(c)

	id, err := c.Cookie(PendingFormCookie)
	if err != nil || id == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Không có form đang tạo"})
		return
	}
	f, err := repository.NewFormRepository(config.DB).FindByID(c.Request.Context(), id)
	if err != nil || f.UserID != u.ID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Không có form đang tạo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": f.ID, "title": f.Title, "status": f.Status})
}

/* ========== Danh sách & chi tiết ========== */

func ListForms(c *gin.Context) {
	u := middleware.CurrentUser(c)

	forms, err := repository.NewFormRepository(config.DB).ListByUser(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy danh sách form"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"forms": forms})
}

func GetFormDetail(c *gin.Context) {
	f := middleware.CurrentForm(c)

	out, err := formDetail(c.Request.Context(), f, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy form"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetFormTitle(c *gin.Context) {
	f := middleware.CurrentForm(c)
	c.JSON(http.StatusOK, gin.H{"id": f.ID, "title": f.Title})
}

/* ========== Cập nhật ========== */

type updateFormReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func UpdateForm(c *gin.Context) {
	f := middleware.CurrentForm(c)

	var req updateFormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
		return
	}
	if req.Title == nil && req.Description == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Không có gì để cập nhật"})
		return
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Tiêu đề không được để trống"})
			return
		}
		req.Title = &t
	}

	if err := repository.NewFormRepository(config.DB).UpdateDetails(c.Request.Context(), f.ID, req.Title, req.Description); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Cập nhật thất bại"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

type saveContentReq struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Sections    []reconcile.DraftSection  `json:"sections"`
	Questions   []reconcile.DraftQuestion `json:"questions"`
}

// PUT /api/forms/:id/content: lưu bản nháp của trình soạn form.
func SaveFormContent(c *gin.Context) {
	f := middleware.CurrentForm(c)

	var req saveContentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Tiêu đề không được để trống"})
		return
	}
	for i, q := range req.Questions {
		if !models.ValidQuestionType(q.Type) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Loại câu hỏi không hợp lệ", "index": i, "type": q.Type})
			return
		}
		if strings.TrimSpace(q.Text) == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Nội dung câu hỏi không được để trống", "index": i})
			return
		}
	}

	ctx := c.Request.Context()
	forms := repository.NewFormRepository(config.DB)
	if err := forms.UpdateDetails(ctx, f.ID, &title, &req.Description); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Cập nhật thất bại"})
		return
	}

	report, err := reconcile.Apply(ctx, repository.NewContentRepository(config.DB), f.ID, req.Sections, req.Questions)
	if err != nil {
		zap.L().Error("reconcile form content", zap.String("form_id", f.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lưu nội dung form thất bại", "error": err.Error()})
		return
	}

	fresh, err := forms.FindByID(ctx, f.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy form"})
		return
	}
	out, err := formDetail(ctx, fresh, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy form"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "form": out})
}

/* ========== Cài đặt giao diện ========== */

func UpdateFormSettings(c *gin.Context) {
	f := middleware.CurrentForm(c)

	var patch utils.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
		return
	}

	merged := utils.MergeSettings(f.Settings.Data(), patch)
	if err := utils.ValidateSettings(merged); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	if err := repository.NewFormRepository(config.DB).UpdateSettings(c.Request.Context(), f.ID, merged); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lưu settings thất bại"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": merged})
}

/* ========== Xuất bản ========== */

func PublishForm(c *gin.Context) {
	f := middleware.CurrentForm(c)
	ctx := c.Request.Context()

	n, err := repository.NewContentRepository(config.DB).CountQuestions(ctx, f.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}
	if n == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Form cần ít nhất một câu hỏi để xuất bản"})
		return
	}
	if err := repository.NewFormRepository(config.DB).SetStatus(ctx, f.ID, models.FormStatusPublished); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Xuất bản thất bại"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.FormStatusPublished, "public_url": publicFormURL(f)})
}

func UnpublishForm(c *gin.Context) {
	f := middleware.CurrentForm(c)
	if err := repository.NewFormRepository(config.DB).SetStatus(c.Request.Context(), f.ID, models.FormStatusDraft); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Huỷ xuất bản thất bại"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.FormStatusDraft})
}

/* ========== Xoá ========== */

func DeleteForm(c *gin.Context) {
	f := middleware.CurrentForm(c)
	ctx := c.Request.Context()

	if err := repository.NewFormRepository(config.DB).Delete(ctx, f.ID); err != nil {
		zap.L().Error("delete form", zap.String("form_id", f.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Xoá form thất bại"})
		return
	}

	if logo := f.Settings.Data().Branding.LogoPath; logo != "" && config.Blob != nil {
		if err := config.Blob.Delete(ctx, logo); err != nil {
			zap.L().Warn("delete logo object", zap.String("path", logo), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
