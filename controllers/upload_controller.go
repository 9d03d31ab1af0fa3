package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/middleware"
	"github.com/vnkhanh/form-server/repository"
)

const maxLogoSize = 2 << 20

var logoTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// sniffLogoType xác định loại ảnh từ nội dung; svg được nhận theo đuôi file.
func sniffLogoType(filename string, head []byte) (string, error) {
	ct := http.DetectContentType(head)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	if _, ok := logoTypes[ct]; ok {
		return ct, nil
	}
	if strings.EqualFold(filepath.Ext(filename), ".svg") && bytes.Contains(head, []byte("<svg")) {
		return "image/svg+xml", nil
	}
	return "", fmt.Errorf("loại file không được hỗ trợ")
}

// POST /api/forms/:id/branding/logo (multipart "file")
func UploadLogo(c *gin.Context) {
	f := middleware.CurrentForm(c)
	ctx := c.Request.Context()

	if config.Blob == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Chưa cấu hình lưu trữ file"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Không nhận được file"})
		return
	}
	if fileHeader.Size > maxLogoSize {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "File vượt quá 2MB"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Không đọc được file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxLogoSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Không đọc được file"})
		return
	}
	if len(data) > maxLogoSize {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "File vượt quá 2MB"})
		return
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType, err := sniffLogoType(fileHeader.Filename, head)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	path := fmt.Sprintf("logos/%s/%s%s", f.ID, uuid.NewString(), logoTypes[contentType])
	publicURL, err := config.Blob.Upload(ctx, path, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		zap.L().Error("upload logo", zap.String("form_id", f.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": "Upload thất bại"})
		return
	}

	settings := f.Settings.Data()
	previous := settings.Branding.LogoPath
	settings.Branding.LogoURL = publicURL
	settings.Branding.LogoPath = path
	if err := repository.NewFormRepository(config.DB).UpdateSettings(ctx, f.ID, settings); err != nil {
		_ = config.Blob.Delete(ctx, path)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lưu settings thất bại"})
		return
	}
	if previous != "" && previous != path {
		if err := config.Blob.Delete(ctx, previous); err != nil {
			zap.L().Warn("delete previous logo", zap.String("path", previous), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Upload thành công", "url": publicURL, "settings": settings})
}

// DELETE /api/forms/:id/branding/logo
func DeleteLogo(c *gin.Context) {
	f := middleware.CurrentForm(c)
	ctx := c.Request.Context()

	settings := f.Settings.Data()
	path := settings.Branding.LogoPath
	settings.Branding.LogoURL = ""
	settings.Branding.LogoPath = ""
	if err := repository.NewFormRepository(config.DB).UpdateSettings(ctx, f.ID, settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lưu settings thất bại"})
		return
	}
	if path != "" && config.Blob != nil {
		if err := config.Blob.Delete(ctx, path); err != nil {
			zap.L().Warn("delete logo object", zap.String("path", path), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
