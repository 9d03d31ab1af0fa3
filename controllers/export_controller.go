package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-server/analytics"
	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/middleware"
	"github.com/vnkhanh/form-server/repository"
	"github.com/vnkhanh/form-server/utils"
)

// GET /api/forms/:id/export: file xlsx, cùng bộ lọc với analytics.
func ExportResponses(c *gin.Context) {
	f, filter, responses, ok := loadResponses(c)
	if !ok {
		return
	}
	questions, err := repository.NewContentRepository(config.DB).ListQuestions(c.Request.Context(), f.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không tìm thấy câu hỏi"})
		return
	}

	x, filename, err := analytics.Workbook(f, questions, responses, filter)
	if err != nil {
		zap.L().Error("build workbook", zap.String("form_id", f.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo file xuất"})
		return
	}
	defer x.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := x.Write(c.Writer); err != nil {
		zap.L().Error("write workbook", zap.String("form_id", f.ID), zap.Error(err))
	}
}

// GET /api/forms/:id/qr-pdf: trang A4 in được, mã QR trỏ tới /f/:slug?source=qr.
func GetQRCodePDF(c *gin.Context) {
	f := middleware.CurrentForm(c)

	link := publicFormURL(f) + "?source=qr"
	var buf bytes.Buffer
	if err := utils.WriteQRPDF(&buf, f.Title, link); err != nil {
		zap.L().Error("render qr pdf", zap.String("form_id", f.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo mã QR"})
		return
	}

	c.Header("Content-Disposition", "inline; filename=\""+f.Slug+"-qr.pdf\"")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
