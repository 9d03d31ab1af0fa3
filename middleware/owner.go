package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/repository"
)

// CheckFormOwner: nạp form theo :id vào context và chỉ cho chủ sở hữu đi tiếp.
// Mọi route /api/forms/:id/* của chủ form đều đi qua đây.
func CheckFormOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Chưa đăng nhập"})
			return
		}

		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "ID không hợp lệ"})
			return
		}

		f, err := repository.NewFormRepository(config.DB).FindByID(c.Request.Context(), id)
		if repository.IsNotFound(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Form không tồn tại"})
			return
		}
		if err != nil {
			zap.L().Error("load form", zap.String("form_id", id), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy form"})
			return
		}

		if f.UserID != u.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Bạn không có quyền thao tác form này"})
			return
		}

		c.Set(CtxForm, f)
		c.Next()
	}
}
