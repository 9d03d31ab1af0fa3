package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/repository"
	"github.com/vnkhanh/form-server/utils"
)

// SessionToken lấy JWT phiên từ cookie "session", nếu không có thì từ Authorization: Bearer.
func SessionToken(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// AuthSession xác thực phiên, kiểm tra danh sách thu hồi, nạp user vào context.
func AuthSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := SessionToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Chưa đăng nhập"})
			return
		}

		claims, err := utils.VerifyToken(config.Cfg.Auth.JWTSecret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Phiên đăng nhập không hợp lệ"})
			return
		}

		revoked, err := config.Sessions.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			zap.L().Error("check revoked session", zap.String("jti", claims.ID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Không thể kiểm tra phiên đăng nhập"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Phiên đăng nhập đã kết thúc"})
			return
		}

		user, err := repository.NewUserRepository(config.DB).FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Không tìm thấy người dùng"})
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}
