package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/middleware"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/repository"
	"github.com/vnkhanh/form-server/utils"
)

const verifyTokenTTL = 24 * time.Hour

// ValidateGoogleIDToken được thay trong test.
var ValidateGoogleIDToken = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, token, audience)
}

func publicUser(u *models.User) gin.H {
	return gin.H{
		"id":             u.ID,
		"email":          u.Email,
		"name":           u.Name,
		"email_verified": u.EmailVerified,
		"created_at":     u.CreatedAt,
	}
}

func setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(config.Cfg.Auth.SessionTTL.Seconds()), "/", "", config.Cfg.Auth.CookieSecure, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", config.Cfg.Auth.CookieSecure, true)
}

// startSession tạo JWT mới cho user và gắn vào cookie.
func startSession(c *gin.Context, u *models.User) (string, bool) {
	token, _, err := utils.GenerateToken(config.Cfg.Auth.JWTSecret, u.ID, config.Cfg.Auth.SessionTTL)
	if err != nil {
		zap.L().Error("generate session token", zap.String("user_id", u.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo phiên đăng nhập"})
		return "", false
	}
	setSessionCookie(c, token)
	return token, true
}

/* ========== Đăng ký ========== */

type signupReq struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	Name            string `json:"name"`
}

func Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Mật khẩu xác nhận không khớp"})
		return
	}
	// bcrypt giới hạn 72 byte, tag max đếm theo ký tự
	if len(req.Password) > utils.MaxPasswordBytes {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Mật khẩu quá dài"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể mã hóa mật khẩu"})
		return
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	}
	token, secret, err := utils.GenerateVerifyToken(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo mã xác nhận"})
		return
	}
	if u.VerifyTokenHash, err = utils.HashVerifySecret(secret); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo mã xác nhận"})
		return
	}
	expires := time.Now().Add(verifyTokenTTL)
	u.VerifyExpiresAt = &expires

	err = repository.NewUserRepository(config.DB).Create(c.Request.Context(), u)
	if errors.Is(err, repository.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"message": "Email đã tồn tại"})
		return
	}
	if err != nil {
		zap.L().Error("create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể tạo tài khoản"})
		return
	}

	// Gửi mail nằm ngoài hệ thống; link xác nhận được ghi log.
	link := config.Cfg.Server.PublicBaseURL + "/auth/callback?token=" + url.QueryEscape(token)
	zap.L().Info("verification link issued", zap.String("user_id", u.ID), zap.String("email", u.Email), zap.String("link", link))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đã tạo tài khoản, vui lòng xác nhận email",
		"user":    publicUser(u),
	})
}

/* ========== Xác nhận email ========== */

// safeNext chỉ chấp nhận đường dẫn tương đối trong cùng site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/dashboard"
	}
	return next
}

// GET /auth/callback?token=<userID>.<secret>&next=/path
func AuthCallback(c *gin.Context) {
	fail := func() {
		c.Redirect(http.StatusFound, "/login?error=verification_failed")
	}

	userID, secret, ok := utils.SplitVerifyToken(c.Query("token"))
	if !ok {
		fail()
		return
	}

	users := repository.NewUserRepository(config.DB)
	u, err := users.FindByID(c.Request.Context(), userID)
	if err != nil {
		fail()
		return
	}
	if u.VerifyExpiresAt == nil || time.Now().After(*u.VerifyExpiresAt) || !utils.CheckVerifySecret(u.VerifyTokenHash, secret) {
		fail()
		return
	}
	if err := users.MarkVerified(c.Request.Context(), u.ID); err != nil {
		zap.L().Error("mark verified", zap.String("user_id", u.ID), zap.Error(err))
		fail()
		return
	}
	u.EmailVerified = true

	token, _, err := utils.GenerateToken(config.Cfg.Auth.JWTSecret, u.ID, config.Cfg.Auth.SessionTTL)
	if err != nil {
		fail()
		return
	}
	setSessionCookie(c, token)
	c.Redirect(http.StatusFound, safeNext(c.Query("next")))
}

/* ========== Đăng nhập ========== */

type signinReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Signin(c *gin.Context) {
	var req signinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
		return
	}

	u, err := repository.NewUserRepository(config.DB).FindByEmail(c.Request.Context(), req.Email)
	if err != nil && !repository.IsNotFound(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}
	if u == nil || u.PasswordHash == "" || !utils.CheckPassword(u.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Email hoặc mật khẩu không đúng"})
		return
	}
	if !u.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{"message": "Email chưa được xác nhận"})
		return
	}

	token, ok := startSession(c, u)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(u), "token": token})
}

type googleReq struct {
	IDToken string `json:"id_token" binding:"required"`
}

// POST /api/auth/google
func GoogleSignin(c *gin.Context) {
	var req googleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Payload không hợp lệ", "error": err.Error()})
		return
	}
	if config.Cfg.Auth.GoogleClientID == "" {
		c.JSON(http.StatusNotImplemented, gin.H{"message": "Chưa cấu hình đăng nhập Google"})
		return
	}

	payload, err := ValidateGoogleIDToken(c.Request.Context(), req.IDToken, config.Cfg.Auth.GoogleClientID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google token không hợp lệ"})
		return
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if payload.Subject == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google token thiếu thông tin"})
		return
	}

	ctx := c.Request.Context()
	users := repository.NewUserRepository(config.DB)

	u, err := users.FindByGoogleSub(ctx, payload.Subject)
	if repository.IsNotFound(err) {
		u, err = users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if err = users.LinkGoogle(ctx, u.ID, payload.Subject); err == nil {
				u.EmailVerified = true
			}
		case repository.IsNotFound(err):
			sub := payload.Subject
			u = &models.User{Email: email, Name: name, GoogleSub: &sub, EmailVerified: true}
			err = users.Create(ctx, u)
		}
	}
	if err != nil {
		zap.L().Error("google signin", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể đăng nhập bằng Google"})
		return
	}

	token, ok := startSession(c, u)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(u), "token": token})
}

// POST /api/auth/signout (cần AuthSession)
func Signout(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims != nil && claims.ExpiresAt != nil {
		if err := config.Sessions.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			zap.L().Error("revoke session", zap.String("jti", claims.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể đăng xuất"})
			return
		}
	}
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Đã đăng xuất"})
}

// GET /api/auth/session (cần AuthSession)
func Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": publicUser(middleware.CurrentUser(c))})
}
