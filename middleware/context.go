package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/utils"
)

const (
	CtxUser      = "user"      // *models.User đã đăng nhập
	CtxClaims    = "claims"    // *utils.SessionClaims của phiên hiện tại
	CtxForm      = "formObj"   // *models.Form đã nạp sẵn bởi CheckFormOwner
	CtxRequestID = "request_id"

	SessionCookie = "session"
)

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CtxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func CurrentClaims(c *gin.Context) *utils.SessionClaims {
	if v, ok := c.Get(CtxClaims); ok {
		if cl, ok := v.(*utils.SessionClaims); ok {
			return cl
		}
	}
	return nil
}

// CurrentForm trả về form do CheckFormOwner nạp; chỉ dùng sau middleware đó.
func CurrentForm(c *gin.Context) *models.Form {
	return c.MustGet(CtxForm).(*models.Form)
}
