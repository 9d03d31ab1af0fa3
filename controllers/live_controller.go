package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/live"
	"github.com/vnkhanh/form-server/middleware"
)

// GET /api/forms/:id/live: websocket nhận sự kiện phản hồi mới của form.
func LiveResponses(c *gin.Context) {
	f := middleware.CurrentForm(c)

	conn, err := live.NewUpgrader(config.Cfg.Server.AllowedOrigins).Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade đã tự ghi lỗi HTTP
		zap.L().Warn("websocket upgrade", zap.String("form_id", f.ID), zap.Error(err))
		return
	}

	events, cancel := config.Live.Subscribe(f.ID)
	live.Serve(conn, events, cancel)
}
