package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/form-server/config"
)

func HealthCheck(c *gin.Context) {
	// Mặc định trạng thái OK
	response := gin.H{
		"status":  "ok",
		"message": "Service is healthy",
		"db":      "ok",
	}

	sqlDB, err := config.DB.DB()
	if err != nil {
		response["status"] = "error"
		response["db"] = "error: cannot get DB instance"
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		response["status"] = "error"
		response["db"] = "error: cannot connect to DB"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	if config.Redis != nil {
		if err := config.Redis.Ping(c.Request.Context()).Err(); err != nil {
			response["status"] = "error"
			response["redis"] = "error: cannot connect to redis"
			c.JSON(http.StatusInternalServerError, response)
			return
		}
		response["redis"] = "ok"
	}

	c.JSON(http.StatusOK, response)
}
