package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/form-server/controllers"
	"github.com/vnkhanh/form-server/middleware"
)

func SetupRoutes(r *gin.Engine, limiters *middleware.Limiters) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", controllers.HealthCheck)

	// Trang công khai
	r.GET("/f/:slug", controllers.PublicFormPage)
	r.GET("/auth/callback", controllers.AuthCallback)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", middleware.RateLimitByIP(limiters.Auth), controllers.Signup)
			auth.POST("/signin", middleware.RateLimitByIP(limiters.Auth), controllers.Signin)
			auth.POST("/google", middleware.RateLimitByIP(limiters.Auth), controllers.GoogleSignin)
			auth.POST("/signout", middleware.AuthSession(), controllers.Signout)
			auth.GET("/session", middleware.AuthSession(), controllers.Session)
		}

		forms := api.Group("/forms")
		forms.Use(middleware.AuthSession())
		{
			forms.POST("", middleware.RateLimitByIP(limiters.FormsCreate), controllers.CreateForm)
			forms.GET("", controllers.ListForms)
			forms.GET("/pending", controllers.GetPendingForm)

			// Mọi route theo :id đều qua kiểm tra chủ sở hữu
			owned := forms.Group("/:id")
			owned.Use(middleware.CheckFormOwner())
			{
				owned.GET("", controllers.GetFormDetail)
				owned.GET("/title", controllers.GetFormTitle)
				owned.PATCH("", controllers.UpdateForm)
				owned.DELETE("", controllers.DeleteForm)
				owned.PUT("/content", controllers.SaveFormContent)
				owned.POST("/questions", controllers.AddQuestion)
				owned.PUT("/settings", controllers.UpdateFormSettings)
				owned.POST("/publish", controllers.PublishForm)
				owned.POST("/unpublish", controllers.UnpublishForm)
				owned.POST("/branding/logo", controllers.UploadLogo)
				owned.DELETE("/branding/logo", controllers.DeleteLogo)

				owned.GET("/analytics/summary", controllers.GetAnalyticsSummary)
				owned.GET("/analytics/questions", controllers.GetQuestionAnalytics)
				owned.GET("/analytics/trends", controllers.GetAnalyticsTrends)
				owned.GET("/responses", controllers.GetResponses)
				owned.GET("/export", controllers.ExportResponses)
				owned.GET("/qr-pdf", controllers.GetQRCodePDF)
				owned.GET("/live", controllers.LiveResponses)
			}
		}

		api.GET("/public/forms/:slug", controllers.GetPublicForm)
		api.POST("/submit/:slug", middleware.RateLimitByIP(limiters.Submit), controllers.SubmitForm)
	}
}
