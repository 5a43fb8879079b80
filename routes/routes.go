package routes

import (
	"audio-screening-api/controllers"
	"audio-screening-api/middleware"
	"audio-screening-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Audio Screening API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				// Artists file new submissions and follow their outcomes
				submissions.POST("", middleware.RequireRole(models.RoleArtist), controllers.CreateSubmission)
				submissions.GET("/mine", middleware.RequireRole(models.RoleArtist), controllers.GetMySubmissions)

				// Reviewers and admins work the queue
				submissions.GET("", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.GetSubmissions)
				submissions.GET("/:id", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.GetSubmission)

				// Reviews (blind until you contribute; timer-gated creation)
				submissions.GET("/:id/reviews", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.GetSubmissionReviews)
				submissions.POST("/:id/reviews", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.SubmitReview)
				submissions.GET("/:id/eligible", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.IsReviewEligible)

				// Decision workflow
				submissions.POST("/:id/decision", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.DecideSubmission)
				submissions.PUT("/:id/decision-note", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.UpdateDecisionNote)

				// Visibility overlay
				submissions.POST("/:id/ignore", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.IgnoreSubmission)
				submissions.DELETE("/:id/ignore", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.UnignoreSubmission)
			}

			// Review edits (own reviews, pre-decision only)
			reviews := protected.Group("/reviews")
			reviews.Use(middleware.RequireRole(models.RoleReviewer, models.RoleAdmin))
			{
				reviews.PUT("/:id", controllers.UpdateReview)
				reviews.DELETE("/:id", controllers.DeleteReview)
			}

			// Listen timer
			timer := protected.Group("/timer")
			timer.Use(middleware.RequireRole(models.RoleReviewer, models.RoleAdmin))
			{
				timer.POST("/request", controllers.RequestTimer)
				timer.GET("/status", controllers.GetTimerStatus)
				timer.POST("/cancel", controllers.CancelTimer)
				timer.GET("/events", controllers.StreamTimerEvents)
			}

			// Rankings
			protected.GET("/rankings", controllers.GetRankings)

			// Admin
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/timer/override", controllers.OverrideTimer)
				admin.GET("/screening-config", controllers.GetScreeningConfig)
				admin.PUT("/screening-config", controllers.UpdateScreeningConfig)
			}
		}
	}
}
