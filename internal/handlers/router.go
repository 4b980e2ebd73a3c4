package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crypticandwired/StudentFeedback/internal/auth"
	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/services"
	"github.com/crypticandwired/StudentFeedback/internal/utils"
)

type HandlerManager struct {
	authHandler      *AuthHandler
	userHandler      *UserHandler
	courseHandler    *CourseHandler
	feedbackHandler  *FeedbackHandler
	dashboardHandler *DashboardHandler
	authMiddleware   *JWTAuthMiddleware
	serviceManager   services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	jwtService *auth.JWTService,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewJWTAuthMiddleware(jwtService, userRepo)

	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:      NewUserHandler(serviceManager.User(), logger),
		courseHandler:    NewCourseHandler(serviceManager.Course(), logger),
		feedbackHandler:  NewFeedbackHandler(serviceManager.Feedback(), logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Analytics(), serviceManager.Export(), logger),
		authMiddleware:   authMiddleware,
		serviceManager:   serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", hm.HealthCheck)

	api := router.Group("/api")

	// Public auth routes
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", hm.authHandler.Register)
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/admin/login", hm.authHandler.AdminLogin)
	}

	// Authenticated routes
	authenticated := api.Group("")
	authenticated.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Profile routes - any authenticated user
		profile := authenticated.Group("/profile")
		{
			profile.GET("", hm.userHandler.GetProfile)
			profile.PUT("", hm.userHandler.UpdateProfile)
			profile.PUT("/password", hm.userHandler.ChangePassword)
		}

		// Student routes
		student := authenticated.Group("")
		student.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			student.GET("/courses", hm.courseHandler.ListActiveCourses)

			feedback := student.Group("/feedback")
			{
				feedback.POST("", hm.feedbackHandler.CreateFeedback)
				feedback.GET("/my", hm.feedbackHandler.ListMyFeedback)
				feedback.PUT("/:id", hm.feedbackHandler.UpdateFeedback)
				feedback.DELETE("/:id", hm.feedbackHandler.DeleteFeedback)
			}
		}

		// Admin routes
		admin := authenticated.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/dashboard", hm.dashboardHandler.GetDashboard)
			admin.GET("/analytics", hm.dashboardHandler.GetAnalytics)

			students := admin.Group("/students")
			{
				students.GET("", hm.userHandler.ListStudents)
				students.PUT("/:id/block", hm.userHandler.ToggleBlock)
				students.DELETE("/:id", hm.userHandler.DeleteStudent)
			}

			courses := admin.Group("/courses")
			{
				courses.POST("", hm.courseHandler.CreateCourse)
				courses.GET("", hm.courseHandler.ListCourses)
				courses.GET("/:id", hm.courseHandler.GetCourse)
				courses.PUT("/:id", hm.courseHandler.UpdateCourse)
				courses.DELETE("/:id", hm.courseHandler.DeleteCourse)
			}

			adminFeedback := admin.Group("/feedback")
			{
				adminFeedback.GET("", hm.feedbackHandler.ListFeedback)
				adminFeedback.GET("/export", hm.dashboardHandler.ExportFeedback)
			}
		}
	}
}

// HealthCheck reports service liveness and dependency health
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	health := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "student-feedback-portal",
	}

	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		health["status"] = "unhealthy"
		health["error"] = err.Error()
	}

	c.JSON(status, health)
}
