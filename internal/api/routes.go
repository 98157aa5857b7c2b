package api

import (
	"lessonhub/internal/domain"
	"lessonhub/internal/service"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services bundles what the router needs.
type Services struct {
	Sessions service.SessionService
	Users    service.UserService
	Courses  service.CourseService
	Progress service.ProgressService
	Routines service.RoutineService
}

// RouterOptions carries the non-service settings of the router.
type RouterOptions struct {
	AllowedOrigins []string
	LoginLimiter   AttemptLimiter // Required
	Logger         *log.Logger
}

func SetupRoutes(router *gin.Engine, svc Services, opts RouterOptions) {
	registerValidators()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = opts.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.MaxAge = 12 * time.Hour
	if len(corsConfig.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig))
	}

	logger := opts.Logger
	sessionHandler := NewSessionHandler(svc.Sessions, logger)
	userHandler := NewUserHandler(svc.Users, logger)
	courseHandler := NewCourseHandler(svc.Courses, logger)
	progressHandler := NewProgressHandler(svc.Progress, logger)
	routineHandler := NewRoutineHandler(svc.Routines, logger)

	authMiddleware := AuthMiddleware(svc.Sessions)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		sessionGroup := apiV1.Group("/session")
		{
			sessionGroup.POST("/profile", sessionHandler.SelectProfile)
			sessionGroup.POST("/admin", RateLimitMiddleware(opts.LoginLimiter, "admin_login", logger), sessionHandler.AdminLogin)
		}

		// --- Public catalog and profile picker ---
		apiV1.GET("/users", userHandler.ListUsers)
		apiV1.POST("/users", userHandler.AddUser)
		apiV1.GET("/courses", courseHandler.ListCourses)
		apiV1.GET("/courses/:slug", courseHandler.GetCourse)
		apiV1.GET("/pdfs", courseHandler.ListPDFs)
	}

	// --- Selected profile ---
	me := apiV1.Group("/me")
	me.Use(authMiddleware, RoleMiddleware(domain.RoleProfile), ProfileExistsMiddleware(svc.Users))
	{
		me.GET("", userHandler.GetMe)
		me.PUT("", userHandler.UpdateMe)
		me.DELETE("", userHandler.DeleteMe)

		me.GET("/progress", progressHandler.GetWatched)
		me.GET("/progress/summary", progressHandler.GetSummary)
		me.POST("/progress/watched", progressHandler.MarkWatched)
		me.POST("/progress/playback", progressHandler.ReportPlayback)
		me.PUT("/progress/position", progressHandler.UpdatePosition)

		me.GET("/courses/:courseId/last-watched", progressHandler.GetLastWatched)
		me.PUT("/courses/:courseId/last-watched", progressHandler.SetLastWatched)
		me.GET("/courses/:courseId/resume", progressHandler.GetResume)

		me.GET("/routine", routineHandler.GetRoutine)
		me.PUT("/routine", routineHandler.SaveRoutine)
		me.DELETE("/routine", routineHandler.ResetRoutine)
	}

	// --- Admin area ---
	admin := apiV1.Group("/admin")
	admin.Use(authMiddleware, RoleMiddleware(domain.RoleAdmin))
	{
		admin.POST("/courses", courseHandler.CreateCourse)
		admin.PUT("/courses/order", courseHandler.ReorderCourses)
		admin.PUT("/courses/:courseId", courseHandler.UpdateCourse)
		admin.DELETE("/courses/:courseId", courseHandler.DeleteCourse)
		admin.POST("/courses/:courseId/lessons/:lessonId/pdf", courseHandler.RequestPDFUpload)
		admin.PUT("/courses/:courseId/lessons/:lessonId/pdf", courseHandler.AttachPDF)

		admin.GET("/progress", progressHandler.GetAllProgress)
		admin.DELETE("/users/:userId", userHandler.DeleteUser)
	}
}
