package app

import (
	"strconv"
	"time"

	"edconnect_backend/docs"
	"edconnect_backend/internal/middleware"
	"edconnect_backend/internal/model"
	"edconnect_backend/internal/util"
	"edconnect_backend/pkg/monitoring"
	"edconnect_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// tutorKey 辅导接口按用户限流，未登录时退回 IP
func tutorKey(c *gin.Context) string {
	if claims := util.GetUserFromContext(c); claims != nil {
		return "user:" + strconv.FormatUint(uint64(claims.UserID), 10)
	}
	return security.ClientIP(c)
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由，支持 Bearer token 和会话 cookie
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(s.auth, s.sessionStore, a.Config.Session.Name))
	{
		authGroup.GET("/user", c.auth.CurrentUser)

		a.registerTutorRoutes(authGroup, c)
		a.registerAchievementRoutes(authGroup, c)
		a.registerLearningPathRoutes(authGroup, c)
		a.registerSchoolRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.POST("/logout", c.auth.Logout)
	}
}

func (a *App) registerTutorRoutes(rg *gin.RouterGroup, c *controllers) {
	tutor := rg.Group("/tutor")
	tutor.Use(security.RateLimiterByKey(a.Config.RateLimit.TutorPerMinute, time.Minute, tutorKey))
	{
		// 学生专用
		student := tutor.Group("")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.GET("/session", c.tutor.GetSession)
			student.POST("/message", c.tutor.SendMessage)
			student.POST("/session/end", c.tutor.EndSession)
			student.POST("/chat", c.tutor.Chat)
		}

		// 教师和管理员按权限范围查看
		tutor.GET("/sessions", c.tutor.ListSessions)
		tutor.GET("/sessions/:id/messages", c.tutor.ListMessages)
	}
}

func (a *App) registerAchievementRoutes(rg *gin.RouterGroup, c *controllers) {
	achievements := rg.Group("/achievements")
	{
		achievements.GET("", c.achievement.List)
		achievements.GET("/shared", c.achievement.Shared)
		achievements.POST("", middleware.RoleMiddleware(model.Educator), c.achievement.Award)
		achievements.PATCH("/:id/progress", c.achievement.UpdateProgress)
		achievements.PATCH("/:id/share", c.achievement.Share)
	}
}

func (a *App) registerLearningPathRoutes(rg *gin.RouterGroup, c *controllers) {
	paths := rg.Group("/learning-paths")
	{
		paths.GET("", c.learningPath.List)
		paths.GET("/:id", c.learningPath.Get)
		paths.POST("/:id/nodes/:nodeId/complete", middleware.RoleMiddleware(model.Student), c.learningPath.CompleteNode)

		educators := paths.Group("")
		educators.Use(middleware.RoleMiddleware(model.Educator))
		{
			educators.POST("", c.learningPath.Create)
			educators.POST("/:id/nodes", c.learningPath.AddNode)
		}
	}
}

func (a *App) registerSchoolRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/analytics/educator-performance", middleware.RoleMiddleware(model.Educator), c.analytics.EducatorPerformance)

	rg.GET("/users", middleware.RoleMiddleware(model.Educator), c.school.ListUsers)

	rg.GET("/departments", c.school.ListDepartments)
	rg.POST("/departments", middleware.RoleMiddleware(model.Admin), c.school.CreateDepartment)

	classes := rg.Group("/classes")
	{
		classes.GET("", c.school.ListClasses)
		classes.GET("/:id/enrollments", c.school.ListEnrollments)
		classes.POST("", middleware.RoleMiddleware(model.Educator), c.school.CreateClass)
		classes.POST("/:id/enrollments", middleware.RoleMiddleware(model.Educator), c.school.Enroll)
	}

	rg.GET("/grades", c.school.ListGrades)
	rg.POST("/grades", middleware.RoleMiddleware(model.Educator), c.school.RecordGrade)
	rg.GET("/attendance", c.school.ListAttendance)
	rg.POST("/attendance", middleware.RoleMiddleware(model.Educator), c.school.RecordAttendance)
}
