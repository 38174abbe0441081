package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/config"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/handlers"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/services"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, handlers.ErrorBody("RATE_LIMITED", "Too many requests. Try again later."))
}

// Setup builds the gin engine with all middleware and the /api/v1 route
// tree.
func Setup(log *zap.Logger, notifier *services.Notifier) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	router.Use(UserLoader(log))

	authHandler := handlers.NewAuthHandler(log)
	userHandler := handlers.NewUserHandler(log)
	courseHandler := handlers.NewCourseHandler(log)
	groupHandler := handlers.NewGroupHandler(log)
	lessonHandler := handlers.NewLessonHandler(log)
	testHandler := handlers.NewTestHandler(log)
	paymentHandler := handlers.NewPaymentHandler(log)
	notificationHandler := handlers.NewNotificationHandler(notifier, log)
	statsHandler := handlers.NewStatsHandler(log)

	loginLimit := config.Conf.Auth.LoginLimit
	if loginLimit <= 0 {
		loginLimit = 5
	}
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: uint(loginLimit),
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      keyFunc,
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// Credential endpoints are rate limited per client IP.
	api.POST("/auth/register", limiter, authHandler.Register)
	api.POST("/auth/login", limiter, authHandler.Login)

	authed := api.Group("")
	authed.Use(AuthRequired())
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/courses", courseHandler.List)
		authed.GET("/courses/:id", courseHandler.Get)

		authed.GET("/groups", groupHandler.List)
		authed.GET("/groups/:id", groupHandler.Get)

		authed.GET("/lessons", lessonHandler.List)
		authed.GET("/lessons/:id", lessonHandler.Get)
		authed.GET("/schedule", lessonHandler.Schedule)

		authed.GET("/tests", testHandler.List)
		authed.GET("/tests/:id", testHandler.Get)
		authed.POST("/tests/:id/start", testHandler.Start)
		authed.POST("/tests/:id/submit", testHandler.Submit)
		authed.GET("/results", testHandler.MyResults)

		authed.GET("/payments", paymentHandler.List)
		authed.GET("/payments/:id", paymentHandler.Get)

		authed.GET("/notifications", notificationHandler.List)
		authed.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	staff := api.Group("")
	staff.Use(AuthRequired(), StaffRequired())
	{
		staff.GET("/users", userHandler.List)
		staff.POST("/users", userHandler.Create)
		staff.GET("/users/:id", userHandler.Get)
		staff.PATCH("/users/:id", userHandler.Update)
		staff.DELETE("/users/:id", userHandler.Delete)

		staff.POST("/courses", courseHandler.Create)
		staff.PATCH("/courses/:id", courseHandler.Update)
		staff.DELETE("/courses/:id", courseHandler.Delete)

		staff.POST("/groups", groupHandler.Create)
		staff.PATCH("/groups/:id", groupHandler.Update)
		staff.DELETE("/groups/:id", groupHandler.Delete)
		staff.POST("/groups/:id/enroll", groupHandler.Enroll)
		staff.GET("/groups/:id/students", groupHandler.Students)

		staff.POST("/lessons", lessonHandler.Create)
		staff.PATCH("/lessons/:id", lessonHandler.Update)
		staff.DELETE("/lessons/:id", lessonHandler.Delete)

		staff.POST("/tests", testHandler.Create)
		staff.PATCH("/tests/:id", testHandler.Update)
		staff.DELETE("/tests/:id", testHandler.Delete)
		staff.POST("/tests/:id/questions", testHandler.AddQuestion)
		staff.GET("/tests/:id/results", testHandler.Results)
		staff.GET("/tests/:id/stats", statsHandler.TestStats)

		staff.POST("/payments", paymentHandler.Create)
		staff.PATCH("/payments/:id/status", paymentHandler.UpdateStatus)

		staff.POST("/notifications", notificationHandler.Send)

		staff.GET("/stats/overview", statsHandler.Overview)
	}

	return router
}
