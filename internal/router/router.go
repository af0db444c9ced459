package router

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"kasap-service/internal/handlers"
	"kasap-service/internal/middleware"
	"kasap-service/internal/models"
	"kasap-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Deps struct {
	Auth     service.AuthService
	Orders   service.OrderService
	Calendar service.CalendarService
	// Ready reports whether backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
	Log   *zap.Logger
}

func init() {
	// Report JSON field names in validation errors.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	}
}

func Router(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.Log)
	calendarHandler := handlers.NewCalendarHandler(d.Calendar, d.Log)

	authRequired := middleware.AuthRequired(d.Auth, d.Log)
	staffOnly := middleware.RequireRole(models.RoleButcher, models.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/sign-up", authHandler.SignUp)
		auth.POST("/sign-in", authHandler.SignIn)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/reset-password/confirm", authHandler.ConfirmPasswordReset)
		auth.POST("/sign-out", authRequired, authHandler.SignOut)
		auth.GET("/me", authRequired, authHandler.Me)
		auth.PATCH("/profile", authRequired, authHandler.UpdateProfile)

		v1.GET("/charities", orderHandler.ListCharities)

		slots := v1.Group("/slots")
		slots.GET("/available", calendarHandler.AvailableSlots)
		slots.GET("/date/:date", calendarHandler.SlotsForDate)
		slots.GET("/:id/availability", calendarHandler.SlotAvailability)

		orders := v1.Group("/orders", authRequired)
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.ListMyOrders)
		orders.GET("/statistics", orderHandler.MyStatistics)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
		orders.POST("/:id/media", orderHandler.AttachMedia)

		appts := v1.Group("/appointments", authRequired)
		appts.POST("", calendarHandler.CreateAppointment)
		appts.GET("", calendarHandler.ListAppointments)
		appts.GET("/upcoming", calendarHandler.UpcomingAppointments)
		appts.GET("/stats", calendarHandler.AppointmentStats)
		appts.GET("/:id", calendarHandler.GetAppointment)
		appts.POST("/:id/cancel", calendarHandler.CancelAppointment)

		staff := v1.Group("/staff", authRequired, staffOnly)
		staff.GET("/orders", orderHandler.ListAllOrders)
		staff.GET("/orders/statistics", orderHandler.AllStatistics)
		staff.GET("/orders/search", orderHandler.SearchOrders)
		staff.GET("/orders/status/:status", orderHandler.ListByStatus)
		staff.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
		staff.PATCH("/orders/:id/payment", orderHandler.UpdatePayment)
		staff.POST("/slots", calendarHandler.CreateSlot)
		staff.PATCH("/appointments/:id/status", calendarHandler.UpdateAppointmentStatus)
	}

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
