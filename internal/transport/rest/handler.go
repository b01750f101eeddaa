package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/events"
	"lotus/internal/service"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
	hub      *events.Hub
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config, hub *events.Hub) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
		hub:      hub,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.PUT("/me", h.updateCurrentUser)
			users.PUT("/me/password", h.updatePassword)

			admin := users.Group("/")
			admin.Use(h.adminMiddleware())
			{
				admin.GET("/", h.getUsers)
				admin.GET("/:id", h.getUserByID)
			}
		}

		categories := api.Group("/categories")
		{
			categories.GET("/", h.getCategories)

			admin := categories.Group("/", h.authMiddleware(), h.adminMiddleware())
			{
				admin.POST("/", h.createCategory)
			}
		}

		services := api.Group("/services")
		{
			services.GET("/", h.getServices)
			services.GET("/:id", h.getServiceByID)
			services.GET("/:id/reviews", h.getServiceReviews)

			admin := services.Group("/", h.authMiddleware(), h.adminMiddleware())
			{
				admin.POST("/", h.createService)
				admin.PUT("/:id", h.updateService)
				admin.DELETE("/:id", h.deactivateService)
				admin.POST("/:id/photo", h.uploadServicePhoto)
			}
		}

		appointments := api.Group("/appointments")
		appointments.Use(h.authMiddleware())
		{
			appointments.GET("/free-slots", h.getFreeSlots)
			appointments.POST("/", h.createBooking)
			appointments.GET("/me", h.getMyAppointments)
			appointments.GET("/:id", h.getAppointmentByID)
			appointments.DELETE("/:id", h.cancelAppointment)

			staff := appointments.Group("/", h.staffMiddleware())
			{
				staff.GET("/", h.getAppointments)
				staff.PUT("/:id/status", h.updateAppointmentStatus)
			}
		}

		promotions := api.Group("/promotions")
		{
			promotions.GET("/", h.getPromotions)

			auth := promotions.Group("/", h.authMiddleware())
			{
				auth.POST("/available", h.getAvailablePromotions)
				auth.POST("/quote", h.getCheckoutQuote)
				auth.GET("/redeemable", h.getRedeemablePromotions)
				auth.POST("/:id/redeem", h.redeemPromotion)
				auth.GET("/redeemed", h.getRedeemedVouchers)

				admin := auth.Group("/", h.adminMiddleware())
				{
					admin.POST("/", h.createPromotion)
					admin.PUT("/:id", h.updatePromotion)
				}
			}
		}

		wallet := api.Group("/wallet")
		wallet.Use(h.authMiddleware())
		{
			wallet.GET("/", h.getWalletSummary)
			wallet.GET("/history", h.getPointsHistory)
			wallet.GET("/tiers", h.getTiers)
		}

		courses := api.Group("/courses")
		courses.Use(h.authMiddleware())
		{
			courses.GET("/me", h.getMyCourses)
			courses.GET("/:id", h.getCourseByID)

			staff := courses.Group("/", h.staffMiddleware())
			{
				staff.POST("/", h.createCourse)
				staff.PUT("/:id/sessions/:number", h.updateCourseSession)
			}
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/", h.getReviews)
			reviews.POST("/", h.authMiddleware(), h.createReview)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/", h.authMiddleware(), h.processPayment)
			payments.POST("/webhook", h.stripeWebhook)
		}
	}

	router.GET("/ws/events", h.handleEvents)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.config.Version})
	})
}

// handleEvents авторизует WebSocket по токену в query: браузерный клиент
// не может выставить заголовок Authorization при апгрейде.
func (h *Handler) handleEvents(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		unauthorizedResponse(c)
		return
	}

	userID, _, err := h.services.Auth.ParseToken(c.Request.Context(), token)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	h.hub.HandleWebSocket(c, userID)
}
