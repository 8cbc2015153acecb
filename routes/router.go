package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentals-api/controllers"
	"rentals-api/domain"
	"rentals-api/dto"
	"rentals-api/middleware"
	"rentals-api/utils"
)

const RouteNotFoundMessage = "Route not found"

// Deps is everything the router needs to mount the API.
type Deps struct {
	Users          *controllers.UserController
	Properties     *controllers.PropertyController
	Bookings       *controllers.BookingController
	Facilities     *controllers.CatalogController[domain.Facility]
	PaymentMethods *controllers.CatalogController[domain.PaymentMethod]
	Home           *controllers.HomeController

	Tokens *utils.TokenManager
	Logger log.Logger

	AllowedOrigins []string

	// Registry receives the HTTP collectors and is served on /metrics.
	Registry *prometheus.Registry

	// Limiter guards the credential endpoints; nil disables rate limiting.
	Limiter         middleware.Limiter
	RateLimitWindow time.Duration
}

// NewRouter builds the gin engine with every route and middleware mounted.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(d.AllowedOrigins)))
	router.Use(middleware.RequestLogger(d.Logger))

	if d.Registry != nil {
		metrics := middleware.NewMetrics(d.Registry, "rentals-api")
		router.Use(metrics.Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Fail(RouteNotFoundMessage))
	})

	auth := middleware.AuthMiddleware(d.Tokens)
	admin := middleware.AdminMiddleware()
	self := middleware.SelfMiddleware()
	limit := func(c *gin.Context) { c.Next() }
	if d.Limiter != nil {
		limit = middleware.RateLimit(d.Limiter, d.RateLimitWindow, d.Logger)
	}

	router.GET("/health", controllers.Health)
	router.GET("/home", d.Home.Stats)

	facilities := router.Group("/facilities")
	{
		facilities.GET("", d.Facilities.List)
		facilities.POST("", auth, admin, d.Facilities.Create)
		facilities.DELETE("/:facility_id", auth, admin, d.Facilities.Delete)
	}

	paymentMethods := router.Group("/payment-methods")
	{
		paymentMethods.GET("", d.PaymentMethods.List)
		paymentMethods.POST("", auth, admin, d.PaymentMethods.Create)
		paymentMethods.DELETE("/:payment_method_id", auth, admin, d.PaymentMethods.Delete)
	}

	users := router.Group("/users")
	{
		users.POST("", limit, d.Users.Signup)
		users.POST("/login", limit, d.Users.Login)
		users.POST("/verify", limit, d.Users.Verify)
		users.POST("/resend-code", limit, d.Users.ResendCode)
		users.POST("/forgot-password", limit, d.Users.ForgotPassword)
		users.POST("/reset-password", limit, d.Users.ResetPassword)

		users.GET("", auth, admin, d.Users.List)
		users.GET("/:user_id", auth, self, d.Users.Get)
		users.PATCH("/:user_id", auth, self, d.Users.Update)
		users.DELETE("/:user_id", auth, admin, d.Users.Delete)
		users.PATCH("/:user_id/status", auth, admin, d.Users.UpdateStatus)
		users.PUT("/:user_id/avatar", auth, self, d.Users.UpdateAvatar)
		users.GET("/:user_id/properties", auth, self, d.Users.Properties)
		users.GET("/:user_id/bookings", auth, self, d.Users.Bookings)
	}

	properties := router.Group("/properties")
	{
		properties.GET("", d.Properties.List)
		properties.GET("/:property_id", d.Properties.Get)
		properties.POST("", auth, d.Properties.Create)
		properties.PATCH("/:property_id", auth, d.Properties.Update)
		properties.DELETE("/:property_id", auth, d.Properties.Delete)
		properties.PATCH("/:property_id/approve", auth, admin, d.Properties.Approve)
		properties.POST("/:property_id/photos", auth, d.Properties.AddPhotos)
	}

	bookings := router.Group("/bookings", auth)
	{
		bookings.POST("", d.Bookings.Create)
		bookings.GET("/:booking_id", d.Bookings.Get)
		bookings.DELETE("/:booking_id", d.Bookings.Delete)
		bookings.PATCH("/:booking_id/rating", d.Bookings.Rate)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
