package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"

	"rentals-api/dto"
	"rentals-api/services"
)

type HomeController struct {
	home   services.HomeService
	logger log.Logger
}

func NewHomeController(home services.HomeService, logger log.Logger) *HomeController {
	return &HomeController{home: home, logger: logger}
}

// Stats handles GET /home.
func (ctrl *HomeController) Stats(c *gin.Context) {
	stats, err := ctrl.home.Stats(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", stats,
		dto.Link{Rel: "properties", Href: "/properties", Method: "GET"},
		dto.Link{Rel: "signup", Href: "/users", Method: "POST"},
		dto.Link{Rel: "login", Href: "/users/login", Method: "POST"},
	))
}

// Health handles GET /health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "rentals-api",
	})
}
