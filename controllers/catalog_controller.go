package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"

	"rentals-api/domain"
	"rentals-api/dto"
	"rentals-api/services"
)

// CatalogController serves a lookup collection such as /facilities.
type CatalogController[T domain.Facility | domain.PaymentMethod] struct {
	service services.CatalogService[T]
	path    string
	param   string
	entity  string
	logger  log.Logger
}

func NewFacilityController(service services.CatalogService[domain.Facility], logger log.Logger) *CatalogController[domain.Facility] {
	return &CatalogController[domain.Facility]{
		service: service, path: "/facilities", param: "facility_id", entity: "Facility", logger: logger,
	}
}

func NewPaymentMethodController(service services.CatalogService[domain.PaymentMethod], logger log.Logger) *CatalogController[domain.PaymentMethod] {
	return &CatalogController[domain.PaymentMethod]{
		service: service, path: "/payment-methods", param: "payment_method_id", entity: "Payment method", logger: logger,
	}
}

func (ctrl *CatalogController[T]) List(c *gin.Context) {
	items, err := ctrl.service.List(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", items, dto.CollectionLinks(ctrl.path)...))
}

func (ctrl *CatalogController[T]) Create(c *gin.Context) {
	var req dto.NameRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := ctrl.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK(ctrl.entity+" created successfully", item, dto.CollectionLinks(ctrl.path)...))
}

func (ctrl *CatalogController[T]) Delete(c *gin.Context) {
	id, ok := pathID(c, ctrl.param, ctrl.entity)
	if !ok {
		return
	}
	if err := ctrl.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(ctrl.entity+" deleted successfully", nil))
}
