package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"

	"rentals-api/dto"
	"rentals-api/filters"
	"rentals-api/services"
)

// PropertyController serves /properties.
type PropertyController struct {
	properties services.PropertyService
	logger     log.Logger
}

func NewPropertyController(properties services.PropertyService, logger log.Logger) *PropertyController {
	return &PropertyController{properties: properties, logger: logger}
}

// List handles GET /properties.
// Example: GET /properties?destination=Lisbon&min_price=50&check_in_date=2030-01-10&check_out_date=2030-01-12
func (ctrl *PropertyController) List(c *gin.Context) {
	// 1. Parse filters, sort and page; bad values answer 400 here
	spec, err := filters.PropertySpec(c.Request.URL.Query())
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	// 2. The service restricts the search to approved listings
	props, p, err := ctrl.properties.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	// 3. Page plus first/previous/next/last links
	c.JSON(http.StatusOK, dto.Page(props, p, dto.ListLinks("/properties", spec.Params, p)))
}

// Get handles GET /properties/:property_id.
func (ctrl *PropertyController) Get(c *gin.Context) {
	id, ok := pathID(c, "property_id", "Property")
	if !ok {
		return
	}

	property, err := ctrl.properties.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", property, dto.PropertyLinks(property.ID)...))
}

// Create handles POST /properties.
func (ctrl *PropertyController) Create(c *gin.Context) {
	// 1. Parse the listing
	var req dto.CreatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. The caller becomes the owner; new listings start as pending
	property, err := ctrl.properties.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	// 3. 201 with the stored listing
	c.JSON(http.StatusCreated, dto.OK(
		"Property created successfully. It will be listed once approved",
		property, dto.PropertyLinks(property.ID)...,
	))
}

// Update handles PATCH /properties/:property_id.
func (ctrl *PropertyController) Update(c *gin.Context) {
	id, ok := pathID(c, "property_id", "Property")
	if !ok {
		return
	}
	var req dto.UpdatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	// owner or admin; the service answers 403 to anyone else
	property, changed, err := ctrl.properties.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(updated(changed, "Property updated successfully"), property, dto.PropertyLinks(property.ID)...))
}

// Approve handles PATCH /properties/:property_id/approve.
func (ctrl *PropertyController) Approve(c *gin.Context) {
	id, ok := pathID(c, "property_id", "Property")
	if !ok {
		return
	}

	property, changed, err := ctrl.properties.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(updated(changed, "Property approved successfully"), property, dto.PropertyLinks(property.ID)...))
}

// AddPhotos handles POST /properties/:property_id/photos with multipart
// "photos" files.
func (ctrl *PropertyController) AddPhotos(c *gin.Context) {
	id, ok := pathID(c, "property_id", "Property")
	if !ok {
		return
	}
	// every file under the "photos" key is uploaded
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail([]string{"At least one photo is required"}))
		return
	}

	property, err := ctrl.properties.AddPhotos(c.Request.Context(), actor(c), id, form.File["photos"])
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("Photos uploaded successfully", property, dto.PropertyLinks(property.ID)...))
}

// Delete handles DELETE /properties/:property_id.
func (ctrl *PropertyController) Delete(c *gin.Context) {
	id, ok := pathID(c, "property_id", "Property")
	if !ok {
		return
	}
	if err := ctrl.properties.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Property deleted successfully", nil))
}
