package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"rentals-api/domain"
	"rentals-api/dto"
	"rentals-api/filters"
	"rentals-api/middleware"
	"rentals-api/services"
	"rentals-api/uploads"
)

const (
	InternalErrorMessage   = "Something went wrong. Please try again later"
	NoResultsMessage       = "No results found"
	NoMoreResultsMessage   = "No more results"
	NoUpdatesMessage       = "No updates were made"
	InvalidLoginMessage    = "Invalid email or password"
	BlockedMessage         = "Your account has been blocked"
	NotVerifiedMessage     = "Please verify your email before logging in"
	InvalidCodeMessage     = "Invalid or expired code"
	InUseMessage           = "This record is still in use and cannot be deleted"
	UploadsDisabledMessage = "Image uploads are not available right now"
)

// respondError maps a service error to its status and message. Anything
// unknown is logged and answered with a generic 500.
func respondError(c *gin.Context, logger log.Logger, err error) {
	var (
		queryErr *filters.QueryError
		notFound *domain.NotFoundError
	)

	if ve, ok := domain.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, dto.Fail(ve.Messages()))
		return
	}

	switch {
	case errors.As(err, &queryErr):
		c.JSON(http.StatusBadRequest, dto.Fail(queryErr.Message))
	case errors.Is(err, filters.ErrNoResults):
		c.JSON(http.StatusNotFound, dto.Fail(NoResultsMessage))
	case errors.Is(err, filters.ErrNoMoreResults):
		c.JSON(http.StatusNotFound, dto.Fail(NoMoreResultsMessage))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, dto.Fail(notFound.Error()))
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.Fail(middleware.SelfOnlyMessage))
	case errors.Is(err, services.ErrDatesTaken):
		c.JSON(http.StatusConflict, dto.Fail(services.UnavailableDatesMessage))
	case errors.Is(err, domain.ErrInUse):
		c.JSON(http.StatusConflict, dto.Fail(InUseMessage))
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.Fail(InvalidLoginMessage))
	case errors.Is(err, domain.ErrUserBlocked):
		c.JSON(http.StatusForbidden, dto.Fail(BlockedMessage))
	case errors.Is(err, domain.ErrUserNotVerified):
		c.JSON(http.StatusUnauthorized, dto.Fail(NotVerifiedMessage))
	case errors.Is(err, domain.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, dto.Fail(InvalidCodeMessage))
	case errors.Is(err, uploads.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, dto.Fail(UploadsDisabledMessage))
	default:
		_ = c.Error(err)
		level.Error(logger).Log(
			"msg", "request failed",
			"request_id", middleware.RequestID(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"err", err,
		)
		c.JSON(http.StatusInternalServerError, dto.Fail(InternalErrorMessage))
	}
}

// bindJSON decodes the body; a malformed body answers 400 with the parser
// message and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
		return false
	}
	return true
}

// pathID reads a numeric path parameter. Anything that is not an id cannot
// name an existing record, so it answers 404 with the usual message.
func pathID(c *gin.Context, param, entity string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, dto.Fail(domain.NewNotFound(entity, raw).Error()))
		return 0, false
	}
	return uint(id), true
}

// actor describes the caller from the claims AuthMiddleware stored.
func actor(c *gin.Context) services.Actor {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return services.Actor{}
	}
	return services.Actor{UserID: claims.UserID, Admin: claims.IsAdmin()}
}

func updated(changed bool, msg string) string {
	if changed {
		return msg
	}
	return NoUpdatesMessage
}
