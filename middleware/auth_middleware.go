package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"rentals-api/dto"
	"rentals-api/utils"
)

const (
	NoTokenMessage      = "No access token provided"
	ExpiredTokenMessage = "Your token has expired. Please login again."
	AdminOnlyMessage    = "Only administrators can perfom this action"
	SelfOnlyMessage     = "You are not authorized to perform this action"
)

const claimsKey = "claims"

// AuthMiddleware requires a valid "Bearer <token>" Authorization header and
// stores the decoded claims on the context.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, NoTokenMessage)
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abort(c, http.StatusUnauthorized, ExpiredTokenMessage)
				return
			}
			abort(c, http.StatusUnauthorized, NoTokenMessage)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// AdminMiddleware runs after AuthMiddleware and only lets administrators through.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, NoTokenMessage)
			return
		}
		if !claims.IsAdmin() {
			abort(c, http.StatusForbidden, AdminOnlyMessage)
			return
		}
		c.Next()
	}
}

// SelfMiddleware runs after AuthMiddleware and only lets through the user
// whose id is the :user_id path parameter. The comparison is on the raw
// strings, so "007" never matches user 7.
func SelfMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, NoTokenMessage)
			return
		}
		if strconv.FormatUint(uint64(claims.UserID), 10) != c.Param("user_id") {
			abort(c, http.StatusForbidden, SelfOnlyMessage)
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthMiddleware.
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, dto.Fail(msg))
}
