package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"

	"rentals-api/dto"
	"rentals-api/filters"
	"rentals-api/services"
)

// UserController serves /users.
type UserController struct {
	users      services.UserService
	properties services.PropertyService
	bookings   services.BookingService
	logger     log.Logger
}

func NewUserController(users services.UserService, properties services.PropertyService, bookings services.BookingService, logger log.Logger) *UserController {
	return &UserController{users: users, properties: properties, bookings: bookings, logger: logger}
}

// Signup handles POST /users.
// It registers an unverified account; the code to verify it goes out by email.
func (ctrl *UserController) Signup(c *gin.Context) {
	// 1. Parse the body; malformed JSON is answered here with a 400
	var req dto.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. The service validates, checks uniqueness and stores the account
	user, err := ctrl.users.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	// 3. 201 with the new account (the password hash is never serialized)
	c.JSON(http.StatusCreated, dto.OK(
		"User created successfully. Check your email for the verification code",
		user, dto.UserLinks(user.ID)...,
	))
}

// Login handles POST /users/login.
// Example: {"email": "ana@example.com", "password": "..."} -> token and user
func (ctrl *UserController) Login(c *gin.Context) {
	// 1. Parse the credentials
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. Check them; wrong password, blocked and unverified map to 401
	res, err := ctrl.users.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	// 3. Hand back the bearer token together with the account
	c.JSON(http.StatusOK, dto.OK("Logged in successfully", res, dto.UserLinks(res.User.ID)...))
}

// Verify handles POST /users/verify.
func (ctrl *UserController) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ctrl.users.Verify(c.Request.Context(), req); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Email verified successfully", nil))
}

// ResendCode handles POST /users/resend-code. The answer is the same whether
// or not the address belongs to a pending account.
func (ctrl *UserController) ResendCode(c *gin.Context) {
	var req dto.ResendCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ctrl.users.ResendCode(c.Request.Context(), req); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("If the account is pending verification, a new code has been sent", nil))
}

// ForgotPassword handles POST /users/forgot-password.
func (ctrl *UserController) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ctrl.users.ForgotPassword(c.Request.Context(), req); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("If the email is registered, a reset link has been sent", nil))
}

// ResetPassword handles POST /users/reset-password.
func (ctrl *UserController) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ctrl.users.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Password updated successfully", nil))
}

// List handles GET /users. Admin only.
// Example: GET /users?type=admin&limit=6&page=2
func (ctrl *UserController) List(c *gin.Context) {
	// 1. Turn the query string into filters and a page window
	spec, err := filters.UserSpec(c.Request.URL.Query())
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	// 2. Fetch the page; an empty result is a 404, not an empty list
	users, p, err := ctrl.users.List(c.Request.Context(), spec)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	// 3. Pagination links keep the caller's filters
	c.JSON(http.StatusOK, dto.Page(users, p, dto.ListLinks("/users", spec.Params, p)))
}

// Get handles GET /users/:user_id.
func (ctrl *UserController) Get(c *gin.Context) {
	id, ok := pathID(c, "user_id", "User")
	if !ok {
		return
	}

	user, err := ctrl.users.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", user, dto.UserLinks(user.ID)...))
}

// Update handles PATCH /users/:user_id.
func (ctrl *UserController) Update(c *gin.Context) {
	id, ok := pathID(c, "user_id", "User")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	// only the fields present in the body are touched
	user, changed, err := ctrl.users.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	// nothing differed: still 200, with the "no updates" message
	c.JSON(http.StatusOK, dto.OK(updated(changed, "User updated successfully"), user, dto.UserLinks(user.ID)...))
}

// UpdateStatus handles PATCH /users/:user_id/status.
func (ctrl *UserController) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "user_id", "User")
	if !ok {
		return
	}
	var req dto.UserStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	user, changed, err := ctrl.users.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(updated(changed, "User status updated successfully"), user, dto.UserLinks(user.ID)...))
}

// UpdateAvatar handles PUT /users/:user_id/avatar with a multipart "avatar" file.
func (ctrl *UserController) UpdateAvatar(c *gin.Context) {
	id, ok := pathID(c, "user_id", "User")
	if !ok {
		return
	}
	// the image arrives as a multipart field, not JSON
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail([]string{"Avatar is required"}))
		return
	}

	user, err := ctrl.users.UpdateAvatar(c.Request.Context(), id, file)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Avatar updated successfully", user, dto.UserLinks(user.ID)...))
}

// Delete handles DELETE /users/:user_id.
func (ctrl *UserController) Delete(c *gin.Context) {
	id, ok := pathID(c, "user_id", "User")
	if !ok {
		return
	}
	if err := ctrl.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("User deleted successfully", nil))
}

// Properties handles GET /users/:user_id/properties.
func (ctrl *UserController) Properties(c *gin.Context) {
	id, ok := pathID(c, "user_id", "User")
	if !ok {
		return
	}
	props, err := ctrl.properties.ListByOwner(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", props, dto.UserLinks(id)...))
}

// Bookings handles GET /users/:user_id/bookings.
func (ctrl *UserController) Bookings(c *gin.Context) {
	id, ok := pathID(c, "user_id", "User")
	if !ok {
		return
	}
	bookings, err := ctrl.bookings.ListByGuest(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", bookings, dto.UserLinks(id)...))
}
