package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"accounts-api/internal/service"
)

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		jwtServ:  jwtServ,
	}
}

// Login maneja POST /user/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respond(c, http.StatusBadRequest, "Invalid request.")
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond(c, http.StatusUnauthorized, "Wrong credentials.")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Could not login.")
		return
	}

	pair, err := h.jwtServ.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Could not issue tokens.")
		return
	}

	respond(c, http.StatusOK, "Login successful.", gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          user.Public(),
	})
}

// RefreshToken maneja POST /user/token. Ante cualquier 401 el token se
// retira del registro; el cliente debe volver a iniciar sesión.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh request", zap.Error(err))
		respond(c, http.StatusBadRequest, "Invalid request.")
		return
	}

	access, err := h.jwtServ.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshNotFound):
			_ = h.jwtServ.RevokeRefresh(req.RefreshToken)
			respond(c, http.StatusUnauthorized, "Invalid refresh token")
		case errors.Is(err, service.ErrJWTExpired):
			_ = h.jwtServ.RevokeRefresh(req.RefreshToken)
			respond(c, http.StatusUnauthorized, "Refresh token expired")
		default:
			h.logger.Error("refresh failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Could not refresh access token")
		}
		return
	}

	respond(c, http.StatusOK, "Access token refreshed.", gin.H{
		"access_token": access,
	})
}

// Logout maneja POST /user/logout. Idempotente.
func (h *UserHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		respond(c, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	if err := h.jwtServ.RevokeRefresh(req.RefreshToken); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Could not logout.")
		return
	}
	respond(c, http.StatusOK, "Logged out successfully")
}

// CreateUser maneja POST /user.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create user request", zap.Error(err))
		respond(c, http.StatusBadRequest, "Error creating user.")
		return
	}

	_, err := h.userServ.CreateUser(c.Request.Context(), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		respond(c, http.StatusBadRequest, "Error creating user.")
		return
	}

	respond(c, http.StatusCreated, "User created successfully.")
}

// ListUsers maneja GET /user.
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	users, meta, err := h.userServ.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Could not list users.")
		return
	}

	respond(c, http.StatusOK, "Users retrieved successfully.", gin.H{
		"data": users,
		"meta": meta,
	})
}

// GetUser maneja GET /user/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond(c, http.StatusBadRequest, "Invalid user id.")
		return
	}

	user, err := h.userServ.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respond(c, http.StatusNotFound, "User not found.")
			return
		}
		h.logger.Error("get user failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Could not retrieve user.")
		return
	}

	respond(c, http.StatusOK, "User retrieved successfully.", gin.H{
		"user": user.Public(),
	})
}

// UpdateUser maneja PATCH /user/:id.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond(c, http.StatusBadRequest, "Invalid user id.")
		return
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Password  *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update user request", zap.Error(err))
		respond(c, http.StatusBadRequest, "Invalid request.")
		return
	}

	_, err = h.userServ.UpdateUser(c.Request.Context(), id, service.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respond(c, http.StatusNotFound, "User not found.")
		case errors.Is(err, service.ErrInvalidEmail):
			respond(c, http.StatusBadRequest, "Invalid request.")
		default:
			h.logger.Error("update user failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Could not update user.")
		}
		return
	}

	respond(c, http.StatusOK, "User updated successfully.")
}

// DeleteUser maneja DELETE /user/:id.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond(c, http.StatusBadRequest, "Invalid user id.")
		return
	}

	if err := h.userServ.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respond(c, http.StatusNotFound, "User not found.")
			return
		}
		h.logger.Error("delete user failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Could not delete user.")
		return
	}

	respond(c, http.StatusOK, "User deleted successfully.")
}

// ForgotPassword maneja POST /user/forgot-password.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid forgot password request", zap.Error(err))
		respond(c, http.StatusBadRequest, "Invalid request.")
		return
	}

	if err := h.userServ.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respond(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidEmail):
			respond(c, http.StatusBadRequest, "Invalid request.")
		default:
			h.logger.Error("forgot password failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Could not process request.")
		}
		return
	}

	respond(c, http.StatusOK, "OTP sent to email.")
}

// ResetPassword maneja POST /user/reset-password.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Otp         string `json:"otp" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset password request", zap.Error(err))
		respond(c, http.StatusBadRequest, "Invalid request.")
		return
	}

	err := h.userServ.ResetPassword(c.Request.Context(), req.Email, req.Otp, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPInvalid):
			respond(c, http.StatusBadRequest, "Invalid OTP or Email")
		case errors.Is(err, service.ErrOTPExpired):
			respond(c, http.StatusBadRequest, "OTP has expired")
		default:
			h.logger.Error("reset password failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Could not reset password.")
		}
		return
	}

	respond(c, http.StatusOK, "Password reset successfully.")
}
