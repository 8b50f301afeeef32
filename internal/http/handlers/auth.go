package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/http/middleware"
	"github.com/mustafa2080/tourism-API/internal/services"
)

const refreshTokenCookie = "refreshToken"

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
}

func (r registerRequest) input() services.RegisterInput {
	return services.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password, Phone: r.Phone}
}

type registerAdminRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,password"`
	Phone       string `json:"phone" binding:"omitempty,max=20"`
	Role        string `json:"role" binding:"omitempty,role"`
	AdminSecret string `json:"adminSecret" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,password"`
}

func (h *Handler) setAuthCookies(c *gin.Context, access, refresh string) {
	secure := h.Env.IsProduction()
	c.SetSameSite(http.SameSiteLaxMode)
	if access != "" {
		c.SetCookie(middleware.AccessTokenCookie, access, int(h.Env.JWTExpiresIn.Seconds()), "/", "", secure, true)
	}
	if refresh != "" {
		c.SetCookie(refreshTokenCookie, refresh, int(h.Env.RefreshExpiresIn.Seconds()), "/", "", secure, true)
	}
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	secure := h.Env.IsProduction()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", secure, true)
}

func (h *Handler) refreshTokenFrom(c *gin.Context, body refreshRequest) string {
	if body.RefreshToken != "" {
		return body.RefreshToken
	}
	v, _ := c.Cookie(refreshTokenCookie)
	return v
}

// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.setAuthCookies(c, res.AccessToken, res.RefreshToken)
	respondOK(c, http.StatusCreated, "User registered successfully", res)
}

// POST /api/v1/auth/register-admin
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req registerAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	in := services.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password, Phone: req.Phone}
	res, err := h.Auth.RegisterAdmin(c.Request.Context(), in, domain.Role(req.Role), req.AdminSecret)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.setAuthCookies(c, res.AccessToken, res.RefreshToken)
	respondOK(c, http.StatusCreated, "Admin registered successfully", res)
}

// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.setAuthCookies(c, res.AccessToken, res.RefreshToken)
	respondOK(c, http.StatusOK, "Login successful", res)
}

// POST /api/v1/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	access, err := h.Auth.Refresh(c.Request.Context(), h.refreshTokenFrom(c, req))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.setAuthCookies(c, access, "")
	respondOK(c, http.StatusOK, "Token refreshed successfully", gin.H{"accessToken": access})
}

// POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	var req refreshRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), middleware.UserID(c), h.refreshTokenFrom(c, req)); err != nil {
		RespondDomainError(c, err)
		return
	}
	h.clearAuthCookies(c)
	respondOK(c, http.StatusOK, "Logged out successfully", nil)
}

// GET /api/v1/auth/me
func (h *Handler) Me(c *gin.Context) {
	u, err := h.Auth.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "User retrieved successfully", gin.H{"user": u})
}

// PUT /api/v1/auth/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		RespondDomainError(c, err)
		return
	}
	h.clearAuthCookies(c)
	respondOK(c, http.StatusOK, "Password changed successfully", nil)
}

// POST /api/v1/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := h.Auth.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var data any
	if token != "" && h.Env.IsDevelopment() {
		data = gin.H{"resetToken": token}
	}
	respondOK(c, http.StatusOK, "If the email exists, a reset link will be sent", data)
}

// POST /api/v1/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Password reset successfully", nil)
}
