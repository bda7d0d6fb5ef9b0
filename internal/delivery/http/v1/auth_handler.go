package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-tracker-backend/internal/delivery/http/response"
	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/security"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
	secLog *security.SecurityLogger
}

func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, secLog *security.SecurityLogger, signInLimiter gin.HandlerFunc) {
	handler := &AuthHandler{authUC: authUC, secLog: secLog}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/signin", signInLimiter, handler.SignIn)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
	}
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignIn godoc
// @Summary      Sign in
// @Description  Exchange email and password for a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      SignInRequest  true  "Credentials"
// @Success      200  {object}  response.Response{data=domain.SignInResult}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	ctx := c.Request.Context()
	requestID := c.GetString(response.RequestIDKey)

	result, err := h.authUC.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		reason := "internal_error"
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case http.StatusNotFound:
				reason = "unknown_user"
			case http.StatusBadRequest:
				reason = "wrong_password"
			}
		}
		h.secLog.LogLoginFailed(ctx, req.Email, c.ClientIP(), c.GetHeader("User-Agent"), requestID, reason)
		c.Error(err)
		return
	}

	h.secLog.LogLoginSuccess(ctx, req.Email, c.ClientIP(), c.GetHeader("User-Agent"), requestID)
	response.Success(c, http.StatusOK, "Sesión iniciada", result)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Usuario actual", user)
}
