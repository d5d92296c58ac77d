package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schooldir/internal/service"
)

// CookieSettings controla cómo se emite la cookie de sesión.
type CookieSettings struct {
	Name   string
	Secure bool
}

// UserHandler mantiene dependencias para endpoints de cuentas.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	tokenSvc *service.TokenService
	cookie   CookieSettings
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, tokenSvc *service.TokenService, cookie CookieSettings) *UserHandler {
	if cookie.Name == "" {
		cookie.Name = "auth_token"
	}
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		tokenSvc: tokenSvc,
		cookie:   cookie,
	}
}

// Register maneja POST /register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		respondError(c, http.StatusBadRequest, errValidation, "invalid request")
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusConflict, errConflict, "email already registered")
		case errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, service.ErrPasswordTooLong):
			respondError(c, http.StatusBadRequest, errValidation, err.Error())
		case errors.Is(err, service.ErrEmailSendFailure):
			// La cuenta quedó creada; el código puede reenviarse.
			respondError(c, http.StatusBadGateway, errDeliveryFailed, "account created but the verification email could not be sent, try resending the code")
		default:
			h.logger.Error("register failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, errInternal, "could not register")
		}
		return
	}

	respondData(c, http.StatusCreated, gin.H{"user": user})
}

// VerifyOTP maneja POST /verify-otp.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		respondError(c, http.StatusBadRequest, errValidation, "invalid request")
		return
	}

	user, err := h.userServ.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, errNotFound, "user not found")
		case errors.Is(err, service.ErrAlreadyVerified):
			respondError(c, http.StatusConflict, errConflict, "already verified")
		case errors.Is(err, service.ErrOTPNotRequested),
			errors.Is(err, service.ErrOTPExpired),
			errors.Is(err, service.ErrOTPInvalid):
			respondError(c, http.StatusBadRequest, errValidation, err.Error())
		default:
			h.logger.Error("verify otp failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, errInternal, "could not verify otp")
		}
		return
	}

	respondData(c, http.StatusOK, gin.H{"user": user})
}

// ResendOTP maneja POST /resend-otp.
func (h *UserHandler) ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp resend request", zap.Error(err))
		respondError(c, http.StatusBadRequest, errValidation, "invalid request")
		return
	}

	err := h.userServ.ResendOTP(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, errNotFound, "user not found")
		case errors.Is(err, service.ErrAlreadyVerified):
			respondError(c, http.StatusConflict, errConflict, "already verified")
		case errors.Is(err, service.ErrRateLimited):
			respondError(c, http.StatusTooManyRequests, errRateLimited, "too many requests")
		case errors.Is(err, service.ErrEmailSendFailure):
			respondError(c, http.StatusBadGateway, errDeliveryFailed, "email delivery unavailable")
		default:
			h.logger.Error("resend otp failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, errInternal, "could not resend otp")
		}
		return
	}

	respondMessage(c, http.StatusOK, "otp sent")
}

// Login maneja POST /login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondError(c, http.StatusBadRequest, errValidation, "invalid request")
		return
	}

	user, err := h.userServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, errNotFound, "user not found")
		case errors.Is(err, service.ErrNotVerified):
			respondError(c, http.StatusForbidden, errForbidden, "email not verified")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, errUnauthorized, "invalid credentials")
		default:
			h.logger.Error("login failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, errInternal, "could not login")
		}
		return
	}

	token, err := h.tokenSvc.Issue(user)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "could not issue token")
		return
	}

	h.setAuthCookie(c, token, int(h.tokenSvc.TTL().Seconds()))
	respondData(c, http.StatusOK, gin.H{"user": user})
}

// Logout maneja POST /logout.
func (h *UserHandler) Logout(c *gin.Context) {
	if token := extractToken(c, h.cookie.Name); token != "" {
		_ = h.tokenSvc.Revoke(token)
	}
	h.setAuthCookie(c, "", -1)
	respondMessage(c, http.StatusOK, "logged out")
}

// Profile maneja GET /profile.
func (h *UserHandler) Profile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errUnauthorized, "missing token")
		return
	}

	user, err := h.userServ.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, errNotFound, "user not found")
			return
		}
		h.logger.Error("profile lookup failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "could not load profile")
		return
	}

	respondData(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", "", h.cookie.Secure, true)
}
