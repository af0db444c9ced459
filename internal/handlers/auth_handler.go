package handlers

import (
	"net/http"

	"kasap-service/internal/dto"
	"kasap-service/internal/middleware"
	"kasap-service/internal/models"
	"kasap-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth service.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func toProfileResponse(p *models.UserProfile) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	prefs := p.NotificationPreferences.Data()
	return &dto.ProfileResponse{
		ID:        p.ID.String(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		Language:  string(p.Language),
		AvatarURL: p.AvatarURL,
		NotificationPreferences: dto.NotificationPreferences{
			PushNotifications:    prefs.PushNotifications,
			EmailNotifications:   prefs.EmailNotifications,
			OrderUpdates:         prefs.OrderUpdates,
			MediaUpdates:         prefs.MediaUpdates,
			AppointmentReminders: prefs.AppointmentReminders,
		},
	}
}

func toAuthUserResponse(u *service.AuthUser) dto.AuthUserResponse {
	resp := dto.AuthUserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Role:        string(u.Role),
		Profile:     toProfileResponse(u.Profile),
		AccessToken: u.AccessToken,
	}
	if u.ExpiresAt != nil {
		exp := u.ExpiresAt.Unix()
		resp.ExpiresAt = &exp
	}
	return resp
}

// SignUp godoc
// @Summary Sign up
// @Description Creates an account and its customer profile, then signs in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.SignUpRequest true "Sign-up data"
// @Success 201 {object} dto.AuthUserResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Email already registered"
// @Failure 500 {object} dto.InternalErrorResponse
// @Router /api/v1/auth/sign-up [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}

	in := service.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if req.Language != nil {
		lang := models.Language(*req.Language)
		in.Language = &lang
	}

	user, err := h.auth.SignUp(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toAuthUserResponse(user))
}

// SignIn godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.SignInRequest true "Credentials"
// @Success 200 {object} dto.AuthUserResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Failure 502 {object} dto.BadGatewayErrorResponse
// @Router /api/v1/auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	user, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toAuthUserResponse(user))
}

// SignOut godoc
// @Summary Sign out
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/v1/auth/sign-out [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), c.GetString(middleware.CtxAccessToken)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "signed out"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.AuthUserResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetCurrentUser(c.Request.Context(), c.GetString(middleware.CtxAccessToken))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toAuthUserResponse(user))
}

// ResetPassword godoc
// @Summary Request a password reset code
// @Description Always answers 202 for well-formed e-mails so accounts cannot be probed
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ResetPasswordRequest true "Account e-mail"
// @Success 202 {object} dto.MessageResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 429 {object} dto.RateLimitedErrorResponse
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "if the account exists, a reset code has been sent"})
}

// ConfirmPasswordReset godoc
// @Summary Set a new password with a reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ConfirmResetRequest true "Code and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/v1/auth/reset-password/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req dto.ConfirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	if err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Code, req.Password); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "password updated"})
}

// UpdateProfile godoc
// @Summary Update own profile
// @Description Only the provided fields are changed
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/auth/profile [patch]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}

	upd := service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	}
	if req.Language != nil {
		lang := models.Language(*req.Language)
		upd.Language = &lang
	}
	if p := req.NotificationPreferences; p != nil {
		upd.NotificationPreferences = &models.NotificationPreferences{
			PushNotifications:    p.PushNotifications,
			EmailNotifications:   p.EmailNotifications,
			OrderUpdates:         p.OrderUpdates,
			MediaUpdates:         p.MediaUpdates,
			AppointmentReminders: p.AppointmentReminders,
		}
	}

	profile, err := h.auth.UpdateProfile(c.Request.Context(), uid, upd)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}
