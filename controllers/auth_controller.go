package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kendall-kelly/autoparts-api/config"
	"github.com/kendall-kelly/autoparts-api/middleware"
	"github.com/kendall-kelly/autoparts-api/services"
	"go.uber.org/zap"
)

const oauthStateCookie = "oauth_state"

// AuthController serves registration, login and the caller's profile
type AuthController struct {
	auth   *services.AuthService
	google *services.GoogleOAuthService
	cfg    *config.Config
	logger *zap.Logger
}

// NewAuthController creates an AuthController
func NewAuthController(auth *services.AuthService, google *services.GoogleOAuthService, cfg *config.Config, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, google: google, cfg: cfg, logger: logger}
}

// Register handles POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, ac.logger, err)
		return
	}

	customer, err := ac.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"user":    customer,
		"message": "Verification code sent to " + customer.Email,
	})
}

// VerifyOTP handles POST /api/auth/verify-otp
func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var req services.VerifyOTPInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, ac.logger, err)
		return
	}

	customer, err := ac.auth.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, customer)
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req services.LoginInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, ac.logger, err)
		return
	}

	result, err := ac.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// GoogleLogin handles GET /api/auth/google by redirecting to Google's consent page
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	if !ac.google.Enabled() {
		ac.redirectLoginError(c, "google_not_configured")
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", ac.cfg.IsProduction(), true)
	c.Redirect(http.StatusFound, ac.google.AuthCodeURL(state))
}

// GoogleCallback handles GET /api/auth/google/callback
func (ac *AuthController) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		ac.redirectLoginError(c, "invalid_state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", ac.cfg.IsProduction(), true)

	if c.Query("error") != "" || c.Query("code") == "" {
		ac.redirectLoginError(c, "access_denied")
		return
	}

	info, err := ac.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		ac.logger.Warn("google exchange failed", zap.Error(err))
		ac.redirectLoginError(c, "google_auth_failed")
		return
	}

	result, err := ac.auth.LoginWithGoogle(c.Request.Context(), info)
	if err != nil {
		ac.logger.Warn("google login rejected", zap.Error(err))
		ac.redirectLoginError(c, "google_auth_failed")
		return
	}

	c.Redirect(http.StatusFound, ac.cfg.FrontendURL+"/auth/callback?token="+url.QueryEscape(result.Token))
}

// GetMe handles GET /api/auth/me
func (ac *AuthController) GetMe(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		respondErrorBody(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", nil)
		return
	}

	customer, err := ac.auth.GetProfile(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, customer)
}

// UpdateMe handles PUT /api/auth/me
func (ac *AuthController) UpdateMe(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		respondErrorBody(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", nil)
		return
	}

	var req services.ProfileUpdateInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, ac.logger, err)
		return
	}

	customer, err := ac.auth.UpdateProfile(c.Request.Context(), customerID, req)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, customer)
}

func (ac *AuthController) redirectLoginError(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, ac.cfg.FrontendURL+"/login?error="+url.QueryEscape(reason))
}
