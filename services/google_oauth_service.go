package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kendall-kelly/autoparts-api/config"
	"github.com/kendall-kelly/autoparts-api/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleUserInfo represents the profile returned by Google's userinfo endpoint
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleOAuthService runs the authorization-code flow against Google
type GoogleOAuthService struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// NewGoogleOAuthService creates a GoogleOAuthService from the GOOGLE_* settings
func NewGoogleOAuthService(cfg *config.Config) *GoogleOAuthService {
	return &GoogleOAuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// Enabled reports whether Google login is configured
func (s *GoogleOAuthService) Enabled() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != "" && s.oauth.RedirectURL != ""
}

// AuthCodeURL is where the browser is sent to start the login
func (s *GoogleOAuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and fetches the user's profile
func (s *GoogleOAuthService) Exchange(ctx context.Context, code string) (*GoogleUserInfo, error) {
	if !s.Enabled() {
		return nil, utils.NewConfigError("Google login is not configured")
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, utils.NewAuthError("GOOGLE_EXCHANGE_FAILED", "Google authorization failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, utils.NewUpstreamError("failed to call Google userinfo endpoint", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, utils.NewUpstreamError(resp.Status, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body)))
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, utils.NewUpstreamError("invalid Google userinfo response", err)
	}
	return &userInfo, nil
}
