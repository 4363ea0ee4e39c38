package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrGoogleTokenRejected = errors.New("invalid google token")

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Config       *oauth2.Config
	HTTPClient   *http.Client

	tokenInfoURL string
	userInfoURL  string
}

type GoogleUserInfo struct {
	ID            string   `json:"id"`
	Sub           string   `json:"sub"`
	Email         string   `json:"email"`
	VerifiedEmail bool     `json:"verified_email"`
	Name          string   `json:"name"`
	Picture       string   `json:"picture"`
	Audience      string   `json:"aud"`
	EmailVerified flexBool `json:"email_verified"` // tokeninfo spelling of VerifiedEmail
}

// flexBool decodes both true and "true".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseBool(strings.Trim(string(data), `"`))
	if err != nil {
		return fmt.Errorf("decode boolean %s: %w", data, err)
	}
	*b = flexBool(v)
	return nil
}

// GoogleCredential carries whichever proof of identity the client obtained:
// an authorization code, an ID token or an access token.
type GoogleCredential struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token"`
}

// NewGoogleConfig returns nil when Google sign-in is not configured.
func NewGoogleConfig(cfg *Config) *GoogleConfig {
	if !cfg.GoogleEnabled() {
		return nil
	}

	return &GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Config: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		HTTPClient:   http.DefaultClient,
		tokenInfoURL: "https://oauth2.googleapis.com/tokeninfo",
		userInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// Identify resolves a credential into the Google account behind it.
func (g *GoogleConfig) Identify(ctx context.Context, cred GoogleCredential) (*GoogleUserInfo, error) {
	switch {
	case cred.Code != "":
		token, err := g.ExchangeCode(ctx, cred.Code, cred.RedirectURI)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange code for token: %w", ErrGoogleTokenRejected)
		}
		return g.GetUserInfo(ctx, token.AccessToken)
	case cred.IDToken != "":
		return g.VerifyIDToken(ctx, cred.IDToken)
	case cred.AccessToken != "":
		return g.GetUserInfo(ctx, cred.AccessToken)
	}
	return nil, errors.New("either code, id_token or access_token is required")
}

func (g *GoogleConfig) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
	info, err := g.fetch(ctx, g.tokenInfoURL+"?id_token="+url.QueryEscape(idToken))
	if err != nil {
		return nil, err
	}
	if info.Audience != g.ClientID {
		return nil, ErrGoogleTokenRejected
	}
	if info.ID == "" {
		info.ID = info.Sub
	}
	info.VerifiedEmail = info.VerifiedEmail || bool(info.EmailVerified)
	return info, nil
}

func (g *GoogleConfig) GetUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	return g.fetch(ctx, g.userInfoURL+"?access_token="+url.QueryEscape(accessToken))
}

func (g *GoogleConfig) ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := *g.Config
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}
	return cfg.Exchange(ctx, code)
}

func (g *GoogleConfig) fetch(ctx context.Context, endpoint string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrGoogleTokenRejected
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.Email == "" {
		return nil, ErrGoogleTokenRejected
	}
	return &userInfo, nil
}
