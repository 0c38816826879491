package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/intunedeck/intunedeck/internal/cache"
	"github.com/intunedeck/intunedeck/internal/config"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/logger"
	jsoniter "github.com/json-iterator/go"
)

// expirySkew is subtracted from the token lifetime so we renew before the
// Graph API starts rejecting the token.
const expirySkew = 2 * time.Minute

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ClientCredentialsProvider acquires tokens from the Azure AD v2 token
// endpoint using the client-credentials grant and caches them until expiry.
type ClientCredentialsProvider struct {
	cfg    config.AuthConfig
	client *retryablehttp.Client
	cache  cache.Cache
	logger *logger.Logger
}

func NewClientCredentialsProvider(cfg *config.Configuration, c cache.Cache, log *logger.Logger) *ClientCredentialsProvider {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil

	return &ClientCredentialsProvider{
		cfg:    cfg.Auth,
		client: client,
		cache:  c,
		logger: log,
	}
}

func (p *ClientCredentialsProvider) cacheKey() string {
	return cache.GenerateKey(cache.PrefixToken, p.cfg.TenantID, p.cfg.ClientID)
}

// Token returns a cached access token if one is still valid, otherwise it
// requests a new one.
func (p *ClientCredentialsProvider) Token(ctx context.Context) (string, error) {
	if cached, found := p.cache.Get(ctx, p.cacheKey()); found {
		if token, ok := cached.(string); ok && token != "" {
			return token, nil
		}
	}

	token, ttl, err := p.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	if ttl > expirySkew {
		p.cache.Set(ctx, p.cacheKey(), token, ttl-expirySkew)
	}

	return token, nil
}

func (p *ClientCredentialsProvider) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("scope", p.cfg.Scope)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenEndpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, ierr.WithError(err).
			WithHint("Failed to build token request").
			Mark(ierr.ErrSystem)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0, ierr.WithError(err).
			WithHint("Failed to reach the Azure AD token endpoint").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		p.logger.Errorw("token request rejected", "status", resp.StatusCode)
		return "", 0, ierr.NewError("token request rejected").
			WithHint("Check the configured tenant, client id and client secret").
			WithReportableDetails(map[string]any{"status": resp.StatusCode}).
			Mark(ierr.ErrPermissionDenied)
	}

	var tr tokenResponse
	if err := jsoniter.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", 0, ierr.WithError(err).
			WithHint("Token endpoint returned an unexpected payload").
			Mark(ierr.ErrHTTPClient)
	}
	if tr.AccessToken == "" {
		return "", 0, ierr.NewError("token endpoint returned no access token").
			WithHint("Check the configured scope").
			Mark(ierr.ErrPermissionDenied)
	}

	return tr.AccessToken, tokenTTL(tr), nil
}

// tokenTTL prefers the exp claim embedded in the token and falls back to the
// expires_in field when the token is not a parseable JWT.
func tokenTTL(tr tokenResponse) time.Duration {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tr.AccessToken, claims); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			if ttl := time.Until(time.Unix(int64(exp), 0)); ttl > 0 {
				return ttl
			}
		}
	}
	return time.Duration(tr.ExpiresIn) * time.Second
}
