package google

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	// jwtBearerGrantType is the OAuth2 grant type for the service
	// account JWT bearer flow.
	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// DefaultAssertionLifetime is the lifetime claimed in the signed
	// assertion. Google caps this at one hour.
	DefaultAssertionLifetime = time.Hour

	// DefaultExpirySkew is how long before actual expiry a cached
	// token is considered stale and refreshed proactively.
	DefaultExpirySkew = 60 * time.Second

	// defaultExchangeTimeout bounds a single token exchange request.
	defaultExchangeTimeout = 30 * time.Second
)

// TokenProvider supplies bearer tokens for Google APIs.
// This abstraction allows different token sources (service account,
// static token for tests, etc.)
type TokenProvider interface {
	// Token returns a valid token, refreshing it if necessary.
	Token(ctx context.Context) (*oauth2.Token, error)
}

// RefreshMetrics counts token refresh outcomes: "success", "failure"
// or "cached". *instrumentation.Metrics satisfies it.
type RefreshMetrics interface {
	RecordTokenRefresh(ctx context.Context, result string)
}

// TokenProviderConfig holds optional settings for a
// ServiceAccountTokenProvider. The zero value selects defaults.
type TokenProviderConfig struct {
	// HTTPClient performs the token exchange. Defaults to a client
	// with a 30s timeout.
	HTTPClient *http.Client

	// Scopes requested for the token. Defaults to DefaultScopes.
	Scopes []string

	// ExpirySkew is the safety margin subtracted from a token's
	// expiry when deciding whether the cached token is still usable.
	// Defaults to DefaultExpirySkew.
	ExpirySkew time.Duration

	// AssertionLifetime is the exp-iat window claimed in the signed
	// assertion. Defaults to DefaultAssertionLifetime.
	AssertionLifetime time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time

	// Metrics receives refresh outcomes. Optional.
	Metrics RefreshMetrics
}

// ServiceAccountTokenProvider exchanges a service account key for
// bearer tokens and caches the result until near expiry.
//
// The cached token is the only shared mutable state: reads of a valid
// token take a read lock, and refreshes are serialized behind a
// separate mutex so that concurrent callers hitting an expired cache
// collapse into a single outbound exchange. Callers waiting on the
// refresh all receive its result or its error.
type ServiceAccountTokenProvider struct {
	key        *ServiceAccountKey
	signingKey *rsa.PrivateKey
	httpClient *http.Client
	scopes     []string
	skew       time.Duration
	lifetime   time.Duration
	now        func() time.Time
	metrics    RefreshMetrics

	mu     sync.RWMutex
	cached *oauth2.Token

	refreshMu sync.Mutex
}

// NewServiceAccountTokenProvider creates a token provider for the
// given key. The key's PEM private key is parsed eagerly so that a
// malformed key surfaces at startup rather than on first use.
func NewServiceAccountTokenProvider(key *ServiceAccountKey, cfg TokenProviderConfig) (*ServiceAccountTokenProvider, error) {
	if key == nil {
		return nil, &AuthError{Op: "new provider", Err: fmt.Errorf("service account key is nil")}
	}

	signingKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, &AuthError{Op: "parse private key", Err: err}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultExchangeTimeout}
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	skew := cfg.ExpirySkew
	if skew <= 0 {
		skew = DefaultExpirySkew
	}
	lifetime := cfg.AssertionLifetime
	if lifetime <= 0 {
		lifetime = DefaultAssertionLifetime
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &ServiceAccountTokenProvider{
		key:        key,
		signingKey: signingKey,
		httpClient: httpClient,
		scopes:     scopes,
		skew:       skew,
		lifetime:   lifetime,
		now:        now,
		metrics:    cfg.Metrics,
	}, nil
}

// Token returns a valid bearer token, reusing the cached one when it
// has more than the configured skew of validity left.
func (p *ServiceAccountTokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	if tok, ok := p.cachedValid(); ok {
		p.recordRefresh(ctx, "cached")
		return tok, nil
	}

	// Serialize refreshes: at most one exchange in flight. Callers
	// queued here re-check the cache after the leader finishes.
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	if tok, ok := p.cachedValid(); ok {
		p.recordRefresh(ctx, "cached")
		return tok, nil
	}

	tok, err := p.exchange(ctx)
	if err != nil {
		p.recordRefresh(ctx, "failure")
		return nil, err
	}

	p.mu.Lock()
	p.cached = tok
	p.mu.Unlock()

	p.recordRefresh(ctx, "success")
	return tok, nil
}

func (p *ServiceAccountTokenProvider) recordRefresh(ctx context.Context, result string) {
	if p.metrics != nil {
		p.metrics.RecordTokenRefresh(ctx, result)
	}
}

// cachedValid returns the cached token if it is still outside the
// expiry skew window.
func (p *ServiceAccountTokenProvider) cachedValid() (*oauth2.Token, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cached == nil {
		return nil, false
	}
	if !p.cached.Expiry.After(p.now().Add(p.skew)) {
		return nil, false
	}
	return p.cached, true
}

// tokenResponse is the OAuth2 token endpoint response body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// exchange signs a fresh assertion and trades it for an access token.
func (p *ServiceAccountTokenProvider) exchange(ctx context.Context) (*oauth2.Token, error) {
	assertion, err := p.signAssertion()
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type": {jwtBearerGrantType},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.key.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthError{Op: "token exchange", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Op: "token exchange", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &AuthError{Op: "token exchange", Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AuthError{
			Op:  "token exchange",
			Err: fmt.Errorf("token endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body))),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &AuthError{Op: "token exchange", Err: fmt.Errorf("invalid token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return nil, &AuthError{Op: "token exchange", Err: fmt.Errorf("token response is missing access_token")}
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tokenType,
		Expiry:      p.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// signAssertion builds and signs the JWT assertion for the exchange.
func (p *ServiceAccountTokenProvider) signAssertion() (string, error) {
	now := p.now()

	claims := jwt.MapClaims{
		"iss":   p.key.ClientEmail,
		"scope": strings.Join(p.scopes, " "),
		"aud":   p.key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(p.lifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if p.key.PrivateKeyID != "" {
		token.Header["kid"] = p.key.PrivateKeyID
	}

	assertion, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", &AuthError{Op: "sign assertion", Err: err}
	}
	return assertion, nil
}
