// Package push implements the offline-delivery path: a cached OAuth
// bearer-token source for the FCM backend and a one-shot notifier that
// performs the actual messages:send call. Every failure in this package
// is downgraded by the caller to a partner_offline outcome; nothing
// here is fatal to the process.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/rs/zerolog"

	"github.com/dana280/heartbeat-app/pkg/relay"
)

const (
	// DefaultTokenEndpoint is Google's OAuth2 token-exchange endpoint.
	DefaultTokenEndpoint = "https://oauth2.googleapis.com/token"

	messagingScope = "https://www.googleapis.com/auth/firebase.messaging"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	assertionLifetime = time.Hour
	// expiryMargin is shaved off the server-reported lifetime so a
	// token is never handed out moments before it dies mid-request.
	expiryMargin = time.Minute
)

// ServiceAccount is the service-identity credential bundle, loaded from
// a Google service-account JSON key file.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	ProjectID   string `json:"project_id"`
}

// LoadServiceAccount reads and parses a service-account key file. An
// empty path means push is not configured; the caller gets a nil
// account and the token source degrades gracefully.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("push: failed to read credentials file: %w", err)
	}
	var account ServiceAccount
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("push: failed to parse credentials file: %w", err)
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return nil, fmt.Errorf("push: credentials file is missing client_email or private_key")
	}
	return &account, nil
}

// CachedTokenSource implements relay.AccessTokenSource with a cached
// short-lived bearer token. The cache fields are mutex-protected, but
// the exchange itself runs outside the lock: two goroutines that both
// find the cache stale may both refresh. Each computes an independent
// valid token, so the duplicate call is wasteful but harmless at this
// system's load.
type CachedTokenSource struct {
	account    *ServiceAccount
	signingKey jwk.Key
	tokenURL   string
	httpClient *http.Client
	logger     zerolog.Logger

	// now is swappable in tests.
	now func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewCachedTokenSource builds a token source for the given account. A
// nil account is valid and yields a source that always reports
// relay.ErrPushNotConfigured.
func NewCachedTokenSource(account *ServiceAccount, tokenURL string, client *http.Client, logger zerolog.Logger) (*CachedTokenSource, error) {
	if tokenURL == "" {
		tokenURL = DefaultTokenEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	source := &CachedTokenSource{
		account:    account,
		tokenURL:   tokenURL,
		httpClient: client,
		logger:     logger.With().Str("component", "CachedTokenSource").Logger(),
		now:        time.Now,
	}

	if account != nil {
		key, err := jwk.ParseKey([]byte(account.PrivateKey), jwk.WithPEM(true))
		if err != nil {
			return nil, fmt.Errorf("push: failed to parse service account private key: %w", err)
		}
		source.signingKey = key
	}

	return source, nil
}

// SetNowFunc overrides the source's clock. Tests only.
func (s *CachedTokenSource) SetNowFunc(now func() time.Time) {
	s.now = now
}

// Token returns a bearer token for the push backend, reusing the cached
// one while it remains valid. Any failure is returned as an error the
// caller must treat as "push unavailable now", never as fatal.
func (s *CachedTokenSource) Token(ctx context.Context) (string, error) {
	if s.account == nil {
		return "", relay.ErrPushNotConfigured
	}

	s.mu.Lock()
	if s.token != "" && s.now().Before(s.expiry) {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	token, expiry, err := s.exchange(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Token exchange failed; push unavailable for this attempt.")
		return "", err
	}

	s.mu.Lock()
	s.token = token
	s.expiry = expiry
	s.mu.Unlock()

	s.logger.Debug().Time("expiry", expiry).Msg("Cached new access token.")
	return token, nil
}

// exchange signs a fresh assertion and trades it for an access token.
func (s *CachedTokenSource) exchange(ctx context.Context) (string, time.Time, error) {
	now := s.now()

	assertion, err := jwt.NewBuilder().
		Issuer(s.account.ClientEmail).
		Subject(s.account.ClientEmail).
		Audience([]string{s.tokenURL}).
		IssuedAt(now).
		Expiration(now.Add(assertionLifetime)).
		Claim("scope", messagingScope).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build assertion: %w", err)
	}

	signed, err := jwt.Sign(assertion, jwt.WithKey(jwa.RS256, s.signingKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {string(signed)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", time.Time{}, fmt.Errorf("malformed token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("token response contained no access_token")
	}

	expiry := now.Add(time.Duration(body.ExpiresIn)*time.Second - expiryMargin)
	return body.AccessToken, expiry, nil
}
