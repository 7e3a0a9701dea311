// Package google implements the Google OIDC handshake used by the
// federated login surface: authorization URL construction, code exchange,
// and local ID-token verification against Google's published JWKS.
package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	discoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

	discoveryMaxAge = 24 * time.Hour
	jwksMaxAge      = time.Hour
)

// ErrUnverifiedEmail rejects Google identities whose mailbox ownership
// Google itself has not confirmed.
var ErrUnverifiedEmail = errors.New("google account email not verified")

// Config carries the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Client runs the handshake. Discovery metadata and the JWKS are cached
// in-process with independent lifetimes.
type Client struct {
	cfg  Config
	http *http.Client

	mu          sync.RWMutex
	disc        *discoveryDoc
	discFetched time.Time
	keys        *keySet
	keysFetched time.Time
	keysETag    string
}

type discoveryDoc struct {
	Issuer        string `json:"issuer"`
	AuthEndpoint  string `json:"authorization_endpoint"`
	TokenEndpoint string `json:"token_endpoint"`
	JWKSURI       string `json:"jwks_uri"`
}

type jsonKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type keySet struct {
	Keys []jsonKey `json:"keys"`
}

// Identity is the verified subset of the ID-token claims the engine needs.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// New returns a Client for the given registration.
func New(cfg Config) *Client {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "email", "profile"}
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthURL builds the authorization redirect, binding state and nonce.
func (c *Client) AuthURL(ctx context.Context, state, nonce string) (string, error) {
	disc, err := c.discovery(ctx)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(disc.AuthEndpoint)
	if err != nil {
		return "", fmt.Errorf("bad auth endpoint: %w", err)
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURL)
	q.Set("scope", strings.Join(c.cfg.Scopes, " "))
	q.Set("state", state)
	q.Set("nonce", nonce)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Exchange trades an authorization code for tokens and verifies the
// embedded ID token, returning the asserted identity.
func (c *Client) Exchange(ctx context.Context, code, expectedNonce string) (*Identity, error) {
	disc, err := c.discovery(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, disc.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var body struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, fmt.Errorf("token endpoint http %d: %s %s", resp.StatusCode, body.Error, body.ErrorDescription)
	}

	var tr struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	if tr.IDToken == "" {
		return nil, errors.New("token response missing id_token")
	}

	return c.verifyIDToken(ctx, tr.IDToken, expectedNonce)
}

func (c *Client) verifyIDToken(ctx context.Context, idToken, expectedNonce string) (*Identity, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, errors.New("malformed id_token")
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, err
	}
	var header struct {
		Alg string `json:"alg"`
		Kid string `json:"kid"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, err
	}
	if header.Alg != "RS256" {
		return nil, fmt.Errorf("unexpected id_token alg %q", header.Alg)
	}

	key, err := c.keyForKid(ctx, header.Kid)
	if err != nil {
		return nil, err
	}

	tok, err := jwt.Parse(idToken,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid id_token")
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid id_token claims")
	}

	iss, _ := claims["iss"].(string)
	if iss != "https://accounts.google.com" && iss != "accounts.google.com" {
		return nil, fmt.Errorf("unexpected id_token issuer %q", iss)
	}
	if !audienceMatches(claims["aud"], c.cfg.ClientID) {
		return nil, errors.New("id_token audience mismatch")
	}
	if expectedNonce != "" {
		if got, _ := claims["nonce"].(string); got != expectedNonce {
			return nil, errors.New("id_token nonce mismatch")
		}
	}

	id := &Identity{
		Subject:       stringClaim(claims, "sub"),
		Email:         stringClaim(claims, "email"),
		EmailVerified: boolClaim(claims, "email_verified"),
		Name:          stringClaim(claims, "name"),
		Picture:       stringClaim(claims, "picture"),
	}
	if id.Subject == "" || id.Email == "" {
		return nil, errors.New("id_token missing identity claims")
	}
	if !id.EmailVerified {
		return nil, ErrUnverifiedEmail
	}
	return id, nil
}

func (c *Client) discovery(ctx context.Context) (*discoveryDoc, error) {
	c.mu.RLock()
	disc := c.disc
	fresh := time.Since(c.discFetched) < discoveryMaxAge
	c.mu.RUnlock()
	if disc != nil && fresh {
		return disc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("discovery http %d", resp.StatusCode)
	}
	var doc discoveryDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.disc = &doc
	c.discFetched = time.Now()
	c.mu.Unlock()
	return &doc, nil
}

func (c *Client) fetchKeys(ctx context.Context, uri string) (*keySet, error) {
	c.mu.RLock()
	keys := c.keys
	fresh := time.Since(c.keysFetched) < jwksMaxAge
	etag := c.keysETag
	c.mu.RUnlock()
	if keys != nil && fresh {
		return keys, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		c.mu.Lock()
		out := c.keys
		c.keysFetched = time.Now()
		c.mu.Unlock()
		return out, nil
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("jwks http %d", resp.StatusCode)
	}

	var set keySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.keys = &set
	c.keysFetched = time.Now()
	c.keysETag = resp.Header.Get("ETag")
	c.mu.Unlock()
	return &set, nil
}

func (c *Client) keyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	disc, err := c.discovery(ctx)
	if err != nil {
		return nil, err
	}
	set, err := c.fetchKeys(ctx, disc.JWKSURI)
	if err != nil {
		return nil, err
	}

	for _, k := range set.Keys {
		if k.Kid != kid || !strings.EqualFold(k.Kty, "RSA") {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, err
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, err
		}
		e := 0
		for _, b := range eBytes {
			e = e<<8 | int(b)
		}
		if e == 0 {
			e = 65537
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
	}
	return nil, fmt.Errorf("no RSA key for kid %q", kid)
}

func audienceMatches(aud any, clientID string) bool {
	switch a := aud.(type) {
	case string:
		return a == clientID
	case []any:
		for _, v := range a {
			if s, _ := v.(string); s == clientID {
				return true
			}
		}
	}
	return false
}

func stringClaim(m jwt.MapClaims, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolClaim(m jwt.MapClaims, key string) bool {
	b, _ := m[key].(bool)
	return b
}
