package token

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chatlite/callkit/internal/errors"
	"github.com/chatlite/callkit/internal/log"
)

const issuerTimeout = 10 * time.Second

var (
	client = resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(issuerTimeout)
)

type tokenRequest struct {
	UserID string `json:"userId"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type httpProvider struct {
	issuerURL string
	apiKey    string
	logger    *log.Logger
}

// NewHTTPProvider creates a Provider backed by go-resty against the
// configured issuer endpoint.
func NewHTTPProvider(issuerURL, apiKey string, logger *log.Logger) Provider {
	if logger == nil {
		panic("logger is required")
	}
	return &httpProvider{
		issuerURL: strings.TrimRight(issuerURL, "/"),
		apiKey:    apiKey,
		logger:    logger,
	}
}

func (p *httpProvider) FetchToken(ctx context.Context, userID string) (*Credential, error) {
	if userID == "" {
		return nil, errors.New(ErrInvalidRequest, "userID is required")
	}

	resp, err := client.R().
		SetContext(ctx).
		SetHeader("X-API-Key", p.apiKey).
		SetBody(&tokenRequest{UserID: userID}).
		Post(p.issuerURL)
	if err != nil {
		return nil, errors.Wrap(ErrNetworkFailure, err, "token request")
	}
	if resp.IsError() {
		return nil, errors.Newf(ErrNetworkFailure, "issuer http error (code: %d)", resp.StatusCode())
	}

	var body tokenResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, errors.Wrap(ErrInvalidResponse, err, "decode issuer response")
	}
	if body.Token == "" {
		return nil, errors.New(ErrEmptyToken, "issuer returned empty token")
	}

	cred := &Credential{
		Token:  body.Token,
		UserID: userID,
	}

	// Issuer tokens are opaque to the client. When one happens to be a JWT,
	// subject and expiry are read without signature verification; the
	// backend is the party that verifies.
	if claims, err := peekClaims(body.Token); err == nil {
		if claims.Subject != "" && claims.Subject != userID {
			return nil, errors.Newf(ErrInvalidResponse,
				"token issued for %q, requested %q", claims.Subject, userID)
		}
		if claims.ExpiresAt != nil {
			cred.ExpiresAt = claims.ExpiresAt.Time
		}
	}

	p.logger.Debug("token fetched",
		log.String("userId", userID),
		log.Time("expiresAt", cred.ExpiresAt),
	)
	return cred, nil
}

func peekClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
