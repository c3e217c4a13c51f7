package token

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/chatlite/callkit/internal/errors"
	"github.com/chatlite/callkit/internal/log"
)

type ProviderTestSuite struct {
	suite.Suite
	server  *httptest.Server
	handler func(w http.ResponseWriter, r *http.Request)
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}

func (s *ProviderTestSuite) SetupTest() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
}

func (s *ProviderTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ProviderTestSuite) provider() Provider {
	return NewHTTPProvider(s.server.URL, "test-api-key", log.NewNop())
}

func (s *ProviderTestSuite) respondToken(token string) {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}
}

func signedJWT(s *ProviderTestSuite, subject string, expiresAt time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("issuer-secret"))
	s.Require().NoError(err)
	return token
}

func (s *ProviderTestSuite) TestFetchOpaqueToken() {
	var gotBody map[string]string
	var gotAPIKey string
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-API-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": "abc"})
	}

	cred, err := s.provider().FetchToken(context.Background(), "u1")
	s.Require().NoError(err)
	s.Equal("abc", cred.Token)
	s.Equal("u1", cred.UserID)
	s.True(cred.ExpiresAt.IsZero())

	s.Equal("u1", gotBody["userId"])
	s.Equal("test-api-key", gotAPIKey)
}

func (s *ProviderTestSuite) TestFetchJWTReadsExpiry() {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	s.respondToken(signedJWT(s, "u1", exp))

	cred, err := s.provider().FetchToken(context.Background(), "u1")
	s.Require().NoError(err)
	s.Equal(exp.Unix(), cred.ExpiresAt.Unix())
}

func (s *ProviderTestSuite) TestFetchJWTSubjectMismatch() {
	s.respondToken(signedJWT(s, "someone-else", time.Now().Add(time.Hour)))

	_, err := s.provider().FetchToken(context.Background(), "u1")
	s.Require().Error(err)
	s.True(errors.Is(err, ErrInvalidResponse))
}

func (s *ProviderTestSuite) TestServerError() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}

	_, err := s.provider().FetchToken(context.Background(), "u1")
	s.Require().Error(err)
	s.True(errors.Is(err, ErrNetworkFailure))
}

func (s *ProviderTestSuite) TestMalformedBody() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{not json"))
	}

	_, err := s.provider().FetchToken(context.Background(), "u1")
	s.Require().Error(err)
	s.True(errors.Is(err, ErrInvalidResponse))
}

func (s *ProviderTestSuite) TestEmptyToken() {
	s.respondToken("")

	_, err := s.provider().FetchToken(context.Background(), "u1")
	s.Require().Error(err)
	s.True(errors.Is(err, ErrEmptyToken))
}

func (s *ProviderTestSuite) TestEmptyUserID() {
	s.respondToken("abc")

	_, err := s.provider().FetchToken(context.Background(), "")
	s.Require().Error(err)
	s.True(errors.Is(err, ErrInvalidRequest))
}

func (s *ProviderTestSuite) TestCredentialValidFor() {
	now := time.Now()

	cred := &Credential{Token: "abc", UserID: "u1", ExpiresAt: now.Add(time.Minute)}
	s.True(cred.ValidFor("u1", now))
	s.False(cred.ValidFor("u2", now))
	s.False(cred.ValidFor("u1", now.Add(2*time.Minute)))

	noExpiry := &Credential{Token: "abc", UserID: "u1"}
	s.False(noExpiry.ValidFor("u1", now))

	var nilCred *Credential
	s.False(nilCred.ValidFor("u1", now))
}
