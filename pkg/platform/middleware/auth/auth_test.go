package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	id "lockme/pkg/domain"
	"lockme/pkg/requestcontext"
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(token string) (*Claims, error) {
	args := m.Called(token)
	if claims := args.Get(0); claims != nil {
		return claims.(*Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

// RequireAuthSuite: an invalid token must never reach the handler.
type RequireAuthSuite struct {
	suite.Suite
	validator *MockTokenValidator
	reached   bool
	ctx       context.Context
	handler   http.Handler
}

func TestRequireAuthSuite(t *testing.T) {
	suite.Run(t, new(RequireAuthSuite))
}

func (s *RequireAuthSuite) SetupTest() {
	s.validator = new(MockTokenValidator)
	s.reached = false
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = RequireAuth(s.validator, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reached = true
		s.ctx = r.Context()
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *RequireAuthSuite) serve(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *RequireAuthSuite) TestValidToken() {
	s.validator.On("ValidateToken", "good").Return(&Claims{UserID: "7", Email: "admin@lockme.test"}, nil)

	w := s.serve("Bearer good")

	s.Equal(http.StatusOK, w.Code)
	s.True(s.reached)
	s.Equal(id.UserID(7), requestcontext.UserID(s.ctx))
	s.Equal("admin@lockme.test", requestcontext.Email(s.ctx))
	s.validator.AssertExpectations(s.T())
}

func (s *RequireAuthSuite) TestRejections() {
	s.Run("missing header", func() {
		w := s.serve("")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.False(s.reached)
	})

	s.Run("wrong scheme", func() {
		w := s.serve("Basic abc")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.False(s.reached)
	})

	s.Run("invalid token", func() {
		s.validator.On("ValidateToken", "expired").Return(nil, errors.New("token expired")).Once()
		w := s.serve("Bearer expired")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.Contains(w.Body.String(), "Invalid or expired token")
		s.False(s.reached)
	})

	s.Run("malformed subject", func() {
		s.validator.On("ValidateToken", "odd").Return(&Claims{UserID: "abc"}, nil).Once()
		w := s.serve("Bearer odd")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.False(s.reached)
	})
}
