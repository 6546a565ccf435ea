package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/mocks"
	"github.com/architeacher/storefront-gateway/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type SecurityHeadersTestSuite struct {
	suite.Suite
}

func TestSecurityHeadersTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(SecurityHeadersTestSuite))
}

func (s *SecurityHeadersTestSuite) TestSecurityHeaders() {
	s.T().Parallel()

	cases := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "X-Content-Type-Options",
			header:   "X-Content-Type-Options",
			expected: "nosniff",
		},
		{
			name:     "X-Frame-Options",
			header:   "X-Frame-Options",
			expected: "DENY",
		},
		{
			name:     "Strict-Transport-Security",
			header:   "Strict-Transport-Security",
			expected: "max-age=31536000; includeSubDomains",
		},
		{
			name:     "Referrer-Policy",
			header:   "Referrer-Policy",
			expected: "strict-origin-when-cross-origin",
		},
		{
			name:     "API-Version",
			header:   "API-Version",
			expected: "v1",
		},
	}

	handler := middleware.SecurityHeaders("v1", "max-age=31536000; includeSubDomains")(okHandler())

	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			s.Require().Equal(tc.expected, rec.Header().Get(tc.header))
		})
	}
}

func (s *SecurityHeadersTestSuite) TestSecurityHeaders_OmitsEmptyHSTS() {
	s.T().Parallel()

	rec := httptest.NewRecorder()
	middleware.SecurityHeaders("", "")(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Require().Empty(rec.Header().Get("Strict-Transport-Security"))
	s.Require().Empty(rec.Header().Get("API-Version"))
}

type CORSTestSuite struct {
	suite.Suite
	policy model.CORSPolicy
}

func TestCORSTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CORSTestSuite))
}

func (s *CORSTestSuite) SetupTest() {
	s.policy = model.CORSPolicy{
		AllowedOrigins:   []string{"https://shop.example.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Request-Id", "Correlation-Id"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}
}

func (s *CORSTestSuite) TestCORS_NoOrigin() {
	called := false
	handler := middleware.CORS(s.policy)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product/1", nil))

	s.Require().True(called)
	s.Require().Empty(rec.Header().Get("Access-Control-Allow-Origin"))
}

func (s *CORSTestSuite) TestCORS_ActualRequest() {
	handler := middleware.CORS(s.policy)(okHandler())

	cases := []struct {
		name          string
		origin        string
		expectAllowed bool
	}{
		{
			name:          "allowed origin",
			origin:        "https://shop.example.com",
			expectAllowed: true,
		},
		{
			name:          "disallowed origin",
			origin:        "https://evil.example.com",
			expectAllowed: false,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, "/product/1", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			s.Require().Equal(http.StatusOK, rec.Code)

			if !tc.expectAllowed {
				s.Require().Empty(rec.Header().Get("Access-Control-Allow-Origin"))

				return
			}

			s.Require().Equal(tc.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			s.Require().Equal("true", rec.Header().Get("Access-Control-Allow-Credentials"))
			s.Require().Equal("Request-Id, Correlation-Id", rec.Header().Get("Access-Control-Expose-Headers"))
			s.Require().Contains(rec.Header().Values("Vary"), "Origin")
		})
	}
}

func (s *CORSTestSuite) TestCORS_Preflight() {
	cases := []struct {
		name           string
		origin         string
		method         string
		requestHeaders string
		expectedStatus int
	}{
		{
			name:           "allowed preflight",
			origin:         "https://shop.example.com",
			method:         http.MethodPost,
			requestHeaders: "Authorization, Content-Type",
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "disallowed origin",
			origin:         "https://evil.example.com",
			method:         http.MethodPost,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "disallowed method",
			origin:         "https://shop.example.com",
			method:         http.MethodPatch,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			called := false
			handler := middleware.CORS(s.policy)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodOptions, "/order/checkout", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", tc.method)

			if tc.requestHeaders != "" {
				req.Header.Set("Access-Control-Request-Headers", tc.requestHeaders)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			s.Require().False(called)
			s.Require().Equal(tc.expectedStatus, rec.Code)

			if tc.expectedStatus != http.StatusNoContent {
				s.Require().Empty(rec.Header().Get("Access-Control-Allow-Origin"))

				return
			}

			s.Require().Equal(tc.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			s.Require().Equal("GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
			s.Require().Equal(tc.requestHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
			s.Require().Equal("3600", rec.Header().Get("Access-Control-Max-Age"))
		})
	}
}

func TestStripCORSHeaders(t *testing.T) {
	t.Parallel()

	header := http.Header{}
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("access-control-allow-methods", "GET")
	header.Set("Content-Type", "application/json")

	middleware.StripCORSHeaders(header)

	require.Equal(t, http.Header{"Content-Type": []string{"application/json"}}, header)
}

type RequestTrackingTestSuite struct {
	suite.Suite
}

func TestRequestTrackingTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RequestTrackingTestSuite))
}

func (s *RequestTrackingTestSuite) TestRequestTracking() {
	s.T().Parallel()

	cases := []struct {
		name              string
		requestID         string
		correlationID     string
		keepRequestID     bool
		keepCorrelationID bool
	}{
		{
			name: "generates ids",
		},
		{
			name:              "keeps supplied ids",
			requestID:         "req-123",
			correlationID:     "corr-456",
			keepRequestID:     true,
			keepCorrelationID: true,
		},
		{
			name:              "replaces oversized id",
			requestID:         strings.Repeat("a", 129),
			correlationID:     "corr-789",
			keepCorrelationID: true,
		},
		{
			name:          "replaces id with spaces",
			requestID:     "req 1",
			correlationID: "bad\tvalue",
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			var capturedCtx context.Context

			handler := middleware.RequestTracking()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.requestID != "" {
				req.Header.Set(middleware.RequestIDHeader, tc.requestID)
			}

			if tc.correlationID != "" {
				req.Header.Set(middleware.CorrelationIDHeader, tc.correlationID)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			requestID := middleware.GetRequestID(capturedCtx)
			correlationID := middleware.GetCorrelationID(capturedCtx)

			s.Require().NotEmpty(requestID)
			s.Require().NotEmpty(correlationID)
			s.Require().Equal(requestID, rec.Header().Get(middleware.RequestIDHeader))
			s.Require().Equal(correlationID, rec.Header().Get(middleware.CorrelationIDHeader))
			s.Require().Equal(tc.keepRequestID, requestID == tc.requestID)
			s.Require().Equal(tc.keepCorrelationID, correlationID == tc.correlationID)
		})
	}
}

type AuthenticationTestSuite struct {
	suite.Suite
	policy model.AuthPolicy
	log    logger.Logger
}

func TestAuthenticationTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(AuthenticationTestSuite))
}

func (s *AuthenticationTestSuite) SetupTest() {
	policy, err := model.NewAuthPolicy([]string{
		"GET /product/**",
		"/actuator/**",
		"POST /auth/login",
	})
	s.Require().NoError(err)

	s.policy = policy
	s.log = logger.NewTestLogger()
}

func (s *AuthenticationTestSuite) TestPublicEndpointsBypassVerification() {
	cases := []struct {
		name   string
		method string
		path   string
	}{
		{name: "catalog read", method: http.MethodGet, path: "/product/42"},
		{name: "bare entry means GET", method: http.MethodGet, path: "/actuator/health"},
		{name: "login", method: http.MethodPost, path: "/auth/login"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			verifier := &mocks.FakeTokenVerifier{}
			handler := middleware.Authentication(s.policy, verifier, s.log)(okHandler())

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			s.Require().Equal(http.StatusOK, rec.Code)
			s.Require().Zero(verifier.VerifyCallCount())
		})
	}
}

func (s *AuthenticationTestSuite) TestRejectsMissingOrInvalidTokens() {
	cases := []struct {
		name          string
		method        string
		authorization string
		verifyErr     error
		verifyCalls   int
	}{
		{
			name:   "missing header",
			method: http.MethodPost,
		},
		{
			name:          "basic scheme",
			method:        http.MethodPost,
			authorization: "Basic dXNlcjpwYXNz",
		},
		{
			name:          "empty bearer",
			method:        http.MethodPost,
			authorization: "Bearer ",
		},
		{
			name:          "verifier rejects",
			method:        http.MethodPost,
			authorization: "Bearer expired.token.value",
			verifyErr:     model.ErrInvalidToken,
			verifyCalls:   1,
		},
		{
			name:          "write to a read-only public path",
			method:        http.MethodDelete,
			authorization: "Bearer forged",
			verifyErr:     errors.New("signature is invalid"),
			verifyCalls:   1,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			verifier := &mocks.FakeTokenVerifier{}
			verifier.VerifyReturns(nil, tc.verifyErr)

			called := false
			handler := middleware.Authentication(s.policy, verifier, s.log)(http.HandlerFunc(
				func(w http.ResponseWriter, _ *http.Request) {
					called = true
					w.WriteHeader(http.StatusOK)
				}))

			req := httptest.NewRequest(tc.method, "/product/42", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			s.Require().False(called)
			s.Require().Equal(http.StatusUnauthorized, rec.Code)
			s.Require().Contains(rec.Header().Get("WWW-Authenticate"), "Bearer")
			s.Require().Contains(rec.Body.String(), `"code":"UNAUTHORIZED"`)
			s.Require().Equal(tc.verifyCalls, verifier.VerifyCallCount())
		})
	}
}

func (s *AuthenticationTestSuite) TestValidTokenStoresClaims() {
	verifier := &mocks.FakeTokenVerifier{}
	verifier.VerifyReturns(&model.Claims{Subject: "customer-7", Scopes: []string{"orders:write"}}, nil)

	var claims *model.Claims

	handler := middleware.Authentication(s.policy, verifier, s.log)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			claims, _ = model.ClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodPost, "/order/checkout", nil)
	req.Header.Set("Authorization", "bearer good.token.value")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NotNil(claims)
	s.Require().Equal("customer-7", claims.Subject)

	_, token := verifier.VerifyArgsForCall(0)
	s.Require().Equal("good.token.value", token)
}

func (s *AuthenticationTestSuite) TestPreflightShapedRequestStillNeedsToken() {
	verifier := &mocks.FakeTokenVerifier{}

	called := false
	handler := middleware.Authentication(s.policy, verifier, s.log)(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodOptions, "/order/checkout", nil)
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	s.Require().False(called)
	s.Require().Equal(http.StatusUnauthorized, rec.Code)
	s.Require().Zero(verifier.VerifyCallCount())
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := middleware.RequestTracking()(
		middleware.Recovery(logger.NewBufferedTestLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-panic")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	require.Contains(t, buf.String(), "panic recovered")
	require.Contains(t, buf.String(), `"request_id":"req-panic"`)
}

func TestAccessLogger(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		path        string
		logHealth   bool
		expectEntry bool
	}{
		{
			name:        "logs proxied request",
			path:        "/order/1",
			expectEntry: true,
		},
		{
			name: "skips health probe",
			path: "/actuator/health/liveness",
		},
		{
			name:        "logs health probe when enabled",
			path:        "/actuator/health",
			logHealth:   true,
			expectEntry: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			log := logger.NewBufferedTestLogger(&buf)

			handler := middleware.NewHealthCheckFilter(tc.logHealth).Middleware(
				middleware.AccessLogger(log, true)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set(middleware.CircuitBreakerHeader, "order")
					w.Header().Set(middleware.CircuitBreakerStateHeader, "open")
					w.WriteHeader(http.StatusServiceUnavailable)
				})),
			)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path+"?page=2", nil))

			if !tc.expectEntry {
				require.Empty(t, buf.String())

				return
			}

			require.Contains(t, buf.String(), `"status":503`)
			require.Contains(t, buf.String(), `"query":"page=2"`)
			require.Contains(t, buf.String(), `"circuit_breaker_state":"open"`)
		})
	}
}
