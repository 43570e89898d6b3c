package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func whoami(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(UserID(r.Context()) + "/" + Role(r.Context())))
}

func TestAuth(t *testing.T) {
	auth := NewAuth("secret", quietLogger())
	h := auth.Handler(http.HandlerFunc(whoami))

	token, err := auth.Issue("user-1", "", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1/", w.Body.String())

	other := NewAuth("other-secret", quietLogger())
	forged, err := other.Issue("user-1", RoleAdmin, time.Hour)
	require.NoError(t, err)
	expired, err := auth.Issue("user-1", "", -time.Minute)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"garbage":    "Bearer abc.def.ghi",
		"forged":     "Bearer " + forged,
		"expired":    "Bearer " + expired,
		"no expiry":  "Bearer " + noExp,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	auth := NewAuth("secret", quietLogger())
	h := auth.Handler(RequireRole(RoleAdmin)(http.HandlerFunc(whoami)))

	user, _ := auth.Issue("user-1", "", time.Hour)
	admin, _ := auth.Issue("ops", RoleAdmin, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+user)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req.Header.Set("Authorization", "Bearer "+admin)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops/admin", w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, quietLogger())
	h := rl.Handler(http.HandlerFunc(whoami))

	hit := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1:5002"))
	// Separate bucket per client.
	assert.Equal(t, http.StatusOK, hit("10.0.0.2:5000"))

	assert.Equal(t, 2, rl.size())
	rl.Cleanup(time.Hour)
	assert.Equal(t, 2, rl.size())
	rl.Cleanup(-time.Second)
	assert.Zero(t, rl.size())
}

func TestMetricsAndLogger(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Logger(quietLogger()), Metrics)
	r.Get("/v1/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/things/42", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
