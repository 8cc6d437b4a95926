package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/membership/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ownerRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", OwnerRequired("X-USER-ID", secret), func(c *gin.Context) {
		owner, _ := OwnerID(c)
		c.String(http.StatusOK, owner)
	})
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.JSONResponse {
	t.Helper()
	var body utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOwnerRequired(t *testing.T) {
	token, err := utils.GenerateToken("secret", "jwt-owner", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name    string
		secret  string
		headers map[string]string
		status  int
		owner   string
		code    int
	}{
		{name: "header", headers: map[string]string{"X-USER-ID": "12345"}, status: http.StatusOK, owner: "12345"},
		{name: "header wins over bearer", secret: "secret", headers: map[string]string{"X-USER-ID": "12345", "Authorization": "Bearer " + token}, status: http.StatusOK, owner: "12345"},
		{name: "missing", status: http.StatusBadRequest, code: 40002},
		{name: "blank header", headers: map[string]string{"X-USER-ID": "  "}, status: http.StatusBadRequest, code: 40002},
		{name: "bearer ignored without secret", headers: map[string]string{"Authorization": "Bearer " + token}, status: http.StatusBadRequest, code: 40002},
		{name: "bearer", secret: "secret", headers: map[string]string{"Authorization": "Bearer " + token}, status: http.StatusOK, owner: "jwt-owner"},
		{name: "bad scheme", secret: "secret", headers: map[string]string{"Authorization": "Basic abc"}, status: http.StatusUnauthorized, code: 40101},
		{name: "bad token", secret: "other", headers: map[string]string{"Authorization": "Bearer " + token}, status: http.StatusUnauthorized, code: 40101},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			ownerRouter(tc.secret).ServeHTTP(w, req)

			require.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.owner, w.Body.String())
				return
			}
			assert.Equal(t, tc.code, decode(t, w).Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(utils.RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(utils.RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(utils.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(utils.RequestIDHeader))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(4))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// burst is perMinute/2
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1").Code)

	w := hit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 42901, decode(t, w).Code)

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2").Code)
}

func TestIPLimiters_SweepsIdleEntriesOncePerTTL(t *testing.T) {
	clock := time.Now()
	l := newIPLimiters(60)
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	l.get("10.0.0.1")
	clock = clock.Add(limiterIdleTTL)
	l.get("10.0.0.2")
	assert.Len(t, l.limiters, 2)

	// 10.0.0.1 is now idle but the previous sweep ran a second ago
	clock = clock.Add(time.Second)
	l.get("10.0.0.2")
	assert.Len(t, l.limiters, 2)

	clock = clock.Add(limiterIdleTTL + time.Second)
	l.get("10.0.0.3")
	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "10.0.0.3")
}
