package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedEngine(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterDisabled(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	rl := NewRateLimiter(0, 5, log)
	require.Nil(t, rl)

	r := newLimitedEngine(rl)
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1:1000"))
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	rl := NewRateLimiter(0.001, 2, log)
	r := newLimitedEngine(rl)

	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1:1002"))

	// another client has its own budget
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.2:1000"))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "10.0.0.1", hook.LastEntry().Data["client"])
}

func TestRateLimiterCleanup(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	rl := NewRateLimiter(1, 1, log)

	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.allow("a")
	now = now.Add(5 * time.Minute)
	rl.allow("b")

	now = now.Add(6 * time.Minute)
	rl.Cleanup()

	assert.NotContains(t, rl.limiters, "a")
	assert.Contains(t, rl.limiters, "b")
}
