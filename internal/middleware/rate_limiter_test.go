package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/taskquest-api/internal/constants"
	"golang.org/x/time/rate"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func doRequest(router *gin.Engine, method, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

func TestRateLimiter(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(rate.Limit(1), 1))
	router.GET("/test", okHandler)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "127.0.0.1:12345").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, http.MethodGet, "127.0.0.1:12345").Code)

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "192.168.1.1:12345").Code)
}

func TestDistributedRateLimiter(t *testing.T) {
	client, _ := setupTestRedis(t)

	router := setupTestGin()
	limiter := NewDistributedRateLimiter(client)
	router.Use(limiter.Middleware("test", RateLimit{Rate: 2, Window: time.Minute, KeyFunc: IPKeyFunc}))
	router.GET("/test", okHandler)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "127.0.0.1:12345").Code, "request %d", i+1)
	}

	w := doRequest(router, http.MethodGet, "127.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "10.0.0.1:12345").Code)
}

func TestDistributedRateLimiter_SharedAcrossInstances(t *testing.T) {
	client, _ := setupTestRedis(t)
	limit := RateLimit{Rate: 1, Window: time.Minute, KeyFunc: IPKeyFunc}

	first := setupTestGin()
	first.Use(NewDistributedRateLimiter(client).Middleware("writes", limit))
	first.GET("/test", okHandler)

	second := setupTestGin()
	second.Use(NewDistributedRateLimiter(client).Middleware("writes", limit))
	second.GET("/test", okHandler)

	assert.Equal(t, http.StatusOK, doRequest(first, http.MethodGet, "127.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(second, http.MethodGet, "127.0.0.1:1").Code)
}

func TestDistributedRateLimiter_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	router := setupTestGin()
	router.Use(NewDistributedRateLimiter(client).Middleware("test", RateLimit{Rate: 1, Window: time.Minute, KeyFunc: IPKeyFunc}))
	router.GET("/test", okHandler)

	w := doRequest(router, http.MethodGet, "127.0.0.1:12345")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-RateLimit-Error"))
}

func TestWritesOnly(t *testing.T) {
	client, _ := setupTestRedis(t)

	router := setupTestGin()
	router.Use(WritesOnly(NewDistributedRateLimiter(client).Middleware("writes", RateLimit{Rate: 1, Window: time.Minute, KeyFunc: IPKeyFunc})))
	router.GET("/test", okHandler)
	router.POST("/test", okHandler)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "127.0.0.1:1").Code)
	}
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "127.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, http.MethodPost, "127.0.0.1:1").Code)
}

func TestUserKeyFunc(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "127.0.0.1:12345"

	assert.Equal(t, "127.0.0.1", UserKeyFunc(c))

	c.Set(constants.ContextKeyUserID, uint64(42))
	assert.Equal(t, "user:42", UserKeyFunc(c))
}
