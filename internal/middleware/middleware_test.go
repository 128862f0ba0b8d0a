package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/logger"
)

func TestActorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Actor())
	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen = ActorFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(logger.ActorHeader, "  reception-01 ")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "reception-01", seen)

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(logger.ActorHeader, strings.Repeat("x", 300))
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Len(t, seen, maxActorLength)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Empty(t, seen)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithResponseMeta())
	var meta map[string]interface{}
	router.GET("/cached", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
	})
	router.GET("/plain", func(c *gin.Context) {
		meta = ExtractMeta(c)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cached", nil))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, "processing_time_ms")

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Nil(t, meta)
}

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/schedules/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/schedules/"+id, nil))
	}
	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}
