package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCachePolicy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NoCacheByDefault())
	router.GET("/plain", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/shared", func(c *gin.Context) {
		CachePublicly(c, 60)
		c.String(http.StatusOK, "ok")
	})

	tests := []struct {
		path string
		want string
	}{
		{"/plain", "no-cache"},
		{"/shared", "public, max-age=60"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
		if got := w.Header().Get("cache-control"); got != tt.want {
			t.Errorf("GET %s cache-control = %q, want %q", tt.path, got, tt.want)
		}
	}
}
