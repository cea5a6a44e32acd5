package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// NoCacheByDefault marks every response no-cache. The listing and blob
// endpoints override this with CachePublicly; everything else (registration,
// upload URLs) must never be cached.
func NoCacheByDefault() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("cache-control", "no-cache")
		c.Next()
	}
}

// CachePublicly opts a response into shared caching for maxAgeSeconds.
func CachePublicly(c *gin.Context, maxAgeSeconds int) {
	c.Header("cache-control", "public, max-age="+strconv.Itoa(maxAgeSeconds))
}
