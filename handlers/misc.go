package handlers

import (
	"net/http"
	"strings"

	"server/storage"
	"server/utils"

	"github.com/gin-gonic/gin"
)

// Public renditions are immutable (content-hash named), so caches can hold
// them for a week.
const blobCacheSecs = 7 * 86400

// BlobFetch serves public objects for the disk backend (remote backends
// redirect to their own URLs). Staged objects are never reachable here.
func BlobFetch(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if !strings.HasPrefix(path, storage.PublicPrefix+"/") {
		c.JSON(http.StatusNotFound, NopeResponse)
		return
	}
	utils.CachePublicly(c, blobCacheSecs)
	storage.GetDefaultStorage().Serve(path, c.Request, c.Writer)
}

func DisallowRobots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /\n")
}
