package utils

import (
	"log"

	"github.com/gin-gonic/gin"
)

type failureLogWriter struct {
	gin.ResponseWriter
	c *gin.Context
}

func (w failureLogWriter) Write(b []byte) (int, error) {
	if status := w.c.Writer.Status(); status >= 400 {
		log.Printf("HTTP %d on %s %s: %s", status, w.c.Request.Method, w.c.Request.URL.Path, b)
	}
	return w.ResponseWriter.Write(b)
}

// LogFailedRequests echoes error response bodies to the log. Debug only, and
// it must be installed before gzip or the body arrives here compressed.
func LogFailedRequests(c *gin.Context) {
	c.Writer = failureLogWriter{ResponseWriter: c.Writer, c: c}
	c.Next()
}
