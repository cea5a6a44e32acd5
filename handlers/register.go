package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type RegisterImageRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// RegisterImage queues ingestion of a staged upload. It always answers 202:
// the work is asynchronous and its outcome is only observable through the
// listing endpoints (or the task row, via the returned token).
func RegisterImage(c *gin.Context) {
	var r RegisterImageRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	task, err := worker.Register(sanitizeFilename(r.Filename))
	if err != nil {
		log.Printf("Error registering image %s: %v", r.Filename, err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"token": task.Token})
}
