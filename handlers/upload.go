package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"server/config"
	"server/storage"

	"github.com/gin-gonic/gin"
)

const passphraseHeader = "x-upload-passphrase"

type UploadURLRequest struct {
	Name        string `json:"name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Passphrase  string `json:"passphrase" binding:"required"`
}

func passphraseOK(candidate string) bool {
	if config.UPLOAD_PASSPHRASE == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(config.UPLOAD_PASSPHRASE)) == 1
}

// UploadNewURL issues a time-limited staging upload URL for a caller-chosen
// filename, gated by the shared passphrase.
func UploadNewURL(c *gin.Context) {
	var r UploadURLRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if !passphraseOK(r.Passphrase) {
		c.JSON(http.StatusUnauthorized, NopeResponse)
		return
	}
	name := sanitizeFilename(r.Name)
	ttl := time.Duration(config.UPLOAD_URL_TTL) * time.Second
	url, err := storage.GetDefaultStorage().SignUploadURL(storage.StagedPrefix+"/"+name, r.ContentType, ttl)
	if err != nil {
		log.Printf("Error signing upload URL for %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, Response{"cannot sign upload URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":         name,
		"url":          url,
		"method":       "PUT",
		"content_type": r.ContentType,
		"expires_in":   config.UPLOAD_URL_TTL,
	})
}

// UploadDirect accepts the staged bytes directly; it backs the URL the disk
// storage hands out instead of a presigned one.
func UploadDirect(c *gin.Context) {
	if !passphraseOK(c.GetHeader(passphraseHeader)) {
		c.JSON(http.StatusUnauthorized, NopeResponse)
		return
	}
	name := sanitizeFilename(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, Response{"name is required"})
		return
	}
	_, err := storage.GetDefaultStorage().Save(storage.StagedPrefix+"/"+name, c.ContentType(), c.Request.Body)
	if err != nil {
		log.Printf("Error saving staged upload %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, Response{"cannot save upload"})
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}
