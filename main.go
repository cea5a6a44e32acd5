package main

import (
	"encoding/gob"
	"log"
	"strings"
	"time"

	"server/ai"
	"server/config"
	"server/db"
	"server/entity"
	"server/handlers"
	"server/ingest"
	"server/models"
	"server/storage"
	"server/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName     = "token"
	sessionExpirationTime = 365 * 86400 // 1 year
)

func main() {
	db.Init()
	models.Init()
	storage.Init()

	store := entity.NewStore(db.Instance)
	captioner := ai.NewOpenAIClient(config.OPENAI_API_KEY, config.OPENAI_MODEL)
	worker := ingest.NewWorker(store, storage.GetDefaultStorage(), captioner)
	handlers.Init(store, worker)
	go worker.Run()

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.LogFailedRequests)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "PUT", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))

	// The table view keeps its cursor stack in the cookie session
	gob.Register([]string{})
	cookieStore := gormsessions.NewStore(db.Instance, true, []byte(config.SESSION_KEY))
	cookieStore.Options(sessions.Options{MaxAge: sessionExpirationTime})
	router.Use(sessions.Sessions(sessionCookieName, cookieStore))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/blob/"})))
	}
	router.Use(utils.NoCacheByDefault()) // Listing and blob handlers override this

	// Ingestion
	router.POST("/register-image", handlers.RegisterImage)
	// Listings
	router.GET("/gallery", handlers.GalleryList)
	router.GET("/table", handlers.TableList)
	// Staging uploads
	router.POST("/upload/new-url", handlers.UploadNewURL)
	router.PUT("/upload/direct", handlers.UploadDirect)
	// Misc
	router.GET("/blob/*path", handlers.BlobFetch)
	router.GET("/robots.txt", handlers.DisallowRobots)

	var err error
	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
