package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	TLS_DOMAINS        = ""     // e.g. "example.com,example2.com"
	MYSQL_DSN          = ""     // MySQL will be used if this is set
	SQLITE_FILE        = ""     // SQLite will be used if MYSQL_DSN is not configured and this is set
	BIND_ADDRESS       = "0.0.0.0:8080"
	DEFAULT_BUCKET_DIR = "" // Used for creating an initial disk bucket
	DEBUG_MODE         = true
	SESSION_KEY        = "this is a long key" // TODO: fail at startup when unset in production
	UPLOAD_PASSPHRASE  = ""                   // Shared secret gating staged uploads
	UPLOAD_URL_TTL     = 900                  // Seconds a signed staging upload URL stays valid
	OPENAI_API_KEY     = ""
	OPENAI_MODEL       = "gpt-4o"
	JPEG_QUALITY       = 70   // Canonical re-encode quality
	MAX_IMAGE_DIM      = 2560 // Long-edge bound for the public rendition
	PAGE_SIZE          = 10
	GALLERY_CACHE_SECS = 60
)

func init() {
	_ = godotenv.Load()
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("DEFAULT_BUCKET_DIR", &DEFAULT_BUCKET_DIR)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("SESSION_KEY", &SESSION_KEY)
	readEnvString("UPLOAD_PASSPHRASE", &UPLOAD_PASSPHRASE)
	readEnvInt("UPLOAD_URL_TTL", &UPLOAD_URL_TTL)
	readEnvString("OPENAI_API_KEY", &OPENAI_API_KEY)
	readEnvString("OPENAI_MODEL", &OPENAI_MODEL)
	readEnvInt("JPEG_QUALITY", &JPEG_QUALITY)
	readEnvInt("MAX_IMAGE_DIM", &MAX_IMAGE_DIM)
	readEnvInt("PAGE_SIZE", &PAGE_SIZE)
	readEnvInt("GALLERY_CACHE_SECS", &GALLERY_CACHE_SECS)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}
