package storage

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"server/config"
	"server/db"
)

type StorageAPI interface {
	// Exists reports whether the object is present in the bucket.
	Exists(path string) bool
	Load(path string, writer io.Writer) (int64, error)
	// Save stores the object with the given content type.
	Save(path, mimeType string, reader io.Reader) (int64, error)
	Delete(path string) error
	// Serve writes the object straight to an HTTP response (disk backend only;
	// remote backends redirect to PublicURL instead).
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	// SignUploadURL returns a time-limited URL accepting a PUT of exactly the
	// given content type.
	SignUploadURL(path, contentType string, ttl time.Duration) (string, error)
	// PublicURL returns a stable URL under which the object can be fetched.
	PublicURL(path string) string
	GetBucket() *Bucket
}

var cachedStorage []StorageAPI

func Init() {
	db.Instance.AutoMigrate(&Bucket{})

	var buckets []Bucket
	if err := db.Instance.Find(&buckets).Error; err != nil {
		panic(err)
	}
	if len(buckets) == 0 && config.DEFAULT_BUCKET_DIR != "" {
		b := Bucket{
			Name:        "disk1",
			StorageType: StorageTypeFile,
			Path:        config.DEFAULT_BUCKET_DIR,
		}
		if err := b.Create(); err != nil {
			panic(err)
		}
		buckets = append(buckets, b)
	}
	log.Printf("Storage Buckets found: %d\n", len(buckets))
	cachedStorage = []StorageAPI{}
	for _, bucket := range buckets {
		var storage StorageAPI
		switch bucket.StorageType {
		case StorageTypeFile:
			storage = NewDiskStorage(&bucket)
		case StorageTypeS3:
			storage = NewS3Storage(&bucket)
		case StorageTypeMinio:
			storage = NewMinioStorage(&bucket)
		default:
			panic(fmt.Sprintf("Storage type unavailable for Bucket %d", bucket.ID))
		}
		cachedStorage = append(cachedStorage, storage)
	}
}

func StorageFrom(bucket *Bucket) StorageAPI {
	for _, s := range cachedStorage {
		if s.GetBucket().ID == bucket.ID {
			return s
		}
	}
	return nil
}

func GetDefaultStorage() StorageAPI {
	if len(cachedStorage) == 0 {
		panic("no storage available")
	}
	return cachedStorage[0]
}
