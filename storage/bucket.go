package storage

import (
	"os"
	"strings"

	"server/db"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type StorageType uint8

const (
	StorageTypeFile  StorageType = 0
	StorageTypeS3    StorageType = 1
	StorageTypeMinio StorageType = 2
)

// Prefixes within a bucket. Staged objects are private uploads awaiting
// ingestion; public objects are the transcoded renditions.
const (
	StagedPrefix = "staged"
	PublicPrefix = "public"
)

type Bucket struct {
	ID          uint64 `gorm:"primaryKey"`
	CreatedAt   int
	UpdatedAt   int
	Name        string `gorm:"type:varchar(200)"`
	StorageType StorageType
	Path        string // Directory on a drive or a key prefix in a remote bucket
	AuthDetails string // "key:secret" for S3/MinIO
	Region      string `gorm:"type:varchar(50)"`
	Endpoint    string `gorm:"type:varchar(300)"` // Custom endpoint (MinIO host, S3-compatible store)
	PublicBase  string `gorm:"type:varchar(300)"` // Base URL under which public objects are reachable
}

func (b *Bucket) Create() error {
	err := db.Instance.Create(b).Error
	if err != nil {
		return err
	}
	if b.StorageType == StorageTypeFile {
		// Pre-create locations on disk
		if err = os.MkdirAll(b.Path+"/"+StagedPrefix, 0777); err != nil {
			return err
		}
		if err = os.MkdirAll(b.Path+"/"+PublicPrefix, 0777); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bucket) IsRemote() bool {
	return b.StorageType == StorageTypeS3 || b.StorageType == StorageTypeMinio
}

// GetRemotePath prepends the bucket's key prefix, if any.
func (b *Bucket) GetRemotePath(path string) string {
	if b.StorageType != StorageTypeFile && b.Path != "" {
		return strings.TrimSuffix(b.Path, "/") + "/" + path
	}
	return path
}

func (b *Bucket) accessKeys() (key, secret string) {
	parts := strings.SplitN(b.AuthDetails, ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// CreateSVC creates an S3 client for this bucket.
func (b *Bucket) CreateSVC() *s3.S3 {
	key, secret := b.accessKeys()
	cfg := aws.Config{
		Region:      aws.String(b.Region),
		Credentials: credentials.NewStaticCredentials(key, secret, ""),
	}
	if b.Endpoint != "" {
		cfg.Endpoint = aws.String(b.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	return s3.New(session.Must(session.NewSession(&cfg)))
}
