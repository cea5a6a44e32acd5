package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStorage struct {
	bucket Bucket
	client *minio.Client
}

func NewMinioStorage(bucket *Bucket) StorageAPI {
	key, secret := bucket.accessKeys()
	region := bucket.Region
	if region == "" {
		region = "us-east-1" // MinIO's default; set so presigning never issues a GetBucketLocation request
	}
	client, err := minio.New(bucket.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: bucket.Region != "", // region set implies a real deployment behind TLS
		Region: region,
	})
	if err != nil {
		panic(err)
	}
	return &MinioStorage{
		bucket: *bucket,
		client: client,
	}
}

func (s *MinioStorage) Exists(path string) bool {
	_, err := s.client.StatObject(context.Background(), s.bucket.Name, s.bucket.GetRemotePath(path), minio.StatObjectOptions{})
	return err == nil
}

func (s *MinioStorage) Load(path string, writer io.Writer) (int64, error) {
	obj, err := s.client.GetObject(context.Background(), s.bucket.Name, s.bucket.GetRemotePath(path), minio.GetObjectOptions{})
	if err != nil {
		return 0, err
	}
	defer obj.Close()
	return io.Copy(writer, obj)
}

func (s *MinioStorage) Save(path, mimeType string, reader io.Reader) (int64, error) {
	// PutObject needs the size up front
	buf := bytes.Buffer{}
	size, err := io.Copy(&buf, reader)
	if err != nil {
		return 0, err
	}
	info, err := s.client.PutObject(context.Background(), s.bucket.Name, s.bucket.GetRemotePath(path), &buf, size, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func (s *MinioStorage) Delete(path string) error {
	return s.client.RemoveObject(context.Background(), s.bucket.Name, s.bucket.GetRemotePath(path), minio.RemoveObjectOptions{})
}

func (s *MinioStorage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	http.Redirect(writer, request, s.PublicURL(path), http.StatusFound)
}

// SignUploadURL signs the Content-Type header along with the PUT so the URL
// only accepts the declared type, same as the S3 backend.
func (s *MinioStorage) SignUploadURL(path, contentType string, ttl time.Duration) (string, error) {
	signed, err := s.client.PresignHeader(context.Background(), http.MethodPut, s.bucket.Name, s.bucket.GetRemotePath(path), ttl,
		url.Values{}, http.Header{"Content-Type": []string{contentType}})
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

func (s *MinioStorage) PublicURL(path string) string {
	if s.bucket.PublicBase != "" {
		return s.bucket.PublicBase + "/" + s.bucket.GetRemotePath(path)
	}
	signed, err := s.client.PresignedGetObject(context.Background(), s.bucket.Name, s.bucket.GetRemotePath(path), presignDownloadFor, url.Values{})
	if err != nil {
		return ""
	}
	return signed.String()
}

func (s *MinioStorage) GetBucket() *Bucket {
	return &s.bucket
}
