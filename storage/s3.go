package storage

import (
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const presignDownloadFor = time.Hour * 24 * 7

type S3Storage struct {
	bucket   Bucket
	s3Client *s3.S3
}

func NewS3Storage(bucket *Bucket) StorageAPI {
	return &S3Storage{
		bucket:   *bucket,
		s3Client: bucket.CreateSVC(),
	}
}

func (s *S3Storage) Exists(path string) bool {
	_, err := s.s3Client.HeadObject(&s3.HeadObjectInput{
		Bucket: &s.bucket.Name,
		Key:    aws.String(s.bucket.GetRemotePath(path)),
	})
	return err == nil
}

func (s *S3Storage) Load(path string, writer io.Writer) (int64, error) {
	resp, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: &s.bucket.Name,
		Key:    aws.String(s.bucket.GetRemotePath(path)),
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(writer, resp.Body)
}

func (s *S3Storage) Save(path, mimeType string, reader io.Reader) (int64, error) {
	uploader := s3manager.NewUploaderWithClient(s.s3Client)
	_, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:      &s.bucket.Name,
		Key:         aws.String(s.bucket.GetRemotePath(path)),
		ContentType: &mimeType,
		Body:        reader,
	})
	if err != nil {
		return 0, err
	}
	return 0, nil
}

func (s *S3Storage) Delete(path string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: &s.bucket.Name,
		Key:    aws.String(s.bucket.GetRemotePath(path)),
	})
	return err
}

// Serve redirects to a presigned download; remote objects are never proxied.
func (s *S3Storage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	http.Redirect(writer, request, s.PublicURL(path), http.StatusFound)
}

func (s *S3Storage) SignUploadURL(path, contentType string, ttl time.Duration) (string, error) {
	req, _ := s.s3Client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      &s.bucket.Name,
		Key:         aws.String(s.bucket.GetRemotePath(path)),
		ContentType: &contentType,
	})
	return req.Presign(ttl)
}

func (s *S3Storage) PublicURL(path string) string {
	if s.bucket.PublicBase != "" {
		return s.bucket.PublicBase + "/" + s.bucket.GetRemotePath(path)
	}
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: &s.bucket.Name,
		Key:    aws.String(s.bucket.GetRemotePath(path)),
	})
	url, err := req.Presign(presignDownloadFor)
	if err != nil {
		return ""
	}
	return url
}

func (s *S3Storage) GetBucket() *Bucket {
	return &s.bucket
}
