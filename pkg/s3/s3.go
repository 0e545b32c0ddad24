package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

var ErrBucketNotConfigured = errors.New("AWS_BUCKET_NAME is not set")

const presignTTL = 15 * time.Minute

type ItfS3 interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignUrl(ctx context.Context, fileUrl string) (string, error)
	DeleteFile(ctx context.Context, fileUrl string) error
}

type s3Client struct {
	client     *s3.S3
	uploader   *s3manager.Uploader
	bucketName string
}

// New builds the client from AWS_* variables. AWS_ENDPOINT points it at an
// S3-compatible store such as MinIO.
func New() (ItfS3, error) {
	bucket := os.Getenv("AWS_BUCKET_NAME")
	if bucket == "" {
		return nil, ErrBucketNotConfigured
	}

	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		bucketName: bucket,
	}, nil
}

func (s *s3Client) UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return out.Location, nil
}

func (s *s3Client) PresignUrl(ctx context.Context, fileUrl string) (string, error) {
	key, err := s.keyFromUrl(fileUrl)
	if err != nil {
		return "", err
	}

	_, err = s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("file does not exist: %w", err)
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return req.Presign(presignTTL)
}

func (s *s3Client) DeleteFile(ctx context.Context, fileUrl string) error {
	key, err := s.keyFromUrl(fileUrl)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return err
}

func (s *s3Client) keyFromUrl(fileUrl string) (string, error) {
	return extractKey(fileUrl, s.bucketName)
}

// extractKey accepts both virtual-hosted and path-style object URLs as well as
// bare keys.
func extractKey(fileUrl string, bucket string) (string, error) {
	u, err := url.Parse(fileUrl)
	if err != nil || u.Host == "" {
		return url.QueryUnescape(strings.TrimPrefix(fileUrl, "/"))
	}

	key := strings.TrimPrefix(u.Path, "/")
	if !strings.HasPrefix(u.Host, bucket+".") {
		key = strings.TrimPrefix(key, bucket+"/")
	}

	if key == "" {
		return "", fmt.Errorf("no object key in %q", fileUrl)
	}
	return key, nil
}

func newSession() (*session.Session, error) {
	cfg := &aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	}

	if endpoint := os.Getenv("AWS_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	return session.NewSession(cfg)
}
