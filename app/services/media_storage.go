package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Media storage backends
const (
	MediaBackendLocal = "local"
	MediaBackendS3    = "s3"
)

var ErrInvalidObjectKey = errors.New("invalid object key")

// MediaStorage persists uploaded media under slash separated object keys
// such as "2026/05/01/<uuid>.jpg" and returns the public URL.
type MediaStorage interface {
	Put(ctx context.Context, objectKey string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	Backend() string
}

// CleanObjectKey rejects absolute keys and keys escaping the storage root.
func CleanObjectKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidObjectKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidObjectKey
	}
	return cleaned, nil
}

// LocalMediaStorage writes files below baseDir; they are served at
// publicBaseURL + "/uploads/<key>".
type LocalMediaStorage struct {
	baseDir       string
	publicBaseURL string
}

func NewLocalMediaStorage(baseDir, publicBaseURL string) (*LocalMediaStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalMediaStorage{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *LocalMediaStorage) Backend() string { return MediaBackendLocal }

// ResolvePath maps an object key to a file path inside baseDir.
func (s *LocalMediaStorage) ResolvePath(objectKey string) (string, error) {
	key, err := CleanObjectKey(objectKey)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(key)), nil
}

func (s *LocalMediaStorage) Put(ctx context.Context, objectKey string, body []byte, contentType string) (string, error) {
	fullPath, err := s.ResolvePath(objectKey)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(fullPath, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	key, _ := CleanObjectKey(objectKey)
	return s.publicBaseURL + "/uploads/" + key, nil
}

func (s *LocalMediaStorage) Delete(ctx context.Context, objectKey string) error {
	fullPath, err := s.ResolvePath(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// S3ObjectAPI is the subset of the S3 client used for media.
type S3ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3StorageConfig holds bucket access settings. Endpoint is set for
// S3-compatible services and switches the client to path-style addressing.
type S3StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	KeyPrefix       string
	PublicBaseURL   string
}

// S3MediaStorage stores media objects in a bucket.
type S3MediaStorage struct {
	client        S3ObjectAPI
	bucket        string
	keyPrefix     string
	publicBaseURL string
}

// NewS3Client builds an S3 client from static credentials, falling back to
// the default AWS credential chain when no key is configured.
func NewS3Client(ctx context.Context, cfg S3StorageConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3MediaStorage(client S3ObjectAPI, cfg S3StorageConfig) (*S3MediaStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	publicBaseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3MediaStorage{
		client:        client,
		bucket:        cfg.Bucket,
		keyPrefix:     strings.Trim(cfg.KeyPrefix, "/"),
		publicBaseURL: publicBaseURL,
	}, nil
}

func (s *S3MediaStorage) Backend() string { return MediaBackendS3 }

func (s *S3MediaStorage) objectKey(key string) (string, error) {
	cleaned, err := CleanObjectKey(key)
	if err != nil {
		return "", err
	}
	if s.keyPrefix == "" {
		return cleaned, nil
	}
	return s.keyPrefix + "/" + cleaned, nil
}

func (s *S3MediaStorage) Put(ctx context.Context, objectKey string, body []byte, contentType string) (string, error) {
	key, err := s.objectKey(objectKey)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.publicBaseURL + "/" + key, nil
}

func (s *S3MediaStorage) Delete(ctx context.Context, objectKey string) error {
	key, err := s.objectKey(objectKey)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
