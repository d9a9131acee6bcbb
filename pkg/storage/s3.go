package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Config is read from the environment by the application config.
type Config struct {
	Bucket    string        `env:"S3_BUCKET"`
	AccessKey string        `env:"S3_ACCESS_KEY"`
	SecretKey string        `env:"S3_SECRET_KEY"`
	Endpoint  string        `env:"S3_ENDPOINT"`
	Region    string        `env:"S3_REGION" envDefault:"ap-south-1"`
	PublicURL string        `env:"S3_PUBLIC_URL"`
	PathStyle bool          `env:"S3_PATH_STYLE" envDefault:"false"`
	URLExpiry time.Duration `env:"S3_URL_EXPIRY" envDefault:"15m"`
}

// Enabled reports whether enough is configured to talk to S3.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// S3 stores objects in one bucket. Objects are private; URL returns a
// presigned GET unless PublicURL (a CDN in front of the bucket) is set.
type S3 struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

var _ Storage = (*S3)(nil)

// NewS3 builds a client with static credentials.
func NewS3(cfg Config) (*S3, error) {
	if !cfg.Enabled() {
		return nil, ErrInvalidConfig
	}
	if cfg.Region == "" {
		cfg.Region = "ap-south-1"
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}

	client := s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &S3{client: client, presigner: s3.NewPresignClient(client), cfg: cfg}, nil
}

func (s *S3) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return classify(err, ErrUploadFailed)
	}
	return nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classify(err, ErrDeleteFailed)
	}
	return nil
}

func (s *S3) URL(ctx context.Context, key string) (string, error) {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key, nil
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.URLExpiry))
	if err != nil {
		return "", classify(err, ErrPresignFailed)
	}
	return req.URL, nil
}

func classify(err, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	return fmt.Errorf("%w: %w", fallback, err)
}
