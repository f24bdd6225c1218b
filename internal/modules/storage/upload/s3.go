package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/daily-darshan/core/internal/config"
)

// S3Storage uploads media to an S3-compatible bucket. Endpoint, path-style
// access and a custom public domain cover R2/MinIO style providers as well
// as AWS itself.
type S3Storage struct {
	client *s3.Client
	opts   appconfig.S3Options
}

func NewS3Storage(opts appconfig.S3Options) (*S3Storage, error) {
	if opts.Bucket == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, errors.New("s3 storage requires bucket, access_key_id and secret_access_key")
	}
	client := s3.NewFromConfig(aws.Config{
		Region: opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID, opts.SecretAccessKey, ""),
	}, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyleAccess
	})
	return &S3Storage{client: client, opts: opts}, nil
}

func (s *S3Storage) Kind() string { return "s3" }

func (s *S3Storage) Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := "uploads/" + safeName(filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return s.publicURL(key), nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.opts.CustomDomain != "" {
		return strings.TrimRight(s.opts.CustomDomain, "/") + "/" + key
	}
	if s.opts.Endpoint != "" {
		base := strings.TrimRight(s.opts.Endpoint, "/")
		if s.opts.PathStyleAccess {
			return base + "/" + s.opts.Bucket + "/" + key
		}
		return base + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
}
