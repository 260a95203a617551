package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Config configures an S3 compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// S3Storage stores artifacts in an S3 compatible bucket.
type S3Storage struct {
	api    s3iface.S3API
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Storage opens a session for the configured bucket. Path style
// addressing is forced so MinIO and Backblaze endpoints work.
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}
	return NewS3StorageWithClient(s3.New(sess), cfg.Bucket, cfg.Prefix), nil
}

// NewS3StorageWithClient wraps an existing client.
func NewS3StorageWithClient(api s3iface.S3API, bucket, prefix string) *S3Storage {
	return &S3Storage{api: api, bucket: bucket, prefix: prefix, now: time.Now}
}

// Save uploads data under key.
func (s *S3Storage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.api.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("upload export object: %w", err)
	}
	return key, nil
}

// Open streams an object.
func (s *S3Storage) Open(ctx context.Context, key string) (*Object, error) {
	out, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("download export object: %w", err)
	}
	return &Object{
		Body:          out.Body,
		ContentType:   aws.StringValue(out.ContentType),
		ContentLength: aws.Int64Value(out.ContentLength),
	}, nil
}

// Delete removes an object.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("delete export object: %w", err)
	}
	return nil
}

// CleanupOlderThan deletes objects under the prefix last modified before the TTL.
func (s *S3Storage) CleanupOlderThan(ctx context.Context, ttl time.Duration) ([]string, error) {
	cutoff := s.now().Add(-ttl)
	stale := make([]string, 0)
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}
	err := s.api.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, item := range page.Contents {
			if item.LastModified != nil && item.LastModified.Before(cutoff) {
				stale = append(stale, aws.StringValue(item.Key))
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list export objects: %w", err)
	}

	deleted := make([]string, 0, len(stale))
	for _, objectKey := range stale {
		_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectKey),
		})
		if err != nil {
			return deleted, fmt.Errorf("delete export object: %w", err)
		}
		deleted = append(deleted, s.trimPrefix(objectKey))
	}
	return deleted, nil
}

func (s *S3Storage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *S3Storage) trimPrefix(objectKey string) string {
	if s.prefix == "" {
		return objectKey
	}
	if len(objectKey) > len(s.prefix)+1 {
		return objectKey[len(s.prefix)+1:]
	}
	return objectKey
}
