// Package storage provides presigned access to case documents held in S3.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Key layout in the case document bucket.
const (
	caseDetailsPrefix = "html_v1/"
	orderCopyPrefix   = "order_copy/"
)

// defaultURLExpiry keeps presigned URLs valid for a week; reports warn
// consumers that links expire.
const defaultURLExpiry = 7 * 24 * time.Hour

// Config holds S3 connection settings.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	URLExpiry time.Duration
}

// DocumentStore signs download URLs for case-detail pages and order copies.
type DocumentStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// NewDocumentStore creates a document store. Explicit credentials take
// precedence; otherwise the default chain (environment, IAM role) applies.
func NewDocumentStore(ctx context.Context, cfg Config) (*DocumentStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = defaultURLExpiry
	}

	client := s3.NewFromConfig(awsCfg)
	return &DocumentStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  expiry,
	}, nil
}

// CaseDetailsURL returns a presigned GET URL for the case-detail HTML page
// of a CNR.
func (s *DocumentStore) CaseDetailsURL(ctx context.Context, cnr string) (string, error) {
	return s.presignGet(ctx, caseDetailsPrefix+cnr+".html")
}

// OrderCopyURL returns a presigned GET URL for the first order copy stored
// under a CNR. A missing order copy yields an empty URL and no error.
func (s *DocumentStore) OrderCopyURL(ctx context.Context, cnr string) (string, error) {
	key, err := s.firstKeyWithPrefix(ctx, orderCopyPrefix+cnr)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", nil
	}
	return s.presignGet(ctx, key)
}

func (s *DocumentStore) presignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *DocumentStore) firstKeyWithPrefix(ctx context.Context, prefix string) (string, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return "", fmt.Errorf("list objects under %s: %w", prefix, err)
	}
	if len(out.Contents) == 0 {
		return "", nil
	}
	return aws.ToString(out.Contents[0].Key), nil
}
