package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Archive kinds.
const (
	KindExport = "exports"
	KindReport = "reports"
)

var ErrDisabled = errors.New("S3 archive is disabled")

// Store persists generated files.
type Store interface {
	Save(ctx context.Context, kind, filename, contentType string, body []byte) (*Object, error)
}

// Object describes an archived file.
type Object struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	// URL is an s3:// style locator stored with deliveries.
	URL string `json:"url"`
}

type objectAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client wraps the S3 client for archive uploads
type Client struct {
	api    objectAPI
	config *Config
	now    func() time.Time
	newID  func() string
}

// NewClient creates an S3 archive client and checks the bucket is reachable.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, ErrDisabled
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible providers (B2, MinIO) need path-style URLs
			o.UsePathStyle = true
		}
	})

	client := newClient(s3Client, cfg)
	if _, err := client.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.BucketName)}); err != nil {
		return nil, fmt.Errorf("bucket %s not accessible: %w", cfg.BucketName, err)
	}

	log.Infof("[Archive] Successfully initialized S3 client for bucket: %s", cfg.BucketName)
	return client, nil
}

func newClient(api objectAPI, cfg *Config) *Client {
	return &Client{
		api:    api,
		config: cfg,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Save uploads body under a fresh key for kind.
func (c *Client) Save(ctx context.Context, kind, filename, contentType string, body []byte) (*Object, error) {
	key := c.config.ObjectKey(kind, c.newID(), filename, c.now().UTC())

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.config.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		Metadata: map[string]string{
			"original-filename": url.QueryEscape(filename),
			"archive-kind":      kind,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}

	log.Infof("[Archive] Stored s3://%s/%s (%d bytes)", c.config.BucketName, key, len(body))
	return &Object{
		Bucket: c.config.BucketName,
		Key:    key,
		Size:   int64(len(body)),
		URL:    fmt.Sprintf("s3://%s/%s", c.config.BucketName, key),
	}, nil
}
