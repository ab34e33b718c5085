package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/desertthunder/founders/internal/shared"
)

// S3Config holds the settings for an S3 or MinIO bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	AccessKey string // optional; the default credential chain is used when empty
	SecretKey string
	PathStyle bool
	PublicURL string // optional CDN or bucket URL used for [S3Store.URL]
}

// S3Store keeps objects in a single bucket. Keys map to object keys directly.
type S3Store struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Store loads AWS configuration and builds a client. optFns are applied to the client options last.
func NewS3Store(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket required", shared.ErrInvalidConfig)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load aws config: %v", shared.ErrInvalidConfig, err)
	}

	opts := append([]func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)

	return &S3Store{client: s3.NewFromConfig(awsCfg, opts...), cfg: cfg}, nil
}

func (s *S3Store) Driver() string { return DriverS3 }

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, err
	}

	// The SDK needs a seekable body to sign the payload; uploads are small so buffer them.
	body, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("%w: failed to read upload: %v", shared.ErrStorageFailure, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(k),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Info{}, fmt.Errorf("%w: put %s: %v", shared.ErrStorageFailure, k, err)
	}

	return Info{Key: k, Size: int64(len(body)), ContentType: contentType, URL: s.URL(k)}, nil
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.cfg.Bucket), Key: aws.String(k)})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: blob %s", shared.ErrNotFound, k)
		}
		return nil, fmt.Errorf("%w: get %s: %v", shared.ErrStorageFailure, k, err)
	}
	return out.Body, nil
}

// URL prefers the configured public URL, then the custom endpoint, then the AWS virtual-hosted address.
func (s *S3Store) URL(key string) string {
	switch {
	case s.cfg.PublicURL != "":
		return joinURL(s.cfg.PublicURL, key)
	case s.cfg.Endpoint != "" && s.cfg.PathStyle:
		return joinURL(joinURL(s.cfg.Endpoint, s.cfg.Bucket), key)
	case s.cfg.Endpoint != "":
		return joinURL(s.cfg.Endpoint, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}
