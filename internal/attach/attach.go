// Package attach turns local files and bucket objects into uploads for
// checkpoint reports and galleries.
package attach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/five82/nixtrack/internal/nixtrack"
)

const defaultContentType = "application/octet-stream"

// FromPath describes a local file as an upload. The file is opened when the
// upload is sent.
func FromPath(p string) (nixtrack.Upload, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nixtrack.Upload{}, err
	}
	if info.IsDir() {
		return nixtrack.Upload{}, fmt.Errorf("%s is a directory", p)
	}
	return nixtrack.Upload{
		Name:        filepath.Base(p),
		ContentType: contentType(p),
		Open:        func() (io.ReadCloser, error) { return os.Open(p) },
	}, nil
}

// FromPaths describes several local files, stopping at the first bad path.
func FromPaths(paths []string) ([]nixtrack.Upload, error) {
	out := make([]nixtrack.Upload, 0, len(paths))
	for _, p := range paths {
		up, err := FromPath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, nil
}

func contentType(name string) string {
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ct == "" {
		return defaultContentType
	}
	return ct
}

// S3Config selects the bucket holding field photos. Endpoint and PathStyle
// target MinIO; empty keys fall back to the default credentials chain.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

// S3Source reads uploads from an S3-compatible bucket.
type S3Source struct {
	client *s3.Client
	bucket string
}

// NewS3Source builds a source for cfg.Bucket. optFns adjust the S3 client.
func NewS3Source(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3Source, error) {
	if !cfg.Enabled() {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	return &S3Source{client: client, bucket: cfg.Bucket}, nil
}

// Open checks that key exists and returns an upload streaming its body.
func (s *S3Source) Open(ctx context.Context, key string) (nixtrack.Upload, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return nixtrack.Upload{}, fmt.Errorf("head s3://%s/%s: %w", s.bucket, key, err)
	}
	ct := aws.ToString(head.ContentType)
	if ct == "" || ct == defaultContentType {
		ct = contentType(key)
	}
	return nixtrack.Upload{
		Name:        path.Base(key),
		ContentType: ct,
		Open: func() (io.ReadCloser, error) {
			out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
			if err != nil {
				return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
			}
			return out.Body, nil
		},
	}, nil
}
