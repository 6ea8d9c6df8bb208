// Package media turns stored image keys into URLs the browser can load.
package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/MikeMC777/plumbstore/internal/logx"
)

type Resolver interface {
	URL(ctx context.Context, key string) string
}

// Public serves keys from a static base URL (CDN or local /media route).
type Public struct{ BaseURL string }

func (p Public) URL(_ context.Context, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(p.BaseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

// S3Options configures a private bucket. Endpoint is set for MinIO/R2.
type S3Options struct {
	Bucket   string
	Region   string
	Endpoint string
	Key      string
	Secret   string
	Expires  time.Duration
}

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*presignedURL, error)
}

type presignedURL struct{ URL string }

type s3Presigner struct{ c *s3.PresignClient }

func (p s3Presigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*presignedURL, error) {
	out, err := p.c.PresignGetObject(ctx, in, optFns...)
	if err != nil {
		return nil, err
	}
	return &presignedURL{URL: out.URL}, nil
}

// S3 signs short-lived GET URLs for objects in a private bucket.
type S3 struct {
	bucket  string
	expires time.Duration
	signer  presigner
}

func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	if o.Bucket == "" {
		return nil, fmt.Errorf("media/s3: bucket is not configured")
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(o.Region)}
	if o.Key != "" && o.Secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.Key, o.Secret, ""),
		))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media/s3: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if o.Endpoint != "" {
		clientOpts = append(clientOpts, func(so *s3.Options) {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		})
	}
	if o.Expires <= 0 {
		o.Expires = time.Hour
	}
	client := s3.NewFromConfig(cfg, clientOpts...)
	return &S3{
		bucket:  o.Bucket,
		expires: o.Expires,
		signer:  s3Presigner{c: s3.NewPresignClient(client)},
	}, nil
}

// URL returns "" when signing fails; a missing image must not break a page.
func (s *S3) URL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	out, err := s.signer.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimLeft(key, "/")),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		logx.From(ctx).Warn("media: presign failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return out.URL
}
