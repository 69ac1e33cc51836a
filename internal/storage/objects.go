package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore holds durable copies of generated media
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	IsDurable(url string) bool
}

// R2Config is the S3-compatible endpoint and bucket for Cloudflare R2
type R2Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

// R2Store uploads objects to an R2 bucket served from a public URL
type R2Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewR2Store(ctx context.Context, cfg R2Config) (*R2Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &R2Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Put uploads body under key and returns its public URL
func (r *R2Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return r.PublicURL(key), nil
}

func (r *R2Store) PublicURL(key string) string {
	return r.publicURL + "/" + strings.TrimLeft(key, "/")
}

// IsDurable reports whether url already points into this bucket's public URL
func (r *R2Store) IsDurable(url string) bool {
	return r.publicURL != "" && strings.HasPrefix(url, r.publicURL+"/")
}
