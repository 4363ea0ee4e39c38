package backend

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type R2Options struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
	// Endpoint overrides the account endpoint, e.g. for a local S3 emulator.
	Endpoint string
}

// R2Storage stores images in a Cloudflare R2 bucket through the S3 API.
type R2Storage struct {
	Client *s3.Client
	opts   R2Options
}

func NewR2Storage(opts R2Options) *R2Storage {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", opts.AccountID)
	}
	if opts.Region == "" {
		opts.Region = "auto"
	}

	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		),
		Region:       opts.Region,
		UsePathStyle: opts.Endpoint != "",
	})

	return &R2Storage{Client: client, opts: opts}
}

func (r *R2Storage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.opts.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := r.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("r2 put %s: %w", key, err)
	}
	return r.PublicURL(key), nil
}

func (r *R2Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(r.opts.PublicURL, "/"), key)
}
