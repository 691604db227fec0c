package profilesink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-json"
)

// S3Sink writes each profile as a JSON object under a key prefix
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Options configures NewS3Sink
type S3Options struct {
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// NewS3Sink builds an S3 client from the default credential chain, or from
// static keys when both are set
func NewS3Sink(ctx context.Context, opts S3Options) (*S3Sink, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Sink{client: client, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

// Name implements Sink
func (s *S3Sink) Name() string { return "s3" }

// Key returns the object key for an entry
func (s *S3Sink) Key(e Entry) string {
	return fmt.Sprintf("%s%s/%s.json", s.prefix, e.CreatedAt.UTC().Format("2006-01-02"), e.RequestID)
}

// Append implements Sink
func (s *S3Sink) Append(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(e)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put profile object: %w", err)
	}
	return nil
}
