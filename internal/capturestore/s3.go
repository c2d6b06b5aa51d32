package capturestore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client S3Store uses, letting tests
// inject a mock instead of talking to a real bucket.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements CaptureStore on an S3-compatible object store.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	ext    string
}

// NewS3Store builds an S3Store from AWS defaults. An empty endpoint
// targets the standard AWS S3 endpoint; a non-empty one targets MinIO
// or another S3-compatible service. Static credentials are used only
// when both accessKeyID and secretAccessKey are non-empty.
func NewS3Store(bucket, region, endpoint, prefix, ext, accessKeyID, secretAccessKey string) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("capturestore: load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(cfg, s3Opts...)
	return NewS3StoreWithClient(client, bucket, prefix, ext), nil
}

// NewS3StoreWithClient builds an S3Store around an injected client, for tests.
func NewS3StoreWithClient(client S3API, bucket, prefix, ext string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix, ext: ext}
}

// Save uploads a capture to S3 and returns the object key as the
// storage path.
func (s *S3Store) Save(id string, r io.Reader) (string, error) {
	now := time.Now()
	key := fmt.Sprintf("%s%d/%02d/%s.%s", s.prefix, now.Year(), now.Month(), id, s.ext)

	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("capturestore: upload to S3: %w", err)
	}
	return key, nil
}

// Get returns the S3 object body as an io.ReadCloser.
func (s *S3Store) Get(storagePath string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storagePath),
	})
	if err != nil {
		return nil, fmt.Errorf("capturestore: get from S3: %w", err)
	}
	return out.Body, nil
}

// Delete removes the capture object from S3.
func (s *S3Store) Delete(storagePath string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storagePath),
	})
	if err != nil {
		return fmt.Errorf("capturestore: delete from S3: %w", err)
	}
	return nil
}

var _ CaptureStore = (*S3Store)(nil)
