package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"

	appconfig "jollybaba-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Mirror copies uploads to an S3-compatible bucket (R2 in production) so
// the local uploads directory is not the only copy. Mirroring is best
// effort: the local write is the source of truth.
type S3Mirror struct {
	client *s3.Client
	bucket string
}

func NewS3Mirror(ctx context.Context, cfg *appconfig.Config) (*S3Mirror, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = true
	})

	log.Printf("[Storage] mirroring uploads to bucket %s", cfg.S3.Bucket)
	return &S3Mirror{client: client, bucket: cfg.S3.Bucket}, nil
}

// Mirror uploads one object. Callers log failures and move on.
func (m *S3Mirror) Mirror(ctx context.Context, key string, data []byte, contentType string) error {
	if m == nil {
		return nil
	}
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String("uploads/" + key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}
