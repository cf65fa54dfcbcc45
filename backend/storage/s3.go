package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectAPI is the slice of *s3.Client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps assets in an S3 compatible bucket (AWS or MinIO).
type S3Store struct {
	client    objectAPI
	bucket    string
	publicURL string
	now       func() time.Time
}

func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, cfg.S3Bucket, publicBaseURL(cfg)), nil
}

func newS3Store(client objectAPI, bucket, publicURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: publicURL, now: time.Now}
}

func publicBaseURL(cfg *config.Config) string {
	switch {
	case cfg.S3PublicURL != "":
		return cfg.S3PublicURL
	case cfg.S3Endpoint != "":
		return fmt.Sprintf("%s/%s", strings.TrimRight(cfg.S3Endpoint, "/"), cfg.S3Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
}

func (s *S3Store) Upload(ctx context.Context, in UploadInput) (models.Asset, error) {
	key := objectKey(in.Folder, in.Filename, s.now())

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   in.Body,
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}
	if in.Size > 0 {
		input.ContentLength = aws.Int64(in.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return models.Asset{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return models.Asset{
		PublicID:  key,
		SecureURL: s.publicURL + "/" + key,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	if !IsManaged(publicID) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", publicID, err)
	}
	return nil
}
