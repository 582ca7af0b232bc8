package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Options configures an S3-compatible bucket (AWS S3, Cloudflare R2, MinIO).
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// objectPutter is the part of *s3.Client used here.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage uploads to a bucket and returns URLs under PublicBaseURL.
type S3Storage struct {
	client objectPutter
	opts   S3Options
	logger *zap.Logger
}

var _ Storage = (*S3Storage)(nil)

// NewS3Storage loads AWS config with static credentials when given.
func NewS3Storage(ctx context.Context, opts S3Options, logger *zap.Logger) (*S3Storage, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	if opts.PublicBaseURL == "" && opts.Endpoint != "" {
		opts.PublicBaseURL = fmt.Sprintf("%s/%s", opts.Endpoint, opts.Bucket)
	}
	logger.Info("S3 file storage initialized", zap.String("bucket", opts.Bucket))
	return &S3Storage{client: client, opts: opts, logger: logger}, nil
}

func (s *S3Storage) Save(ctx context.Context, fileHeader *multipart.FileHeader, subDir string) (string, error) {
	key, contentType, err := objectKey(fileHeader, subDir)
	if err != nil {
		return "", err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fileHeader.Size),
	})
	if err != nil {
		s.logger.Error("S3 upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return publicURL(s.opts.PublicBaseURL, key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	return nil
}
