package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	MaxSize         int64
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps uploads in an S3-compatible bucket under the key
// uploads/<field>/<file>. Public paths stay /uploads/... so stored documents
// do not depend on the backend.
type S3Store struct {
	client  objectAPI
	bucket  string
	maxSize int64
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Store(client, cfg.Bucket, cfg.MaxSize), nil
}

func newS3Store(client objectAPI, bucket string, maxSize int64) *S3Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &S3Store{client: client, bucket: bucket, maxSize: maxSize}
}

func (s *S3Store) Save(ctx context.Context, upload ports.FileUpload) (ports.StoredFile, error) {
	publicPath, data, err := readUpload(upload, s.maxSize)
	if err != nil {
		return ports.StoredFile{}, err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(publicPath)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentTypeFor(publicPath, upload.ContentType)),
	})
	if err != nil {
		return ports.StoredFile{}, fmt.Errorf("put object: %w", err)
	}
	return ports.StoredFile{Path: publicPath, Filename: path.Base(publicPath)}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicPath string) error {
	if !validPublicPath(publicPath) {
		return fmt.Errorf("%w: invalid upload path %q", domain.ErrValidation, publicPath)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(publicPath)),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *S3Store) Open(ctx context.Context, publicPath string) (io.ReadCloser, string, error) {
	if !validPublicPath(publicPath) {
		return nil, "", domain.ErrNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(publicPath)),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("get object: %w", err)
	}
	return out.Body, aws.ToString(out.ContentType), nil
}

func objectKey(publicPath string) string {
	return strings.TrimPrefix(publicPath, "/")
}
