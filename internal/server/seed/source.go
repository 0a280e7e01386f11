// Package seed bulk-loads users from a JSON array stored in a local file or
// an S3 (MinIO compatible) object.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/userdirectory/internal/server/config"
)

const s3Scheme = "s3://"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in, optFns...)
	}
)

// Source yields the raw JSON document to seed from.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// NewSource picks a Source for location: "s3://bucket/key" reads an object,
// anything else is a local path.
func NewSource(location string, cfg *sc.Config) (Source, error) {
	if !strings.HasPrefix(location, s3Scheme) {
		if location == "" {
			return nil, fmt.Errorf("empty seed location")
		}
		return FileSource{Path: location}, nil
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid S3 location %q, want s3://bucket/key", location)
	}

	return &S3Source{
		Bucket:          bucket,
		Key:             key,
		Region:          cfg.S3Region,
		BaseEndpoint:    cfg.S3BaseEndpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	}, nil
}

type FileSource struct {
	Path string
}

func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

func (s FileSource) String() string { return s.Path }

// S3Source reads one object. Static credentials are used when AccessKeyID is
// set, otherwise the default AWS credential chain applies.
type S3Source struct {
	Bucket          string
	Key             string
	Region          string
	BaseEndpoint    string
	AccessKeyID     string
	SecretAccessKey string
}

func (s *S3Source) String() string { return s3Scheme + s.Bucket + "/" + s.Key }

func (s *S3Source) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.Region)}
	if s.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	out, err := getObject(c, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s, err)
	}

	return out.Body, nil
}
