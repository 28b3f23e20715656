package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ui_verification/domain/entities"
	"ui_verification/domain/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the settings of the evidence bucket
type S3Config struct {
	// Endpoint overrides the AWS endpoint for S3-compatible services
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
	UsePathStyle    bool
}

// S3Archive uploads run reports and screenshots to a bucket
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Archive - creates an archive from configuration
func NewS3Archive(ctx context.Context, cfg S3Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 archive: bucket is not set")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3ArchiveFromClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3ArchiveFromClient - wraps an existing client
func NewS3ArchiveFromClient(client *s3.Client, bucket, prefix string) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// SaveRun - uploads report.json and whichever screenshots were captured
func (a *S3Archive) SaveRun(ctx context.Context, result entities.RunResult) (string, error) {
	base := a.runPrefix(result)

	report, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode run report: %w", err)
	}
	if err := a.put(ctx, path.Join(base, "report.json"), report, "application/json"); err != nil {
		return "", err
	}

	for _, file := range []string{result.ScreenshotPath, result.FailureScreenshotPath} {
		if file == "" {
			continue
		}
		shot, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read screenshot: %w", err)
		}
		if err := a.put(ctx, path.Join(base, filepath.Base(file)), shot, "image/png"); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("s3://%s/%s/", a.bucket, base), nil
}

func (a *S3Archive) runPrefix(result entities.RunResult) string {
	name := result.Scenario
	if name == "" {
		name = "run"
	}
	if a.prefix == "" {
		return path.Join(name, result.RunID)
	}
	return path.Join(a.prefix, name, result.RunID)
}

func (a *S3Archive) put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 archive: failed to put %q: %w", key, err)
	}
	return nil
}

// Ensure S3Archive implements EvidenceStore interface
var _ interfaces.EvidenceStore = (*S3Archive)(nil)
