// Package report archives analysis run reports as JSON documents in
// S3-compatible object storage (AWS S3, MinIO, R2).
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dkotenko/skinarb/internal/domain"
)

// multipartThreshold selects the multipart upload path for large reports.
const multipartThreshold = 5 * 1024 * 1024

// RunReport is the archived record of one analysis run.
type RunReport struct {
	RunID         string                       `json:"run_id"`
	Game          domain.Game                  `json:"game"`
	StartedAt     time.Time                    `json:"started_at"`
	FinishedAt    time.Time                    `json:"finished_at"`
	ItemsScanned  int                          `json:"items_scanned"`
	Opportunities []domain.Opportunity         `json:"opportunities"`
	Options       []domain.SkinArbitrageOption `json:"options,omitempty"`
	Allocations   map[string]float64           `json:"allocations,omitempty"`
	Metrics       domain.AllocationMetrics     `json:"metrics"`
}

// ClientConfig holds the object-store connection settings. Endpoint is only
// needed for non-AWS providers; ForcePathStyle is required by most of them.
type ClientConfig struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// Archiver uploads run reports.
type Archiver struct {
	s3     *s3.Client
	bucket string
}

// NewArchiver builds an S3 client from cfg and verifies bucket access.
func NewArchiver(ctx context.Context, cfg ClientConfig) (*Archiver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("report: bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("report: region is required")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("report: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(normalizeEndpoint(cfg.Endpoint))
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	a := &Archiver{s3: client, bucket: cfg.Bucket}
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("report: bucket %s not accessible: %w", cfg.Bucket, err)
	}
	return a, nil
}

// Archive serializes the report and uploads it to
// reports/{game}/{YYYY}/{MM}/{DD}/run-{id}.json. The object key is returned.
func (a *Archiver) Archive(ctx context.Context, rep RunReport) (string, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal run %s: %w", rep.RunID, err)
	}

	key := reportKey(rep)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}

	if len(data) >= multipartThreshold {
		uploader := manager.NewUploader(a.s3)
		if _, err := uploader.Upload(ctx, input); err != nil {
			return "", fmt.Errorf("report: multipart upload %s: %w", key, err)
		}
		return key, nil
	}

	if _, err := a.s3.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("report: upload %s: %w", key, err)
	}
	return key, nil
}

func reportKey(rep RunReport) string {
	t := rep.StartedAt.UTC()
	return fmt.Sprintf("reports/%s/%04d/%02d/%02d/run-%s.json",
		rep.Game, t.Year(), int(t.Month()), t.Day(), rep.RunID)
}

func normalizeEndpoint(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err == nil && parsed.Scheme != "" {
		return endpoint
	}
	return "https://" + endpoint
}
