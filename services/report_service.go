package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReportService uploads per-cycle audit reports to S3 so a cycle's pairing
// outcome stays inspectable after the fact.
type ReportService struct {
	Client *s3.Client
	Bucket string
}

func NewReportService(region, bucket string) (*ReportService, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &ReportService{Client: s3.NewFromConfig(cfg), Bucket: bucket}, nil
}

// PutCycleReport writes the cycle statistics as JSON under cycle-reports/.
func (rs *ReportService) PutCycleReport(ctx context.Context, cycleID string, stats *CycleStats) error {
	body, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode cycle report: %w", err)
	}

	key := "cycle-reports/" + cycleID + ".json"
	_, err = rs.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(rs.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload cycle report '%s': %w", key, err)
	}

	log.Printf("✅ Cycle report uploaded: s3://%s/%s", rs.Bucket, key)
	return nil
}

// GenerateReportURL returns a presigned read URL for a cycle's report.
func (rs *ReportService) GenerateReportURL(ctx context.Context, cycleID string) (string, error) {
	presigner := s3.NewPresignClient(rs.Client)
	presigned, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(rs.Bucket),
		Key:    aws.String("cycle-reports/" + cycleID + ".json"),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("failed to presign cycle report for %s: %w", cycleID, err)
	}
	return presigned.URL, nil
}
