// Package storage uploads and deletes files through a fixed fallback chain:
// a managed S3-compatible backend first, then AWS S3, then local disk. Remote
// failures degrade silently to the next tier; only a failed local write
// surfaces to the caller.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config selects which backends are available. A tier missing any of its
// settings is skipped entirely.
type Config struct {
	// Managed S3-compatible storage (Supabase-style: the project URL plus
	// S3 protocol credentials).
	SupabaseURL       string
	SupabaseAccessKey string
	SupabaseSecretKey string
	SupabaseBucket    string

	// AWS S3.
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSBucket          string

	// Local disk root served under /uploads. Always available.
	LocalDir string
}

// Service tries each configured backend in priority order. The zero-value
// tiers are simply absent; local disk is always the last resort.
type Service struct {
	managed       *s3.Client
	managedBucket string
	publicBaseURL string

	cloud       *s3.Client
	cloudBucket string

	localDir string
}

// New builds a storage service from config. Backend client construction
// errors disable that tier rather than failing startup.
func New(cfg Config) *Service {
	s := &Service{localDir: cfg.LocalDir}
	if s.localDir == "" {
		s.localDir = "uploads"
	}

	if cfg.SupabaseURL != "" && cfg.SupabaseAccessKey != "" && cfg.SupabaseSecretKey != "" {
		client, err := newS3Client("us-east-1", cfg.SupabaseAccessKey, cfg.SupabaseSecretKey,
			strings.TrimRight(cfg.SupabaseURL, "/")+"/storage/v1/s3")
		if err != nil {
			log.Printf("Managed storage disabled: %v", err)
		} else {
			s.managed = client
			s.managedBucket = cfg.SupabaseBucket
			if s.managedBucket == "" {
				s.managedBucket = "subcanvas-storage"
			}
			s.publicBaseURL = strings.TrimRight(cfg.SupabaseURL, "/") + "/storage/v1/object/public/" + s.managedBucket
			log.Println("Using managed object storage")
		}
	}

	if s.managed == nil && cfg.AWSRegion != "" && cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		client, err := newS3Client(cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")
		if err != nil {
			log.Printf("S3 storage disabled: %v", err)
		} else {
			s.cloud = client
			s.cloudBucket = cfg.AWSBucket
			log.Println("Using AWS S3 storage")
		}
	}

	if s.managed == nil && s.cloud == nil {
		log.Println("No remote storage configured, using local disk")
	}

	return s
}

func newS3Client(region, accessKey, secretKey, endpoint string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Upload stores data under key and returns a servable URL. Each backend is
// tried to completion before the next; a local write failure is the only
// error the caller sees.
func (s *Service) Upload(ctx context.Context, data []byte, key, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if s.managed != nil {
		_, err := s.managed.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.managedBucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(mimeType),
		})
		if err == nil {
			return s.publicBaseURL + "/" + key, nil
		}
		log.Printf("Managed storage upload failed, falling back: %v", err)
	}

	if s.cloud != nil && s.cloudBucket != "" {
		_, err := s.cloud.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.cloudBucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(mimeType),
		})
		if err == nil {
			return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.cloudBucket, key), nil
		}
		log.Printf("S3 upload failed, falling back to local disk: %v", err)
	}

	return s.saveLocal(data, key)
}

// Delete removes key from storage, trying the same chain as Upload. Delete is
// advisory: remote failures are swallowed and a failed local delete is only
// logged.
func (s *Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if s.managed != nil {
		_, err := s.managed.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.managedBucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return nil
		}
		log.Printf("Managed storage delete failed, falling back: %v", err)
	}

	if s.cloud != nil && s.cloudBucket != "" {
		_, err := s.cloud.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cloudBucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return nil
		}
		log.Printf("S3 delete failed, falling back to local disk: %v", err)
	}

	path := filepath.Join(s.localDir, filepath.FromSlash(key))
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			log.Printf("Failed to delete local file %s: %v", path, err)
		}
	}
	return nil
}

// saveLocal writes data under the local root and returns the relative URL it
// is served from.
func (s *Service) saveLocal(data []byte, key string) (string, error) {
	path := filepath.Join(s.localDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return "/uploads/" + strings.TrimLeft(key, "/"), nil
}
