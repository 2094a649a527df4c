package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/koereq/docpipeline/internal/config"
	"github.com/koereq/docpipeline/internal/utils"
)

// s3ImageStorage uploads captured images to an S3-compatible bucket and
// hands back presigned GET URLs the OCR backend can read from.
type s3ImageStorage struct {
	client     *minio.Client
	bucketName string
}

func NewS3ImageStorage(cfg *config.Config) (ImageStorage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create S3 client: %v", ErrConfigurationMissing, err)
	}

	// Ensure bucket exists
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.S3BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.S3BucketName, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &s3ImageStorage{
		client:     client,
		bucketName: cfg.S3BucketName,
	}, nil
}

func (s *s3ImageStorage) Upload(ctx context.Context, images [][]byte) ([]string, error) {
	urls := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	for i, image := range images {
		i, image := i, image
		g.Go(func() error {
			key := fmt.Sprintf("captures/%s.jpg", utils.GenerateID())

			_, err := s.client.PutObject(
				gctx,
				s.bucketName,
				key,
				bytes.NewReader(image),
				int64(len(image)),
				minio.PutObjectOptions{ContentType: "image/jpeg"},
			)
			if err != nil {
				return fmt.Errorf("%w: upload to S3: %v", ErrRequestFailed, err)
			}

			presigned, err := s.client.PresignedGetObject(gctx, s.bucketName, key, 10*time.Minute, nil)
			if err != nil {
				return fmt.Errorf("%w: presign object URL: %v", ErrRequestFailed, err)
			}
			urls[i] = presigned.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return urls, nil
}
