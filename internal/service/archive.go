package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/pageza/cravewise/backend/config"
	"github.com/pageza/cravewise/backend/internal/media"
)

// ArchiveURLExpiry is how long a returned menu image link stays valid.
const ArchiveURLExpiry = 24 * time.Hour

// S3Archiver stores menu images under content-addressed keys so repeated
// uploads of the same photo share one object.
type S3Archiver struct {
	s3     *config.S3Config
	logger *zap.Logger
}

// NewS3Archiver creates an archiver for the configured bucket.
func NewS3Archiver(s3Config *config.S3Config, logger *zap.Logger) *S3Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Archiver{s3: s3Config, logger: logger.Named("archive")}
}

// MenuImageKey returns menus/<blake2b-256 hex>.<ext>.
func MenuImageKey(img media.Image) string {
	sum := blake2b.Sum256(img.Data)
	return fmt.Sprintf("menus/%s.%s", hex.EncodeToString(sum[:]), img.Ext())
}

// Archive uploads img and returns a presigned link to it.
func (a *S3Archiver) Archive(ctx context.Context, img media.Image) (string, error) {
	key := MenuImageKey(img)
	_, err := a.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.MIMEType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url, err := a.s3.GeneratePresignedURL(ctx, key, ArchiveURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign menu image: %w", err)
	}
	a.logger.Info("archived menu image", zap.String("key", key), zap.Int("bytes", len(img.Data)))
	return url, nil
}
