package opener

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/ports"
)

type S3Client interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

type S3Opener struct {
	Client S3Client
	log    *zap.Logger
}

func NewS3Opener(cli S3Client, log *zap.Logger) *S3Opener {
	return &S3Opener{Client: cli, log: logger.OrNop(log)}
}

func (s *S3Opener) Open(ctx context.Context, bucket, key string) (io.ReadCloser, ports.Meta, error) {
	st, err := s.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		s.log.Warn("[OPENER][S3][ERR] stat", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		return nil, ports.Meta{}, fmt.Errorf("s3 stat: %w", err)
	}
	obj, err := s.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.log.Warn("[OPENER][S3][ERR] get", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		return nil, ports.Meta{}, fmt.Errorf("s3 get: %w", err)
	}
	s.log.Debug("[OPENER][S3][OK]",
		zap.String("content_type", st.ContentType),
		zap.Int64("size", st.Size),
		zap.String("etag", st.ETag))
	return obj, ports.Meta{
		Source:      "s3",
		ContentType: st.ContentType,
		Size:        st.Size,
		Bucket:      bucket,
		Key:         key,
	}, nil
}
