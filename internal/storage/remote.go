package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"community-events/internal/core/config"
)

const objectPrefix = "events/"

// objectClient *minio.Client 的子集，便于测试替换
type objectClient interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
}

type Remote struct {
	client  objectClient
	bucket  string
	region  string
	baseURL string
	cb      *gobreaker.CircuitBreaker[struct{}]
	log     *zap.Logger
}

func NewRemote(c config.RemoteStorage, l *zap.Logger) (*Remote, error) {
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
		Region: c.Region,
	})
	if err != nil {
		return nil, err
	}
	base := strings.TrimRight(c.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if c.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, c.Endpoint, c.Bucket)
	}
	return newRemote(client, c.Bucket, c.Region, base, l), nil
}

func newRemote(client objectClient, bucket, region, baseURL string, l *zap.Logger) *Remote {
	if l == nil {
		l = zap.NewNop()
	}
	r := &Remote{client: client, bucket: bucket, region: region, baseURL: baseURL, log: l}
	r.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "object-storage",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// 连续 5 次失败熔断
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("circuit breaker state change",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return r
}

func (s *Remote) exec(fn func() error) error {
	_, err := s.cb.Execute(func() (struct{}, error) { return struct{}{}, fn() })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("storage unavailable: %w", err)
	}
	return err
}

func (s *Remote) Store(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	key := objectPrefix + name
	err := s.exec(func() error {
		_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
		return err
	})
	if err != nil {
		s.log.Error("object upload failed", zap.String("key", key), zap.Int64("size", size), zap.Error(err))
		return "", err
	}
	s.log.Info("object uploaded", zap.String("key", key), zap.Int64("size", size))
	return s.baseURL + "/" + key, nil
}

func (s *Remote) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || !strings.HasPrefix(key, objectPrefix) {
		return fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	err := s.exec(func() error {
		return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	})
	if err != nil {
		s.log.Error("object delete failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

func (s *Remote) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("storage: create bucket %s: %w", s.bucket, err)
	}
	return nil
}
