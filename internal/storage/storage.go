// Package storage 活动图片存储：本地目录（开发）或 S3 兼容对象存储（生产）
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"community-events/internal/core/config"
)

// Store 服务层只依赖这个契约
type Store interface {
	// Store 写入并返回可公开访问的 URL
	Store(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Delete 按 Store 返回的 URL 删除
	Delete(ctx context.Context, url string) error
}

var (
	ErrInvalidName = errors.New("storage: invalid object name")
	ErrForeignURL  = errors.New("storage: url not managed by this store")
)

var extByType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// ExtensionFor 不支持的类型返回 false
func ExtensionFor(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := extByType[ct]
	return ext, ok
}

// validName 只接受单层文件名
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || path.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// New 按 storage.mode 选择后端；remote 模式会确保 bucket 存在
func New(ctx context.Context, c config.Storage, l *zap.Logger) (Store, error) {
	switch c.Mode {
	case "local":
		return NewLocal(c.Local.Dir)
	case "remote":
		r, err := NewRemote(c.Remote, l)
		if err != nil {
			return nil, err
		}
		if err := r.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("storage: unknown mode %q", c.Mode)
}
