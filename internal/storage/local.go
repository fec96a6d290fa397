package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"community-events/internal/domain"
)

// LocalPrefix 本地模式下返回的 URL 前缀，由 GET /images/:name 提供
const LocalPrefix = "/images/"

type Local struct {
	Dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir %s: %w", dir, err)
	}
	return &Local{Dir: dir}, nil
}

func (s *Local) Store(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	// 先写临时文件再改名，失败时不留半个文件
	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return LocalPrefix + name, nil
}

func (s *Local) Delete(_ context.Context, url string) error {
	name, ok := strings.CutPrefix(url, LocalPrefix)
	if !ok {
		return fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	if err := validName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Path 供 GET /images/:name 使用；非法名或文件不存在都按未找到处理
func (s *Local) Path(name string) (string, error) {
	if validName(name) != nil || strings.HasPrefix(name, ".") {
		return "", domain.ErrImageNotFound
	}
	p := filepath.Join(s.Dir, name)
	st, err := os.Stat(p)
	if err != nil || st.IsDir() {
		return "", domain.ErrImageNotFound
	}
	return p, nil
}
