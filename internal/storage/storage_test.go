package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/minio/minio-go/v7"
	gobreaker "github.com/sony/gobreaker/v2"

	"community-events/internal/domain"
)

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"image/png":                ".png",
		"IMAGE/JPEG":               ".jpg",
		"image/webp; charset=utf8": ".webp",
	}
	for ct, want := range cases {
		if got, ok := ExtensionFor(ct); !ok || got != want {
			t.Errorf("ExtensionFor(%q) = %q, %v", ct, got, ok)
		}
	}
	if _, ok := ExtensionFor("application/pdf"); ok {
		t.Error("pdf must not be accepted")
	}
}

func TestLocal_StoreServeDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	url, err := s.Store(ctx, "a.png", strings.NewReader("png"), 3, "image/png")
	if err != nil || url != "/images/a.png" {
		t.Fatalf("store = %q, %v", url, err)
	}
	p, err := s.Path("a.png")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if b, _ := os.ReadFile(p); string(b) != "png" {
		t.Fatalf("content = %q", b)
	}

	if err := s.Delete(ctx, url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.png")); !os.IsNotExist(err) {
		t.Fatal("file still present")
	}
	// 重复删除不报错
	if err := s.Delete(ctx, url); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestLocal_RejectsTraversal(t *testing.T) {
	s, _ := NewLocal(t.TempDir())
	for _, name := range []string{"../x.png", "a/b.png", "..", ""} {
		if _, err := s.Store(context.Background(), name, strings.NewReader("x"), 1, "image/png"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Store(%q) err = %v", name, err)
		}
		if _, err := s.Path(name); !errors.Is(err, domain.ErrImageNotFound) {
			t.Errorf("Path(%q) err = %v", name, err)
		}
	}
	if err := s.Delete(context.Background(), "https://elsewhere/x.png"); !errors.Is(err, ErrForeignURL) {
		t.Errorf("foreign delete err = %v", err)
	}
}

type fakeObjects struct {
	fail    error
	puts    atomic.Int32
	removed []string
	exists  bool
	made    bool
}

func (f *fakeObjects) PutObject(_ context.Context, _, _ string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.puts.Add(1)
	if f.fail != nil {
		return minio.UploadInfo{}, f.fail
	}
	_, _ = io.Copy(io.Discard, r)
	return minio.UploadInfo{}, nil
}

func (f *fakeObjects) RemoveObject(_ context.Context, _, key string, _ minio.RemoveObjectOptions) error {
	f.removed = append(f.removed, key)
	return f.fail
}

func (f *fakeObjects) BucketExists(context.Context, string) (bool, error) { return f.exists, nil }

func (f *fakeObjects) MakeBucket(context.Context, string, minio.MakeBucketOptions) error {
	f.made = true
	return nil
}

func TestRemote_StoreAndDeleteByURL(t *testing.T) {
	f := &fakeObjects{}
	s := newRemote(f, "bucket", "", "https://cdn.example.com", nil)
	ctx := context.Background()

	url, err := s.Store(ctx, "x.png", strings.NewReader("x"), 1, "image/png")
	if err != nil || url != "https://cdn.example.com/events/x.png" {
		t.Fatalf("store = %q, %v", url, err)
	}
	if err := s.Delete(ctx, url); err != nil {
		t.Fatal(err)
	}
	if len(f.removed) != 1 || f.removed[0] != "events/x.png" {
		t.Fatalf("removed = %v", f.removed)
	}
	if err := s.Delete(ctx, "https://cdn.example.com/other/x.png"); !errors.Is(err, ErrForeignURL) {
		t.Fatalf("foreign err = %v", err)
	}

	if err := s.EnsureBucket(ctx); err != nil || !f.made {
		t.Fatalf("ensure bucket: %v made=%v", err, f.made)
	}
}

func TestRemote_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	f := &fakeObjects{fail: errors.New("connection refused")}
	s := newRemote(f, "bucket", "", "https://cdn", nil)

	for i := 0; i < 5; i++ {
		_, _ = s.Store(context.Background(), "x.png", strings.NewReader("x"), 1, "image/png")
	}
	_, err := s.Store(context.Background(), "x.png", strings.NewReader("x"), 1, "image/png")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want open state", err)
	}
	if n := f.puts.Load(); n != 5 {
		t.Fatalf("backend called %d times, want 5", n)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	url, err := m.Store(context.Background(), "a.png", strings.NewReader("abc"), 3, "image/png")
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := m.Get(url); !ok || string(b) != "abc" {
		t.Fatalf("get = %q %v", b, ok)
	}
	_ = m.Delete(context.Background(), url)
	if m.Len() != 0 {
		t.Fatal("not deleted")
	}
}
