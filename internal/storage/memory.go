package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Memory 进程内实现，供测试与无盘环境使用
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	// FailStore 非空时 Store 直接返回该错误
	FailStore error
}

func NewMemory() *Memory { return &Memory{objects: map[string][]byte{}} }

func (m *Memory) Store(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if m.FailStore != nil {
		return "", m.FailStore
	}
	if err := validName(name); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = buf.Bytes()
	return "mem://" + name, nil
}

func (m *Memory) Delete(_ context.Context, url string) error {
	name, ok := strings.CutPrefix(url, "mem://")
	if !ok {
		return fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, name)
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *Memory) Get(url string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[strings.TrimPrefix(url, "mem://")]
	return b, ok
}
