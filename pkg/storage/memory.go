package storage

import (
	"context"
	"io"
	"sync"
)

// Memory keeps objects in process. Used in development when S3 is not
// configured, and in tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
	baseURL string
}

type memObject struct {
	data        []byte
	contentType string
}

var _ Storage = (*Memory)(nil)

// NewMemory returns an empty store whose URLs start with baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{objects: make(map[string]memObject), baseURL: baseURL}
}

func (m *Memory) Put(_ context.Context, key string, body io.ReadSeeker, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) URL(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	return m.baseURL + "/" + key, nil
}

// Object returns the stored bytes and content type.
func (m *Memory) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o.data, o.contentType, ok
}
