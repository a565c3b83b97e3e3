package objectstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory keeps objects in process. It backs OBJECT_STORAGE_MODE=memory and tests.
type Memory struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]MemoryObject
}

type MemoryObject struct {
	Body        []byte
	ContentType string
}

func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &Memory{baseURL: baseURL, objects: make(map[string]MemoryObject)}
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = MemoryObject{Body: buf.Bytes(), ContentType: contentType}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) PublicURL(key string) string {
	return JoinURL(m.baseURL, key)
}

func (m *Memory) Get(key string) (MemoryObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
