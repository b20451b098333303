package persist

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// ErrKeyNotFound is returned by KV.Read for a missing key
var ErrKeyNotFound = errors.New("key not found")

// KV is a durable string-keyed byte store
type KV interface {
	Read(key string) ([]byte, error)
	Write(key string, val []byte) error
	Erase(key string) error
	Has(key string) bool
}

// DiskKV stores values as files under a base directory. Keys of the form
// "a/b" land in BasePath/a/b.
type DiskKV struct {
	d *diskv.Diskv
}

// NewDiskKV creates a disk store rooted at basePath
func NewDiskKV(basePath string) *DiskKV {
	return &DiskKV{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

// Read returns the value of key
func (k *DiskKV) Read(key string) ([]byte, error) {
	val, err := k.d.Read(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	return val, err
}

// Write stores val under key, replacing any previous value
func (k *DiskKV) Write(key string, val []byte) error {
	return k.d.Write(key, val)
}

// Erase removes key. Erasing a missing key is not an error.
func (k *DiskKV) Erase(key string) error {
	if !k.d.Has(key) {
		return nil
	}
	return k.d.Erase(key)
}

// Has reports whether key exists
func (k *DiskKV) Has(key string) bool {
	return k.d.Has(key)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return strings.Join(pathKey.Path, "/") + "/" + pathKey.FileName
}

// MemoryKV is an in-process KV, used when no store directory is configured
// and in tests
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Read(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	return append([]byte(nil), val...), nil
}

func (m *MemoryKV) Write(key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), val...)
	return nil
}

func (m *MemoryKV) Erase(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}
