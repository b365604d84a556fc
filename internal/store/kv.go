// Package store persists studykit data: whole JSON documents keyed by a
// logical name, and the relational flashcard tables.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// KV reads and writes whole documents by logical name.
// Read returns an error matching fs.ErrNotExist when nothing is stored.
type KV interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
}

// FileStore keeps one <name>.json file per document under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.Dir, name+".json")
}

// Read returns the stored bytes of name.
func (f *FileStore) Read(name string) ([]byte, error) {
	return os.ReadFile(f.path(name))
}

// Write replaces the stored bytes of name.
func (f *FileStore) Write(name string, data []byte) error {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := f.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, f.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// MemoryStore is an in-process KV.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (m *MemoryStore) Read(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Write(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = append([]byte(nil), data...)
	return nil
}

// Load decodes the document stored under name. It returns def when nothing is
// stored, and also when the document cannot be read or decoded; the latter is
// logged as a warning. Decoding starts from a copy of def, so struct fields
// missing from the document keep their default. def should not hold maps or
// non-empty slices, which decoding may write through.
func Load[T any](kv KV, name string, def T, logger *slog.Logger) T {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := kv.Read(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("read stored document, using default",
				slog.String("name", name),
				slog.String("error", err.Error()))
		}
		return def
	}

	v := def
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("decode stored document, using default",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return def
	}
	return v
}

// LoadEach decodes the list stored under name one element at a time. Elements
// that fail to decode or that check rejects are logged and skipped, so one
// bad record never hides the others. check may be nil.
func LoadEach[T any](kv KV, name string, check func(T) error, logger *slog.Logger) []T {
	if logger == nil {
		logger = slog.Default()
	}

	raw := Load[[]json.RawMessage](kv, name, nil, logger)
	out := make([]T, 0, len(raw))
	for i, elem := range raw {
		var v T
		err := json.Unmarshal(elem, &v)
		if err == nil && string(bytes.TrimSpace(elem)) == "null" {
			err = errors.New("null record")
		}
		if err != nil {
			logger.Warn("skipping undecodable record",
				slog.String("name", name),
				slog.Int("index", i),
				slog.String("error", err.Error()))
			continue
		}
		if check != nil {
			if err := check(v); err != nil {
				logger.Warn("skipping invalid record",
					slog.String("name", name),
					slog.Int("index", i),
					slog.String("error", err.Error()))
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// Save encodes v as indented JSON and writes it under name.
func Save(kv KV, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := kv.Write(name, data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
