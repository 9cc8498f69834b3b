package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DiskStore hosts assets on the local filesystem under
// <root>/YYYY/MM/DD/<uuid><ext> and serves them from a public base URL. An
// index file at <root>/.assets.json maps asset ids to relative paths so
// deletes by id keep working across restarts.
type DiskStore struct {
	root    string
	baseURL string

	mu    sync.Mutex
	index map[string]string // asset id -> path relative to root
}

// NewDiskStore creates the root directory if needed and loads the asset index.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	s := &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		index:   map[string]string{},
	}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

// Upload copies the local file into the store and returns its public URL and
// generated asset id.
func (s *DiskStore) Upload(ctx context.Context, localPath string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("open upload source: %w", err)
	}
	defer src.Close()

	now := time.Now()
	relDir := filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(filepath.Join(s.root, relDir), 0o755); err != nil {
		return Asset{}, fmt.Errorf("create upload directory: %w", err)
	}

	id := uuid.NewString()
	relPath := filepath.Join(relDir, id+strings.ToLower(filepath.Ext(localPath)))
	dstPath := filepath.Join(s.root, relPath)

	dst, err := os.Create(dstPath)
	if err != nil {
		return Asset{}, fmt.Errorf("create hosted file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return Asset{}, fmt.Errorf("write hosted file: %w", err)
	}

	s.mu.Lock()
	s.index[id] = relPath
	err = s.saveIndexLocked()
	s.mu.Unlock()
	if err != nil {
		_ = os.Remove(dstPath)
		return Asset{}, err
	}

	return Asset{URL: s.baseURL + "/" + filepath.ToSlash(relPath), ID: id}, nil
}

// Delete removes an asset by id. Returns false without error when the id is
// not known.
func (s *DiskStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	relPath, ok := s.index[id]
	if ok {
		delete(s.index, id)
		if err := s.saveIndexLocked(); err != nil {
			s.index[id] = relPath
			s.mu.Unlock()
			return false, err
		}
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}

	if err := os.Remove(filepath.Join(s.root, relPath)); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("remove hosted file: %w", err)
	}
	return true, nil
}

func (s *DiskStore) indexPath() string {
	return filepath.Join(s.root, ".assets.json")
}

func (s *DiskStore) loadIndex() error {
	b, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read asset index: %w", err)
	}
	if err := json.Unmarshal(b, &s.index); err != nil {
		return fmt.Errorf("decode asset index: %w", err)
	}
	return nil
}

func (s *DiskStore) saveIndexLocked() error {
	b, err := json.Marshal(s.index)
	if err != nil {
		return fmt.Errorf("encode asset index: %w", err)
	}
	tmp := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write asset index: %w", err)
	}
	return os.Rename(tmp, s.indexPath())
}
