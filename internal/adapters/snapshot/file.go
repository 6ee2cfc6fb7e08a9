package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/okian/scorecard/pkg/logger"
)

const fileExt = ".json"

// FileStore keeps one JSON document per round in a directory.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	guard  guard
	logger logger.Logger
}

// NewFileStore creates dir if needed and returns a store rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{
		dir:    dir,
		guard:  newGuard(),
		logger: logger.Get().Named("snapshot"),
	}, nil
}

// Dir returns the directory the store writes to.
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(roundID string) (string, error) {
	if roundID == "" || roundID != filepath.Base(roundID) || strings.HasPrefix(roundID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, roundID)
	}
	return filepath.Join(f.dir, roundID+fileExt), nil
}

// Save writes the snapshot to a temporary file and renames it into place.
func (f *FileStore) Save(_ context.Context, s Snapshot) error {
	p, err := f.path(s.RoundID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", s.RoundID, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.guard.admit(s) {
		return fmt.Errorf("%w: %s v%d", ErrStale, s.RoundID, s.Version)
	}

	tmp, err := os.CreateTemp(f.dir, s.RoundID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot %s: %w", s.RoundID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot %s: %w", s.RoundID, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename snapshot %s: %w", s.RoundID, err)
	}
	f.guard.saved(s)
	return nil
}

func (f *FileStore) Load(_ context.Context, roundID string) (Snapshot, error) {
	p, err := f.path(roundID)
	if err != nil {
		return Snapshot{}, err
	}
	return readSnapshot(p)
}

// LoadAll reads every snapshot file. Unreadable files are logged and skipped.
func (f *FileStore) LoadAll(ctx context.Context) ([]Snapshot, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var out []Snapshot
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		s, err := readSnapshot(filepath.Join(f.dir, e.Name()))
		if err != nil {
			f.logger.Warn(ctx, "skipping unreadable snapshot", logger.String("file", e.Name()), logger.Error(err))
			continue
		}
		if want := strings.TrimSuffix(e.Name(), fileExt); s.RoundID != want {
			f.logger.Warn(ctx, "skipping snapshot with mismatched id",
				logger.String("file", e.Name()), logger.String("round_id", s.RoundID))
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundID < out[j].RoundID })
	return out, nil
}

func (f *FileStore) Delete(_ context.Context, roundID string) error {
	p, err := f.path(roundID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.guard.forget(roundID)
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, roundID)
		}
		return fmt.Errorf("remove snapshot %s: %w", roundID, err)
	}
	return nil
}

func readSnapshot(p string) (Snapshot, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(p))
		}
		return Snapshot{}, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", filepath.Base(p), err)
	}
	return s, nil
}
