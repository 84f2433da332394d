package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// FileMatrixCache keeps one JSON file per group at
// <Dir>/<key>_distance_matrix.json.
type FileMatrixCache struct {
	Dir string
}

func NewFileMatrixCache(dir string) *FileMatrixCache {
	return &FileMatrixCache{Dir: dir}
}

func (c *FileMatrixCache) Path(key string) string {
	return filepath.Join(c.Dir, sanitizeKey(key)+"_distance_matrix.json")
}

// Get returns a miss when the file does not exist. A file that cannot be
// decoded into a square matrix is reported as an error so the caller rebuilds it.
func (c *FileMatrixCache) Get(_ context.Context, key string) ([][]int64, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get matrix cache: key must not be empty")
	}

	path := c.Path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache: read %q: %w", path, err)
	}

	var m [][]int64
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, fmt.Errorf("get matrix cache: decode %q: %w", path, err)
	}
	if len(m) == 0 {
		return nil, false, fmt.Errorf("get matrix cache: %q holds an empty matrix", path)
	}
	for i, row := range m {
		if len(row) != len(m) {
			return nil, false, fmt.Errorf("get matrix cache: %q row %d has %d entries, want %d", path, i, len(row), len(m))
		}
	}
	return m, true, nil
}

// Put writes through a temporary file so readers never see a partial matrix.
func (c *FileMatrixCache) Put(_ context.Context, key string, matrix [][]int64) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("insert matrix cache: key must not be empty")
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("insert matrix cache: create dir %q: %w", c.Dir, err)
	}

	data, err := json.Marshal(matrix)
	if err != nil {
		return fmt.Errorf("insert matrix cache: encode: %w", err)
	}

	tmp, err := os.CreateTemp(c.Dir, ".matrix-*.json")
	if err != nil {
		return fmt.Errorf("insert matrix cache: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("insert matrix cache: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("insert matrix cache: close: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.Path(key)); err != nil {
		return fmt.Errorf("insert matrix cache: rename: %w", err)
	}
	return nil
}

// sanitizeKey keeps file names within the cache directory. Letters of any
// script survive; when another rune had to be replaced a digest of the raw
// key is appended so distinct keys never share a file.
func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	replaced := false
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		replaced = true
		return '_'
	}, key)
	if !replaced {
		return safe
	}
	sum := sha256.Sum256([]byte(key))
	return safe + "-" + hex.EncodeToString(sum[:4])
}
