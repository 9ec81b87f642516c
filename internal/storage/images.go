package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidImage = errors.New("invalid image")

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// DiskStore keeps uploaded images in Dir and exposes them under Prefix.
type DiskStore struct {
	Dir    string
	Prefix string
	now    func() time.Time
}

func NewDiskStore(dir, prefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Dir: dir, Prefix: "/" + strings.Trim(prefix, "/"), now: time.Now}, nil
}

func cleanName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		return "", fmt.Errorf("%w: empty file name", ErrInvalidImage)
	}
	if !imageExts[strings.ToLower(filepath.Ext(base))] {
		return "", fmt.Errorf("%w: unsupported file type %q", ErrInvalidImage, filepath.Ext(base))
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String(), nil
}

// Save writes r under a unique, time-prefixed name and returns its URL.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	base, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file := fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), uuid.NewString()[:8], base)
	full := filepath.Join(s.Dir, file)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", file, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close %s: %w", file, err)
	}

	return path.Join(s.Prefix, file), nil
}

// Remove deletes a file previously returned by Save. Missing files are not
// an error.
func (s *DiskStore) Remove(ctx context.Context, url string) error {
	file, ok := strings.CutPrefix(url, s.Prefix+"/")
	if !ok || file == "" || strings.ContainsAny(file, "/\\") || file == ".." {
		return fmt.Errorf("%w: %q is not a stored image", ErrInvalidImage, url)
	}
	if err := os.Remove(filepath.Join(s.Dir, file)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
