package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/document-converter/internal/core/domain"
)

// Manager stages uploaded bytes under the system temp directory. Names carry
// the process id plus a per-request uuid so concurrent requests never collide.
type Manager struct {
	dir    string
	prefix string
}

func NewManager(dir, prefix string) *Manager {
	if dir == "" {
		dir = os.TempDir()
	}
	if prefix == "" {
		prefix = "convert_upload"
	}
	return &Manager{dir: dir, prefix: prefix}
}

func (m *Manager) Stage(_ context.Context, filename string, data io.Reader) (*domain.StagedFile, error) {
	name := fmt.Sprintf("%s_%d_%s_%s", m.prefix, os.Getpid(), uuid.NewString(), sanitizeFilename(filename))
	path := filepath.Join(m.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStaging, "create staged file", err)
	}

	size, err := io.Copy(f, data)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, domain.WrapError(domain.ErrStaging, "write staged file", err)
	}

	// Flush to stable storage before the conversion engine reads the path.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, domain.WrapError(domain.ErrStaging, "sync staged file", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, domain.WrapError(domain.ErrStaging, "close staged file", err)
	}

	return &domain.StagedFile{
		Path:     path,
		Filename: filename,
		Size:     size,
	}, nil
}

// Release removes the staged copy. A missing file is fine; any other removal
// failure is logged and never surfaced to the owning request.
func (m *Manager) Release(staged *domain.StagedFile) {
	if staged == nil || staged.Path == "" {
		return
	}
	err := os.Remove(staged.Path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	slog.Warn("staged file removal failed", "path", staged.Path, "error", err)
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
