package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSSink writes backups as files under a local directory. Writes go
// through a temp file and rename so a partial backup never shadows a
// complete one.
type FSSink struct {
	dir string
}

// NewFSSink creates the backup directory if needed.
func NewFSSink(dir string) (*FSSink, error) {
	if dir == "" {
		dir = "./backups"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return &FSSink{dir: dir}, nil
}

func (f *FSSink) Put(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("backup %s: %w", key, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("backup %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("backup %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(f.dir, key)); err != nil {
		return fmt.Errorf("backup %s: %w", key, err)
	}
	return nil
}

func (f *FSSink) Name() string { return "fs" }

// Dir returns the backup directory.
func (f *FSSink) Dir() string { return f.dir }
