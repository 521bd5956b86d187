//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirFilestore serves animation files from a flat local directory, standing
// in for the device flash filesystem.
type DirFilestore struct {
	dir   string
	quota uint32
}

func NewDirFilestore(dir string, quota uint32) *DirFilestore {
	return &DirFilestore{dir: dir, quota: quota}
}

func (fs *DirFilestore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("filestore: bad name %q", name)
	}
	return filepath.Join(fs.dir, name), nil
}

func (fs *DirFilestore) Open(name string) (File, error) {
	p, err := fs.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("filestore: open %s: %w", name, err)
	}
	return f, nil
}

func (fs *DirFilestore) Exists(name string) bool {
	p, err := fs.path(name)
	if err != nil {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func (fs *DirFilestore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("filestore: list: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (fs *DirFilestore) Remove(name string) error {
	p, err := fs.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("filestore: remove %s: %w", name, err)
	}
	return nil
}

func (fs *DirFilestore) Usage() (used, total uint32) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return 0, fs.quota
	}
	var sum uint32
	for _, e := range entries {
		if info, err := e.Info(); err == nil && !e.IsDir() {
			sum += uint32(info.Size())
		}
	}
	return sum, fs.quota
}
