package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"
)

// FileProvider stores each item as a single file named after its key.
// Writes go through a temporary file in the same directory and a rename, so
// readers see either the old record or the new one.
type FileProvider struct {
	Dir string
}

func (p *FileProvider) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid credential key %q", key)
	}
	return filepath.Join(p.Dir, key+".json"), nil
}

func (p *FileProvider) Get(key string) (keyring.Item, error) {
	path, err := p.path(key)
	if err != nil {
		return keyring.Item{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return keyring.Item{}, keyring.ErrKeyNotFound
	}
	if err != nil {
		return keyring.Item{}, fmt.Errorf("reading credential file: %w", err)
	}
	return keyring.Item{Key: key, Data: data}, nil
}

func (p *FileProvider) Set(item keyring.Item) error {
	path, err := p.path(item.Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	file, err := os.CreateTemp(p.Dir, "."+item.Key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary credential file: %w", err)
	}
	temporaryPath := file.Name()

	if err := file.Chmod(0o600); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("setting credential file mode: %w", err)
	}
	if _, err := file.Write(item.Data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary credential file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary credential file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary credential file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming credential file into place: %w", err)
	}

	// Persist the rename itself. Not every platform allows fsync on a
	// directory, so failures here are ignored.
	if dir, err := os.Open(p.Dir); err == nil {
		_ = dir.Sync()
		dir.Close()
	}
	return nil
}

func (p *FileProvider) Remove(key string) error {
	path, err := p.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return keyring.ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("removing credential file: %w", err)
	}
	return nil
}
