package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/ini.v1"

	"github.com/huanfeng/androidgen-cli/internal/errors"
)

const (
	// FileName is the settings file name used at both scopes
	FileName = ".command_settings"
	// SectionName is the single INI section holding every key
	SectionName = "android"
)

// Store is one INI-backed settings file. Every mutation is flushed immediately.
type Store struct {
	path string
	file *ini.File
}

// OpenStore loads the settings file in dir. A missing file yields an empty store that is
// created on the first Set.
func OpenStore(dir string) (*Store, error) {
	path := filepath.Join(dir, FileName)
	s := &Store{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.file = ini.Empty()
		return s, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeConfiguration, "SETTINGS_UNREADABLE",
			fmt.Sprintf("failed to read settings file %s", path))
	}
	s.file = f
	return s, nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Get returns the raw stored value
func (s *Store) Get(key string) (string, bool) {
	sec, err := s.file.GetSection(SectionName)
	if err != nil || !sec.HasKey(key) {
		return "", false
	}
	return sec.Key(key).String(), true
}

// Set stores value under key and flushes the file
func (s *Store) Set(key, value string) error {
	s.file.Section(SectionName).Key(key).SetValue(value)
	return s.flush()
}

// Delete removes key and flushes the file
func (s *Store) Delete(key string) error {
	sec, err := s.file.GetSection(SectionName)
	if err != nil || !sec.HasKey(key) {
		return nil
	}
	sec.DeleteKey(key)
	return s.flush()
}

// Keys returns the keys present in this file, sorted
func (s *Store) Keys() []string {
	sec, err := s.file.GetSection(SectionName)
	if err != nil {
		return nil
	}
	keys := sec.KeyStrings()
	sort.Strings(keys)
	return keys
}

// flush rewrites the file through a temporary sibling and a rename
func (s *Store) flush() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to create settings directory %s", dir))
	}

	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to write settings file %s", s.path))
	}
	tmpName := tmp.Name()

	if _, err := s.file.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to write settings file %s", s.path))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to write settings file %s", s.path))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.NewFileSystemError(err, fmt.Sprintf("failed to replace settings file %s", s.path))
	}
	return nil
}
