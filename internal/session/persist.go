package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FilePersister stores the session as YAML in a single file.
type FilePersister struct {
	path string
}

// NewFilePersister returns a FilePersister writing to path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// DefaultPath returns ~/.config/luminher/session.yaml, honouring XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate config directory: %w", err)
	}
	return filepath.Join(dir, "luminher", "session.yaml"), nil
}

type sessionFile struct {
	User *User `yaml:"user"`
}

func (p *FilePersister) Load() (*User, error) {
	raw, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var f sessionFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("malformed session file %s: %w", p.path, err)
	}
	return f.User, nil
}

func (p *FilePersister) Save(u *User) error {
	raw, err := yaml.Marshal(sessionFile{User: u})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, raw, 0o600)
}

func (p *FilePersister) Clear() error {
	err := os.Remove(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryPersister keeps the session for the lifetime of the process.
type MemoryPersister struct {
	mu   sync.Mutex
	user *User
}

// NewMemoryPersister returns an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load() (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return nil, nil
	}
	u := *p.user
	return &u, nil
}

func (p *MemoryPersister) Save(u *User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := *u
	p.user = &c
	return nil
}

func (p *MemoryPersister) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = nil
	return nil
}
