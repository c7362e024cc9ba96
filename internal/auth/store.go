package auth

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/99designs/keyring"
	"github.com/zeebo/blake3"
)

// Key scopes a stored credential to one API host and one project directory.
type Key struct {
	APIHost     string
	ProjectRoot string
}

// Record is the credential written after a successful login.
type Record struct {
	Token     string    `json:"token"`
	AuthType  string    `json:"auth_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type storedRecord struct {
	APIHost     string `json:"api_host"`
	ProjectRoot string `json:"project_root"`
	Record
}

// StorageName derives the provider key for k. Distinct (host, root) pairs
// map to distinct names; the NUL separator keeps "a"+"b/c" apart from
// "a/b"+"c".
func StorageName(k Key) string {
	h := blake3.New()
	_, _ = h.Write([]byte(k.APIHost))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(k.ProjectRoot))
	return "tier-" + hex.EncodeToString(h.Sum(nil))[:32]
}

// Store reads and writes credential records through a KeyringProvider.
type Store struct {
	provider KeyringProvider
	now      func() time.Time
}

// NewStore returns a Store backed by provider.
func NewStore(provider KeyringProvider) *Store {
	return &Store{provider: provider, now: time.Now}
}

// Get returns the record for k, or nil when none is stored.
func (s *Store) Get(k Key) (*Record, error) {
	item, err := s.provider.Get(StorageName(k))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	var stored storedRecord
	if err := json.Unmarshal(item.Data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	if stored.APIHost != k.APIHost || stored.ProjectRoot != k.ProjectRoot {
		return nil, nil
	}
	if stored.Token == "" {
		return nil, nil
	}
	return &stored.Record, nil
}

// Put stores rec under k, replacing any existing record.
func (s *Store) Put(k Key, rec Record) error {
	if rec.Token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	data, err := json.Marshal(storedRecord{
		APIHost:     k.APIHost,
		ProjectRoot: k.ProjectRoot,
		Record:      rec,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	err = s.provider.Set(keyring.Item{
		Key:   StorageName(k),
		Label: "tier CLI credential for " + k.APIHost,
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Delete removes the record for k. Removing an absent record is not an error.
func (s *Store) Delete(k Key) error {
	err := s.provider.Remove(StorageName(k))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// Lookup returns a function resolving the credential for an API host within
// projectRoot, in the shape the config resolver consumes.
func (s *Store) Lookup(projectRoot string) func(apiHost string) (*Record, error) {
	return func(apiHost string) (*Record, error) {
		return s.Get(Key{APIHost: apiHost, ProjectRoot: projectRoot})
	}
}
