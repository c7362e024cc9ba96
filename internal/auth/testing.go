package auth

import (
	"sync"

	"github.com/99designs/keyring"
)

// MockKeyring is a test double for KeyringProvider
type MockKeyring struct {
	mu     sync.Mutex
	items  map[string]keyring.Item
	writes int
	err    error
}

// NewMockKeyringProvider creates a new mock keyring for testing.
// This is exported for use in tests outside the auth package.
func NewMockKeyringProvider() *MockKeyring {
	return &MockKeyring{
		items: make(map[string]keyring.Item),
	}
}

// Get retrieves an item from the mock keyring
func (m *MockKeyring) Get(key string) (keyring.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return keyring.Item{}, m.err
	}
	item, ok := m.items[key]
	if !ok {
		return keyring.Item{}, keyring.ErrKeyNotFound
	}
	return item, nil
}

// Set stores an item in the mock keyring
func (m *MockKeyring) Set(item keyring.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items[item.Key] = item
	m.writes++
	return nil
}

// Remove deletes an item from the mock keyring
func (m *MockKeyring) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[key]; !ok {
		return keyring.ErrKeyNotFound
	}
	delete(m.items, key)
	return nil
}

// Writes reports how many Set calls succeeded.
func (m *MockKeyring) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Len reports how many items are stored.
func (m *MockKeyring) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// FailWith makes every subsequent call return err. Pass nil to clear.
func (m *MockKeyring) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
