package auth

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

const (
	// ServiceName is the keyring service name for tier
	ServiceName = "tier-cli"
	// CredentialsDirEnvVarName controls the credential storage root directory.
	CredentialsDirEnvVarName = "TIER_CREDENTIALS_DIR"
	// StoreEnvVarName selects the credential backend ("file" or "keyring").
	StoreEnvVarName = "TIER_CREDENTIAL_STORE"
	// KeyringPasswordEnvVarName sets the file keyring passphrase for non-interactive setups.
	KeyringPasswordEnvVarName = "TIER_KEYRING_PASSWORD"
	// DBUSSessionAddressEnvVarName is used to detect Linux headless mode.
	DBUSSessionAddressEnvVarName = "DBUS_SESSION_BUS_ADDRESS"
)

// Backend names accepted by Open.
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
)

// KeyringProvider defines an interface for keyring operations
type KeyringProvider interface {
	Get(key string) (keyring.Item, error)
	Set(item keyring.Item) error
	Remove(key string) error
}

// osKeyring wraps the actual OS keyring implementation
type osKeyring struct {
	ring keyring.Keyring
}

// CredentialsDir returns the directory holding file-backed credentials.
func CredentialsDir(getenv func(string) string) string {
	if dir := strings.TrimSpace(getenv(CredentialsDirEnvVarName)); dir != "" {
		return dir
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = getenv("HOME")
	}

	configDir = strings.TrimSpace(configDir)
	if configDir == "" {
		return string(os.PathSeparator) + filepath.Join("tier", "credentials")
	}
	return filepath.Join(configDir, "tier", "credentials")
}

func keyringFilePassword(getenv func(string) string) string {
	if password := strings.TrimSpace(getenv(KeyringPasswordEnvVarName)); password != "" {
		return password
	}
	return ServiceName
}

func shouldForceFileBackend(goos string, dbusAddr string) bool {
	return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

// newOSKeyring creates a new OS keyring provider
func newOSKeyring(getenv func(string) string) (KeyringProvider, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
		// macOS Keychain settings
		KeychainTrustApplication:       true,
		KeychainSynchronizable:         false,
		KeychainAccessibleWhenUnlocked: true,
		// Encrypted file fallback for hosts without a desktop keyring
		FileDir:          filepath.Join(CredentialsDir(getenv), "keyring"),
		FilePasswordFunc: func(_ string) (string, error) { return keyringFilePassword(getenv), nil },
	}

	if shouldForceFileBackend(runtime.GOOS, getenv(DBUSSessionAddressEnvVarName)) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &osKeyring{ring: ring}, nil
}

func (k *osKeyring) Get(key string) (keyring.Item, error) {
	return k.ring.Get(key)
}

func (k *osKeyring) Set(item keyring.Item) error {
	return k.ring.Set(item)
}

func (k *osKeyring) Remove(key string) error {
	return k.ring.Remove(key)
}

// openKeyring is swapped by tests so the OS keyring is never touched.
var openKeyring = newOSKeyring

// Open returns a Store on the named backend. An empty backend falls back to
// TIER_CREDENTIAL_STORE and then to the file backend.
func Open(backend string, getenv func(string) string) (*Store, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if backend == "" {
		backend = strings.TrimSpace(getenv(StoreEnvVarName))
	}

	switch strings.ToLower(backend) {
	case "", BackendFile:
		return NewStore(&FileProvider{Dir: CredentialsDir(getenv)}), nil
	case BackendKeyring:
		provider, err := openKeyring(getenv)
		if err != nil {
			return nil, &clierrors.AuthError{
				Reason:     "failed to open keyring",
				Suggestion: "Set " + StoreEnvVarName + "=file to store credentials on disk",
				Err:        err,
			}
		}
		return NewStore(provider), nil
	default:
		return nil, &clierrors.ConfigError{
			Field:   "credential store",
			Value:   backend,
			Message: "expected file or keyring",
		}
	}
}
