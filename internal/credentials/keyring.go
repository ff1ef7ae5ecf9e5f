package credentials

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	clog "github.com/charmbracelet/log"
	"github.com/jmcampanini/jh/internal/config"
)

const (
	// ServiceName addresses jh's entries in the OS secret store.
	ServiceName = "jh"

	// ItemKey is the account key of the single credentials item.
	ItemKey = "jira"
)

// KeyringStore stores credentials as one JSON item in a keyring.
type KeyringStore struct {
	log  *clog.Logger
	ring keyring.Keyring
}

var _ Store = &KeyringStore{}

// NewStore wraps an already opened keyring.
// keyring.NewArrayKeyring gives an in-memory store for tests.
func NewStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{
		log:  clog.Default().WithPrefix("credentials"),
		ring: ring,
	}
}

// NewKeyringStore opens the OS secret store selected by cfg.
func NewKeyringStore(cfg config.KeyringConfig) (*KeyringStore, error) {
	ring, err := keyring.Open(keyringConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open keyring: %w", ErrAccessDenied, err)
	}
	return NewStore(ring), nil
}

func keyringConfig(cfg config.KeyringConfig) keyring.Config {
	backends := make([]keyring.BackendType, 0, len(cfg.Backends))
	for _, b := range cfg.Backends {
		backends = append(backends, keyring.BackendType(b))
	}

	kc := keyring.Config{
		ServiceName:                    ServiceName,
		KeychainName:                   "login",
		KeychainTrustApplication:       true,
		KeychainAccessibleWhenUnlocked: true,
		LibSecretCollectionName:        "login",
		KWalletAppID:                   ServiceName,
		KWalletFolder:                  ServiceName,
		WinCredPrefix:                  ServiceName,
		FileDir:                        cfg.FileDir,
		FilePasswordFunc:               keyring.TerminalPrompt,
	}
	if len(backends) > 0 {
		kc.AllowedBackends = backends
	}
	if kc.FileDir == "" {
		kc.FileDir = "~/.config/jh/keyring"
	}
	return kc
}

func (s *KeyringStore) Save(creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	s.log.Debug("Saving credentials", "service", ServiceName, "key", ItemKey, "server", creds.ServerURL)
	err = s.ring.Set(keyring.Item{
		Key:         ItemKey,
		Data:        data,
		Label:       "jh Jira credentials",
		Description: "Jira server, email and API token used by jh",
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save credentials: %w", ErrAccessDenied, err)
	}
	return nil
}

func (s *KeyringStore) Load() (Credentials, error) {
	item, err := s.ring.Get(ItemKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Credentials{}, ErrNotFound
		}
		return Credentials{}, fmt.Errorf("%w: failed to read credentials: %w", ErrAccessDenied, err)
	}

	var creds Credentials
	if err := json.Unmarshal(item.Data, &creds); err != nil {
		s.log.Warn("Stored credentials are unreadable", "error", err)
		return Credentials{}, fmt.Errorf("%w: stored credentials are corrupt", ErrNotFound)
	}
	if creds.ServerURL == "" || creds.Email == "" || creds.APIToken == "" {
		return Credentials{}, fmt.Errorf("%w: stored credentials are incomplete", ErrNotFound)
	}

	s.log.Debug("Loaded credentials", "server", creds.ServerURL)
	return creds, nil
}

func (s *KeyringStore) Delete() error {
	err := s.ring.Remove(ItemKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("%w: failed to delete credentials: %w", ErrAccessDenied, err)
	}
	return nil
}
