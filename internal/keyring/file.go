package keyring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKeyring is a file-backed Keyring: a 0600 JSON file of
// service -> account -> secret under the user config dir. It stands in for
// the platform secret store on headless setups and in tests.
type FileKeyring struct {
	path string
	mu   sync.Mutex
}

// NewFileKeyring creates a keyring persisted at path. The file is created
// lazily on first Set.
func NewFileKeyring(path string) *FileKeyring {
	return &FileKeyring{path: path}
}

func (k *FileKeyring) Get(service, account string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.load()
	if err != nil {
		return "", err
	}

	secret, ok := data[service][account]
	if !ok {
		return "", fmt.Errorf("%s/%s: %w", service, account, ErrNotFound)
	}
	return secret, nil
}

func (k *FileKeyring) Set(service, account, secret string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.load()
	if err != nil {
		return err
	}

	if data[service] == nil {
		data[service] = map[string]string{}
	}
	data[service][account] = secret

	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(k.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(k.path, buf, 0o600)
}

func (k *FileKeyring) load() (map[string]map[string]string, error) {
	buf, err := os.ReadFile(k.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]map[string]string{}, nil
		}
		return nil, err
	}

	data := map[string]map[string]string{}
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("parse keyring file: %w", err)
	}
	return data, nil
}
