package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
)

// Store is an encrypted, file-backed mapping from network id to secret.
//
// The mapping is loaded once when the store is opened. Every Write upserts the
// in-memory mapping and atomically replaces the backing file with the whole
// mapping re-encrypted. A Write that fails keeps the in-memory update, so a
// Lookup right after a failed Write still returns the new secret while the file
// holds the previous snapshot.
type Store struct {
	path    string
	key     []byte
	records map[string]string
	mu      sync.Mutex
}

// Open obtains the master key and loads the backing file. A missing file
// yields an empty store. A file that cannot be read or decrypted is treated as
// "no prior credentials": the error is logged and the store starts empty. Only
// a master key failure is returned, as a CryptoInitError.
func Open(path string, keys KeyProvider) (*Store, error) {
	masterKey, err := keys.MasterKey()
	if err != nil {
		return nil, srvErrors.NewCryptoInitError(err)
	}
	defer zero(masterKey)

	fileKey, err := deriveFileKey(masterKey)
	if err != nil {
		return nil, srvErrors.NewCryptoInitError(err)
	}

	s := &Store{
		path:    path,
		key:     fileKey,
		records: make(map[string]string),
	}

	records, err := s.Load()
	switch {
	case err == nil:
		s.records = records
	case errors.Is(err, os.ErrNotExist):
		zap.S().Named("credentials").Debugw("no credential file yet", "path", path)
	default:
		zap.S().Named("credentials").Warnw("ignoring unreadable credential file", "path", path, "error", err)
	}

	return s, nil
}

// NewDegraded returns a store without persistence. It is used when the master
// key is unavailable: lookups work on whatever was written during the session,
// and every Write reports CredentialsUnavailableError.
func NewDegraded() *Store {
	return &Store{records: make(map[string]string)}
}

// Degraded reports whether the store runs without persistence.
func (s *Store) Degraded() bool {
	return s.key == nil
}

// Path returns the backing file location, empty for a degraded store.
func (s *Store) Path() string {
	return s.path
}

// Load decrypts and parses the backing file without touching the in-memory
// mapping. A missing file returns an error wrapping os.ErrNotExist.
func (s *Store) Load() (map[string]string, error) {
	if s.Degraded() {
		return nil, srvErrors.NewCredentialsUnavailableError()
	}

	blob, err := os.ReadFile(s.path)
	if err != nil {
		return nil, srvErrors.NewStorageError("reading credential file", err)
	}

	plaintext, err := open(s.key, blob)
	if err != nil {
		return nil, srvErrors.NewDecryptError(err)
	}
	defer zero(plaintext)

	records, skipped := decodeRecords(plaintext)
	if skipped > 0 {
		zap.S().Named("credentials").Debugw("skipped malformed credential lines", "count", skipped)
	}
	return records, nil
}

// Reload replaces the in-memory mapping with the content of the backing file.
// A missing file empties the mapping.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.Load()
	if errors.Is(err, os.ErrNotExist) {
		s.records = make(map[string]string)
		return nil
	}
	if err != nil {
		return err
	}
	s.records = records
	return nil
}

// Write upserts networkID and rewrites the whole backing file. The previous
// file content is replaced only once the new content is durably written.
func (s *Store) Write(networkID, secret string) error {
	if networkID == "" {
		return srvErrors.NewValidationError("networkId", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[networkID] = secret

	if s.Degraded() {
		return srvErrors.NewCredentialsUnavailableError()
	}

	plaintext := encodeRecords(s.records)
	defer zero(plaintext)

	blob, err := seal(s.key, plaintext)
	if err != nil {
		return srvErrors.NewEncryptError(err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return srvErrors.NewStorageError("creating credential folder", err)
	}
	if err := writeFileAtomic(s.path, blob, 0600); err != nil {
		return srvErrors.NewStorageError("replacing credential file", err)
	}

	zap.S().Named("credentials").Debugw("credential file rewritten", "entries", len(s.records))
	return nil
}

// Lookup returns the secret stored for networkID.
func (s *Store) Lookup(networkID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secret, ok := s.records[networkID]
	return secret, ok
}

// NetworkIDs returns the known network ids, sorted.
func (s *Store) NetworkIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
