package credentials

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
	"go.uber.org/zap"
)

// KeyProvider is the secure-storage collaborator that owns the master key.
type KeyProvider interface {
	MasterKey() ([]byte, error)
}

// KeyFunc adapts a function to KeyProvider.
type KeyFunc func() ([]byte, error)

func (f KeyFunc) MasterKey() ([]byte, error) { return f() }

// FileKeyProvider keeps the raw master key in a 0600 file next to the
// credential file. The key is generated on first use.
type FileKeyProvider struct {
	Path string
}

func NewFileKeyProvider(path string) *FileKeyProvider {
	return &FileKeyProvider{Path: path}
}

func (p *FileKeyProvider) MasterKey() ([]byte, error) {
	key, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return generateKey(p.Path, func(key []byte) ([]byte, error) { return key, nil })
	}
	if err != nil {
		return nil, fmt.Errorf("reading master key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("master key file %s holds %d bytes, expected %d", p.Path, len(key), KeySize)
	}
	return key, nil
}

// PassphraseKeyProvider keeps the master key wrapped with an age scrypt
// recipient, so the key file alone is useless without the passphrase.
type PassphraseKeyProvider struct {
	Path       string
	Passphrase string
	// WorkFactor is the scrypt work factor used when wrapping a new key.
	// Zero keeps the age default.
	WorkFactor int
}

func NewPassphraseKeyProvider(path, passphrase string) *PassphraseKeyProvider {
	return &PassphraseKeyProvider{Path: path, Passphrase: passphrase}
}

func (p *PassphraseKeyProvider) MasterKey() ([]byte, error) {
	if p.Passphrase == "" {
		return nil, errors.New("master key passphrase is empty")
	}

	wrapped, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return generateKey(p.Path, p.wrap)
	}
	if err != nil {
		return nil, fmt.Errorf("reading wrapped master key: %w", err)
	}

	identity, err := age.NewScryptIdentity(p.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(wrapped), identity)
	if err != nil {
		return nil, fmt.Errorf("unwrapping master key: %w", err)
	}
	key, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading unwrapped master key: %w", err)
	}
	if len(key) != KeySize {
		zero(key)
		return nil, fmt.Errorf("unwrapped master key holds %d bytes, expected %d", len(key), KeySize)
	}
	return key, nil
}

func (p *PassphraseKeyProvider) wrap(key []byte) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(p.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if p.WorkFactor > 0 {
		recipient.SetWorkFactor(p.WorkFactor)
	}

	var buf bytes.Buffer
	writer, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(key); err != nil {
		return nil, fmt.Errorf("wrapping master key: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing master key wrap: %w", err)
	}
	return buf.Bytes(), nil
}

func generateKey(path string, encode func(key []byte) ([]byte, error)) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generating master key: %w", err)
	}

	data, err := encode(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating key folder: %w", err)
	}
	if err := writeFileAtomic(path, data, 0600); err != nil {
		return nil, fmt.Errorf("storing master key: %w", err)
	}

	zap.S().Named("credentials").Infow("generated new master key", "path", path)
	return key, nil
}
