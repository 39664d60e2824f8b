// Package filestore keeps session credentials in a single JSON document on
// disk, optionally sealed with a passphrase.
package filestore

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/session"
)

const (
	fileMode = 0o600
	dirMode  = 0o700

	keyLength   = 32
	saltLength  = 16
	nonceLength = 24

	sealedVersion = 1

	// scrypt parameters
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// ErrDecrypt is returned when the document cannot be opened with the configured passphrase.
var ErrDecrypt = cmserrors.ErrDecrypt

// Store is a file-backed credential store safe for concurrent use within a process.
// Every operation re-reads the file so that writes by other processes are seen.
type Store struct {
	path       string
	passphrase string

	mu      sync.Mutex
	keySalt []byte
	key     *[keyLength]byte
}

var _ session.Store = (*Store)(nil)

type Option func(*Store)

// WithPassphrase seals the document with a key derived from passphrase
func WithPassphrase(passphrase string) Option {
	return func(s *Store) {
		s.passphrase = passphrase
	}
}

// New creates a store at path. The file is created on first write.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the backing file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := entries[key]
	return value, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.save(entries)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.save(entries)
}

// sealed is the on-disk envelope of an encrypted document
type sealed struct {
	Version int    `json:"version"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Box     []byte `json:"box"`
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[filestore] reading %s: %w", s.path, err)
	}

	if s.passphrase != "" {
		if data, err = s.open(data); err != nil {
			return nil, err
		}
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		var env sealed
		if json.Unmarshal(data, &env) == nil && env.Version > 0 {
			return nil, fmt.Errorf("[filestore] %s is sealed and no passphrase is configured: %w", s.path, ErrDecrypt)
		}
		return nil, fmt.Errorf("[filestore] parsing %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *Store) save(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("[filestore] encoding entries: %w", err)
	}
	if s.passphrase != "" {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("[filestore] creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("[filestore] creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore] chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore] writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore] closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("[filestore] replacing %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	salt := s.keySalt
	if salt == nil {
		salt = make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("[filestore] generating salt: %w", err)
		}
	}
	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("[filestore] generating nonce: %w", err)
	}

	return json.Marshal(sealed{
		Version: sealedVersion,
		Salt:    salt,
		Nonce:   nonce[:],
		Box:     secretbox.Seal(nil, plain, &nonce, key),
	})
}

func (s *Store) open(data []byte) ([]byte, error) {
	var env sealed
	if err := json.Unmarshal(data, &env); err != nil || env.Version != sealedVersion || len(env.Nonce) != nonceLength || len(env.Salt) == 0 {
		return nil, fmt.Errorf("[filestore] %s is not a sealed document: %w", s.path, ErrDecrypt)
	}
	key, err := s.deriveKey(env.Salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceLength]byte
	copy(nonce[:], env.Nonce)
	plain, ok := secretbox.Open(nil, env.Box, &nonce, key)
	if !ok {
		return nil, fmt.Errorf("[filestore] opening %s: %w", s.path, ErrDecrypt)
	}
	return plain, nil
}

// deriveKey caches the key for the last salt seen.
func (s *Store) deriveKey(salt []byte) (*[keyLength]byte, error) {
	if s.key != nil && string(s.keySalt) == string(salt) {
		return s.key, nil
	}
	derived, err := scrypt.Key([]byte(s.passphrase), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("[filestore] deriving key: %w", err)
	}
	var key [keyLength]byte
	copy(key[:], derived)
	s.keySalt = append([]byte(nil), salt...)
	s.key = &key
	return s.key, nil
}
