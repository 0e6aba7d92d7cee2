package notes

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	noteExt   = ".note"
	keyLength = 32
)

var (
	// ErrFileTooShort is returned for files smaller than salt + nonce.
	ErrFileTooShort = errors.New("notes: file too short")

	// ErrDecrypt is returned when a note cannot be decrypted, usually
	// because of a wrong passphrase.
	ErrDecrypt = errors.New("notes: decryption failed (wrong passphrase?)")

	// ErrNotFound is returned by Store.Get for unknown ids.
	ErrNotFound = errors.New("notes: note not found")
)

// deriveKey uses Argon2id to derive an AES-256 key from passphrase.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, keyLength)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Save encrypts n under passphrase and writes it to path.
// File format: salt(16) + nonce(12) + ciphertext. The write goes through a
// synced temp file and a rename so a crash never leaves a partial note.
func Save(n *Note, path, passphrase string) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to serialize note: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, data, nil)

	return writeAtomic(path, out)
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write note: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load decrypts the note at path.
func Load(path, passphrase string) (*Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) < saltSize+12 {
		return nil, ErrFileTooShort
	}

	gcm, err := newGCM(deriveKey(passphrase, data[:saltSize]))
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < saltSize+nonceSize {
		return nil, ErrFileTooShort
	}
	nonce := data[saltSize : saltSize+nonceSize]

	plaintext, err := gcm.Open(nil, nonce, data[saltSize+nonceSize:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}

	var n Note
	if err := json.Unmarshal(plaintext, &n); err != nil {
		return nil, fmt.Errorf("failed to deserialize note: %w", err)
	}
	return &n, nil
}

// Store keeps notes in a directory, one file per note named by its ID.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file a note with id is stored in.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+noteExt)
}

// Put saves n and returns its ID.
func (s *Store) Put(n *Note, passphrase string) (string, error) {
	id := n.ID()
	if err := Save(n, s.Path(id), passphrase); err != nil {
		return "", err
	}
	return id, nil
}

// Get loads the note with id.
func (s *Store) Get(id, passphrase string) (*Note, error) {
	path := s.Path(id)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return Load(path, passphrase)
}

// List returns the IDs of all stored notes in lexical order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), noteExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), noteExt))
	}
	sort.Strings(ids)
	return ids, nil
}
