package file

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/crmarques/zpasync/config"
	"github.com/crmarques/zpasync/faults"
)

const (
	envelopeVersion  = 1
	keyLengthBytes   = 32
	nonceLengthBytes = 12
	saltLengthBytes  = 16

	defaultKDFTime    = 1
	defaultKDFMemory  = 64 * 1024
	defaultKDFThreads = 4
)

// Store keeps named credentials in one AES-256-GCM encrypted JSON file.
// Passphrase-unlocked stores derive the key with argon2id and a fresh salt
// on every write.
type Store struct {
	path       string
	key        []byte
	passphrase []byte
	kdf        kdfSettings

	mu sync.Mutex
}

type kdfSettings struct {
	time    uint32
	memory  uint32
	threads uint8
}

type envelope struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt,omitempty"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

type contents struct {
	Secrets map[string]string `json:"secrets"`
}

func NewStore(cfg config.CredentialStore) (*Store, error) {
	if err := config.ValidateCredentialStore(&cfg); err != nil {
		return nil, err
	}

	kdf, err := resolveKDF(cfg.KDF)
	if err != nil {
		return nil, err
	}
	store := &Store{path: filepath.Clean(strings.TrimSpace(cfg.Path)), kdf: kdf}

	switch {
	case strings.TrimSpace(cfg.Key) != "":
		store.key, err = parseKey(cfg.Key)
	case strings.TrimSpace(cfg.KeyFile) != "":
		var data []byte
		data, err = os.ReadFile(strings.TrimSpace(cfg.KeyFile))
		if err != nil {
			return nil, validationError("credentials.key-file could not be read", err)
		}
		store.key, err = parseKey(string(data))
	case strings.TrimSpace(cfg.Passphrase) != "":
		store.passphrase = []byte(strings.TrimSpace(cfg.Passphrase))
	default:
		var data []byte
		data, err = os.ReadFile(strings.TrimSpace(cfg.PassphraseFile))
		if err != nil {
			return nil, validationError("credentials.passphrase-file could not be read", err)
		}
		passphrase := strings.TrimSpace(string(data))
		if passphrase == "" {
			return nil, validationError("credentials.passphrase-file must not be empty", nil)
		}
		store.passphrase = []byte(passphrase)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) Put(_ context.Context, name string, value string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readLocked()
	if err != nil {
		return err
	}
	current.Secrets[name] = value
	return s.writeLocked(current)
}

func (s *Store) Get(_ context.Context, name string) (string, error) {
	name, err := normalizeName(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readLocked()
	if err != nil {
		return "", err
	}
	value, found := current.Secrets[name]
	if !found {
		return "", faults.NewTypedError(faults.NotFoundError, "credential "+name+" not found", nil).WithFields(name)
	}
	return value, nil
}

// Delete removes name. Deleting an absent name is not an error.
func (s *Store) Delete(_ context.Context, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readLocked()
	if err != nil {
		return err
	}
	if _, found := current.Secrets[name]; !found {
		return nil
	}
	delete(current.Secrets, name)
	return s.writeLocked(current)
}

// Names lists stored credential names in order.
func (s *Store) Names(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(current.Secrets))
	for name := range current.Secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// readLocked decrypts the store. A missing file reads as empty; it is
// created on the first write.
func (s *Store) readLocked() (contents, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return contents{Secrets: map[string]string{}}, nil
	}
	if err != nil {
		return contents{}, internalError("failed to read credential store", err)
	}

	var sealed envelope
	if err := json.Unmarshal(data, &sealed); err != nil {
		return contents{}, validationError("credential store is not a valid envelope", err)
	}
	if sealed.Version != envelopeVersion {
		return contents{}, validationError("credential store format version is unsupported", nil)
	}

	nonce, err := base64.StdEncoding.DecodeString(sealed.Nonce)
	if err != nil {
		return contents{}, validationError("credential store nonce is invalid", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(sealed.Ciphertext)
	if err != nil {
		return contents{}, validationError("credential store ciphertext is invalid", err)
	}
	var salt []byte
	if sealed.Salt != "" {
		if salt, err = base64.StdEncoding.DecodeString(sealed.Salt); err != nil {
			return contents{}, validationError("credential store salt is invalid", err)
		}
	}

	aead, err := s.cipher(salt)
	if err != nil {
		return contents{}, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return contents{}, faults.NewTypedError(faults.AuthError, "failed to decrypt credential store with the configured key material", err)
	}

	var opened contents
	if err := json.Unmarshal(plaintext, &opened); err != nil {
		return contents{}, internalError("failed to decode decrypted credential store", err)
	}
	if opened.Secrets == nil {
		opened.Secrets = map[string]string{}
	}
	return opened, nil
}

func (s *Store) writeLocked(current contents) error {
	plaintext, err := json.Marshal(current)
	if err != nil {
		return internalError("failed to encode credentials", err)
	}

	nonce, err := randomBytes(nonceLengthBytes)
	if err != nil {
		return internalError("failed to generate nonce", err)
	}
	var salt []byte
	if len(s.passphrase) > 0 {
		if salt, err = randomBytes(saltLengthBytes); err != nil {
			return internalError("failed to generate salt", err)
		}
	}

	aead, err := s.cipher(salt)
	if err != nil {
		return err
	}

	sealed := envelope{
		Version:    envelopeVersion,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plaintext, nil)),
	}
	if len(salt) > 0 {
		sealed.Salt = base64.StdEncoding.EncodeToString(salt)
	}

	encoded, err := json.Marshal(sealed)
	if err != nil {
		return internalError("failed to encode credential store", err)
	}
	return writeAtomic(s.path, encoded)
}

func (s *Store) cipher(salt []byte) (cipher.AEAD, error) {
	key := s.key
	if len(key) == 0 {
		if len(salt) == 0 {
			return nil, validationError("credential store salt is missing", nil)
		}
		key = argon2.IDKey(s.passphrase, salt, s.kdf.time, s.kdf.memory, s.kdf.threads, keyLengthBytes)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, internalError("failed to initialize cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, internalError("failed to initialize cipher mode", err)
	}
	return aead, nil
}

func resolveKDF(kdf *config.KDF) (kdfSettings, error) {
	settings := kdfSettings{time: defaultKDFTime, memory: defaultKDFMemory, threads: defaultKDFThreads}
	if kdf == nil {
		return settings, nil
	}
	if kdf.Time > 0 {
		settings.time = uint32(kdf.Time)
	}
	if kdf.Memory > 0 {
		settings.memory = uint32(kdf.Memory)
	}
	if kdf.Threads > 255 {
		return kdfSettings{}, validationError("credentials.kdf.threads must be at most 255", nil)
	}
	if kdf.Threads > 0 {
		settings.threads = uint8(kdf.Threads)
	}
	return settings, nil
}

// parseKey accepts 32 bytes as hex, padded or raw base64, or raw text.
func parseKey(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if decoded, err := hex.DecodeString(trimmed); err == nil && len(decoded) == keyLengthBytes {
		return decoded, nil
	}
	for _, encoding := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
		if decoded, err := encoding.DecodeString(trimmed); err == nil && len(decoded) == keyLengthBytes {
			return decoded, nil
		}
	}
	if len(trimmed) == keyLengthBytes {
		return []byte(trimmed), nil
	}
	return nil, validationError("credentials.key must be 32 bytes as raw text, base64, or hex", nil)
}

// normalizeName trims slashes; names are slash-separated like zpa/client-secret.
func normalizeName(name string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(name), "/")
	if trimmed == "" {
		return "", validationError("credential name must not be empty", nil)
	}
	for _, part := range strings.Split(trimmed, "/") {
		if part == "" || part == "." || part == ".." {
			return "", validationError("credential name "+name+" contains an invalid segment", nil)
		}
	}
	return trimmed, nil
}

func randomBytes(length int) ([]byte, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return internalError("failed to create credential store directory", err)
	}

	temp, err := os.CreateTemp(dir, ".zpasync-credentials-*")
	if err != nil {
		return internalError("failed to create temporary credential file", err)
	}
	tempPath := temp.Name()
	cleanup := func(message string, cause error) error {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return internalError(message, cause)
	}

	if _, err := temp.Write(data); err != nil {
		return cleanup("failed to write temporary credential file", err)
	}
	if err := temp.Chmod(0o600); err != nil {
		return cleanup("failed to set credential file permissions", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to close temporary credential file", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to replace credential store file", err)
	}
	return nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
