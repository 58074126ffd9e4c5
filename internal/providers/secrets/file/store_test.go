package file

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/crmarques/zpasync/config"
	"github.com/crmarques/zpasync/faults"
)

// lightKDF keeps argon2 cheap in tests.
var lightKDF = &config.KDF{Time: 1, Memory: 1024, Threads: 1}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		cfg  func(dir string) config.CredentialStore
	}{
		{
			name: "passphrase",
			cfg: func(dir string) config.CredentialStore {
				return config.CredentialStore{Path: filepath.Join(dir, "store.json"), Passphrase: "open sesame", KDF: lightKDF}
			},
		},
		{
			name: "hex_key",
			cfg: func(dir string) config.CredentialStore {
				return config.CredentialStore{Path: filepath.Join(dir, "store.json"), Key: strings.Repeat("ab", 32)}
			},
		},
		{
			name: "passphrase_file",
			cfg: func(dir string) config.CredentialStore {
				passphrasePath := filepath.Join(dir, "passphrase")
				if err := os.WriteFile(passphrasePath, []byte("from file\n"), 0o600); err != nil {
					t.Fatalf("failed to write passphrase file: %v", err)
				}
				return config.CredentialStore{Path: filepath.Join(dir, "nested", "store.json"), PassphraseFile: passphrasePath, KDF: lightKDF}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			cfg := tc.cfg(t.TempDir())
			store, err := NewStore(cfg)
			if err != nil {
				t.Fatalf("NewStore returned error: %v", err)
			}

			if err := store.Put(ctx, "/zpa/client-secret/", "s3cret"); err != nil {
				t.Fatalf("Put returned error: %v", err)
			}
			if err := store.Put(ctx, "zpa/backup", "other"); err != nil {
				t.Fatalf("Put returned error: %v", err)
			}

			reopened, err := NewStore(cfg)
			if err != nil {
				t.Fatalf("NewStore returned error: %v", err)
			}
			value, err := reopened.Get(ctx, "zpa/client-secret")
			if err != nil || value != "s3cret" {
				t.Fatalf("Get = %q, %v", value, err)
			}
			names, err := reopened.Names(ctx)
			if err != nil || !reflect.DeepEqual(names, []string{"zpa/backup", "zpa/client-secret"}) {
				t.Fatalf("Names = %v, %v", names, err)
			}

			if err := reopened.Delete(ctx, "zpa/backup"); err != nil {
				t.Fatalf("Delete returned error: %v", err)
			}
			if _, err := reopened.Get(ctx, "zpa/backup"); !faults.IsCategory(err, faults.NotFoundError) {
				t.Fatalf("expected not found after delete, got %v", err)
			}

			raw, err := os.ReadFile(cfg.Path)
			if err != nil {
				t.Fatalf("failed to read store: %v", err)
			}
			if strings.Contains(string(raw), "s3cret") {
				t.Fatal("store file contains plaintext secret")
			}
		})
	}
}

func TestStoreErrors(t *testing.T) {
	t.Parallel()

	t.Run("wrong_passphrase_is_auth_error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "store.json")
		store, err := NewStore(config.CredentialStore{Path: path, Passphrase: "right", KDF: lightKDF})
		if err != nil {
			t.Fatalf("NewStore returned error: %v", err)
		}
		if err := store.Put(context.Background(), "zpa/client-secret", "value"); err != nil {
			t.Fatalf("Put returned error: %v", err)
		}

		wrong, err := NewStore(config.CredentialStore{Path: path, Passphrase: "wrong", KDF: lightKDF})
		if err != nil {
			t.Fatalf("NewStore returned error: %v", err)
		}
		if _, err := wrong.Get(context.Background(), "zpa/client-secret"); !faults.IsCategory(err, faults.AuthError) {
			t.Fatalf("expected auth error, got %v", err)
		}
	})

	t.Run("missing_file_reads_empty", func(t *testing.T) {
		t.Parallel()

		store, err := NewStore(config.CredentialStore{Path: filepath.Join(t.TempDir(), "none.json"), Passphrase: "p", KDF: lightKDF})
		if err != nil {
			t.Fatalf("NewStore returned error: %v", err)
		}
		names, err := store.Names(context.Background())
		if err != nil || len(names) != 0 {
			t.Fatalf("Names = %v, %v", names, err)
		}
	})

	t.Run("rejects_bad_key_and_names", func(t *testing.T) {
		t.Parallel()

		if _, err := NewStore(config.CredentialStore{Path: "store.json", Key: "short"}); !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error for short key, got %v", err)
		}
		if _, err := NewStore(config.CredentialStore{Path: "store.json"}); !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error without key material, got %v", err)
		}

		store, err := NewStore(config.CredentialStore{Path: filepath.Join(t.TempDir(), "s.json"), Passphrase: "p", KDF: lightKDF})
		if err != nil {
			t.Fatalf("NewStore returned error: %v", err)
		}
		for _, name := range []string{"", "/", "zpa/../x", "a//b"} {
			if err := store.Put(context.Background(), name, "v"); !faults.IsCategory(err, faults.ValidationError) {
				t.Fatalf("expected validation error for %q, got %v", name, err)
			}
		}
	})
}
