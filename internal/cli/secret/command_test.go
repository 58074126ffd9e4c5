package secret

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crmarques/zpasync/core"
	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/internal/cli/common"
	clitestkit "github.com/crmarques/zpasync/internal/cli/testkit"
)

func newRoot(t *testing.T) (*cobra.Command, string) {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("credentials:\n  path: %s\n  passphrase: p\n  kdf:\n    memory: 1024\n    threads: 1\n", filepath.Join(dir, "store.json"))
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	deps := common.CommandDependencies{
		OpenCredentials: func(opts core.BootstrapConfig) (core.CredentialStore, error) {
			opts.Lookup = func(string) (string, bool) { return "", false }
			return core.OpenCredentialStore(opts)
		},
	}
	globalFlags := &common.GlobalFlags{}
	root := &cobra.Command{Use: "zpasync", SilenceUsage: true, SilenceErrors: true}
	common.BindGlobalFlags(root, globalFlags)
	root.AddCommand(NewCommand(deps, globalFlags))
	return root, configPath
}

func TestSecretCommand(t *testing.T) {
	t.Parallel()

	root, configPath := newRoot(t)
	run := func(stdin string, args ...string) (clitestkit.Result, error) {
		return clitestkit.Run(root, stdin, append(args, "--config", configPath)...)
	}

	if _, err := run("s3cret\n", "secret", "set", "zpa/client-secret"); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	if _, err := run("other", "secret", "set", "zpa/old"); err != nil {
		t.Fatalf("set returned error: %v", err)
	}

	result, err := run("", "secret", "get", "zpa/client-secret")
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if result.Stdout != "s3cret\n" {
		t.Fatalf("unexpected get output %q", result.Stdout)
	}

	if _, err := run("", "secret", "delete", "zpa/old"); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	result, err = run("", "secret", "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "zpa/client-secret" {
		t.Fatalf("unexpected list output %q", result.Stdout)
	}

	_, err = run("", "secret", "set", "zpa/empty")
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error for empty stdin, got %v", err)
	}
}
