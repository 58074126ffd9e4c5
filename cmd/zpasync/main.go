package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/crmarques/zpasync/core"
	"github.com/crmarques/zpasync/internal/cli"
	"github.com/crmarques/zpasync/internal/cli/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Execute(ctx, cli.Dependencies{
		NewSession:      core.NewSession,
		OpenCredentials: core.OpenCredentialStore,
		Version:         version.Version,
	}, os.Args[1:])
	stop()

	if err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
