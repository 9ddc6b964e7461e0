// Package cli is a small interactive front-end over the client core. It
// stands where the GUI would: every store or reconciler call is routed
// through the dispatcher and its result handled back on the interactive
// loop, never on the worker goroutine.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/newguy103/passvault-client/internal/config"
	"github.com/newguy103/passvault-client/internal/dispatch"
	"github.com/newguy103/passvault-client/internal/keyring"
	"github.com/newguy103/passvault-client/internal/localdb"
	"github.com/newguy103/passvault-client/internal/logging"
	"github.com/newguy103/passvault-client/internal/models"
	"github.com/newguy103/passvault-client/internal/syncdb"
)

// App wires config, keyring, local store, reconciler and dispatcher behind
// the REPL commands.
type App struct {
	cfg    *config.Config
	log    logging.Logger
	local  *localdb.Store
	store  *syncdb.SyncedStore
	disp   *dispatch.Dispatcher
	ring   keyring.Keyring
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and, when the saved sync configuration is
// enabled and a token is available, sets up the sync reconciler. Any sync
// setup failure degrades to local-only operation rather than blocking start.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	local, err := localdb.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		log:    logger,
		local:  local,
		disp:   dispatch.New(int64(cfg.MaxWorkers), logger),
		ring:   keyring.NewFileKeyring(filepath.Join(cfg.ConfigDir, "keyring.json")),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	a.store = a.buildStore(ctx)
	return a, nil
}

// buildStore returns a sync-enabled reconciler when the persisted sync info
// says so and setup succeeds, otherwise a local-only pass-through.
func (a *App) buildStore(ctx context.Context) *syncdb.SyncedStore {
	info, err := a.local.GetSyncInfo(ctx)
	if err != nil {
		a.log.Error(ctx, "reading sync info failed, staying local-only", "error", err)
		return syncdb.NewLocalOnly(a.local, a.log)
	}
	if !info.SyncEnabled {
		return syncdb.NewLocalOnly(a.local, a.log)
	}

	token, err := a.ring.Get(keyring.Service, keyring.Account(info.Username, info.ServerURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			a.log.Warn(ctx, "sync enabled but no stored token, staying local-only", "username", info.Username)
		} else {
			a.log.Error(ctx, "credential store read failed, staying local-only", "error", err)
		}
		return syncdb.NewLocalOnly(a.local, a.log)
	}

	saved := models.SavedSyncInfo{
		Username:    info.Username,
		ServerURL:   info.ServerURL,
		AccessToken: token,
	}
	synced, err := syncdb.Setup(ctx, a.local, saved, a.log)
	if err != nil {
		a.log.Warn(ctx, "sync setup failed, staying local-only", "error", err)
		return syncdb.NewLocalOnly(a.local, a.log)
	}
	return synced
}

// Run starts the REPL and blocks until exit or context cancellation.
func (a *App) Run(ctx context.Context) {
	defer func() {
		a.disp.Wait()
		if err := a.store.Close(); err != nil {
			a.log.Error(ctx, "closing store", "error", err)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) status() string {
	if a.store.Enabled() {
		return "sync"
	}
	return "local"
}

// run dispatches work and drains the completion queue on this goroutine
// until the operation's handler has executed. This keeps the REPL loop (the
// interactive context) as the only place handlers run. Cancellation does not
// cut the drain short: the operation's single completion always executes
// here, so it cannot stay queued and fire inside a later command.
func run[T any](a *App, ctx context.Context, work func() (T, error), onSuccess func(T)) {
	done := dispatch.Do(a.disp, ctx, work, onSuccess, func(err error) {
		fmt.Fprintf(a.out, "error: %v\n", err)
	})

	for {
		select {
		case f := <-a.disp.Completions():
			f()
		case <-done:
			return
		}
	}
}
