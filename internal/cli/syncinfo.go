package cli

import (
	"context"
	"fmt"

	"github.com/newguy103/passvault-client/internal/models"
	"github.com/newguy103/passvault-client/internal/syncdb"
)

// SyncInfo shows the persisted sync configuration.
func (a *App) SyncInfo(ctx context.Context) {
	run(a, ctx, func() (*models.SyncInfo, error) {
		return a.store.GetSyncInfo(ctx)
	}, func(info *models.SyncInfo) {
		fmt.Fprintf(a.out, "username: %q\nserver:   %q\nenabled:  %v (active: %v)\n",
			info.Username, info.ServerURL, info.SyncEnabled, a.store.Enabled())
	})
}

// SyncToggle enables or disables sync: sync <on|off>. The flag write, the
// sync re-setup against the saved login and the rollback on failure all run
// inside the dispatched unit; the handler only swaps the active reconciler
// and reports the outcome.
func (a *App) SyncToggle(ctx context.Context, args []string) {
	if len(args) < 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Fprintln(a.out, "usage: sync <on|off>")
		return
	}
	enable := args[0] == "on"
	old := a.store

	run(a, ctx, func() (*syncdb.SyncedStore, error) {
		if err := a.local.ToggleSyncEnabled(ctx, enable); err != nil {
			return nil, err
		}

		next := a.buildStore(ctx)
		if enable && !next.Enabled() {
			if err := a.local.ToggleSyncEnabled(ctx, false); err != nil {
				a.log.Error(ctx, "rolling back sync flag", "error", err)
			}
		}

		// Only the remote handle must go; the local store stays open.
		if old.Enabled() {
			if err := old.CloseRemote(); err != nil {
				a.log.Error(ctx, "closing previous transport", "error", err)
			}
		}
		return next, nil
	}, func(next *syncdb.SyncedStore) {
		a.store = next
		if enable && !next.Enabled() {
			fmt.Fprintln(a.out, "sync could not be enabled, still local-only")
			return
		}
		fmt.Fprintf(a.out, "sync %s\n", args[0])
	})
}
