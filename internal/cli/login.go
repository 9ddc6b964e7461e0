package cli

import (
	"context"
	"fmt"

	"github.com/newguy103/passvault-client/internal/config"
	"github.com/newguy103/passvault-client/internal/keyring"
	"github.com/newguy103/passvault-client/internal/remote"
)

// Login performs the password grant against a server, stores the bearer
// token in the credential store and records the login in config and the
// local sync row. The account password itself is never persisted anywhere.
// All of that happens inside the dispatched unit; the handler only prints.
func (a *App) Login(ctx context.Context) {
	serverURL, err := GetSimpleText(a.reader, "Server URL", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	password, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	run(a, ctx, func() (string, error) {
		token, err := remote.TokenLogin(ctx, serverURL, username, password)
		if err != nil {
			return "", err
		}

		if err := a.ring.Set(keyring.Service, keyring.Account(username, serverURL), token); err != nil {
			return "", fmt.Errorf("storing token: %w", err)
		}

		a.cfg.UpsertLogin(config.LoginInfo{Username: username, ServerURL: serverURL, IsDefault: len(a.cfg.Logins) == 0})
		if err := a.cfg.Save(); err != nil {
			return "", fmt.Errorf("saving config: %w", err)
		}

		if err := a.local.SetSyncInfo(ctx, username, serverURL, false); err != nil {
			return "", fmt.Errorf("saving sync info: %w", err)
		}
		return username, nil
	}, func(user string) {
		fmt.Fprintf(a.out, "logged in as %s; run 'sync on' to enable sync\n", user)
	})
}
