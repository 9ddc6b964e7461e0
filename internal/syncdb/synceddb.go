// Package syncdb implements the sync reconciler. When sync is enabled every
// mutating operation runs against the remote server first and the
// authoritative result is mirrored into the local store; every read fetches
// both copies and fails loudly when they disagree. When sync is disabled all
// operations pass straight through to the local store.
package syncdb

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/newguy103/passvault-client/internal/common"
	"github.com/newguy103/passvault-client/internal/localdb"
	"github.com/newguy103/passvault-client/internal/logging"
	"github.com/newguy103/passvault-client/internal/models"
	"github.com/newguy103/passvault-client/internal/remote"
)

// SyncedStore coordinates the local store and the remote transport. It owns
// no persisted state itself; the local store owns every row and the sync
// configuration is always served locally.
type SyncedStore struct {
	local   *localdb.Store
	remote  remote.Client
	enabled bool
	log     logging.Logger
}

// NewLocalOnly returns a reconciler with sync disabled: every operation is a
// direct pass-through to the local store and no remote call is attempted.
func NewLocalOnly(local *localdb.Store, logger logging.Logger) *SyncedStore {
	return &SyncedStore{local: local, log: logger.With("component", "syncdb")}
}

// Setup builds an authenticated transport from the saved sync info and
// verifies it: the token must not be expired and the remote identity must
// match the locally recorded username. On success the returned store has
// sync enabled.
func Setup(ctx context.Context, local *localdb.Store, saved models.SavedSyncInfo, logger logging.Logger) (*SyncedStore, error) {
	client, err := remote.NewHTTPClient(saved.ServerURL, saved.AccessToken, logger)
	if err != nil {
		return nil, err
	}
	return SetupWithClient(ctx, local, saved, client, logger)
}

// SetupWithClient is Setup with an injected transport.
func SetupWithClient(ctx context.Context, local *localdb.Store, saved models.SavedSyncInfo, client remote.Client, logger logging.Logger) (*SyncedStore, error) {
	if err := checkTokenExpiry(saved.AccessToken); err != nil {
		return nil, err
	}

	info, err := client.Whoami(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify remote identity: %w", err)
	}
	if info.Username != saved.Username {
		return nil, fmt.Errorf("remote user %q does not match saved sync user %q: %w",
			info.Username, saved.Username, common.ErrAuthMismatch)
	}

	logger.Info(ctx, "sync setup complete", "username", saved.Username, "server_url", saved.ServerURL)
	return &SyncedStore{
		local:   local,
		remote:  client,
		enabled: true,
		log:     logger.With("component", "syncdb"),
	}, nil
}

// checkTokenExpiry rejects a token whose JWT exp claim is in the past. The
// token is treated as opaque otherwise: malformed or claim-less tokens pass
// and are left for the server to judge.
func checkTokenExpiry(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if exp.Before(time.Now()) {
		return fmt.Errorf("access token expired at %s: %w", exp.Time.Format(time.RFC3339), common.ErrTokenExpired)
	}
	return nil
}

// Enabled reports whether operations go through the remote server.
func (s *SyncedStore) Enabled() bool { return s.enabled }

// CloseRemote releases only the remote transport handle, keeping the local
// store open. Used when swapping reconcilers on a sync toggle.
func (s *SyncedStore) CloseRemote() error {
	if s.remote == nil {
		return nil
	}
	return s.remote.Close()
}

// Close closes the remote transport handle and the local store.
func (s *SyncedStore) Close() error {
	var err error
	if s.remote != nil {
		err = s.remote.Close()
	}
	if cerr := s.local.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// partialSync marks a failure that happened after the remote mutation took
// effect. The stores are left diverged until a consistency check surfaces it;
// there is deliberately no retry or rollback of the remote side.
func (s *SyncedStore) partialSync(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, "local mirror failed after remote success", "op", op, "error", err)
	return fmt.Errorf("%w: %s mirrored remotely but not locally: %v", common.ErrPartialSync, op, err)
}

// CreateGroup creates the group remotely first, then mirrors the
// remote-assigned identifier into the local store. The mirrored local
// projection is what callers receive.
func (s *SyncedStore) CreateGroup(ctx context.Context, name string, parentID uuid.UUID) (*models.GroupWithChildren, error) {
	if !s.enabled {
		return s.local.CreateGroup(ctx, name, parentID)
	}

	created, err := s.remote.CreateGroup(ctx, name, parentID)
	if err != nil {
		return nil, err
	}

	out, err := s.local.CreateGroupWithID(ctx, created.GroupID, created.GroupName, parentID)
	if err != nil {
		return nil, s.partialSync(ctx, "create group", err)
	}
	return out, nil
}

// GetChildrenOfRoot fetches the root projection from both sides, verifies
// they agree and returns the remote-derived copy.
func (s *SyncedStore) GetChildrenOfRoot(ctx context.Context) (*models.GroupWithChildren, error) {
	if !s.enabled {
		return s.local.GetChildrenOfRoot(ctx)
	}

	remoteRoot, err := s.remote.RootGroup(ctx)
	if err != nil {
		return nil, err
	}
	localRoot, err := s.local.GetChildrenOfRoot(ctx)
	if err != nil {
		return nil, err
	}

	converted := groupFromGet(remoteRoot)
	if fault := compareGroups(localRoot, converted); fault != nil {
		s.log.Error(ctx, "root group diverged", "group_id", fault.GroupID, "remote_children", fault.Expected,
			"local_children", fault.Actual, "detail", fault.Detail)
		return nil, fault
	}
	return converted, nil
}

// GetChildrenOfGroup is the consistency-checked read of one group and its
// direct children.
func (s *SyncedStore) GetChildrenOfGroup(ctx context.Context, id uuid.UUID) (*models.GroupWithChildren, error) {
	if !s.enabled {
		return s.local.GetChildrenOfGroup(ctx, id)
	}

	remoteGroup, err := s.remote.GroupChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	localGroup, err := s.local.GetChildrenOfGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	converted := groupFromGet(remoteGroup)
	if fault := compareGroups(localGroup, converted); fault != nil {
		s.log.Error(ctx, "group diverged", "group_id", fault.GroupID, "remote_children", fault.Expected,
			"local_children", fault.Actual, "detail", fault.Detail)
		return nil, fault
	}
	return converted, nil
}

// GetGroupInfo reads the bare group row, cross-checked against the remote.
func (s *SyncedStore) GetGroupInfo(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	if !s.enabled {
		return s.local.GetGroupInfo(ctx, id)
	}

	remoteInfo, err := s.remote.GroupInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	localInfo, err := s.local.GetGroupInfo(ctx, id)
	if err != nil {
		return nil, err
	}

	converted := groupFromModify(remoteInfo)
	if msg := compareGroupNode(*localInfo, converted); msg != "" {
		fault := &ConsistencyError{Resource: "group", GroupID: id, Expected: 1, Actual: 1, Detail: msg}
		s.log.Error(ctx, "group info diverged", "group_id", id, "detail", msg)
		return nil, fault
	}
	return &converted, nil
}

// RenameGroup renames remotely first and mirrors the new name locally.
func (s *SyncedStore) RenameGroup(ctx context.Context, id uuid.UUID, name string) (*models.Group, error) {
	if !s.enabled {
		return s.local.RenameGroup(ctx, id, name)
	}

	renamed, err := s.remote.RenameGroup(ctx, id, name)
	if err != nil {
		return nil, err
	}

	out, err := s.local.RenameGroup(ctx, id, renamed.GroupName)
	if err != nil {
		return nil, s.partialSync(ctx, "rename group", err)
	}
	return out, nil
}

// MoveGroup re-parents remotely first and mirrors the move locally. The
// local cycle guard still applies to the mirror.
func (s *SyncedStore) MoveGroup(ctx context.Context, id, newParentID uuid.UUID) (*models.Group, error) {
	if !s.enabled {
		return s.local.MoveGroup(ctx, id, newParentID)
	}

	if _, err := s.remote.MoveGroup(ctx, id, newParentID); err != nil {
		return nil, err
	}

	out, err := s.local.MoveGroup(ctx, id, newParentID)
	if err != nil {
		return nil, s.partialSync(ctx, "move group", err)
	}
	return out, nil
}

// DeleteGroup deletes remotely first, then locally (cascading to the whole
// subtree on both sides).
func (s *SyncedStore) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if !s.enabled {
		return s.local.DeleteGroup(ctx, id)
	}

	if err := s.remote.DeleteGroup(ctx, id); err != nil {
		return err
	}
	if err := s.local.DeleteGroup(ctx, id); err != nil {
		return s.partialSync(ctx, "delete group", err)
	}
	return nil
}

// CreateEntry creates the entry remotely first, then mirrors the
// remote-assigned identifier and creation timestamp into the local store so
// both copies share identity.
func (s *SyncedStore) CreateEntry(ctx context.Context, groupID uuid.UUID, fields models.EntryFields) (*models.Entry, error) {
	if !s.enabled {
		return s.local.CreateEntry(ctx, groupID, fields)
	}

	created, err := s.remote.CreateEntry(ctx, groupID, payloadFromFields(fields))
	if err != nil {
		return nil, err
	}

	out, err := s.local.CreateEntryWithID(ctx, created.EntryID, groupID, fields, created.CreatedAt)
	if err != nil {
		return nil, s.partialSync(ctx, "create entry", err)
	}
	return out, nil
}

// GetEntriesByGroup fetches the same page from both sides and verifies the
// sets agree before returning the remote-derived page.
func (s *SyncedStore) GetEntriesByGroup(ctx context.Context, groupID uuid.UUID, amount, offset int) ([]models.Entry, error) {
	if !s.enabled {
		return s.local.GetEntriesByGroup(ctx, groupID, amount, offset)
	}

	if amount <= 0 {
		amount = localdb.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	remoteEntries, err := s.remote.ListEntries(ctx, groupID, amount, offset)
	if err != nil {
		return nil, err
	}
	localEntries, err := s.local.GetEntriesByGroup(ctx, groupID, amount, offset)
	if err != nil {
		return nil, err
	}

	converted := entriesFromGet(remoteEntries)
	if fault := compareEntries(groupID, localEntries, converted); fault != nil {
		s.log.Error(ctx, "entries diverged", "group_id", groupID, "remote_count", fault.Expected,
			"local_count", fault.Actual, "detail", fault.Detail)
		return nil, fault
	}
	return converted, nil
}

// UpdateEntry updates remotely first, mirrors locally, then cross-checks the
// two results before handing back the local copy.
func (s *SyncedStore) UpdateEntry(ctx context.Context, groupID, entryID uuid.UUID, fields models.EntryFields) (*models.Entry, error) {
	if !s.enabled {
		return s.local.UpdateEntry(ctx, entryID, fields)
	}

	updated, err := s.remote.UpdateEntry(ctx, groupID, entryID, payloadFromFields(fields))
	if err != nil {
		return nil, err
	}

	out, err := s.local.UpdateEntry(ctx, entryID, fields)
	if err != nil {
		return nil, s.partialSync(ctx, "update entry", err)
	}

	if msg := compareEntry(*out, entryFromGet(updated)); msg != "" {
		fault := &ConsistencyError{Resource: "entries", GroupID: groupID, Expected: 1, Actual: 1, Detail: msg}
		s.log.Error(ctx, "updated entry diverged", "entry_id", entryID, "detail", msg)
		return nil, fault
	}
	return out, nil
}

// DeleteEntry deletes remotely first, then locally.
func (s *SyncedStore) DeleteEntry(ctx context.Context, groupID, entryID uuid.UUID) error {
	if !s.enabled {
		return s.local.DeleteEntryByID(ctx, entryID)
	}

	if err := s.remote.DeleteEntry(ctx, groupID, entryID); err != nil {
		return err
	}
	if err := s.local.DeleteEntryByID(ctx, entryID); err != nil {
		return s.partialSync(ctx, "delete entry", err)
	}
	return nil
}

// GetSyncInfo reads the sync configuration. Sync info is always served by
// the local store, never by the remote.
func (s *SyncedStore) GetSyncInfo(ctx context.Context) (*models.SyncInfo, error) {
	return s.local.GetSyncInfo(ctx)
}

// SetSyncInfo writes the sync configuration locally.
func (s *SyncedStore) SetSyncInfo(ctx context.Context, username, serverURL string, syncEnabled bool) error {
	return s.local.SetSyncInfo(ctx, username, serverURL, syncEnabled)
}

// ToggleSyncEnabled flips the persisted sync flag locally. It does not
// re-run setup; callers swap the reconciler after toggling.
func (s *SyncedStore) ToggleSyncEnabled(ctx context.Context, enabled bool) error {
	return s.local.ToggleSyncEnabled(ctx, enabled)
}
