// Package models defines the domain types shared by the local store, the
// sync reconciler and the front-end projections.
package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/newguy103/passvault-client/internal/common"
)

// Group is a node in the strictly tree-shaped hierarchy. ParentID is nil
// only for the single root group.
type Group struct {
	GroupID   uuid.UUID
	GroupName string
	ParentID  *uuid.UUID
	IsRoot    bool
}

// GroupWithChildren is a group plus its direct children, the projection the
// tree view consumes.
type GroupWithChildren struct {
	Group
	Children []Group
}

// EntryFields is the caller-editable part of a password entry. URL is
// optional; when set it must parse as an absolute URL.
type EntryFields struct {
	Title    string
	Username string
	Password string
	URL      string
	Notes    string
}

// Validate checks the editable fields. Title must be non-empty and URL, when
// present, must be absolute.
func (f EntryFields) Validate() error {
	if f.Title == "" {
		return fmt.Errorf("%w: empty title", common.ErrValidation)
	}
	if f.URL != "" {
		u, err := url.Parse(f.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: malformed url %q", common.ErrValidation, f.URL)
		}
	}
	return nil
}

// Entry is a stored password entry. EntryID, GroupID and CreatedAt are
// immutable after creation.
type Entry struct {
	EntryID   uuid.UUID
	GroupID   uuid.UUID
	Title     string
	Username  string
	Password  string
	URL       string
	Notes     string
	CreatedAt time.Time
}

// Fields returns the editable projection of the entry.
func (e Entry) Fields() EntryFields {
	return EntryFields{
		Title:    e.Title,
		Username: e.Username,
		Password: e.Password,
		URL:      e.URL,
		Notes:    e.Notes,
	}
}

// SyncInfo is the singleton sync-configuration row of a local database.
// The access token never appears here; it lives in the credential store.
type SyncInfo struct {
	Username    string
	ServerURL   string
	SyncEnabled bool
}

// SavedSyncInfo is the resolved input to sync setup: the persisted sync row
// joined with the access token fetched from the credential store.
type SavedSyncInfo struct {
	Username    string
	ServerURL   string
	AccessToken string
}
