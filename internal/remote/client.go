// Package remote speaks to the password-manager server: a token-authenticated
// HTTP+JSON API for auth, group CRUD and entry CRUD. The reconciler depends
// only on the Client interface; the HTTP implementation lives in http.go.
package remote

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserInfo is the response of the who-am-I endpoint.
type UserInfo struct {
	Username string `json:"username"`
}

// GroupChild is a direct child inside a GroupGet response.
type GroupChild struct {
	GroupID   uuid.UUID  `json:"group_id"`
	GroupName string     `json:"group_name"`
	ParentID  *uuid.UUID `json:"parent_id"`
}

// GroupGet is a group with its direct children.
type GroupGet struct {
	GroupID     uuid.UUID    `json:"group_id"`
	GroupName   string       `json:"group_name"`
	ParentID    *uuid.UUID   `json:"parent_id"`
	ChildGroups []GroupChild `json:"child_groups"`
}

// GroupModify is the response shape of group create/rename/move/info calls.
type GroupModify struct {
	GroupID   uuid.UUID  `json:"group_id"`
	GroupName string     `json:"group_name"`
	ParentID  *uuid.UUID `json:"parent_id"`
}

// EntryPayload is the request body for entry create/update.
type EntryPayload struct {
	Title    string  `json:"title"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	URL      *string `json:"url"`
	Notes    string  `json:"notes"`
}

// EntryGet is a full entry as returned by the server, including the
// server-assigned identifier and creation timestamp.
type EntryGet struct {
	EntryID   uuid.UUID `json:"entry_id"`
	GroupID   uuid.UUID `json:"group_id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	URL       *string   `json:"url"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse is the OAuth2 password-grant response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Client is the remote transport consumed by the sync reconciler. Every call
// is synchronous and returns a typed result or an error from errors.go.
type Client interface {
	// Whoami returns the identity the access token belongs to.
	Whoami(ctx context.Context) (*UserInfo, error)

	// CreateGroup creates a group under parentID and returns the
	// server-assigned identity.
	CreateGroup(ctx context.Context, name string, parentID uuid.UUID) (*GroupModify, error)
	// RootGroup returns the root group with its direct children.
	RootGroup(ctx context.Context) (*GroupGet, error)
	// GroupChildren returns the given group with its direct children.
	GroupChildren(ctx context.Context, id uuid.UUID) (*GroupGet, error)
	// GroupInfo returns the bare group row.
	GroupInfo(ctx context.Context, id uuid.UUID) (*GroupModify, error)
	// RenameGroup changes a group's display name.
	RenameGroup(ctx context.Context, id uuid.UUID, name string) (*GroupModify, error)
	// MoveGroup re-parents a group.
	MoveGroup(ctx context.Context, id, newParentID uuid.UUID) (*GroupModify, error)
	// DeleteGroup deletes a group and its subtree.
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	// CreateEntry creates an entry under groupID and returns the
	// server-assigned identity and timestamp.
	CreateEntry(ctx context.Context, groupID uuid.UUID, body EntryPayload) (*EntryGet, error)
	// ListEntries returns a page of entries under groupID.
	ListEntries(ctx context.Context, groupID uuid.UUID, amount, offset int) ([]EntryGet, error)
	// UpdateEntry replaces the editable fields of an entry.
	UpdateEntry(ctx context.Context, groupID, entryID uuid.UUID, body EntryPayload) (*EntryGet, error)
	// DeleteEntry deletes a single entry.
	DeleteEntry(ctx context.Context, groupID, entryID uuid.UUID) error

	// Close releases the transport. The handle is reused across calls and
	// closed once at shutdown or database switch.
	Close() error
}
