package syncdb

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/newguy103/passvault-client/internal/common"
	"github.com/newguy103/passvault-client/internal/models"
)

// ConsistencyError reports a detected disagreement between the local and the
// remote copy of the same logical state. It is never auto-resolved in either
// direction; callers log it and investigate.
type ConsistencyError struct {
	// Resource names what diverged: "group" or "entries".
	Resource string
	// GroupID scopes the comparison (uuid.Nil for the root read).
	GroupID uuid.UUID
	// Expected is the remote-side count, Actual the local-side count.
	Expected int
	Actual   int
	// Detail describes the first mismatch found.
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s consistency fault for group %s (remote %d, local %d): %s",
		e.Resource, e.GroupID, e.Expected, e.Actual, e.Detail)
}

func (e *ConsistencyError) Unwrap() error { return common.ErrConsistency }

// compareGroupNode checks that the local group row agrees with the remote one
// on identity, name and parent.
func compareGroupNode(local, remote models.Group) string {
	if local.GroupID != remote.GroupID {
		return fmt.Sprintf("group id mismatch: local %s, remote %s", local.GroupID, remote.GroupID)
	}
	if local.GroupName != remote.GroupName {
		return fmt.Sprintf("group %s name mismatch: local %q, remote %q", local.GroupID, local.GroupName, remote.GroupName)
	}
	if !uuidPtrEqual(local.ParentID, remote.ParentID) {
		return fmt.Sprintf("group %s parent mismatch", local.GroupID)
	}
	return ""
}

// compareGroups structurally compares two group-with-children projections.
// Returns nil when they agree.
func compareGroups(local, remote *models.GroupWithChildren) *ConsistencyError {
	if msg := compareGroupNode(local.Group, remote.Group); msg != "" {
		return &ConsistencyError{
			Resource: "group",
			GroupID:  remote.GroupID,
			Expected: len(remote.Children),
			Actual:   len(local.Children),
			Detail:   msg,
		}
	}

	if len(local.Children) != len(remote.Children) {
		return &ConsistencyError{
			Resource: "group",
			GroupID:  remote.GroupID,
			Expected: len(remote.Children),
			Actual:   len(local.Children),
			Detail:   "child count mismatch",
		}
	}

	byID := make(map[uuid.UUID]models.Group, len(local.Children))
	for _, c := range local.Children {
		byID[c.GroupID] = c
	}
	for _, rc := range remote.Children {
		lc, ok := byID[rc.GroupID]
		if !ok {
			return &ConsistencyError{
				Resource: "group",
				GroupID:  remote.GroupID,
				Expected: len(remote.Children),
				Actual:   len(local.Children),
				Detail:   fmt.Sprintf("child %s exists remotely but not locally", rc.GroupID),
			}
		}
		if msg := compareGroupNode(lc, rc); msg != "" {
			return &ConsistencyError{
				Resource: "group",
				GroupID:  remote.GroupID,
				Expected: len(remote.Children),
				Actual:   len(local.Children),
				Detail:   msg,
			}
		}
	}
	return nil
}

// compareEntries structurally compares two entry pages for the same group.
func compareEntries(groupID uuid.UUID, local, remote []models.Entry) *ConsistencyError {
	fault := func(detail string) *ConsistencyError {
		return &ConsistencyError{
			Resource: "entries",
			GroupID:  groupID,
			Expected: len(remote),
			Actual:   len(local),
			Detail:   detail,
		}
	}

	if len(local) != len(remote) {
		return fault("entry count mismatch")
	}

	byID := make(map[uuid.UUID]models.Entry, len(local))
	for _, e := range local {
		byID[e.EntryID] = e
	}
	for _, re := range remote {
		le, ok := byID[re.EntryID]
		if !ok {
			return fault(fmt.Sprintf("entry %s exists remotely but not locally", re.EntryID))
		}
		if msg := compareEntry(le, re); msg != "" {
			return fault(msg)
		}
	}
	return nil
}

// compareEntry checks all persisted fields of a single entry.
func compareEntry(local, remote models.Entry) string {
	switch {
	case local.GroupID != remote.GroupID:
		return fmt.Sprintf("entry %s group mismatch", local.EntryID)
	case local.Title != remote.Title,
		local.Username != remote.Username,
		local.Password != remote.Password,
		local.URL != remote.URL,
		local.Notes != remote.Notes:
		return fmt.Sprintf("entry %s field values mismatch", local.EntryID)
	case !local.CreatedAt.Equal(remote.CreatedAt):
		return fmt.Sprintf("entry %s created_at mismatch", local.EntryID)
	}
	return ""
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
