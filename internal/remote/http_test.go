package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newguy103/passvault-client/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, "test-token", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewHTTPClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPClient("vault.example.com", "tok", testLogger())
	assert.Error(t, err)

	_, err = NewHTTPClient("https://vault.example.com", "tok", testLogger())
	assert.NoError(t, err)
}

func TestTokenLogin_SendsPasswordGrantForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostFormValue("grant_type"))
		assert.Equal(t, "alice", r.PostFormValue("username"))
		assert.Equal(t, "hunter2", r.PostFormValue("password"))

		writeJSON(t, w, TokenResponse{AccessToken: "issued-token", TokenType: "bearer"})
	}))
	defer srv.Close()

	token, err := TokenLogin(context.Background(), srv.URL, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
}

func TestTokenLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := TokenLogin(context.Background(), srv.URL, "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestWhoami_SendsBearerToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/auth/test-auth", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		writeJSON(t, w, UserInfo{Username: "alice"})
	}))

	info, err := c.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)
}

func TestGroupEndpoints_UsePerGroupPaths(t *testing.T) {
	groupID := uuid.New()
	parentID := uuid.New()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/groups/{$}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			GroupName string    `json:"group_name"`
			ParentID  uuid.UUID `json:"parent_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Work", body.GroupName)
		assert.Equal(t, parentID, body.ParentID)

		writeJSON(t, w, GroupModify{GroupID: groupID, GroupName: body.GroupName, ParentID: &body.ParentID})
	})
	mux.HandleFunc("GET /api/groups/{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, GroupGet{GroupID: parentID, GroupName: "Root"})
	})
	mux.HandleFunc(fmt.Sprintf("GET /api/groups/%s/children", groupID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, GroupGet{GroupID: groupID, GroupName: "Work", ParentID: &parentID})
	})
	mux.HandleFunc(fmt.Sprintf("GET /api/groups/%s/info", groupID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, GroupModify{GroupID: groupID, GroupName: "Work", ParentID: &parentID})
	})
	mux.HandleFunc(fmt.Sprintf("PUT /api/groups/%s/{$}", groupID), func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			GroupName string `json:"group_name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(t, w, GroupModify{GroupID: groupID, GroupName: body.GroupName, ParentID: &parentID})
	})
	mux.HandleFunc(fmt.Sprintf("POST /api/groups/%s/move", groupID), func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			NewParentID uuid.UUID `json:"new_parent_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(t, w, GroupModify{GroupID: groupID, GroupName: "Work", ParentID: &body.NewParentID})
	})
	mux.HandleFunc(fmt.Sprintf("DELETE /api/groups/%s", groupID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]bool{"success": true})
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	created, err := c.CreateGroup(ctx, "Work", parentID)
	require.NoError(t, err)
	assert.Equal(t, groupID, created.GroupID)

	root, err := c.RootGroup(ctx)
	require.NoError(t, err)
	assert.Equal(t, parentID, root.GroupID)
	assert.Nil(t, root.ParentID)

	children, err := c.GroupChildren(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, "Work", children.GroupName)

	info, err := c.GroupInfo(ctx, groupID)
	require.NoError(t, err)
	require.NotNil(t, info.ParentID)
	assert.Equal(t, parentID, *info.ParentID)

	renamed, err := c.RenameGroup(ctx, groupID, "Office")
	require.NoError(t, err)
	assert.Equal(t, "Office", renamed.GroupName)

	newParent := uuid.New()
	moved, err := c.MoveGroup(ctx, groupID, newParent)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, newParent, *moved.ParentID)

	require.NoError(t, c.DeleteGroup(ctx, groupID))
}

func TestEntryEndpoints(t *testing.T) {
	groupID := uuid.New()
	entryID := uuid.New()
	created := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc(fmt.Sprintf("POST /api/groups/%s/entries/{$}", groupID), func(w http.ResponseWriter, r *http.Request) {
		var body EntryPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Bank", body.Title)
		require.NotNil(t, body.URL)
		assert.Equal(t, "https://bank.example.com", *body.URL)

		writeJSON(t, w, EntryGet{
			EntryID: entryID, GroupID: groupID,
			Title: body.Title, Username: body.Username, Password: body.Password,
			URL: body.URL, Notes: body.Notes, CreatedAt: created,
		})
	})
	mux.HandleFunc(fmt.Sprintf("GET /api/groups/%s/entries/{$}", groupID), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("amount"))
		assert.Equal(t, "50", r.URL.Query().Get("offset"))

		writeJSON(t, w, []EntryGet{{EntryID: entryID, GroupID: groupID, Title: "Bank", CreatedAt: created}})
	})
	mux.HandleFunc(fmt.Sprintf("PUT /api/groups/%s/entries/%s", groupID, entryID), func(w http.ResponseWriter, r *http.Request) {
		var body EntryPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(t, w, EntryGet{EntryID: entryID, GroupID: groupID, Title: body.Title, CreatedAt: created})
	})
	mux.HandleFunc(fmt.Sprintf("DELETE /api/groups/%s/entries/%s", groupID, entryID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]bool{"success": true})
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	urlVal := "https://bank.example.com"
	e, err := c.CreateEntry(ctx, groupID, EntryPayload{Title: "Bank", Username: "alice", Password: "p", URL: &urlVal})
	require.NoError(t, err)
	assert.Equal(t, entryID, e.EntryID)
	assert.True(t, created.Equal(e.CreatedAt))

	list, err := c.ListEntries(ctx, groupID, 25, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entryID, list[0].EntryID)

	updated, err := c.UpdateEntry(ctx, groupID, entryID, EntryPayload{Title: "Bank v2", Username: "alice", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "Bank v2", updated.Title)

	require.NoError(t, c.DeleteEntry(ctx, groupID, entryID))
}

func TestDelete_IgnoresResponseBody(t *testing.T) {
	groupID := uuid.New()
	entryID := uuid.New()

	mux := http.NewServeMux()
	mux.HandleFunc(fmt.Sprintf("DELETE /api/groups/%s", groupID), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc(fmt.Sprintf("DELETE /api/groups/%s/entries/%s", groupID, entryID), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("gone"))
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	// Only the status matters; empty and non-JSON bodies are both fine.
	require.NoError(t, c.DeleteGroup(ctx, groupID))
	require.NoError(t, c.DeleteEntry(ctx, groupID, entryID))
}

func TestCheckStatus_Unauthorized(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.Whoami(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCheckStatus_ValidationDetail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"detail": []map[string]any{
				{"loc": []any{"body", "group_name"}, "msg": "field required", "type": "missing"},
			},
		})
	}))

	_, err := c.CreateGroup(context.Background(), "", uuid.New())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Detail, 1)
	assert.Equal(t, "field required", ve.Detail[0].Msg)
	assert.Contains(t, ve.Error(), "group_name")
}

func TestCheckStatus_UnexpectedStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))

	_, err := c.RootGroup(context.Background())
	var ue *UnexpectedStatusError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.Status)
	assert.Equal(t, "/api/groups/", ue.Path)
}

func TestDo_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c, err := NewHTTPClient(srv.URL, "tok", testLogger())
	require.NoError(t, err)

	_, err = c.Whoami(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = TokenLogin(context.Background(), srv.URL, "alice", "p")
	assert.ErrorIs(t, err, ErrUnavailable)
}
