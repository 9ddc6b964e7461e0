package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/newguy103/passvault-client/internal/models"
)

// Entries lists a page of entries: entries <group-id> [amount [offset]].
func (a *App) Entries(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "usage: entries <group-id> [amount [offset]]")
		return
	}
	groupID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "bad group id %q: %v\n", args[0], err)
		return
	}

	amount, offset := 0, 0
	if len(args) > 1 {
		if amount, err = strconv.Atoi(args[1]); err != nil {
			fmt.Fprintf(a.out, "bad amount %q\n", args[1])
			return
		}
	}
	if len(args) > 2 {
		if offset, err = strconv.Atoi(args[2]); err != nil {
			fmt.Fprintf(a.out, "bad offset %q\n", args[2])
			return
		}
	}

	run(a, ctx, func() ([]models.Entry, error) {
		return a.store.GetEntriesByGroup(ctx, groupID, amount, offset)
	}, func(entries []models.Entry) {
		if len(entries) == 0 {
			fmt.Fprintln(a.out, "(no entries)")
			return
		}
		for _, e := range entries {
			fmt.Fprintf(a.out, "%s  %-20s %-16s %s\n", e.EntryID, e.Title, e.Username, e.URL)
		}
	})
}

// promptEntryFields collects the editable fields interactively.
func (a *App) promptEntryFields() (models.EntryFields, error) {
	var f models.EntryFields
	var err error

	if f.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		return f, err
	}
	if f.Username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
		return f, err
	}
	if f.Password, err = GetPassword(a.reader, "Password", a.out); err != nil {
		return f, err
	}
	if f.URL, err = GetSimpleText(a.reader, "URL (optional)", a.out); err != nil {
		return f, err
	}
	if f.Notes, err = GetSimpleText(a.reader, "Notes", a.out); err != nil {
		return f, err
	}
	return f, nil
}

// AddEntry creates an entry under a group: add <group-id>.
func (a *App) AddEntry(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "usage: add <group-id>")
		return
	}
	groupID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "bad group id %q: %v\n", args[0], err)
		return
	}

	fields, err := a.promptEntryFields()
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	run(a, ctx, func() (*models.Entry, error) {
		return a.store.CreateEntry(ctx, groupID, fields)
	}, func(e *models.Entry) {
		fmt.Fprintf(a.out, "created entry %q [%s] at %s\n", e.Title, e.EntryID, e.CreatedAt)
	})
}

// UpdateEntry replaces the editable fields: update <group-id> <entry-id>.
func (a *App) UpdateEntry(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "usage: update <group-id> <entry-id>")
		return
	}
	groupID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "bad group id %q: %v\n", args[0], err)
		return
	}
	entryID, err := uuid.Parse(args[1])
	if err != nil {
		fmt.Fprintf(a.out, "bad entry id %q: %v\n", args[1], err)
		return
	}

	fields, err := a.promptEntryFields()
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	run(a, ctx, func() (*models.Entry, error) {
		return a.store.UpdateEntry(ctx, groupID, entryID, fields)
	}, func(e *models.Entry) {
		fmt.Fprintf(a.out, "updated entry %q [%s]\n", e.Title, e.EntryID)
	})
}

// RmEntry deletes one entry: rm <group-id> <entry-id>.
func (a *App) RmEntry(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "usage: rm <group-id> <entry-id>")
		return
	}
	groupID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "bad group id %q: %v\n", args[0], err)
		return
	}
	entryID, err := uuid.Parse(args[1])
	if err != nil {
		fmt.Fprintf(a.out, "bad entry id %q: %v\n", args[1], err)
		return
	}

	run(a, ctx, func() (struct{}, error) {
		return struct{}{}, a.store.DeleteEntry(ctx, groupID, entryID)
	}, func(struct{}) {
		fmt.Fprintf(a.out, "deleted entry %s\n", entryID)
	})
}
