package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/newguy103/passvault-client/internal/models"
)

// Tree shows a group and its direct children; without arguments it shows
// the root.
func (a *App) Tree(ctx context.Context, args []string) {
	work := a.store.GetChildrenOfRoot
	if len(args) > 0 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			fmt.Fprintf(a.out, "bad group id %q: %v\n", args[0], err)
			return
		}
		work = func(ctx context.Context) (*models.GroupWithChildren, error) {
			return a.store.GetChildrenOfGroup(ctx, id)
		}
	}

	run(a, ctx, func() (*models.GroupWithChildren, error) { return work(ctx) },
		func(g *models.GroupWithChildren) {
			marker := ""
			if g.IsRoot {
				marker = " (root)"
			}
			fmt.Fprintf(a.out, "%s [%s]%s\n", g.GroupName, g.GroupID, marker)
			for _, c := range g.Children {
				fmt.Fprintf(a.out, "  %s [%s]\n", c.GroupName, c.GroupID)
			}
			if len(g.Children) == 0 {
				fmt.Fprintln(a.out, "  (no child groups)")
			}
		})
}

// MkGroup creates a child group: mkgrp <parent-id> <name>.
func (a *App) MkGroup(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "usage: mkgrp <parent-id> <name>")
		return
	}
	parentID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "bad group id %q: %v\n", args[0], err)
		return
	}
	name := args[1]

	run(a, ctx, func() (*models.GroupWithChildren, error) {
		return a.store.CreateGroup(ctx, name, parentID)
	}, func(g *models.GroupWithChildren) {
		fmt.Fprintf(a.out, "created group %s [%s]\n", g.GroupName, g.GroupID)
	})
}

// Rename changes a group name: rename <group-id> <name>.
func (a *App) Rename(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "usage: rename <group-id> <name>")
		return
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "bad group id %q: %v\n", args[0], err)
		return
	}
	name := args[1]

	run(a, ctx, func() (*models.Group, error) {
		return a.store.RenameGroup(ctx, id, name)
	}, func(g *models.Group) {
		fmt.Fprintf(a.out, "renamed group %s to %q\n", g.GroupID, g.GroupName)
	})
}

// Move re-parents a group: move <group-id> <new-parent-id>.
func (a *App) Move(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "usage: move <group-id> <new-parent-id>")
		return
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "bad group id %q: %v\n", args[0], err)
		return
	}
	parentID, err := uuid.Parse(args[1])
	if err != nil {
		fmt.Fprintf(a.out, "bad group id %q: %v\n", args[1], err)
		return
	}

	run(a, ctx, func() (*models.Group, error) {
		return a.store.MoveGroup(ctx, id, parentID)
	}, func(g *models.Group) {
		fmt.Fprintf(a.out, "moved group %s under %s\n", g.GroupID, parentID)
	})
}

// RmGroup deletes a group and its whole subtree: rmgrp <group-id>.
func (a *App) RmGroup(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "usage: rmgrp <group-id>")
		return
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "bad group id %q: %v\n", args[0], err)
		return
	}

	run(a, ctx, func() (struct{}, error) {
		return struct{}{}, a.store.DeleteGroup(ctx, id)
	}, func(struct{}) {
		fmt.Fprintf(a.out, "deleted group %s\n", id)
	})
}
