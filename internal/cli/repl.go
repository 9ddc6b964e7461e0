package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Tree(ctx context.Context, args []string)
	MkGroup(ctx context.Context, args []string)
	Rename(ctx context.Context, args []string)
	Move(ctx context.Context, args []string)
	RmGroup(ctx context.Context, args []string)
	Entries(ctx context.Context, args []string)
	AddEntry(ctx context.Context, args []string)
	UpdateEntry(ctx context.Context, args []string)
	RmEntry(ctx context.Context, args []string)
	Login(ctx context.Context)
	SyncInfo(ctx context.Context)
	SyncToggle(ctx context.Context, args []string)
}

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, context cancellation or
// when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pv> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: tree [group-id], mkgrp <parent-id> <name>, rename <group-id> <name>,")
			printlnFn("  move <group-id> <new-parent-id>, rmgrp <group-id>, entries <group-id> [amount [offset]],")
			printlnFn("  add <group-id>, update <group-id> <entry-id>, rm <group-id> <entry-id>,")
			printlnFn("  login, syncinfo, sync <on|off>, exit")

		case "tree":
			a.Tree(ctx, args)

		case "mkgrp":
			a.MkGroup(ctx, args)

		case "rename":
			a.Rename(ctx, args)

		case "move":
			a.Move(ctx, args)

		case "rmgrp":
			a.RmGroup(ctx, args)

		case "entries":
			a.Entries(ctx, args)

		case "add":
			a.AddEntry(ctx, args)

		case "update":
			a.UpdateEntry(ctx, args)

		case "rm":
			a.RmEntry(ctx, args)

		case "login":
			a.Login(ctx)

		case "syncinfo":
			a.SyncInfo(ctx)

		case "sync":
			a.SyncToggle(ctx, args)

		case "exit", "quit":
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
