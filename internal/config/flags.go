package config

import (
	"flag"
	"os"

	"github.com/newguy103/passvault-client/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path of the local database file
//	-l string   log level (debug, info, warning, error)
//	-w int      max concurrent dispatched workers
//
// The function filters os.Args to only include the flags it knows about, so
// flags owned by other stages (such as -c) pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warning, error)")
	fs.IntVar(&cfg.MaxWorkers, "w", cfg.MaxWorkers, "max concurrent workers")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
