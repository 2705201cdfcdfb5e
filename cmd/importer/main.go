// Package main is the entry point of the Gradebook export importer.
//
// The importer validates Gradebook v0 exports, lowers them into ordered
// write queries and can store those queries in PostgreSQL:
//
//	importer lower export.json --gid 1234
//	importer apply export.json --gid 1234 --migrate
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gradebook/importer/internal/interface/cli"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	// Ctrl+C cancels an in-flight apply; the transaction is rolled back
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()

	os.Exit(code)
}
