// Command auditctl queries, exports and migrates the audit log.
//
// Usage:
//
//	auditctl export --from 2024-01-01 --to 2024-01-31 --out january.csv
//	auditctl query --action DELETE --page 2
//	auditctl migrate
//
// Configuration is read like the server's: --config or CONFIG_PATH, then ENV.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/recordkeeper-audit/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "auditctl: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
