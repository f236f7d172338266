// Command sitereg turns a microwave-link site spreadsheet into a SQL
// registration script and a bulk-upload CSV.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/sitereg/internal/core"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists; variables already set in the environment win
	envFile := godotenv.Load() == nil

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cmd := newRootCmd(envFile)
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		slog.Error("sitereg failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n%s\n", err, core.FormatUserError(err))
		os.Exit(1)
	}
}
