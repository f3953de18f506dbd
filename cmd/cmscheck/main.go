// cmscheck exercises a CMS HTTP API with sequenced checks, retires content
// it created, and keeps a local archive of run outcomes.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cmscheck",
	Short: "Run lifecycle checks against a CMS API",
	Long: `cmscheck walks a CMS's HTTP API surface by surface: authentication,
users, media, pages, and the global document. Every document it creates is
retired again before a suite finishes, so the target site stays clean even
when checks fail.

Configuration comes from the environment: CMS_BASE_URL plus either
CMS_API_KEY or CMS_USERNAME/CMS_PASSWORD.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(retireCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
