// Package cli implements the memstore CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentutil/memstore/internal/store"
)

var (
	rootDir   string
	storeName string
	verbose   bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "memstore",
	Short: "Persistent searchable memory for AI agents",
	Long:  "A full-text memory store with importance, tags, and usage statistics. One index directory per collection, single binary.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "Store root directory (default: $MEMSTORE_ROOT or ~/.memstore)")
	RootCmd.PersistentFlags().StringVarP(&storeName, "store", "s", "default", "Collection name")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func getRootDir() string {
	if rootDir != "" {
		return rootDir
	}
	if env := os.Getenv("MEMSTORE_ROOT"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".memstore")
}

func openService() (*store.MemoryService, error) {
	return store.NewService(getRootDir(), store.WithLogger(slog.Default()))
}

func openStore() (*store.MemoryService, *store.MemoryStore, error) {
	svc, err := openService()
	if err != nil {
		return nil, nil, err
	}
	st, err := svc.GetStore(storeName)
	if err != nil {
		svc.Close()
		return nil, nil, err
	}
	return svc, st, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
