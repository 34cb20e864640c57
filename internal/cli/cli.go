// Package cli implements the fixexplorer command-line interface.
//
// # Commands
//
// The main commands are:
//   - load: Ingest a local graph dump and report the snapshot
//   - stream: Ingest a graph export from a remote backend
//   - explore: Interactive terminal session with camera and search
//   - search: One-shot search over a loaded snapshot
//   - export: Write the positioned graph as DOT or SVG
//   - serve: Run the demo export server
//   - cache: Manage the position cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lselvakumaran/fixinventory/pkg/buildinfo"
	"github.com/lselvakumaran/fixinventory/pkg/cache"
	"github.com/lselvakumaran/fixinventory/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "fixexplorer"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Fixexplorer navigates cloud inventory graphs in the terminal",
		Long:         `Fixexplorer is a terminal client for Fix Inventory graph snapshots: it streams a node/edge export from a file or backend, lays the graph out in space, and opens an interactive session with fly-to-node camera motion and bounded search.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/fixexplorer/config.toml)")

	root.AddCommand(c.loadCommand())
	root.AddCommand(c.streamCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Caches & Paths
// =============================================================================

// newCache picks the position cache backend from config: redis when
// configured, the file cache otherwise, the null cache when disabled.
func (c *CLI) newCache(cmd *cobra.Command) cache.Cache {
	if addr := c.Config.Layout.Redis; addr != "" {
		rc, err := cache.NewRedisCache(cmd.Context(), addr, "", 0)
		if err == nil {
			return rc
		}
		c.Logger.Warn("redis cache unavailable, falling back to file cache", "err", err)
	}
	dir := c.Config.Layout.CacheDir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/fixexplorer/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
