// Package cli implements the cygpm command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AnClark/cygpm-prototype/pkg/buildinfo"
	"github.com/AnClark/cygpm-prototype/pkg/catalog"
	"github.com/AnClark/cygpm-prototype/pkg/config"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
)

// appName is the binary name used in help text.
const appName = "cygpm"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	dbPath     string
	verbose    bool
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Config{}.WithDefaults(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cygpm loads a Cygwin setup.ini into a local catalog and answers dependency queries",
		Long: `cygpm parses a Cygwin package manifest (setup.ini), stores every package and
previous version in a local SQLite catalog, and resolves transitive
dependency closures against it.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default $"+config.EnvConfig+" or ~/.config/cygpm/config.toml)")
	flags.StringVar(&c.dbPath, "db", "", "catalog database path")

	root.AddCommand(c.loadCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and applies it under the global flags.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg.WithDefaults()
	for _, key := range cfg.Unknown {
		c.Logger.Warn("unknown config key", "key", key, "file", cfg.Source)
	}

	if c.dbPath != "" {
		c.Config.Database = c.dbPath
	}

	level, err := c.Config.Level()
	if err != nil {
		return err
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)

	if cfg.Source != "" {
		c.Logger.Debug("loaded config", "file", cfg.Source)
	}
	return nil
}

// =============================================================================
// Catalog
// =============================================================================

// openStore opens the configured catalog, creating its directory if needed.
func (c *CLI) openStore(ctx context.Context) (*catalog.SQLiteStore, error) {
	path := c.Config.Database
	if path != catalog.MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "create catalog directory")
		}
	}
	c.Logger.Debug("opening catalog", "path", path)
	return catalog.OpenSQLite(ctx, path)
}

// withStore runs fn against an open catalog and closes it afterwards.
func (c *CLI) withStore(ctx context.Context, fn func(*catalog.SQLiteStore) error) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
