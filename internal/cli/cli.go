// Package cli implements the sketchpipe command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wyeh/sketchpipe/pkg/buildinfo"
	"github.com/wyeh/sketchpipe/pkg/cache"
	"github.com/wyeh/sketchpipe/pkg/config"
	"github.com/wyeh/sketchpipe/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sketchpipe"

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

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The pre-run hook applies the --verbose level and attaches the logger to
// the command context, where the subcommand runners retrieve it.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Sketchpipe converts whiteboard sketches into diagram formats",
		Long:         `Sketchpipe extracts a clean node-and-edge diagram from raw whiteboard scene exports and renders it as mermaid, Graphviz DOT, draw.io XML, or SVG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.DefaultFileName+")")

	// Register all subcommands
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig loads the config file named by --config, falling back to
// sketchpipe.toml in the working directory, then to built-in defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = config.DefaultFileName
	}
	return config.Load(path)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cmd *cobra.Command, cfg config.Config, noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(cmd, cfg, noCache), nil, loggerFromContext(cmd.Context()))
}

func (c *CLI) newCache(cmd *cobra.Command, cfg config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache()
	}
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(cmd.Context(), cfg.Cache.RedisAddr)
		if err == nil {
			return rc
		}
		c.Logger.Warnf("Redis unavailable, falling back to file cache: %v", err)
	}
	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		c.Logger.Warnf("File cache unavailable, caching disabled: %v", err)
		return cache.NewNullCache()
	}
	return fc
}
