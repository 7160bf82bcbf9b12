package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wyeh/sketchpipe/pkg/extract"
	"github.com/wyeh/sketchpipe/pkg/model"
	"github.com/wyeh/sketchpipe/pkg/scene"
	"github.com/wyeh/sketchpipe/pkg/scene/bind"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output      string  // output file path (stdout if empty)
	title       string  // diagram title override
	diagramType string  // diagram type override (skip inference)
	tolerance   float64 // endpoint snap distance in scene units
}

// parseCommand creates the parse command, which extracts a diagram from a
// raw scene export without rendering it.
func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{tolerance: bind.DefaultProximityTolerance}

	cmd := &cobra.Command{
		Use:   "parse <scene.json>",
		Short: "Extract a diagram from a whiteboard scene export",
		Long: `Parse reads a raw whiteboard scene export and writes the extracted
diagram as JSON. Use "-" to read the scene from stdin.

Examples:
  sketchpipe parse sketch.json                 # Diagram JSON to stdout
  sketchpipe parse sketch.json -o diagram.json # Write to file
  sketchpipe parse - < sketch.json             # Read scene from stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.Flags().StringVar(&opts.diagramType, "type", "", "diagram type (flowchart, architecture, sequence, erd)")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", opts.tolerance, "endpoint snap distance in scene units")

	return cmd
}

func (c *CLI) runParse(cmd *cobra.Command, input string, opts *parseOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	tolerance := opts.tolerance
	if !cmd.Flags().Changed("tolerance") && cfg.Bind.ProximityTolerance > 0 {
		tolerance = cfg.Bind.ProximityTolerance
	}

	sc, err := readScene(input)
	if err != nil {
		return err
	}

	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)
	d, summary, err := extract.Extract(cmd.Context(), sc, extract.Options{
		Title:       opts.title,
		DiagramType: opts.diagramType,
		Bind:        bind.Options{ProximityTolerance: tolerance},
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Extracted %d nodes, %d edges, %d groups", summary.NodeCount, summary.EdgeCount, summary.GroupCount))

	reportSummary(summary)

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := model.WriteDiagram(d, out); err != nil {
		return err
	}
	if opts.output != "" {
		printArtifact(opts.output)
	}
	return nil
}

// readScene loads a scene from a file path, or from stdin when path is "-".
func readScene(path string) (scene.Scene, error) {
	if path == "-" {
		return scene.ReadScene(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return scene.Scene{}, err
	}
	defer f.Close()
	return scene.ReadScene(f)
}

// reportSummary surfaces degraded-input warnings from extraction.
func reportSummary(s extract.Summary) {
	for _, id := range s.DroppedConnectors {
		printWarning("Dropped connector %s: endpoint does not resolve to a node", id)
	}
	for _, u := range s.UnmappedShapes {
		printWarning("Shape %s: unknown kind %q, using rectangle", u.ID, u.Kind)
	}
	for _, id := range s.UnattachedText {
		printWarning("Text %s is not attached to any shape", id)
	}
	if s.DeletedElements > 0 {
		printDetail("Skipped %d deleted elements", s.DeletedElements)
	}
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
