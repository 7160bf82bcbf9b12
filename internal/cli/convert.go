package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wyeh/sketchpipe/pkg/config"
	"github.com/wyeh/sketchpipe/pkg/model"
	"github.com/wyeh/sketchpipe/pkg/pipeline"
	"github.com/wyeh/sketchpipe/pkg/render"
	"github.com/wyeh/sketchpipe/pkg/scene/bind"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	formats     []render.Format
	layout      string // layout mode: structural or positional
	output      string // output file (single input and format only)
	outputDir   string // directory for generated files
	title       string // diagram title override
	diagramType string // diagram type override
	tolerance   float64
	noCache     bool
	refresh     bool
}

// convertCommand creates the convert command, the end-to-end scene to
// artifact path.
func (c *CLI) convertCommand() *cobra.Command {
	var formatsStr string
	opts := convertOpts{tolerance: bind.DefaultProximityTolerance}

	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Convert scene exports or diagrams into diagram formats",
		Long: `Convert reads whiteboard scene exports (or already-extracted diagram
JSON) and renders each one to the requested output formats.

Examples:
  sketchpipe convert sketch.json                      # Interactive format picker
  sketchpipe convert sketch.json -f mermaid,dot       # Multiple formats
  sketchpipe convert sketches/*.json -f svg --output-dir out/
  sketchpipe convert diagram.json -f drawio --layout structural`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.formats, err = resolveFormats(formatsStr, cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("tolerance") && cfg.Bind.ProximityTolerance > 0 {
				opts.tolerance = cfg.Bind.ProximityTolerance
			}
			return c.runConvert(cmd, cfg, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): mermaid, dot, drawio, svg (comma-separated)")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "layout mode: structural or positional (default per format)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single input and format only)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "directory for generated files")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.Flags().StringVar(&opts.diagramType, "type", "", "diagram type (flowchart, architecture, sequence, erd)")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", opts.tolerance, "endpoint snap distance in scene units")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// resolveFormats picks output formats from the flag, the config file, or
// the interactive picker when attached to a terminal.
func resolveFormats(flag string, cfg config.Config) ([]render.Format, error) {
	if flag != "" {
		var formats []render.Format
		for _, s := range strings.Split(flag, ",") {
			formats = append(formats, render.Format(strings.TrimSpace(s)))
		}
		return formats, nil
	}
	if stdoutIsTerminal() {
		f, ok, err := pickFormat()
		if err != nil {
			return nil, err
		}
		if ok {
			return []render.Format{f}, nil
		}
	}
	if len(cfg.Render.DefaultFormats) > 0 {
		formats := make([]render.Format, len(cfg.Render.DefaultFormats))
		for i, s := range cfg.Render.DefaultFormats {
			formats[i] = render.Format(s)
		}
		return formats, nil
	}
	return pipeline.DefaultFormats, nil
}

func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func (c *CLI) runConvert(cmd *cobra.Command, cfg config.Config, args []string, opts *convertOpts) error {
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	if opts.output != "" && (len(inputs) > 1 || len(opts.formats) > 1) {
		return fmt.Errorf("--output requires a single input file and a single format")
	}
	if opts.outputDir != "" {
		if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
			return err
		}
	}

	runner := c.newRunner(cmd, cfg, opts.noCache)

	spin := startSpinner("")
	defer spin.Stop()

	failed := 0
	for _, input := range inputs {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		spin.SetMessage("Converting " + input)
		if err := c.convertFile(cmd.Context(), runner, input, opts); err != nil {
			printError("%s: %v", input, err)
			failed++
		}
	}
	spin.Stop()
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(inputs))
	}
	return nil
}

// expandInputs resolves glob patterns in args to concrete file paths.
// Literal paths pass through so missing files still report an error.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			inputs = append(inputs, arg)
			continue
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

func (c *CLI) convertFile(ctx context.Context, runner *pipeline.Runner, input string, opts *convertOpts) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	pipeOpts := pipeline.Options{
		Formats:     opts.formats,
		Layout:      render.LayoutMode(opts.layout),
		Title:       opts.title,
		DiagramType: opts.diagramType,
		Bind:        bind.Options{ProximityTolerance: opts.tolerance},
		Refresh:     opts.refresh,
		Logger:      loggerFromContext(ctx),
	}

	result, err := runPipeline(ctx, runner, data, pipeOpts)
	if err != nil {
		return err
	}
	printSuccess("Converted %s", input)

	reportSummary(result.Summary)
	// Stats counts are filled on both pipeline paths; the Summary is
	// zero-valued when the input was already a diagram.
	printDiagramStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)

	for _, f := range opts.formats {
		path := outputPath(input, f, opts)
		if err := os.WriteFile(path, result.Artifacts[f], 0o644); err != nil {
			return err
		}
		printArtifact(path)
	}
	return nil
}

// runPipeline routes the input through extraction when it is a raw scene,
// or straight to rendering when it is already a diagram document.
func runPipeline(ctx context.Context, runner *pipeline.Runner, data []byte, opts pipeline.Options) (*pipeline.Result, error) {
	var peek struct {
		Elements json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(data, &peek); err == nil && len(peek.Elements) > 0 {
		return runner.ExtractAndConvert(ctx, data, opts)
	}
	d, err := model.UnmarshalDiagram(data)
	if err != nil {
		return nil, err
	}
	return runner.Convert(ctx, d, opts)
}

// outputPath derives the artifact path for one input/format pair.
func outputPath(input string, f render.Format, opts *convertOpts) string {
	if opts.output != "" {
		return opts.output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	path := base + render.Ext(f)
	if opts.outputDir != "" {
		path = filepath.Join(opts.outputDir, filepath.Base(path))
	}
	return path
}
