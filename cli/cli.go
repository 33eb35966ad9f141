// Package cli wires the pandora command line: parse a log file, generate
// synthetic logs, or benchmark the newline scanner.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"time"

	cli "github.com/urfave/cli/v2"

	"github.com/Lunyn-HFT/pandora/config"
	"github.com/Lunyn-HFT/pandora/format"
	"github.com/Lunyn-HFT/pandora/version"
)

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to TOML configuration file supplying defaults",
	}

	mmapFlag = &cli.BoolFlag{
		Name:  "mmap",
		Usage: "Use memory-map instead of streaming I/O (higher RSS)",
		Value: false,
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Input format: auto, plain, json, logfmt, or csv",
		Value: "auto",
	}
	structuredFlag = &cli.BoolFlag{
		Name:  "structured",
		Usage: "Use the general field-table parser even for plain-text input",
		Value: false,
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Emit the run report as JSON instead of text panels",
		Value: false,
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	summaryFlag = &cli.BoolFlag{
		Name:  "summary",
		Usage: "Aggregate level/component histograms across all records",
		Value: false,
	}

	sizeMBFlag = &cli.Uint64Flag{
		Name:  "sizeMB",
		Usage: "Target output size in MiB",
		Value: 100,
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Output file path",
	}
)

// resolveWorkers picks the worker count: positional argument, then config
// file, then all CPUs.
func resolveWorkers(c *cli.Context, cfg *config.Config) (int, error) {
	if c.Args().Len() >= 2 {
		var n int
		if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &n); err != nil || n < 1 {
			return 0, fmt.Errorf("invalid worker count %q", c.Args().Get(1))
		}
		return n, nil
	}
	if cfg != nil && cfg.Parse != nil && cfg.Parse.Workers > 0 {
		return cfg.Parse.Workers, nil
	}
	return runtime.NumCPU(), nil
}

// resolveFormatHint maps the --format value (or config default) to an
// optional detection override.
func resolveFormatHint(c *cli.Context, cfg *config.Config) (*format.Format, error) {
	name := c.String("format")
	if !c.IsSet("format") && cfg != nil && cfg.Parse != nil && cfg.Parse.Format != "" {
		name = cfg.Parse.Format
	}
	if name == "auto" || name == "" {
		return nil, nil
	}
	f, err := format.Parse(name)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func loadConfigIfSet(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return nil, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func validateLogFileExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("logfile does not exist: %s", path)
	}
	return nil
}

func handleParseCommand(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("missing <file> argument")
	}
	filePath := c.Args().Get(0)
	if err := validateLogFileExists(filePath); err != nil {
		return err
	}

	cfg, err := loadConfigIfSet(c)
	if err != nil {
		return err
	}

	workers, err := resolveWorkers(c, cfg)
	if err != nil {
		return err
	}

	hint, err := resolveFormatHint(c, cfg)
	if err != nil {
		return err
	}

	useMmap := c.Bool("mmap")
	if !c.IsSet("mmap") && cfg != nil && cfg.Parse != nil {
		useMmap = cfg.Parse.Mmap
	}

	// The core reads chunk size and pinning from the environment; the config
	// file fills them in only where the variables are unset.
	if cfg != nil && cfg.Parse != nil {
		if cfg.Parse.ChunkMB > 0 && os.Getenv(config.EnvChunkMB) == "" {
			os.Setenv(config.EnvChunkMB, fmt.Sprint(cfg.Parse.ChunkMB))
		}
		if cfg.Parse.Pinning && os.Getenv(config.EnvEnablePinning) == "" {
			os.Setenv(config.EnvEnablePinning, "1")
		}
	}

	opts := parseOptions{
		filePath:   filePath,
		workers:    workers,
		useMmap:    useMmap,
		hint:       hint,
		structured: c.Bool("structured"),
		jsonOut:    c.Bool("json"),
		compact:    c.Bool("compact"),
		summary:    c.Bool("summary"),
	}
	return runParse(opts)
}

func handleGenerateCommand(c *cli.Context) error {
	cfg, err := loadConfigIfSet(c)
	if err != nil {
		return err
	}

	sizeMB := c.Uint64("sizeMB")
	if !c.IsSet("sizeMB") && cfg != nil && cfg.Generate != nil && cfg.Generate.SizeMB > 0 {
		sizeMB = uint64(cfg.Generate.SizeMB)
	}

	name := c.String("format")
	if !c.IsSet("format") && cfg != nil && cfg.Generate != nil && cfg.Generate.Format != "" {
		name = cfg.Generate.Format
	}
	if name == "auto" {
		name = "plain"
	}
	f, err := format.Parse(name)
	if err != nil {
		return err
	}

	outPath := c.String("out")
	if outPath == "" {
		return fmt.Errorf("missing --out path")
	}

	return runGenerate(outPath, sizeMB, f)
}

func handleScanCommand(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("missing <file> argument")
	}
	filePath := c.Args().Get(0)
	if err := validateLogFileExists(filePath); err != nil {
		return err
	}

	workers := runtime.NumCPU()
	if c.Args().Len() >= 2 {
		if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &workers); err != nil || workers < 1 {
			return fmt.Errorf("invalid worker count %q", c.Args().Get(1))
		}
	}
	return runScanNewlines(filePath, workers, c.Bool("mmap"))
}

var App = &cli.App{
	Name:     "pandora",
	Usage:    "Parse very large log files at memory-bandwidth throughput",
	Version:  version.Version,
	Compiled: parseDate(version.Date),
	// Bare invocation parses: pandora <file> [workers] [--mmap] [--format f].
	Flags: []cli.Flag{
		configFlag,
		mmapFlag,
		formatFlag,
		structuredFlag,
		jsonFlag,
		compactFlag,
		summaryFlag,
	},
	Action: handleParseCommand,
	Commands: []*cli.Command{
		{
			Name:      "parse",
			Usage:     "Scan and parse a log file into columnar batches",
			ArgsUsage: "<file> [workers]",
			Flags: []cli.Flag{
				configFlag,
				mmapFlag,
				formatFlag,
				structuredFlag,
				jsonFlag,
				compactFlag,
				summaryFlag,
			},
			Action: handleParseCommand,
		},
		{
			Name:  "generate",
			Usage: "Write a synthetic log file for benchmarking",
			Flags: []cli.Flag{
				configFlag,
				formatFlag,
				sizeMBFlag,
				outFlag,
			},
			Action: handleGenerateCommand,
		},
		{
			Name:      "scan-newlines",
			Usage:     "Count newlines in a file and report scanner throughput",
			ArgsUsage: "<file> [workers]",
			Flags: []cli.Flag{
				mmapFlag,
			},
			Action: handleScanCommand,
		},
	},
}
