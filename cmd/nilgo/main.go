package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/shoei03/nilgo/pkg/config"
	"github.com/shoei03/nilgo/pkg/detector"
	"github.com/shoei03/nilgo/pkg/preprocess"
	"github.com/shoei03/nilgo/pkg/progress"
	"github.com/shoei03/nilgo/pkg/report"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// Exit codes.
const (
	exitOK          = 0
	exitConfigError = 1
	exitSourceError = 2
	exitIOError     = 3
	exitInterrupted = 130
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(classify(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "nilgo",
		Usage:   "Large-variance code clone detector",
		Version: version,
		Description: `Nilgo detects function-level code clones across a source tree by
combining N-gram overlap filtering with Hunt-Szymanski LCS verification
over partitioned inverted indexes.

Supports: Java, C, C++, C#, Python, Kotlin`,
		Commands: []*cli.Command{
			detectCmd(),
			reportCmd(),
		},
		DefaultCommand: "detect",
	}
}

// classify maps an error to the documented exit code.
func classify(err error) int {
	var srcErr *preprocess.SourceError
	var blockErr *preprocess.WriteError
	var pairErr *detector.WriteError
	switch {
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.As(err, &srcErr):
		return exitSourceError
	case errors.As(err, &blockErr), errors.As(err, &pairErr):
		return exitIOError
	default:
		// Bad flags, bad config values, unknown languages.
		return exitConfigError
	}
}

func detectCmd() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Detect clone pairs in a source tree",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"NILGO_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Source language: java, c, cpp, csharp, python, kotlin",
			},
			&cli.IntFlag{Name: "min-line", Usage: "Minimum function length in lines"},
			&cli.IntFlag{Name: "min-token", Usage: "Minimum token count after normalization"},
			&cli.IntFlag{Name: "n", Usage: "N-gram width"},
			&cli.IntFlag{Name: "partitions", Usage: "Number of inverted-index partitions"},
			&cli.IntFlag{Name: "filtration-threshold", Usage: "N-gram similarity cutoff percent"},
			&cli.IntFlag{Name: "verification-threshold", Usage: "Acceptance threshold percent"},
			&cli.IntFlag{Name: "threads", Usage: "Worker count (default: all cores)"},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Pair file path",
			},
			&cli.StringFlag{Name: "code-blocks", Usage: "Code-blocks file path"},
			&cli.BoolFlag{Name: "no-gitignore", Usage: "Ignore .gitignore during the source walk"},
			&cli.BoolFlag{Name: "verbose", Usage: "Print the run summary"},
			&cli.BoolFlag{Name: "no-progress", Usage: "Disable progress bars"},
		},
		Action: runDetect,
	}
}

func runDetect(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	root := "."
	if c.Args().Len() > 0 {
		root = c.Args().First()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pp, err := preprocess.New(cfg)
	if err != nil {
		return err
	}

	files, err := pp.Scan(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	tracker := newTracker(c, "Tokenizing files...", len(files))
	result, err := pp.Tokenize(files, tracker.Tick)
	tracker.FinishSuccess()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pairFile, err := os.Create(cfg.Output)
	if err != nil {
		return &detector.WriteError{Err: err}
	}

	tracker = newTracker(c, "Detecting clones...", queryCount(len(result.Sequences), cfg.PartitionCount))
	summary, runErr := detector.New(cfg).Run(ctx, result.Sequences, pairFile, tracker.Tick)
	tracker.FinishSuccess()
	if closeErr := pairFile.Close(); closeErr != nil && runErr == nil {
		runErr = &detector.WriteError{Err: closeErr}
	}
	if runErr != nil {
		return runErr
	}

	color.Green("Detected %d clone pairs (%d fast-path, %d LCS-verified) from %d functions",
		summary.Pairs, summary.FastPath, summary.Verified, len(result.Sequences))

	if cfg.Verbose && summary.Pairs > 0 {
		pairs, err := report.LoadPairs(cfg.Output)
		if err != nil {
			return &detector.WriteError{Err: err}
		}
		report.Summary(os.Stdout, pairs)
	}
	return nil
}

// queryCount is the total number of query iterations across all partitions,
// used to size the detection progress bar.
func queryCount(total, partitionCount int) int {
	if total == 0 {
		return 0
	}
	partitionSize := (total + partitionCount - 1) / partitionCount
	count := 0
	for p := 0; p < partitionCount; p++ {
		s := p * partitionSize
		if s >= total {
			break
		}
		count += total - s - 1
	}
	return count
}

func buildConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if c.IsSet("language") {
		cfg.Language = c.String("language")
	}
	if c.IsSet("min-line") {
		cfg.MinLine = c.Int("min-line")
	}
	if c.IsSet("min-token") {
		cfg.MinToken = c.Int("min-token")
	}
	if c.IsSet("n") {
		cfg.GramSize = c.Int("n")
	}
	if c.IsSet("partitions") {
		cfg.PartitionCount = c.Int("partitions")
	}
	if c.IsSet("filtration-threshold") {
		cfg.FiltrationThreshold = c.Int("filtration-threshold")
	}
	if c.IsSet("verification-threshold") {
		cfg.VerificationThreshold = c.Int("verification-threshold")
	}
	if c.IsSet("threads") {
		cfg.Threads = c.Int("threads")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("code-blocks") {
		cfg.CodeBlocks = c.String("code-blocks")
	}
	if c.Bool("no-gitignore") {
		cfg.Gitignore = false
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newTracker(c *cli.Context, label string, total int) *progress.Tracker {
	if c.Bool("no-progress") {
		return progress.Noop()
	}
	return progress.NewTracker(label, total)
}

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Expand a pair file into human-readable CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "pairs",
				Value: "clone_pairs.csv",
				Usage: "Pair file from a detection run",
			},
			&cli.StringFlag{
				Name:  "blocks",
				Value: "code_blocks.csv",
				Usage: "Code-blocks file from the same run",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write CSV to file (default: stdout)",
			},
			&cli.BoolFlag{Name: "summary", Usage: "Print the run summary table"},
		},
		Action: runReport,
	}
}

func runReport(c *cli.Context) error {
	pairs, err := report.LoadPairs(c.String("pairs"))
	if err != nil {
		return &detector.WriteError{Err: fmt.Errorf("reading pairs: %w", err)}
	}
	blocks, err := report.LoadBlocks(c.String("blocks"))
	if err != nil {
		return &detector.WriteError{Err: fmt.Errorf("reading code blocks: %w", err)}
	}

	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return &detector.WriteError{Err: err}
		}
		defer f.Close()
		out = f
	}
	if err := report.Expand(pairs, blocks, out); err != nil {
		return &detector.WriteError{Err: err}
	}

	if c.Bool("summary") {
		report.Summary(os.Stderr, pairs)
	}
	return nil
}
