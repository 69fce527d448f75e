// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mcdonaldj/debomb/internal/config"
	"github.com/mcdonaldj/debomb/internal/members"
	"github.com/mcdonaldj/debomb/internal/reconcile"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1 // Listing, conflict or move failure
	ExitUsage    = 2
	ExitNoAction = 3 // Partial explosion left alone
)

// ConfigService provides configuration loading for the CLI.
type ConfigService interface {
	// Load reads the config file at path, or the default location when
	// path is empty.
	Load(path string) (*config.Config, error)
}

// ListerService lists the normalized members of an archive.
type ListerService interface {
	List(ctx context.Context, archivePath string, absoluteNames bool) ([]string, error)
}

// ReconcileService classifies and consolidates exploded archives.
type ReconcileService interface {
	Inspect(targetDir string, names []string, policy reconcile.Policy) (reconcile.Verdict, error)
	Consolidate(opts reconcile.ConsolidateOptions) (reconcile.Result, error)
}

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// ProgressOut receives the move progress bar; nil disables it.
	ProgressOut io.Writer

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Injectable dependencies (nil means use defaults)
	ConfigSvc    ConfigService
	ListerSvc    ListerService
	ReconcileSvc ReconcileService

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// options holds the parsed flags of one invocation.
type options struct {
	directory     string
	force         bool
	absoluteNames bool
	dryRun        bool
	exact         bool
	verbose       bool
	configPath    string
	noProgress    bool

	// Set when the flag was given explicitly, so it overrides the config file.
	forceSet, absoluteNamesSet, exactSet, noProgressSet bool
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:         os.Stdout,
		Err:         os.Stderr,
		Version:     version,
		Args:        os.Args,
		ProgressOut: os.Stderr,
		Exit:        os.Exit,
		green:       color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:      color.New(color.FgYellow).SprintFunc(),
		cyan:        color.New(color.FgCyan).SprintFunc(),
		gray:        color.New(color.FgHiBlack).SprintFunc(),
		red:         color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, no progress
// bar, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	exitCode := 0
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit:    func(code int) { exitCode = code; _ = exitCode },
		green:   noColor,
		yellow:  noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// defaultListerService wraps a members.Lister backed by the real archive reader.
type defaultListerService struct {
	logger *log.Logger
}

func (d *defaultListerService) List(ctx context.Context, archivePath string, absoluteNames bool) ([]string, error) {
	l := members.NewDefaultLister(d.logger)
	l.AbsoluteNames = absoluteNames
	return l.List(ctx, archivePath)
}

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) listerSvc(logger *log.Logger) ListerService {
	if c.ListerSvc != nil {
		return c.ListerSvc
	}
	return &defaultListerService{logger: logger}
}

func (c *CLI) reconcileSvc(logger *log.Logger) ReconcileService {
	if c.ReconcileSvc != nil {
		return c.ReconcileSvc
	}
	return reconcile.NewDefaultService(logger)
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	cmd := c.newRootCmd()
	// Never nil: cobra falls back to os.Args for a nil slice.
	args := []string{}
	if len(c.Args) > 1 {
		args = c.Args[1:]
	}
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		fmt.Fprintln(c.Err, "Run 'debomb --help' for usage.")
		c.Exit(ExitUsage)
	}
}

func (c *CLI) newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "debomb ARCHIVE",
		Short: "Clean up after tar/zip bomb explosions",
		Long: `debomb checks whether the members of ARCHIVE are lying loose in a directory
(the archive was a "bomb" that extracted without a containing folder) and, if
so, moves them into a new directory named after the archive.

If only some of the archive's entries are found nothing is moved unless
--force is given. Entries are moved with a rename; when the directory spans
filesystems a move falls back to copy then delete, which is not atomic.

Defaults for the flags can be set in ~/.debomb/config.yaml.`,
		Version:       c.Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			flags := cmd.Flags()
			opts.forceSet = flags.Changed("force")
			opts.absoluteNamesSet = flags.Changed("absolute-names")
			opts.exactSet = flags.Changed("exact")
			opts.noProgressSet = flags.Changed("no-progress")
			c.runDebomb(cmd.Context(), args[0], opts)
		},
	}
	cmd.SetOut(c.Out)
	cmd.SetErr(c.Err)
	cmd.SetVersionTemplate("debomb v{{.Version}}\n")

	flags := cmd.Flags()
	flags.StringVarP(&opts.directory, "directory", "d", "", "directory to clean up (default: current directory)")
	flags.BoolVarP(&opts.force, "force", "f", false, "move the entries that were found even if some are missing")
	flags.BoolVarP(&opts.absoluteNames, "absolute-names", "P", false, "use archive paths verbatim instead of stripping leading / and ..")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "report what would be moved without moving anything")
	flags.BoolVar(&opts.exact, "exact", false, "require every member's full path to exist, not just its top-level entry (--exact=false forces root matching)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.configPath, "config", "", "config file (default: ~/.debomb/config.yaml)")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")

	return cmd
}

func (c *CLI) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(c.Err, log.Options{Prefix: "debomb"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func (c *CLI) runDebomb(ctx context.Context, archive string, opts options) {
	logger := c.newLogger(opts.verbose)

	cfg, err := c.configSvc().Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(ExitFailure)
		return
	}

	force := cfg.Force
	if opts.forceSet {
		force = opts.force
	}
	absoluteNames := cfg.AbsoluteNames
	if opts.absoluteNamesSet {
		absoluteNames = opts.absoluteNames
	}
	policy, err := reconcile.ParsePolicy(cfg.Match)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(ExitFailure)
		return
	}
	if opts.exactSet {
		policy = reconcile.MatchRoot
		if opts.exact {
			policy = reconcile.MatchExact
		}
	}
	progress := cfg.Progress
	if opts.noProgressSet {
		progress = !opts.noProgress
	}

	dir := opts.directory
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
			c.Exit(ExitFailure)
			return
		}
	}
	dir = config.ExpandPath(dir)
	archive = config.ExpandPath(archive)

	if absoluteNames {
		logger.Warn("absolute names enabled: archive paths are used verbatim")
	}

	names, err := c.listerSvc(logger).List(ctx, archive, absoluteNames)
	if err != nil {
		fmt.Fprintf(c.Err, "Error listing %s: %v\n", archive, err)
		c.Exit(ExitFailure)
		return
	}
	logger.Debug("archive listed", "archive", archive, "members", len(names), "dir", dir, "policy", policy)

	svc := c.reconcileSvc(logger)
	if opts.dryRun {
		c.dryRun(svc, archive, dir, names, policy, force, cfg.Extensions)
		return
	}

	var bar *progressbar.ProgressBar
	consolidate := reconcile.ConsolidateOptions{
		ArchivePath: archive,
		TargetDir:   dir,
		Members:     names,
		Force:       force,
		Policy:      policy,
		Suffixes:    cfg.Extensions,
	}
	if c.ProgressOut != nil && progress {
		consolidate.OnStart = func(total int) {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(c.ProgressOut),
				progressbar.OptionSetDescription("Moving"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer: "█", SaucerHead: "█", SaucerPadding: "░",
					BarStart: "[", BarEnd: "]",
				}),
			)
		}
		consolidate.OnMove = func(string) { _ = bar.Add(1) }
	}

	result, err := svc.Consolidate(consolidate)
	if bar != nil {
		_ = bar.Finish()
	}

	var ambiguous *reconcile.AmbiguousError
	switch {
	case errors.Is(err, reconcile.ErrNothingToDo):
		fmt.Fprintln(c.Out, "No bomb appears to have exploded here")
	case errors.As(err, &ambiguous):
		c.printPartial(dir, ambiguous.Verdict.Missing)
		c.Exit(ExitNoAction)
	case err != nil:
		if len(result.Moved) > 0 {
			fmt.Fprintf(c.Out, "%s Moved %d of %d entries into %s before stopping:\n",
				c.yellow("!"), len(result.Moved), len(result.Verdict.Present), result.Container)
			for _, root := range result.Moved {
				fmt.Fprintf(c.Out, "  %s\n", root)
			}
		}
		fmt.Fprintf(c.Err, "%s %v\n", c.red("x"), err)
		c.Exit(ExitFailure)
	default:
		c.printResult(result)
	}
}

// dryRun prints the verdict and the moves a real run would make.
func (c *CLI) dryRun(svc ReconcileService, archive, dir string, names []string, policy reconcile.Policy, force bool, suffixes []string) {
	v, err := svc.Inspect(dir, names, policy)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(ExitFailure)
		return
	}

	switch v.Kind {
	case reconcile.Clean:
		fmt.Fprintln(c.Out, "No bomb appears to have exploded here")
		return
	case reconcile.Partial:
		if !force {
			c.printPartial(dir, v.Missing)
			c.Exit(ExitNoAction)
			return
		}
	}

	container := filepath.Join(dir, reconcile.ContainerName(archive, suffixes))
	fmt.Fprintf(c.Out, "Would move %d entries into %s:\n", len(v.Present), c.cyan(container+string(filepath.Separator)))
	for _, root := range v.Present {
		fmt.Fprintf(c.Out, "  %s\n", root)
	}
	if v.Kind == reconcile.Partial {
		fmt.Fprintf(c.Out, "%s %d members not found would be skipped\n", c.gray("-"), len(v.Missing))
	}
}

func (c *CLI) printPartial(dir string, missing []string) {
	fmt.Fprintf(c.Out, "%s Archive only partially present in %s; these members were not found:\n", c.yellow("!"), dir)
	for _, m := range missing {
		fmt.Fprintf(c.Out, "  %s\n", m)
	}
	fmt.Fprintln(c.Out, "Rerun with --force to move the entries that were found.")
}

func (c *CLI) printResult(result reconcile.Result) {
	fmt.Fprintf(c.Out, "%s Moved %d entries into %s\n",
		c.green("*"), len(result.Moved), c.cyan(result.Container+string(filepath.Separator)))
	for _, root := range result.Skipped {
		fmt.Fprintf(c.Out, "  %s %s %s\n", c.gray("-"), c.gray(root), c.gray("(not found)"))
	}
	if len(result.CrossDevice) > 0 {
		fmt.Fprintf(c.Out, "%s %d entries were copied across filesystems instead of renamed\n",
			c.yellow("!"), len(result.CrossDevice))
	}
}
