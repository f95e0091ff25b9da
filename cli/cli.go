package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tdl/cli/cmd"
	"github.com/ardnew/tdl/pkg"
)

// CLI is the top-level command-line interface for tdl.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Parse    cmd.Parse    `cmd:"" help:"Dump the parsed structure of a template"`
	Render   cmd.Render   `cmd:"" help:"Resolve variables and render a template"`
	Validate cmd.Validate `cmd:"" help:"Check a template for errors and suggestions"`
	Optimize cmd.Optimize `cmd:"" help:"Rewrite a template into a cheaper equivalent"`
	Suggest  cmd.Suggest  `cmd:"" help:"Suggest variables matching a query"`
	Custom   cmd.Custom   `cmd:"" help:"Manage custom variables"`
	Init     cmd.Init     `cmd:"" help:"Initialize configuration file"`
}

// Run executes the tdl CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	return run(ctx, &cli, kong.Vars{
		cmd.ConfigIdentifier:   configPath(baseConfig + ".yaml"),
		cmd.CacheIdentifier:    cacheDir(),
		cmd.DatabaseIdentifier: configPath(baseDatabase),
	}, []kong.Option{kong.Exit(exit)}, args...)
}

// run parses args into cli using vars for interpolation and executes the
// selected command.
func run(
	ctx context.Context,
	cli *CLI,
	vars kong.Vars,
	extra []kong.Option,
	args ...string,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	configFilePath := vars[cmd.ConfigIdentifier]

	vars = vars.
		CloneWith(kong.Vars{"version": strings.TrimSpace(pkg.Version)}).
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	opts := []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, strings.TrimSuffix(configFilePath, ".yaml")+".json"),
		kong.Configuration(loadConfig(ctx, baseConfig), configFilePath),
		vars,
	}

	// Parse command line
	parser, err := kong.New(cli, append(opts, extra...)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, cli)
}
