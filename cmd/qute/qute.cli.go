package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/itsatony/go-qute"
)

// cli is the top-level command-line interface.
type cli struct {
	LogLevel string `help:"Log level written to stderr: debug, info, warn or error. Overrides the configuration file." name:"log-level"`

	Render   renderCmd   `cmd:"" help:"Render a template with data."`
	Validate validateCmd `cmd:"" help:"Parse a template without rendering it."`
	Version  versionCmd  `cmd:"" help:"Show version information."`
}

// engineFlags configure the engine shared by render and validate.
type engineFlags struct {
	Config      string   `help:"YAML configuration file." short:"c" type:"existingfile"`
	TemplateDir []string `help:"Directory of templates available to user tags." name:"template-dir"`
	Tag         []string `help:"User tag as name=template-id." name:"tag"`
}

// app holds the streams of one CLI invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cli    cli
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr}
}

// exitError carries the exit code of a failed command.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	return fmt.Sprintf(strings.TrimSuffix(FmtErrorWithCause, "\n"), e.msg, e.err)
}

func (e *exitError) Unwrap() error {
	return e.err
}

func fail(code int, msg string, err error) error {
	return &exitError{code: code, msg: msg, err: err}
}

// kongExit is raised by the kong exit hook so help output ends the run.
type kongExit int

func (a *app) run(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			exit, ok := r.(kongExit)
			if !ok {
				panic(r)
			}
			code = int(exit)
		}
	}()

	parser, err := kong.New(&a.cli,
		kong.Name(CLIName),
		kong.Description(CLIDescription),
		kong.Writers(a.stdout, a.stderr),
		kong.Exit(func(code int) { panic(kongExit(code)) }),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
	)
	if err != nil {
		fmt.Fprintf(a.stderr, FmtErrorWithCause, ErrMsgUsage, err)
		return ExitCodeUsageError
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(a.stderr, FmtErrorWithCause, ErrMsgUsage, err)
		return ExitCodeUsageError
	}

	if err := ktx.Run(a); err != nil {
		fmt.Fprintln(a.stderr, err.Error())
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		return ExitCodeError
	}
	return ExitCodeSuccess
}

// setup assembles an engine from the configuration file and flags.
// A zero timeout keeps the configured one.
func (a *app) setup(ctx context.Context, flags engineFlags, timeout time.Duration) (*qute.Runtime, error) {
	cfg := qute.DefaultConfig()
	cfg.Log.Level = DefaultLogLevel
	if flags.Config != "" {
		loaded, err := qute.LoadConfig(flags.Config)
		if err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgConfigFailed, err)
		}
		cfg = loaded
	}
	if a.cli.LogLevel != "" {
		cfg.Log.Level = a.cli.LogLevel
	}
	cfg.Templates.Dirs = append(cfg.Templates.Dirs, flags.TemplateDir...)
	if timeout > 0 {
		cfg.RenderTimeout = timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fail(ExitCodeInputError, ErrMsgConfigFailed, err)
	}

	var opts []qute.Option
	for _, tag := range flags.Tag {
		name, id, ok := strings.Cut(tag, TagSeparator)
		if !ok || name == "" || id == "" {
			return nil, fail(ExitCodeUsageError, ErrMsgInvalidTag, errors.New(tag))
		}
		opts = append(opts, qute.WithUserTag(name, id))
	}

	logger, err := cfg.NewLogger(a.stderr)
	if err != nil {
		return nil, fail(ExitCodeInputError, ErrMsgConfigFailed, err)
	}

	rt, err := cfg.NewRuntime(ctx, logger, opts...)
	if err != nil {
		return nil, fail(ExitCodeInputError, ErrMsgSetupFailed, err)
	}
	return rt, nil
}
