package main

import (
	"context"
	"errors"
	"time"
)

var errDataConflict = errors.New(ErrMsgDataConflict)

type renderCmd struct {
	engineFlags `embed:""`

	Template string        `arg:"" default:"-" help:"Template file or '-' for stdin."`
	Data     string        `help:"JSON data." short:"d"`
	DataFile string        `help:"JSON or YAML data file." name:"data-file" short:"f"`
	Output   string        `default:"-" help:"Output file or '-' for stdout." short:"o"`
	Timeout  time.Duration `help:"Render timeout. Zero keeps the configured timeout." short:"t"`
}

// Run renders the template.
func (c *renderCmd) Run(a *app) error {
	ctx := context.Background()

	source, err := readInput(c.Template, a.stdin)
	if err != nil {
		return err
	}
	data, err := loadData(c.Data, c.DataFile)
	if err != nil {
		return err
	}

	rt, err := a.setup(ctx, c.engineFlags, c.Timeout)
	if err != nil {
		return err
	}
	defer rt.Close()

	tmpl, err := rt.Engine.Parse(string(source))
	if err != nil {
		return fail(ExitCodeValidationError, ErrMsgParseTemplateFailed, err)
	}
	out, err := tmpl.Render(ctx, data)
	if err != nil {
		return fail(ExitCodeError, ErrMsgRenderFailed, err)
	}
	return writeOutput(c.Output, []byte(out), a.stdout)
}
