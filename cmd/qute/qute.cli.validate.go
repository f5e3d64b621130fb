package main

import (
	"context"
	"fmt"
)

type validateCmd struct {
	engineFlags `embed:""`

	Template    string `arg:"" default:"-" help:"Template file or '-' for stdin."`
	Expressions bool   `help:"List the distinct expressions of the template." short:"e"`
}

// Run parses the template and reports the result.
func (c *validateCmd) Run(a *app) error {
	source, err := readInput(c.Template, a.stdin)
	if err != nil {
		return err
	}

	rt, err := a.setup(context.Background(), c.engineFlags, 0)
	if err != nil {
		return err
	}
	defer rt.Close()

	tmpl, err := rt.Engine.Parse(string(source))
	if err != nil {
		return fail(ExitCodeValidationError, ErrMsgParseTemplateFailed, err)
	}

	fmt.Fprintf(a.stdout, FmtLine, ValidationTextSuccess)
	if c.Expressions {
		for _, expr := range tmpl.Expressions() {
			fmt.Fprintf(a.stdout, FmtLine, expr.Original())
		}
	}
	return nil
}
