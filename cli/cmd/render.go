package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ardnew/tdl/lang"
	"github.com/ardnew/tdl/log"
	"github.com/ardnew/tdl/variable"
)

// Render resolves declared variables and renders a template.
type Render struct {
	Vars     string `help:"YAML or JSON mapping of variable values."                  short:"v" type:"existingfile"`
	Context  string `help:"YAML or JSON runtime context (customer, conversation)."    short:"c" type:"existingfile"`
	Declared string `help:"YAML or JSON list of variable declarations to resolve."   short:"d" type:"existingfile"`

	Agent      string `help:"Agent name for system variables."`
	AgentEmail string `help:"Agent email for system variables."`
	Company    string `help:"Company name for system variables."`

	Timeout time.Duration `default:"10s" help:"Resolution timeout (0 disables)."`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.Timeout > 0 {
		var stop context.CancelFunc

		ctx, stop = context.WithTimeout(ctx, r.Timeout)
		defer stop()
	}

	text, err := readSource(r.Source)
	if err != nil {
		return err
	}

	var (
		vars     map[string]any
		rc       variable.Context
		declared []variable.Variable
	)

	for _, f := range []struct {
		path string
		into any
	}{
		{r.Vars, &vars},
		{r.Context, &rc},
		{r.Declared, &declared},
	} {
		if err := decodeFile(f.path, f.into); err != nil {
			return err
		}
	}

	logger := log.Default()
	tmpl := lang.New(text, lang.WithDeclared(declared...), lang.WithLogger(logger))

	var out string

	if len(declared) == 0 {
		out = tmpl.Render(ctx, vars)
	} else {
		res := variable.NewResolver(
			variable.WithLogger(logger),
			variable.WithAgent(r.Agent, r.AgentEmail),
			variable.WithCompany(r.Company),
		)

		out = tmpl.Resolve(ctx, res, rc, vars)
	}

	log.DebugContext(ctx, "rendered template",
		slog.String("source", r.Source),
		slog.Int("declared", len(declared)),
		slog.Int("length", len(out)),
	)

	_, err = fmt.Fprintln(stdout(ctx), out)

	return err
}
