package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/tdl/lang"
	"github.com/ardnew/tdl/log"
)

// Optimize rewrites a template into a cheaper equivalent.
type Optimize struct {
	Write bool `help:"Write the result back to the source file." short:"w"`
	Quiet bool `help:"Do not list applied passes."               short:"q"`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the optimize command.
func (o *Optimize) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if o.Write && (o.Source == "" || o.Source == stdinSource) {
		return ErrStdinWrite
	}

	text, err := readSource(o.Source)
	if err != nil {
		return err
	}

	res := lang.Optimize(ctx, text, lang.WithLogger(log.Default()))

	if !o.Quiet {
		fmt.Fprint(stderr(ctx), formatImprovements(res))
	}

	if !o.Write {
		_, err = fmt.Fprintln(stdout(ctx), res.Optimized)

		return err
	}

	if !res.Changed() {
		return nil
	}

	info, err := os.Stat(o.Source)
	if err != nil {
		return ErrWriteSource.With(slog.String("file", o.Source)).Wrap(err)
	}

	if err := os.WriteFile(o.Source, []byte(res.Optimized), info.Mode().Perm()); err != nil {
		return ErrWriteSource.With(slog.String("file", o.Source)).Wrap(err)
	}

	log.DebugContext(ctx, "wrote optimized template",
		slog.String("file", o.Source),
		slog.Float64("gain", res.PerformanceGain),
	)

	return nil
}

// formatImprovements lists the applied passes and the estimated gain.
func formatImprovements(res lang.Optimized) string {
	if !res.Changed() {
		return hintStyle.Render("already optimal") + "\n"
	}

	var b strings.Builder

	for _, imp := range res.Improvements {
		b.WriteString(okStyle.Render("✔ " + imp.Pass))
		b.WriteString(hintStyle.Render(" " + imp.Description))
		b.WriteByte('\n')
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("estimated gain %.0f%%", res.PerformanceGain*100)))
	b.WriteByte('\n')

	return b.String()
}
