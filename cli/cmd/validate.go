package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/tdl/lang"
	"github.com/ardnew/tdl/log"
	"github.com/ardnew/tdl/variable"
)

// Validate reports syntax errors, warnings and suggestions for a template.
// It fails when the template has blocking errors.
type Validate struct {
	Declared string `help:"YAML or JSON list of declared variables." short:"d" type:"existingfile"`
	Format   string `default:"text" enum:"text,json,yaml" help:"Output format." short:"f"`
	Indent   int    `default:"2" help:"Indent width for json and yaml output." short:"i"`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the validate command.
func (v *Validate) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := readSource(v.Source)
	if err != nil {
		return err
	}

	var declared []variable.Variable
	if err := decodeFile(v.Declared, &declared); err != nil {
		return err
	}

	report := lang.Validate(ctx, text,
		lang.WithDeclared(declared...),
		lang.WithLogger(log.Default()),
	)

	if v.Format == formatText {
		_, err = fmt.Fprint(stdout(ctx), formatReport(v.Source, report))
	} else {
		err = encode(ctx, stdout(ctx), v.Format, v.Indent, report)
	}

	if err != nil {
		return err
	}

	if !report.Valid {
		return ErrInvalidTemplate.With(
			slog.String("source", v.Source),
			slog.Int("errors", len(report.Errors)),
		)
	}

	return nil
}

// formatReport renders a validation report for the terminal.
func formatReport(source string, r lang.Report) string {
	var b strings.Builder

	if source == "" || source == stdinSource {
		source = "<stdin>"
	}

	if r.Valid {
		b.WriteString(okStyle.Render("✔ " + source + " is valid"))
	} else {
		b.WriteString(errorStyle.Render("🗴 " + source + " is invalid"))
	}

	b.WriteByte('\n')

	renderIssues(&b, "Errors", errorStyle, r.Errors)
	renderIssues(&b, "Warnings", warnStyle, r.Warnings)
	renderIssues(&b, "Suggestions", hintStyle, r.Suggestions)

	return b.String()
}
