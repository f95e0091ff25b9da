package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/tdl/log"
	"github.com/ardnew/tdl/store"
	"github.com/ardnew/tdl/variable"
)

// Suggest ranks variables matching a query for autocomplete.
type Suggest struct {
	Limit  int    `default:"10"   help:"Maximum number of suggestions."               short:"n"`
	User   string `help:"Include custom variables owned by this user." short:"u"`
	DB     string `default:"${db}" help:"Custom variable database."                  type:"path"`
	Format string `default:"text" enum:"text,json,yaml" help:"Output format."         short:"f"`
	Indent int    `default:"2"    help:"Indent width for json and yaml output."       short:"i"`

	Query string `arg:"" help:"Partial variable name or description." name:"query" optional:""`
}

// Run executes the suggest command.
func (s *Suggest) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()
	opts := []variable.Option{variable.WithLogger(logger)}

	if s.User != "" {
		st, err := store.Open(ctx, s.DB, store.WithLogger(logger))
		if err != nil {
			return ErrStore.With(slog.String("db", s.DB)).Wrap(err)
		}
		defer st.Close()

		opts = append(opts, variable.WithCustomSource(st))
	}

	res := variable.NewResolver(opts...).Suggest(ctx, s.Query,
		variable.WithLimit(s.Limit),
		variable.WithContext(variable.Context{UserID: s.User}),
	)

	if s.Format != formatText {
		return encode(ctx, stdout(ctx), s.Format, s.Indent, res)
	}

	_, err = fmt.Fprint(stdout(ctx), formatSuggestions(res))

	return err
}

// formatSuggestions renders one line per suggestion with the fuzzy-matched
// runes of each name highlighted.
func formatSuggestions(res []variable.Suggestion) string {
	if len(res) == 0 {
		return hintStyle.Render("no matching variables") + "\n"
	}

	width := 0
	for _, s := range res {
		width = max(width, len(s.Name))
	}

	var b strings.Builder

	for _, s := range res {
		b.WriteString(renderHighlighted(s.Name, s.Highlights))
		b.WriteString(strings.Repeat(" ", width-len(s.Name)+2))
		b.WriteString(hintStyle.Render(fmt.Sprintf("%-12s %-8s %.2f", s.Namespace, s.Type, s.Score)))

		if s.Description != "" {
			b.WriteString("  ")
			b.WriteString(s.Description)
		}

		b.WriteByte('\n')
	}

	return b.String()
}
