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

// Custom manages the user-defined variables offered in the custom namespace.
type Custom struct {
	Add  CustomAdd  `cmd:"" help:"Define a custom variable."`
	List CustomList `cmd:"" help:"List custom variables."    default:"withargs"`
	Rm   CustomRm   `cmd:"" help:"Remove a custom variable."`
}

// StoreFlags selects the database and owning user of custom variables.
type StoreFlags struct {
	DB   string `default:"${db}" help:"Custom variable database." type:"path"`
	User string `help:"Owning user ID."          short:"u"`
}

// open returns the store at f.DB. A user is required.
func (f StoreFlags) open(ctx context.Context) (*store.Store, error) {
	if f.User == "" {
		return nil, ErrMissingUser
	}

	st, err := store.Open(ctx, f.DB, store.WithLogger(log.Default()))
	if err != nil {
		return nil, ErrStore.With(slog.String("db", f.DB)).Wrap(err)
	}

	return st, nil
}

// CustomAdd defines a custom variable.
type CustomAdd struct {
	StoreFlags `embed:""`

	Type        string `default:"text" help:"Variable type."          short:"t"`
	Description string `help:"Human-readable meaning." short:"D"`
	Example     string `help:"Example value."          short:"e"`

	Name string `arg:"" help:"Variable name." name:"name"`
}

// Run executes the custom add command.
func (c *CustomAdd) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	st, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	cv := variable.CustomVariable{
		UserID:      c.User,
		Name:        c.Name,
		Description: c.Description,
		Example:     c.Example,
		Type:        variable.Type(c.Type),
	}

	if err := st.Create(ctx, &cv); err != nil {
		return ErrStore.Wrap(err)
	}

	_, err = fmt.Fprintln(stdout(ctx), okStyle.Render("✔ added "+cv.Name), hintStyle.Render(cv.ID))

	return err
}

// CustomList lists the custom variables owned by a user.
type CustomList struct {
	StoreFlags `embed:""`

	Format string `default:"text" enum:"text,json,yaml" help:"Output format." short:"f"`
	Indent int    `default:"2" help:"Indent width for json and yaml output." short:"i"`
}

// Run executes the custom list command.
func (c *CustomList) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	st, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	vars, err := st.List(ctx, c.User)
	if err != nil {
		return ErrStore.Wrap(err)
	}

	if c.Format != formatText {
		return encode(ctx, stdout(ctx), c.Format, c.Indent, vars)
	}

	var b strings.Builder

	if len(vars) == 0 {
		b.WriteString(hintStyle.Render("no custom variables") + "\n")
	}

	for _, cv := range vars {
		b.WriteString(suggestionStyle.Render(cv.Name))
		b.WriteString(hintStyle.Render(" " + string(cv.Type)))

		if cv.Description != "" {
			b.WriteString("  " + cv.Description)
		}

		b.WriteByte('\n')
	}

	_, err = fmt.Fprint(stdout(ctx), b.String())

	return err
}

// CustomRm removes a custom variable.
type CustomRm struct {
	StoreFlags `embed:""`

	Name string `arg:"" help:"Variable name." name:"name"`
}

// Run executes the custom rm command.
func (c *CustomRm) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	st, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(ctx, c.User, c.Name); err != nil {
		return ErrStore.Wrap(err)
	}

	_, err = fmt.Fprintln(stdout(ctx), okStyle.Render("✔ removed "+c.Name))

	return err
}
