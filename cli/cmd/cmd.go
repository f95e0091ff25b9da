package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer commands print results to. It is the kong
// context's Stdout when one is attached, os.Stdout otherwise.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stderr returns the writer commands print diagnostics to.
func stderr(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stderr != nil {
		return ktx.Stderr
	}

	return os.Stderr
}

// kongVar returns the interpolation variable name from the kong model, or
// def if no kong context is attached or the variable is undefined.
func kongVar(ctx context.Context, name, def string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil || ktx.Model == nil {
		return def
	}

	if v, ok := ktx.Model.Vars()[name]; ok {
		return v
	}

	return def
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readSource returns the template text at path, or from stdin if path is
// empty or "-".
func readSource(path string) (string, error) {
	var r io.Reader = os.Stdin

	if path != "" && path != stdinSource {
		file, err := os.Open(path)
		if err != nil {
			return "", ErrReadSource.
				With(slog.String("file", path)).
				Wrap(err)
		}
		defer file.Close()

		r = file
	}

	buf, err := io.ReadAll(r)
	if err != nil {
		return "", ErrReadSource.
			With(slog.String("file", path)).
			Wrap(err)
	}

	return string(buf), nil
}

// decodeFile decodes the YAML or JSON document at path into v. An empty path
// leaves v untouched.
func decodeFile(path string, v any) error {
	if path == "" {
		return nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return ErrDecode.
			With(slog.String("file", path)).
			Wrap(err)
	}

	if err := yaml.Unmarshal(buf, v); err != nil {
		return ErrDecode.
			With(slog.String("file", path)).
			Wrap(err)
	}

	return nil
}
