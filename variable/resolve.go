package variable

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ardnew/tdl/log"
)

// CustomVariable is a user-defined variable offered in the custom namespace.
type CustomVariable struct {
	ID          string    `json:"id"                    yaml:"id"`
	UserID      string    `json:"user_id"               yaml:"user_id"`
	Name        string    `json:"name"                  yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Example     string    `json:"example,omitempty"     yaml:"example,omitempty"`
	Type        Type      `json:"type"                  yaml:"type"`
	CreatedAt   time.Time `json:"created_at"            yaml:"created_at"`
}

// CustomSource supplies the custom variables owned by a user.
type CustomSource interface {
	CustomVariables(ctx context.Context, userID string) ([]CustomVariable, error)
}

// Resolver ranks variable suggestions and resolves runtime values.
//
// A Resolver is safe for concurrent use once constructed.
type Resolver struct {
	logger     log.Logger
	clock      func() time.Time
	agentName  string
	agentEmail string
	company    string
	client     *http.Client
	custom     CustomSource
	registry   *Registry
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithLogger sets the structured logger. The zero value discards output.
func WithLogger(logger log.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithClock sets the time source for system date and time variables.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.clock = now
		}
	}
}

// WithAgent sets the identity resolved by agent_name and agent_email.
func WithAgent(name, email string) Option {
	return func(r *Resolver) {
		r.agentName = name
		r.agentEmail = email
	}
}

// WithCompany sets the value resolved by company_name.
func WithCompany(name string) Option {
	return func(r *Resolver) { r.company = name }
}

// WithHTTPClient sets the client used for external_api variables.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithCustomSource sets the storage consulted for custom variables.
func WithCustomSource(src CustomSource) Option {
	return func(r *Resolver) { r.custom = src }
}

// WithRegistry replaces the embedded registry.
func WithRegistry(reg *Registry) Option {
	return func(r *Resolver) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// NewResolver returns a Resolver configured with opts.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		clock:    time.Now,
		client:   http.DefaultClient,
		registry: DefaultRegistry(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Registry returns the registry backing r.
func (r *Resolver) Registry() *Registry { return r.registry }

// Resolve returns the runtime value of v.
//
// An entry in custom overrides every source. Otherwise the value comes from
// the source named by v.Source; if the source yields nothing or fails, the
// declared default (or "") is returned. Resolve never fails.
func (r *Resolver) Resolve(
	ctx context.Context,
	v Variable,
	rc Context,
	custom map[string]any,
) any {
	val, _ := r.resolve(ctx, v, rc, custom)

	return val
}

// resolve is Resolve that also reports whether the value came from an
// override, the source, or a declared default.
func (r *Resolver) resolve(
	ctx context.Context,
	v Variable,
	rc Context,
	custom map[string]any,
) (any, bool) {
	if val, ok := custom[v.Name]; ok && val != nil {
		r.logger.TraceContext(ctx, "resolve override",
			slog.String("variable", v.Name))

		return val, true
	}

	val, err := r.fromSource(ctx, v, rc)
	if err != nil {
		r.logger.WarnContext(ctx, "resolve failed",
			slog.String("variable", v.Name),
			slog.String("source", string(v.Source)),
			slog.Any("error", WrapError(err)))

		return v.fallback()
	}

	if val == nil {
		r.logger.TraceContext(ctx, "resolve default",
			slog.String("variable", v.Name),
			slog.String("source", string(v.Source)))

		return v.fallback()
	}

	return val, true
}

// ResolveAll resolves vars in order. A variable that fails, including by
// panicking, resolves to its default without affecting the others.
func (r *Resolver) ResolveAll(
	ctx context.Context,
	vars []Variable,
	rc Context,
	custom map[string]any,
) map[string]any {
	out := make(map[string]any, len(vars))

	for _, v := range vars {
		out[v.Name], _ = r.resolveSafe(ctx, v, rc, custom)
	}

	return out
}

// ResolveFound is like ResolveAll but omits variables that produced no value
// and declare no default, so a renderer shows their placeholders instead of
// blanks.
func (r *Resolver) ResolveFound(
	ctx context.Context,
	vars []Variable,
	rc Context,
	custom map[string]any,
) map[string]any {
	out := make(map[string]any, len(vars))

	for _, v := range vars {
		if val, ok := r.resolveSafe(ctx, v, rc, custom); ok {
			out[v.Name] = val
		}
	}

	return out
}

func (r *Resolver) resolveSafe(
	ctx context.Context,
	v Variable,
	rc Context,
	custom map[string]any,
) (val any, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "resolve panic",
				slog.String("variable", v.Name),
				slog.Any("error", ErrResolution.Wrap(fmt.Errorf("%v", p))))

			val, ok = v.fallback()
		}
	}()

	return r.resolve(ctx, v, rc, custom)
}

func (r *Resolver) fromSource(
	ctx context.Context,
	v Variable,
	rc Context,
) (any, error) {
	switch v.Source {
	case SourceSystem:
		return r.system(v.Name), nil

	case SourceCustomerData:
		name := strings.TrimPrefix(v.Name, "customer_data.")

		return r.lookupAliases(rc.Customer, name), nil

	case SourceConversationContext:
		return r.lookupAliases(rc.Map(), v.Name), nil

	case SourceExternalAPI:
		return r.fetch(ctx, v, rc)

	case SourceManual:
		return nil, nil

	default:
		return nil, ErrUnknownSource.With(slog.String("source", string(v.Source)))
	}
}

func (r *Resolver) lookupAliases(data map[string]any, name string) any {
	if data == nil {
		return nil
	}

	for _, alias := range r.registry.Aliases(name) {
		if val, ok := Lookup(data, alias); ok {
			return val
		}
	}

	return nil
}

// system resolves clock and identity variables. Unknown names and unset
// identities yield nil.
func (r *Resolver) system(name string) any {
	now := r.clock()

	var s string

	switch name {
	case "current_date":
		s = now.Format(time.DateOnly)
	case "current_time":
		s = now.Format("15:04")
	case "current_datetime":
		s = now.Format("2006-01-02 15:04")
	case "day_of_week":
		s = now.Weekday().String()
	case "agent_name":
		s = r.agentName
	case "agent_email":
		s = r.agentEmail
	case "company_name":
		s = r.company
	}

	if s == "" {
		return nil
	}

	return s
}
