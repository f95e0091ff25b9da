package variable

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// maxExternalResponse bounds the body read from an external endpoint.
const maxExternalResponse = 1 << 20

type externalRequest struct {
	VariableName string         `json:"variable_name"`
	Context      Context        `json:"context"`
	Params       map[string]any `json:"params,omitempty"`
}

type externalResponse struct {
	Value any `json:"value"`
}

// fetch performs one POST to the variable's endpoint. The caller's ctx
// bounds the request; there is no retry.
func (r *Resolver) fetch(ctx context.Context, v Variable, rc Context) (any, error) {
	endpoint := v.SourceConfig.APIEndpoint
	if endpoint == "" {
		return nil, ErrMissingEndpoint.With(slog.String("variable", v.Name))
	}

	body, err := json.Marshal(externalRequest{
		VariableName: v.Name,
		Context:      rc,
		Params:       v.SourceConfig.Params,
	})
	if err != nil {
		return nil, ErrExternalAPI.Wrap(err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, ErrExternalAPI.Wrap(err).
			With(slog.String("endpoint", endpoint))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	r.logger.DebugContext(ctx, "external api request",
		slog.String("variable", v.Name),
		slog.String("endpoint", endpoint))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, ErrExternalAPI.Wrap(err).
			With(slog.String("endpoint", endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxExternalResponse))

		return nil, ErrExternalAPI.With(
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode))
	}

	var out externalResponse

	err = json.NewDecoder(io.LimitReader(resp.Body, maxExternalResponse)).Decode(&out)
	if err != nil {
		return nil, ErrExternalAPI.Wrap(err).
			With(slog.String("endpoint", endpoint))
	}

	return out.Value, nil
}
