package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ardnew/tdl/variable"
)

// Create inserts cv. ID and CreatedAt are assigned when empty; an empty Type
// becomes text. cv is updated only if the insert succeeds.
func (s *Store) Create(ctx context.Context, cv *variable.CustomVariable) error {
	rec := *cv

	switch {
	case rec.UserID == "":
		return ErrInvalid.With(slog.String("issue", "missing user"))
	case !variable.ValidName(rec.Name):
		return ErrInvalid.Wrap(variable.ErrInvalidName).
			With(slog.String("name", rec.Name))
	}

	if rec.Type == "" {
		rec.Type = variable.TypeText
	}

	if !rec.Type.Valid() {
		return ErrInvalid.Wrap(variable.ErrUnknownType).
			With(slog.String("type", string(rec.Type)))
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO custom_variables (
			id, user_id, name, description, example, type, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.UserID,
		rec.Name,
		rec.Description,
		rec.Example,
		string(rec.Type),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate.With(
				slog.String("user", rec.UserID),
				slog.String("name", rec.Name))
		}

		return ErrQuery.Wrap(err)
	}

	*cv = rec

	s.logger.DebugContext(ctx, "custom variable created",
		slog.String("id", rec.ID),
		slog.String("user", rec.UserID),
		slog.String("name", rec.Name))

	return nil
}

// Get retrieves a custom variable by ID.
func (s *Store) Get(ctx context.Context, id string) (variable.CustomVariable, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, example, type, created_at
		FROM custom_variables WHERE id = ?
	`, id)

	cv, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cv, ErrNotFound.With(slog.String("id", id))
	}

	return cv, err
}

// List returns the custom variables owned by userID ordered by name.
func (s *Store) List(ctx context.Context, userID string) ([]variable.CustomVariable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, example, type, created_at
		FROM custom_variables WHERE user_id = ?
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, ErrQuery.Wrap(err)
	}
	defer rows.Close()

	var out []variable.CustomVariable

	for rows.Next() {
		cv, err := scan(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, cv)
	}

	if err := rows.Err(); err != nil {
		return nil, ErrQuery.Wrap(err)
	}

	return out, nil
}

// CustomVariables implements [variable.CustomSource].
func (s *Store) CustomVariables(ctx context.Context, userID string) ([]variable.CustomVariable, error) {
	return s.List(ctx, userID)
}

// Delete removes the variable name owned by userID.
func (s *Store) Delete(ctx context.Context, userID, name string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM custom_variables WHERE user_id = ? AND name = ?
	`, userID, name)
	if err != nil {
		return ErrQuery.Wrap(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return ErrQuery.Wrap(err)
	}

	if n == 0 {
		return ErrNotFound.With(
			slog.String("user", userID),
			slog.String("name", name))
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (variable.CustomVariable, error) {
	var (
		cv      variable.CustomVariable
		typ     string
		created string
	)

	err := row.Scan(
		&cv.ID,
		&cv.UserID,
		&cv.Name,
		&cv.Description,
		&cv.Example,
		&typ,
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return cv, err
	}

	if err != nil {
		return cv, ErrQuery.Wrap(err)
	}

	cv.Type = variable.Type(typ)

	cv.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return cv, ErrQuery.Wrap(err).With(slog.String("created_at", created))
	}

	return cv, nil
}
