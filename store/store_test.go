package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardnew/tdl/variable"
)

func openTest(t *testing.T) *Store {
	t.Helper()

	s, err := OpenInMemory(t.Context(), WithClock(func() time.Time {
		return time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestCreateGetList(t *testing.T) {
	s := openTest(t)
	ctx := t.Context()

	cv := &variable.CustomVariable{
		UserID:      "u1",
		Name:        "loyalty_points",
		Description: "Reward balance",
		Example:     "1200",
		Type:        variable.TypeNumber,
	}

	if err := s.Create(ctx, cv); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if cv.ID == "" {
		t.Error("expected ID to be set")
	}
	if cv.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := s.Get(ctx, cv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.Name != cv.Name || got.Type != variable.TypeNumber || !got.CreatedAt.Equal(cv.CreatedAt) {
		t.Errorf("Get = %+v, want %+v", got, *cv)
	}

	if err := s.Create(ctx, &variable.CustomVariable{UserID: "u1", Name: "account_manager"}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if err := s.Create(ctx, &variable.CustomVariable{UserID: "u2", Name: "loyalty_points"}); err != nil {
		t.Fatalf("Create for other user: %v", err)
	}

	list, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(list) != 2 || list[0].Name != "account_manager" || list[1].Name != "loyalty_points" {
		t.Errorf("List = %+v", list)
	}

	if list[0].Type != variable.TypeText {
		t.Errorf("default type = %q, want text", list[0].Type)
	}
}

func TestCreate_Rejects(t *testing.T) {
	s := openTest(t)
	ctx := t.Context()

	tests := []struct {
		name string
		cv   variable.CustomVariable
		want error
	}{
		{"no user", variable.CustomVariable{Name: "x"}, ErrInvalid},
		{"bad name", variable.CustomVariable{UserID: "u", Name: "two words"}, ErrInvalid},
		{"bad type", variable.CustomVariable{UserID: "u", Name: "x", Type: "blob"}, ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Create(ctx, &tt.cv); !errors.Is(err, tt.want) {
				t.Errorf("Create = %v, want %v", err, tt.want)
			}
		})
	}

	if err := s.Create(ctx, &variable.CustomVariable{UserID: "u", Name: "dup"}); err != nil {
		t.Fatal(err)
	}

	dup := variable.CustomVariable{UserID: "u", Name: "dup"}
	if err := s.Create(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Create = %v, want ErrDuplicate", err)
	}

	if dup.ID != "" || !dup.CreatedAt.IsZero() || dup.Type != "" {
		t.Errorf("failed Create modified its argument: %+v", dup)
	}
}

func TestDelete(t *testing.T) {
	s := openTest(t)
	ctx := t.Context()

	if err := s.Create(ctx, &variable.CustomVariable{UserID: "u", Name: "gone"}); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, "u", "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := s.Delete(ctx, "u", "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestOpen_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.db")
	ctx := t.Context()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.Create(ctx, &variable.CustomVariable{UserID: "u", Name: "kept"}); err != nil {
		t.Fatal(err)
	}

	_ = s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	list, err := s.List(ctx, "u")
	if err != nil || len(list) != 1 || list[0].Name != "kept" {
		t.Errorf("List after reopen = %+v, %v", list, err)
	}
}

func TestStore_FeedsSuggestions(t *testing.T) {
	s := openTest(t)
	ctx := t.Context()

	if err := s.Create(ctx, &variable.CustomVariable{
		UserID:      "agent-7",
		Name:        "warranty_code",
		Description: "Warranty claim code",
	}); err != nil {
		t.Fatal(err)
	}

	r := variable.NewResolver(variable.WithCustomSource(s))

	got := r.Suggest(ctx, "warranty", variable.WithContext(variable.Context{UserID: "agent-7"}))
	if len(got) != 1 || got[0].Name != "warranty_code" || got[0].Namespace != variable.NamespaceCustom {
		t.Errorf("Suggest = %+v", got)
	}
}
