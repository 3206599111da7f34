package schema_test

import (
	"context"
	"testing"

	"log/slog"

	dbfs "github.com/samuelralak/Emurgis/db"
	"github.com/samuelralak/Emurgis/internal/db"
	"github.com/samuelralak/Emurgis/internal/repository/sqlite"
	"github.com/samuelralak/Emurgis/internal/schema"
)

func setupLoader(t *testing.T) (*schema.Loader, *sqlite.SQLiteRepo) {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, ":memory:", slog.Default())
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := sqlite.New(d, slog.Default())
	l, err := schema.NewLoader(ctx, repo)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	return l, repo
}

func TestValidate(t *testing.T) {
	l, _ := setupLoader(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		version string
		body    string
		wantErr bool
	}{
		{
			name:    "valid problem create",
			version: schema.ProblemCreateV1,
			body:    `{"summary":"Derp","description":"Lorem ipsum"}`,
			wantErr: false,
		},
		{
			name:    "missing required field",
			version: schema.ProblemCreateV1,
			body:    `{"summary":"Derp"}`,
			wantErr: true,
		},
		{
			name:    "unexpected field",
			version: schema.ProblemCreateV1,
			body:    `{"summary":"Derp","description":"x","bogus":1}`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			version: schema.CommentPostV1,
			body:    `{"comment":42}`,
			wantErr: true,
		},
		{
			name:    "unknown version is skipped",
			version: "does_not_exist_v9",
			body:    `{"anything":"goes"}`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Validate(ctx, tt.version, []byte(tt.body))
			if tt.wantErr && err == nil {
				t.Fatalf("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestReload_PicksUpNewSchemas(t *testing.T) {
	l, repo := setupLoader(t)
	ctx := context.Background()

	if _, ok := l.GetSchema("strict_v1"); ok {
		t.Fatalf("schema should not be loaded yet")
	}

	if _, err := repo.CreateSchema(ctx, "strict_v1", "test", `{"type":"object","required":["x"]}`); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	if err := l.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if err := l.Validate(ctx, "strict_v1", []byte(`{}`)); err == nil {
		t.Fatalf("expected validation failure against the new schema")
	}
	if err := l.Validate(ctx, "strict_v1", []byte(`{"x":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
