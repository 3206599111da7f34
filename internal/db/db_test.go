package db_test

import (
	"context"
	"testing"

	"github.com/samuelralak/Emurgis/internal/db"
)

func TestNewAndClose(t *testing.T) {
	ctx := context.Background()
	d, err := db.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}

	if _, err := d.Exec(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, err := d.Exec(ctx, `INSERT INTO t (v) VALUES (?)`, "hello"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var v string
	if err := d.QueryRow(ctx, `SELECT v FROM t WHERE id = 1`).Scan(&v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if v != "hello" {
		t.Fatalf("expected hello, got %q", v)
	}

	rows, err := d.QueryRows(ctx, `SELECT v FROM t`)
	if err != nil {
		t.Fatalf("query rows: %v", err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNew_BadDSN(t *testing.T) {
	if _, err := db.New(context.Background(), "file:/nonexistent-dir/really/not/here.db?mode=ro", nil); err == nil {
		t.Fatalf("expected error for unreachable database file")
	}
}
