package catalog_repo

import (
	"testing"

	"partsledger/internal/core/apperror"
)

func TestParseOrderBy(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "code", "name"}, func() any { return nil })

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "Default", orderBy: "", want: "name ASC"},
		{name: "Ascending", orderBy: "code", want: "code ASC"},
		{name: "Descending", orderBy: "-code", want: "code DESC"},
		{name: "UnknownField", orderBy: "password", wantErr: true},
		{name: "Injection", orderBy: "name; DROP TABLE test_table", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for orderBy %q", tt.orderBy)
				}
				if !apperror.IsValidation(err) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("orderBy mismatch\nwant: %s\ngot:  %s", tt.want, got)
			}
		})
	}
}

func TestBaseSelect_SQL(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "name"}, func() any { return nil })

	sql, args, err := repo.baseSelect().ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}
	want := "SELECT id, name FROM test_table"
	if sql != want {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", want, sql)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}
