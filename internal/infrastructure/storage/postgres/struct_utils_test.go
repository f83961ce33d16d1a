package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"partsledger/internal/core/entity"
	"partsledger/internal/core/id"
)

type testCatalog struct {
	entity.Catalog
	Symbol string `db:"symbol" json:"symbol"`
	Hidden string `db:"-" json:"-"`
	NoTag  string
}

func TestExtractDBColumns_EmbeddedFields(t *testing.T) {
	cols := ExtractDBColumns[testCatalog]()

	expected := []string{"id", "deletion_mark", "row_version", "code", "name", "active", "symbol"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Hidden")
	assert.NotContains(t, cols, "NoTag")
}

func TestExtractDBColumns_PointerType(t *testing.T) {
	cols := ExtractDBColumns[*testCatalog]()
	assert.Contains(t, cols, "symbol")
	assert.Contains(t, cols, "id")
}

func TestStructToMap(t *testing.T) {
	cat := testCatalog{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				RowVersion:   5,
			},
			Code:   "UN-001",
			Name:   "Piece",
			Active: true,
		},
		Symbol: "pcs",
		Hidden: "secret",
		NoTag:  "ignored",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["row_version"])
	assert.Equal(t, "UN-001", m["code"])
	assert.Equal(t, "Piece", m["name"])
	assert.Equal(t, "pcs", m["symbol"])
	_, hasHidden := m["-"]
	assert.False(t, hasHidden)
	assert.NotContains(t, m, "NoTag")
}

func TestStructToMap_Pointer(t *testing.T) {
	doc := struct {
		entity.BaseDocument
		Number int `db:"number"`
	}{
		BaseDocument: entity.NewBaseDocument(),
		Number:       42,
	}

	m := StructToMap(&doc)
	assert.Equal(t, 42, m["number"])
	assert.IsType(t, time.Time{}, m["created_at"])
}
