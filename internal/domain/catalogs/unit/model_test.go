package unit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnit_Validate(t *testing.T) {
	ctx := context.Background()

	u := NewUnit("UN-001", "Piece", "pcs")
	assert.NoError(t, u.Validate(ctx))

	u = NewUnit("UN-002", "Piece", "")
	assert.Error(t, u.Validate(ctx))

	u = NewUnit("UN-003", "Piece", "pcs")
	u.Aliases = []string{"pc", " "}
	assert.Error(t, u.Validate(ctx))

	u = NewUnit("UN-004", "Piece", "pcs")
	u.Aliases = []string{"pc", "PC"}
	assert.Error(t, u.Validate(ctx), "case-insensitive duplicate alias")

	u = NewUnit("UN-005", "Piece", "pcs")
	u.Aliases = []string{"Pcs"}
	assert.Error(t, u.Validate(ctx), "alias duplicating the symbol")
}

func TestUnit_Matches(t *testing.T) {
	u := NewUnit("UN-001", "Piece", "pcs")
	u.Aliases = []string{"pc", "шт"}

	assert.True(t, u.Matches("pcs"))
	assert.True(t, u.Matches("PCS"))
	assert.True(t, u.Matches("piece"))
	assert.True(t, u.Matches(" pc "))
	assert.True(t, u.Matches("шт"))
	assert.False(t, u.Matches("kg"))
	assert.False(t, u.Matches(""))
	assert.False(t, u.Matches("   "))
}
