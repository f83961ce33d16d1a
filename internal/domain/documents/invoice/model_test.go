package invoice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsledger/internal/core/entity"
	"partsledger/internal/core/id"
	"partsledger/internal/core/types"
)

func TestInvoice_Validate(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	valid := New(1, date, id.New(), id.New())
	assert.NoError(t, valid.Validate(ctx))

	zero := New(0, date, id.New(), id.New())
	assert.Error(t, zero.Validate(ctx))

	negative := New(-5, date, id.New(), id.New())
	assert.Error(t, negative.Validate(ctx))

	noDate := New(1, time.Time{}, id.New(), id.New())
	assert.Error(t, noDate.Validate(ctx))

	noCompany := New(1, date, id.Nil(), id.New())
	assert.Error(t, noCompany.Validate(ctx))

	noMonth := New(1, date, id.New(), id.Nil())
	assert.Error(t, noMonth.Validate(ctx))
}

func TestVersion_Validate(t *testing.T) {
	ctx := context.Background()

	v := NewVersion(id.New(), 1, "blob/a", "june.xlsx")
	assert.NoError(t, v.Validate(ctx))

	v = NewVersion(id.New(), 0, "blob/a", "june.xlsx")
	assert.Error(t, v.Validate(ctx))

	v = NewVersion(id.New(), 1, "", "june.xlsx")
	assert.Error(t, v.Validate(ctx))
}

func TestItem_UnitUnknown(t *testing.T) {
	unitID := id.New()

	known := NewItem(id.New(), id.New(), "bearing", types.MustQuantity("1"), &unitID)
	assert.False(t, known.UnitUnknown())

	unknown := NewItem(id.New(), id.New(), "bearing", types.MustQuantity("1"), nil)
	assert.True(t, unknown.UnitUnknown())
}

func TestItem_Validate_Quantity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		quantity string
		wantErr  bool
	}{
		{"minimum", "0.01", false},
		{"whole", "3", false},
		{"two decimals", "12.25", false},
		{"zero", "0", true},
		{"negative", "-1", true},
		{"below minimum", "0.001", true},
		{"three decimals", "1.005", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewItem(id.New(), id.New(), "part", types.MustQuantity(tt.quantity), nil)
			err := item.Validate(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewParsingError_Truncation(t *testing.T) {
	long := strings.Repeat("x", entity.MaxErrorMessageLength+100)
	perr := NewParsingError(id.New(), long, nil)
	assert.Len(t, perr.Message, entity.MaxErrorMessageLength)

	short := NewParsingError(id.New(), "bad row", nil)
	assert.Equal(t, "bad row", short.Message)
}

func TestNewParsingError_TruncationKeepsValidUTF8(t *testing.T) {
	// multi-byte runes must not be split in half
	long := strings.Repeat("ш", entity.MaxErrorMessageLength)
	perr := NewParsingError(id.New(), long, nil)
	require.LessOrEqual(t, len(perr.Message), entity.MaxErrorMessageLength)
	assert.True(t, strings.HasSuffix(perr.Message, "ш"))
}
