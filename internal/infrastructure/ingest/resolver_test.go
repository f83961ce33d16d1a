package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/core/types"
	"partsledger/internal/domain/catalogs/sparepart"
)

type fakePartLookup struct {
	parts map[string]*sparepart.SparePart
}

func (f *fakePartLookup) FindByName(_ context.Context, _ id.ID, name string) (*sparepart.SparePart, error) {
	if p, ok := f.parts[name]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("spare part", name)
}

type fakeUnitResolver struct {
	units map[string]id.ID
}

func (f *fakeUnitResolver) Resolve(_ context.Context, label string) (id.ID, bool, error) {
	if unitID, ok := f.units[label]; ok {
		return unitID, true, nil
	}
	return id.Nil(), false, nil
}

func TestResolverResolve(t *testing.T) {
	companyID := id.New()
	unitID := id.New()

	filter := sparepart.NewSparePart("SP-000001", "Oil filter", id.New(), companyID)
	filter.ID = id.New()

	parts := &fakePartLookup{parts: map[string]*sparepart.SparePart{"Oil filter": filter}}
	units := &fakeUnitResolver{units: map[string]id.ID{"pcs": unitID}}
	resolver := NewResolver(parts, units)

	parsed := ParseOutput{
		Rows: []RowCandidate{
			{Row: 2, Name: "Oil filter", Quantity: types.MustQuantity("2"), Unit: "pcs"},
			{Row: 3, Name: "Oil filter", Quantity: types.MustQuantity("1.5"), Unit: "barrels"},
			{Row: 4, Name: "Unknown part", Quantity: types.MustQuantity("1"), Unit: "pcs"},
		},
		Errors: []RowError{{Message: "quantity is missing", Row: intPtr(5)}},
	}

	results, err := resolver.Resolve(context.Background(), companyID, parsed)
	require.NoError(t, err)

	require.Len(t, results.Items, 2)
	assert.Equal(t, filter.ID, results.Items[0].SparePartID)
	require.NotNil(t, results.Items[0].UnitID)
	assert.Equal(t, unitID, *results.Items[0].UnitID)

	// Unmatched unit label is recorded as unknown, not an error.
	assert.Nil(t, results.Items[1].UnitID)
	assert.True(t, results.Items[1].UnitUnknown())

	// Parser diagnostics carry over, unmatched part becomes one more.
	require.Len(t, results.Errors, 2)
	assert.Equal(t, "quantity is missing", results.Errors[0].Message)
	assert.Contains(t, results.Errors[1].Message, "Unknown part")
	require.NotNil(t, results.Errors[1].Row)
	assert.Equal(t, 4, *results.Errors[1].Row)
}

func TestResolverEmptyUnitSkipsLookup(t *testing.T) {
	companyID := id.New()
	part := sparepart.NewSparePart("SP-000002", "Gasket", id.New(), companyID)
	part.ID = id.New()

	resolver := NewResolver(
		&fakePartLookup{parts: map[string]*sparepart.SparePart{"Gasket": part}},
		&fakeUnitResolver{},
	)

	results, err := resolver.Resolve(context.Background(), companyID, ParseOutput{
		Rows: []RowCandidate{{Row: 2, Name: "Gasket", Quantity: types.MustQuantity("3")}},
	})
	require.NoError(t, err)
	require.Len(t, results.Items, 1)
	assert.Nil(t, results.Items[0].UnitID)
}

func intPtr(i int) *int { return &i }
