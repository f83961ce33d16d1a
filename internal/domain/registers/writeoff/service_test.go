package writeoff

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/core/types"
	"partsledger/internal/domain"
	"partsledger/internal/domain/reportmonth"
)

type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeMonths struct {
	months map[id.ID]*reportmonth.ReportMonth
}

func newFakeMonths() *fakeMonths {
	return &fakeMonths{months: make(map[id.ID]*reportmonth.ReportMonth)}
}

func (r *fakeMonths) add(year, month int, closed bool) *reportmonth.ReportMonth {
	m := reportmonth.New(year, month)
	if closed {
		m.Close(time.Now())
	}
	r.months[m.ID] = m
	return m
}

func (r *fakeMonths) GetByID(ctx context.Context, monthID id.ID) (*reportmonth.ReportMonth, error) {
	m, ok := r.months[monthID]
	if !ok {
		return nil, apperror.NewNotFound("report month", monthID)
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMonths) Create(ctx context.Context, m *reportmonth.ReportMonth) error { return nil }
func (r *fakeMonths) GetForUpdate(ctx context.Context, monthID id.ID) (*reportmonth.ReportMonth, error) {
	return r.GetByID(ctx, monthID)
}
func (r *fakeMonths) GetByPeriod(ctx context.Context, year, month int) (*reportmonth.ReportMonth, error) {
	return nil, apperror.NewNotFound("report month", nil)
}
func (r *fakeMonths) Update(ctx context.Context, m *reportmonth.ReportMonth) error { return nil }
func (r *fakeMonths) Delete(ctx context.Context, monthID id.ID) error              { return nil }
func (r *fakeMonths) List(ctx context.Context, filter reportmonth.ListFilter) (domain.ListResult[*reportmonth.ReportMonth], error) {
	return domain.ListResult[*reportmonth.ReportMonth]{}, nil
}
func (r *fakeMonths) ExistsPeriod(ctx context.Context, year, month int, excludeID id.ID) (bool, error) {
	return false, nil
}
func (r *fakeMonths) CountInvoices(ctx context.Context, monthID id.ID) (int64, error) {
	return 0, nil
}

type fakeRepo struct {
	facts map[id.ID]*Fact
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{facts: make(map[id.ID]*Fact)}
}

func (r *fakeRepo) Create(ctx context.Context, fact *Fact) error {
	cp := *fact
	r.facts[fact.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, factID id.ID) (*Fact, error) {
	f, ok := r.facts[factID]
	if !ok {
		return nil, apperror.NewNotFound("write-off fact", factID)
	}
	cp := *f
	return &cp, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, factID id.ID) (*Fact, error) {
	return r.GetByID(ctx, factID)
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, factID id.ID, status Status) error {
	f, ok := r.facts[factID]
	if !ok {
		return apperror.NewNotFound("write-off fact", factID)
	}
	f.Status = status
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Fact], error) {
	var items []*Fact
	for _, f := range r.facts {
		if filter.Status != nil && f.Status != *filter.Status {
			continue
		}
		if filter.Source != nil && f.Source != *filter.Source {
			continue
		}
		cp := *f
		items = append(items, &cp)
	}
	return domain.ListResult[*Fact]{Items: items, TotalCount: int64(len(items))}, nil
}

func testSnapshot() EquipmentSnapshot {
	return EquipmentSnapshot{
		EquipmentName:   "Conveyor line 3",
		InventoryNumber: "INV-0042",
		SequenceNumber:  3,
		CompanyName:     "Northern Mining",
	}
}

type fixture struct {
	svc    *Service
	repo   *fakeRepo
	months *fakeMonths
	month  *reportmonth.ReportMonth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	months := newFakeMonths()
	month := months.add(2026, 6, false)
	return &fixture{
		svc:    NewService(repo, months, &fakeTxManager{}),
		repo:   repo,
		months: months,
		month:  month,
	}
}

func TestFact_Validate_SourceLinkage(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	itemID := id.New()

	// invoice source requires the item reference
	fromInvoice := NewFact(id.New(), types.MustQuantity("1"), date, id.New(), testSnapshot(), SourceInvoice, &itemID)
	assert.NoError(t, fromInvoice.Validate(ctx))

	fromInvoice.InvoiceItemID = nil
	assert.Error(t, fromInvoice.Validate(ctx))

	// manual source forbids the item reference
	manual := NewFact(id.New(), types.MustQuantity("1"), date, id.New(), testSnapshot(), SourceManual, nil)
	assert.NoError(t, manual.Validate(ctx))

	manual.InvoiceItemID = &itemID
	assert.Error(t, manual.Validate(ctx))

	// unknown source
	bad := NewFact(id.New(), types.MustQuantity("1"), date, id.New(), testSnapshot(), Source("import"), nil)
	assert.Error(t, bad.Validate(ctx))
}

func TestFact_Validate_Snapshot(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	snap := testSnapshot()
	snap.EquipmentName = ""
	fact := NewFact(id.New(), types.MustQuantity("1"), date, id.New(), snap, SourceManual, nil)
	assert.Error(t, fact.Validate(ctx))
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	fact := NewFact(id.New(), types.MustQuantity("2.50"),
		time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), f.month.ID, testSnapshot(), SourceManual, nil)
	require.NoError(t, f.svc.Create(ctx, fact))

	got, err := f.svc.GetByID(ctx, fact.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
}

func TestService_Create_ClosedMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	closed := f.months.add(2026, 5, true)

	fact := NewFact(id.New(), types.MustQuantity("1"),
		time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), closed.ID, testSnapshot(), SourceManual, nil)
	err := f.svc.Create(ctx, fact)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodClosed, appErr.Code)
}

func TestService_Cancel_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	fact := NewFact(id.New(), types.MustQuantity("1"),
		time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), f.month.ID, testSnapshot(), SourceManual, nil)
	require.NoError(t, f.svc.Create(ctx, fact))

	canceled, err := f.svc.Cancel(ctx, fact.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, canceled.Status)

	// second cancel succeeds and changes nothing
	canceled2, err := f.svc.Cancel(ctx, fact.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, canceled2.Status)
}

func TestService_CloneAsManual(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	itemID := id.New()

	source := NewFact(id.New(), types.MustQuantity("4"),
		time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), f.month.ID, testSnapshot(), SourceInvoice, &itemID)
	require.NoError(t, f.svc.Create(ctx, source))

	_, err := f.svc.Cancel(ctx, source.ID)
	require.NoError(t, err)

	clone, err := f.svc.CloneAsManual(ctx, source.ID, types.MustQuantity("3.50"),
		time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	assert.Equal(t, SourceManual, clone.Source)
	assert.Nil(t, clone.InvoiceItemID)
	assert.Equal(t, StatusActive, clone.Status)
	assert.Equal(t, source.SparePartID, clone.SparePartID)
	assert.Equal(t, source.ReportMonthID, clone.ReportMonthID)
	assert.Equal(t, source.EquipmentSnapshot, clone.EquipmentSnapshot)
	assert.Equal(t, "3.5", clone.Quantity.String())

	moved := testSnapshot()
	moved.EquipmentName = "crusher line B"
	withSnap, err := f.svc.CloneAsManual(ctx, source.ID, types.MustQuantity("1"),
		time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC), &moved)
	require.NoError(t, err)
	assert.Equal(t, moved, withSnap.EquipmentSnapshot)

	// the source fact is untouched
	original, err := f.svc.GetByID(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, original.Status)
	assert.Equal(t, SourceInvoice, original.Source)
}

func TestService_List_FilterByStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	date := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	active := NewFact(id.New(), types.MustQuantity("1"), date, f.month.ID, testSnapshot(), SourceManual, nil)
	require.NoError(t, f.svc.Create(ctx, active))
	canceled := NewFact(id.New(), types.MustQuantity("1"), date, f.month.ID, testSnapshot(), SourceManual, nil)
	require.NoError(t, f.svc.Create(ctx, canceled))
	_, err := f.svc.Cancel(ctx, canceled.ID)
	require.NoError(t, err)

	status := StatusActive
	result, err := f.svc.List(ctx, ListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, active.ID, result.Items[0].ID)
}
