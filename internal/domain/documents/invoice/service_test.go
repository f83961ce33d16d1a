package invoice

import (
	"context"
	"sort"
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

// fakeTxManager serializes transactions with a mutex, standing in for the
// invoice row lock a real database would take.
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
func (r *fakeMonths) Update(ctx context.Context, m *reportmonth.ReportMonth) error {
	r.months[m.ID] = m
	return nil
}
func (r *fakeMonths) Delete(ctx context.Context, monthID id.ID) error { return nil }
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
	mu       sync.Mutex
	invoices map[id.ID]*Invoice
	versions map[id.ID]*Version
	items    map[id.ID][]*Item
	perrs    map[id.ID][]*ParsingError

	// sabotageMax, when non-zero, is added to MaxVersionNumber results
	// after an insert happened, to simulate a writer that bypassed the
	// row lock.
	sabotageMax int
	inserted    bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices: make(map[id.ID]*Invoice),
		versions: make(map[id.ID]*Version),
		items:    make(map[id.ID][]*Item),
		perrs:    make(map[id.ID][]*ParsingError),
	}
}

func (r *fakeRepo) Create(ctx context.Context, inv *Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", invoiceID)
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return r.GetByID(ctx, invoiceID)
}

func (r *fakeRepo) Update(ctx context.Context, inv *Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[inv.ID]; !ok {
		return apperror.NewNotFound("invoice", inv.ID)
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invoices, invoiceID)
	for vid, v := range r.versions {
		if v.InvoiceID == invoiceID {
			delete(r.versions, vid)
			delete(r.items, vid)
			delete(r.perrs, vid)
		}
	}
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Invoice
	for _, inv := range r.invoices {
		cp := *inv
		items = append(items, &cp)
	}
	return domain.ListResult[*Invoice]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeRepo) ExistsNumber(ctx context.Context, reportMonthID id.ID, number int, excludeID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.ReportMonthID == reportMonthID && inv.Number == number && inv.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CreateVersion(ctx context.Context, v *Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.versions[v.ID] = &cp
	r.inserted = true
	return nil
}

func (r *fakeRepo) GetVersion(ctx context.Context, versionID id.ID) (*Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[versionID]
	if !ok {
		return nil, apperror.NewNotFound("invoice version", versionID)
	}
	cp := *v
	return &cp, nil
}

func (r *fakeRepo) ListVersions(ctx context.Context, invoiceID id.ID) ([]*Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Version
	for _, v := range r.versions {
		if v.InvoiceID == invoiceID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *fakeRepo) MaxVersionNumber(ctx context.Context, invoiceID id.ID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, v := range r.versions {
		if v.InvoiceID == invoiceID && v.Number > max {
			max = v.Number
		}
	}
	if r.inserted && r.sabotageMax != 0 {
		max += r.sabotageMax
	}
	return max, nil
}

func (r *fakeRepo) CountVersions(ctx context.Context, invoiceID id.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.versions {
		if v.InvoiceID == invoiceID {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) DeleteVersion(ctx context.Context, versionID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.versions, versionID)
	delete(r.items, versionID)
	delete(r.perrs, versionID)
	return nil
}

func (r *fakeRepo) CreateItems(ctx context.Context, items []*Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		cp := *item
		r.items[item.VersionID] = append(r.items[item.VersionID], &cp)
	}
	return nil
}

func (r *fakeRepo) ListItems(ctx context.Context, versionID id.ID) ([]*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Item(nil), r.items[versionID]...), nil
}

func (r *fakeRepo) CreateParsingErrors(ctx context.Context, errs []*ParsingError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, perr := range errs {
		cp := *perr
		r.perrs[perr.VersionID] = append(r.perrs[perr.VersionID], &cp)
	}
	return nil
}

func (r *fakeRepo) ListParsingErrors(ctx context.Context, versionID id.ID) ([]*ParsingError, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*ParsingError(nil), r.perrs[versionID]...), nil
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

func (f *fixture) createInvoice(t *testing.T, number int) *Invoice {
	t.Helper()
	inv := New(number, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), id.New(), f.month.ID)
	require.NoError(t, f.svc.Create(context.Background(), inv))
	return inv
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t, 42)

	got, err := f.svc.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, got.Number)
	assert.Nil(t, got.ActiveVersionID)
}

func TestService_Create_DateOutsideMonth(t *testing.T) {
	f := newFixture(t)
	inv := New(1, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), id.New(), f.month.ID)

	err := f.svc.Create(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Create_DuplicateNumberInMonth(t *testing.T) {
	f := newFixture(t)
	f.createInvoice(t, 7)

	dup := New(7, time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC), id.New(), f.month.ID)
	err := f.svc.Create(context.Background(), dup)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestService_Create_ClosedMonth(t *testing.T) {
	f := newFixture(t)
	closed := f.months.add(2026, 5, true)

	inv := New(1, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), id.New(), closed.ID)
	err := f.svc.Create(context.Background(), inv)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodClosed, appErr.Code)
}

func TestService_AddVersion_SequentialAndActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.createInvoice(t, 1)

	v1, err := f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/a", Name: "june.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Number)

	v2, err := f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/b", Name: "june-fixed.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Number)

	got, err := f.svc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ActiveVersionID)
	assert.Equal(t, v2.ID, *got.ActiveVersionID)
}

func TestService_AddVersion_ConcurrentUploads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.createInvoice(t, 1)

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/x", Name: "u.xlsx"})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	versions, err := f.svc.Versions(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, versions, workers)

	// numbers must be exactly 1..workers, no gaps, no duplicates
	for i, v := range versions {
		assert.Equal(t, i+1, v.Number)
	}

	// the active pointer tracks the highest version
	got, err := f.svc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ActiveVersionID)
	assert.Equal(t, versions[workers-1].ID, *got.ActiveVersionID)
}

func TestService_AddVersion_ClosedMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.createInvoice(t, 1)

	f.month.Close(time.Now())
	f.months.months[f.month.ID] = f.month

	_, err := f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/a", Name: "late.xlsx"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodClosed, appErr.Code)

	versions, err := f.repo.ListVersions(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestService_AddVersion_MissingFile(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t, 1)

	_, err := f.svc.AddVersion(context.Background(), inv.ID, FileUpload{})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_AddVersion_ConsistencyFault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.createInvoice(t, 1)

	// simulate a writer that slipped a version in past the lock
	f.repo.sabotageMax = 1

	_, err := f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/a", Name: "u.xlsx"})
	require.Error(t, err)
	assert.True(t, apperror.IsConsistency(err))
	// a consistency fault is the system's fault, not the caller's
	assert.False(t, apperror.IsValidation(err))
}

func TestService_DeleteVersion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.createInvoice(t, 1)

	v1, err := f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/a", Name: "a.xlsx"})
	require.NoError(t, err)
	v2, err := f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/b", Name: "b.xlsx"})
	require.NoError(t, err)

	// v2 is active: deleting it must fail
	err = f.svc.DeleteVersion(ctx, v2.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeActiveVersion, appErr.Code)

	// v1 is not active: deleting it succeeds
	require.NoError(t, f.svc.DeleteVersion(ctx, v1.ID))

	versions, err := f.svc.Versions(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, v2.ID, versions[0].ID)
}

func TestService_Update_CannotMoveVersionedInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.createInvoice(t, 1)

	_, err := f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/a", Name: "a.xlsx"})
	require.NoError(t, err)

	other := f.months.add(2026, 7, false)
	moved, err := f.svc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	moved.ReportMonthID = other.ID
	moved.Date = time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)

	err = f.svc.Update(ctx, moved)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_AttachParseResults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.createInvoice(t, 1)

	v, err := f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/a", Name: "a.xlsx"})
	require.NoError(t, err)

	row := 4
	results := ParseResults{
		Items: []*Item{
			NewItem(v.ID, id.New(), "bearing 6204", types.MustQuantity("2"), nil),
		},
		Errors: []*ParsingError{
			NewParsingError(v.ID, "row 4: quantity is not a number", &row),
		},
	}
	require.NoError(t, f.svc.AttachParseResults(ctx, v.ID, results))

	items, perrs, err := f.svc.VersionContent(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].UnitUnknown())
	require.Len(t, perrs, 1)
	assert.Equal(t, "row 4: quantity is not a number", perrs[0].Message)

	// attaching twice is a conflict, items are immutable
	err = f.svc.AttachParseResults(ctx, v.ID, results)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestService_ActiveItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := f.createInvoice(t, 1)

	// no versions yet: empty, not an error
	items, err := f.svc.ActiveItems(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	v, err := f.svc.AddVersion(ctx, inv.ID, FileUpload{Ref: "blob/a", Name: "a.xlsx"})
	require.NoError(t, err)
	unitID := id.New()
	require.NoError(t, f.svc.AttachParseResults(ctx, v.ID, ParseResults{
		Items: []*Item{NewItem(v.ID, id.New(), "oil filter", types.MustQuantity("1.50"), &unitID)},
	}))

	items, err = f.svc.ActiveItems(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].UnitUnknown())
}
