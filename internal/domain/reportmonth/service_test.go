package reportmonth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/domain"
)

// fakeTxManager serializes transactions with a mutex, standing in for the
// row locks a real database would take.
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeRepo struct {
	months   map[id.ID]*ReportMonth
	invoices map[id.ID]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		months:   make(map[id.ID]*ReportMonth),
		invoices: make(map[id.ID]int64),
	}
}

func (r *fakeRepo) Create(ctx context.Context, m *ReportMonth) error {
	cp := *m
	r.months[m.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, monthID id.ID) (*ReportMonth, error) {
	m, ok := r.months[monthID]
	if !ok {
		return nil, apperror.NewNotFound("report month", monthID)
	}
	cp := *m
	return &cp, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, monthID id.ID) (*ReportMonth, error) {
	return r.GetByID(ctx, monthID)
}

func (r *fakeRepo) GetByPeriod(ctx context.Context, year, month int) (*ReportMonth, error) {
	for _, m := range r.months {
		if m.Year == year && m.Month == month {
			cp := *m
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("report month", nil)
}

func (r *fakeRepo) Update(ctx context.Context, m *ReportMonth) error {
	if _, ok := r.months[m.ID]; !ok {
		return apperror.NewNotFound("report month", m.ID)
	}
	cp := *m
	r.months[m.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, monthID id.ID) error {
	delete(r.months, monthID)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*ReportMonth], error) {
	var items []*ReportMonth
	for _, m := range r.months {
		cp := *m
		items = append(items, &cp)
	}
	return domain.ListResult[*ReportMonth]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeRepo) ExistsPeriod(ctx context.Context, year, month int, excludeID id.ID) (bool, error) {
	for _, m := range r.months {
		if m.Year == year && m.Month == month && m.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CountInvoices(ctx context.Context, monthID id.ID) (int64, error) {
	return r.invoices[monthID], nil
}

func newTestService(repo Repository, policy Policy) *Service {
	svc := NewService(repo, &fakeTxManager{}, policy)
	svc.WithClock(func() time.Time {
		return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	})
	return svc
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, Policy{RejectPastMonths: true})

	m, err := svc.Create(ctx, 2026, 6)
	require.NoError(t, err)
	assert.Equal(t, "2026-06", m.Period())
	assert.False(t, m.IsClosed)
}

func TestService_Create_DuplicatePeriod(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, Policy{})

	_, err := svc.Create(ctx, 2026, 6)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 2026, 6)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestService_Create_PastMonthPolicy(t *testing.T) {
	ctx := context.Background()

	// policy on: past months rejected, current and future allowed
	svc := newTestService(newFakeRepo(), Policy{RejectPastMonths: true})

	_, err := svc.Create(ctx, 2026, 5)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(ctx, 2026, 6)
	assert.NoError(t, err)

	_, err = svc.Create(ctx, 2026, 7)
	assert.NoError(t, err)

	// policy off: backfill allowed
	svc = newTestService(newFakeRepo(), Policy{RejectPastMonths: false})
	_, err = svc.Create(ctx, 2024, 1)
	assert.NoError(t, err)
}

func TestService_CloseAndReopen_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, Policy{})

	m, err := svc.Create(ctx, 2026, 6)
	require.NoError(t, err)

	closed, err := svc.Close(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, closed.IsClosed)
	require.NotNil(t, closed.ClosedAt)
	stamped := *closed.ClosedAt

	// double close succeeds and keeps the first timestamp
	closed2, err := svc.Close(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, closed2.IsClosed)
	assert.Equal(t, stamped, *closed2.ClosedAt)

	reopened, err := svc.Reopen(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, reopened.IsClosed)
	assert.Nil(t, reopened.ClosedAt)

	// double reopen is also a no-op
	reopened2, err := svc.Reopen(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, reopened2.IsClosed)
}

func TestService_Update_ClosedMonthImmutable(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, Policy{})

	m, err := svc.Create(ctx, 2026, 6)
	require.NoError(t, err)
	_, err = svc.Close(ctx, m.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, m.ID, 2026, 7)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodClosed, appErr.Code)

	// a no-op update of a closed month is fine
	same, err := svc.Update(ctx, m.ID, 2026, 6)
	require.NoError(t, err)
	assert.True(t, same.IsClosed)
}

func TestService_Update_DuplicateTarget(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, Policy{})

	m1, err := svc.Create(ctx, 2026, 6)
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2026, 7)
	require.NoError(t, err)

	_, err = svc.Update(ctx, m1.ID, 2026, 7)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestService_Delete_ProtectedByInvoices(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, Policy{})

	m, err := svc.Create(ctx, 2026, 6)
	require.NoError(t, err)

	repo.invoices[m.ID] = 3
	err = svc.Delete(ctx, m.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeProtected, appErr.Code)

	repo.invoices[m.ID] = 0
	require.NoError(t, svc.Delete(ctx, m.ID))
	_, err = svc.GetByID(ctx, m.ID)
	assert.True(t, apperror.IsNotFound(err))
}
