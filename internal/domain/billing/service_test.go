package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
)

// --- In-memory fakes ---

// memStore backs all billing repositories for tests. Ordering of
// ListActiveByClient follows insertion order, which matches creation
// time since the test clock is strictly increasing.
type memStore struct {
	mu          sync.Mutex
	debts       map[id.ID]*Debt
	debtOrder   []id.ID
	payments    map[id.ID]*Payment
	payOrder    []id.ID
	allocations []Allocation
	balances    map[id.ID]types.Money
}

func newMemStore() *memStore {
	return &memStore{
		debts:    make(map[id.ID]*Debt),
		payments: make(map[id.ID]*Payment),
		balances: make(map[id.ID]types.Money),
	}
}

func (m *memStore) Create(ctx context.Context, debt *Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *debt
	m.debts[debt.ID] = &cp
	m.debtOrder = append(m.debtOrder, debt.ID)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, debtID id.ID) (*Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debts[debtID]
	if !ok {
		return nil, apperror.NewNotFound("debt", debtID.String())
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) Update(ctx context.Context, debt *Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.debts[debt.ID]; !ok {
		return apperror.NewNotFound("debt", debt.ID.String())
	}
	cp := *debt
	m.debts[debt.ID] = &cp
	return nil
}

func (m *memStore) ListByClient(ctx context.Context, clientID id.ID) ([]Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Debt
	for _, did := range m.debtOrder {
		d := m.debts[did]
		if d.ClientID == clientID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveByClient(ctx context.Context, clientID id.ID) ([]Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Debt
	for _, did := range m.debtOrder {
		d := m.debts[did]
		if d.ClientID == clientID && d.IsActive() {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) SumActiveByClient(ctx context.Context, clientID id.ID) (types.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := types.Zero()
	for _, d := range m.debts {
		if d.ClientID == clientID && d.IsActive() {
			sum = sum.Add(d.Amount)
		}
	}
	return sum, nil
}

// paymentStore adapts memStore to PaymentRepository; Go does not allow
// two methods named Create on one receiver.
type paymentStore struct{ *memStore }

func (m paymentStore) Create(ctx context.Context, payment *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *payment
	m.payments[payment.ID] = &cp
	m.payOrder = append(m.payOrder, payment.ID)
	return nil
}

func (m paymentStore) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return nil, apperror.NewNotFound("payment", paymentID.String())
	}
	cp := *p
	return &cp, nil
}

func (m paymentStore) Update(ctx context.Context, payment *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.ID]; !ok {
		return apperror.NewNotFound("payment", payment.ID.String())
	}
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m paymentStore) ListActiveByClient(ctx context.Context, clientID id.ID) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Payment
	for _, pid := range m.payOrder {
		p := m.payments[pid]
		if p.ClientID == clientID && p.IsActive() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m paymentStore) SumActiveByClient(ctx context.Context, clientID id.ID) (types.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := types.Zero()
	for _, p := range m.payments {
		if p.ClientID == clientID && p.IsActive() {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (m *memStore) Record(ctx context.Context, allocation Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocations = append(m.allocations, allocation)
	return nil
}

func (m *memStore) SumByDebt(ctx context.Context, debtID id.ID) (types.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := types.Zero()
	for _, a := range m.allocations {
		if a.DebtID != debtID {
			continue
		}
		if p, ok := m.payments[a.PaymentID]; ok && p.IsActive() {
			sum = sum.Add(a.Amount)
		}
	}
	return sum, nil
}

func (m *memStore) SumByDebts(ctx context.Context, debtIDs []id.ID) (map[id.ID]types.Money, error) {
	out := make(map[id.ID]types.Money, len(debtIDs))
	for _, did := range debtIDs {
		sum, _ := m.SumByDebt(context.Background(), did)
		if !sum.IsZero() {
			out[did] = sum
		}
	}
	return out, nil
}

func (m *memStore) SumByPayment(ctx context.Context, paymentID id.ID) (types.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := types.Zero()
	for _, a := range m.allocations {
		if a.PaymentID == paymentID {
			sum = sum.Add(a.Amount)
		}
	}
	return sum, nil
}

func (m *memStore) ListByPayment(ctx context.Context, paymentID id.ID) ([]Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Allocation
	for _, a := range m.allocations {
		if a.PaymentID == paymentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) UpdateBalance(ctx context.Context, clientID id.ID, balance types.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[clientID] = balance
	return nil
}

// noTx runs the function directly; transactional behavior is exercised
// against a real database, not here.
type noTx struct{}

func (noTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// staticClients validates against a fixed client -> owner map.
type staticClients struct {
	owners map[id.ID]id.ID
}

func (s *staticClients) ValidateAccess(ctx context.Context, clientID id.ID, ownerID *id.ID) error {
	owner, ok := s.owners[clientID]
	if !ok {
		return apperror.NewNotFound("client", clientID.String())
	}
	if ownerID != nil && owner != *ownerID {
		return apperror.NewForbidden("client belongs to another provider")
	}
	return nil
}

type auditRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (a *auditRecorder) LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entityType+":"+action)
	return nil
}

// --- Test environment ---

type env struct {
	store      *memStore
	debtSvc    *DebtService
	paymentSvc *PaymentService
	allocator  *Allocator
	reconciler *Reconciler
	audit      *auditRecorder
	clientID   id.ID
	operatorID id.ID
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := newMemStore()
	payments := paymentStore{store}
	clientID := id.New()
	operatorID := id.New()

	clients := &staticClients{owners: map[id.ID]id.ID{clientID: operatorID}}
	allocator := NewAllocator(store, payments, store)
	reconciler := NewReconciler(store, payments, store)
	locks := NewClientLocks()
	audit := &auditRecorder{}

	debtSvc := NewDebtService(store, store, allocator, reconciler, clients, noTx{}, locks, audit)
	paymentSvc := NewPaymentService(payments, allocator, reconciler, clients, noTx{}, locks, audit)

	// Strictly increasing clock so oldest-first ordering is deterministic.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	allocator.now = clock
	debtSvc.now = clock
	paymentSvc.now = clock

	return &env{
		store:      store,
		debtSvc:    debtSvc,
		paymentSvc: paymentSvc,
		allocator:  allocator,
		reconciler: reconciler,
		audit:      audit,
		clientID:   clientID,
		operatorID: operatorID,
	}
}

func (e *env) addDebt(t *testing.T, amount string) *Debt {
	t.Helper()
	debt, err := e.debtSvc.Create(context.Background(), CreateDebtInput{
		ClientID:  e.clientID,
		Amount:    types.MustMoney(amount),
		Reason:    "Mensualidad",
		CreatorID: e.operatorID,
	})
	require.NoError(t, err)
	return debt
}

func (e *env) addPayment(t *testing.T, amount string, debtID *id.ID) *Payment {
	t.Helper()
	payment, err := e.paymentSvc.Create(context.Background(), CreatePaymentInput{
		ClientID:  e.clientID,
		Amount:    types.MustMoney(amount),
		Reference: "ref-001",
		CreatorID: e.operatorID,
		DebtID:    debtID,
	})
	require.NoError(t, err)
	return payment
}

func (e *env) balance(t *testing.T) types.Money {
	t.Helper()
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	return e.store.balances[e.clientID]
}

func (e *env) outstanding(t *testing.T, debtID id.ID) types.Money {
	t.Helper()
	debt, err := e.store.GetByID(context.Background(), debtID)
	require.NoError(t, err)
	out, err := e.allocator.Outstanding(context.Background(), debt)
	require.NoError(t, err)
	return out
}

// checkInvariants asserts the ledger sum bounds for every debt and
// payment in the store, with a one-cent rounding tolerance.
func (e *env) checkInvariants(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	tolerance := types.MustMoney("0.01")

	e.store.mu.Lock()
	debts := make([]*Debt, 0, len(e.store.debts))
	for _, d := range e.store.debts {
		debts = append(debts, d)
	}
	payments := make([]*Payment, 0, len(e.store.payments))
	for _, p := range e.store.payments {
		payments = append(payments, p)
	}
	e.store.mu.Unlock()

	for _, d := range debts {
		sum, err := e.store.SumByDebt(ctx, d.ID)
		require.NoError(t, err)
		assert.True(t, sum.LessThanOrEqual(d.Amount.Add(tolerance)),
			"debt %s over-allocated: %s > %s", d.ID, sum, d.Amount)
	}
	for _, p := range payments {
		sum, err := e.store.SumByPayment(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, sum.LessThanOrEqual(p.Amount.Add(tolerance)),
			"payment %s over-allocated: %s > %s", p.ID, sum, p.Amount)
	}
}

// --- Scenarios ---

func TestPaymentCoversDebtExactly(t *testing.T) {
	e := newEnv(t)

	debt := e.addDebt(t, "50.00")
	assert.Equal(t, "-50", e.balance(t).String())

	e.addPayment(t, "50.00", nil)

	assert.True(t, e.outstanding(t, debt.ID).IsZero())
	assert.True(t, e.balance(t).IsZero())
	e.checkInvariants(t)
}

func TestPartialPaymentLeavesOutstanding(t *testing.T) {
	e := newEnv(t)

	debt := e.addDebt(t, "100.00")
	e.addPayment(t, "30.00", nil)

	assert.Equal(t, "70", e.outstanding(t, debt.ID).String())
	assert.Equal(t, "-70", e.balance(t).String())
	e.checkInvariants(t)
}

func TestOverpaymentSpillsOldestFirst(t *testing.T) {
	e := newEnv(t)

	first := e.addDebt(t, "20.00")
	second := e.addDebt(t, "30.00")
	payment := e.addPayment(t, "60.00", nil)

	assert.True(t, e.outstanding(t, first.ID).IsZero())
	assert.True(t, e.outstanding(t, second.ID).IsZero())
	assert.Equal(t, "10", e.balance(t).String())

	allocated, err := e.store.SumByPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", allocated.String())
	e.checkInvariants(t)
}

func TestCancelPaymentRestoresDebtAndKeepsLedger(t *testing.T) {
	e := newEnv(t)

	first := e.addDebt(t, "20.00")
	second := e.addDebt(t, "30.00")
	payment := e.addPayment(t, "60.00", nil)

	_, err := e.paymentSvc.Cancel(context.Background(), payment.ID, e.operatorID)
	require.NoError(t, err)

	// Outstanding comes back because the allocations' payment is no
	// longer Active; the ledger entries themselves remain.
	assert.Equal(t, "20", e.outstanding(t, first.ID).String())
	assert.Equal(t, "30", e.outstanding(t, second.ID).String())
	assert.Equal(t, "-50", e.balance(t).String())

	entries, err := e.store.ListByPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	stored, err := paymentStore{e.store}.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, stored.State)
	require.NotNil(t, stored.EditedAt)
	e.checkInvariants(t)
}

func TestCancelTwiceReturnsAlreadyCancelled(t *testing.T) {
	e := newEnv(t)

	e.addDebt(t, "10.00")
	payment := e.addPayment(t, "10.00", nil)

	_, err := e.paymentSvc.Cancel(context.Background(), payment.ID, e.operatorID)
	require.NoError(t, err)

	_, err = e.paymentSvc.Cancel(context.Background(), payment.ID, e.operatorID)
	require.Error(t, err)
	assert.True(t, apperror.IsAlreadyCancelled(err))
}

func TestCancelMissingPaymentReturnsNotFound(t *testing.T) {
	e := newEnv(t)

	_, err := e.paymentSvc.Cancel(context.Background(), id.New(), e.operatorID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPreferredDebtPaidBeforeOlderOnes(t *testing.T) {
	e := newEnv(t)

	older := e.addDebt(t, "40.00")
	newer := e.addDebt(t, "25.00")

	e.addPayment(t, "30.00", &newer.ID)

	assert.True(t, e.outstanding(t, newer.ID).IsZero())
	assert.Equal(t, "35", e.outstanding(t, older.ID).String())
	e.checkInvariants(t)
}

func TestUnknownPreferredDebtFallsBackSilently(t *testing.T) {
	e := newEnv(t)

	debt := e.addDebt(t, "40.00")
	ghost := id.New()

	e.addPayment(t, "30.00", &ghost)

	assert.Equal(t, "10", e.outstanding(t, debt.ID).String())
	assert.Equal(t, "-10", e.balance(t).String())
}

func TestCancelledPreferredDebtIsSkipped(t *testing.T) {
	e := newEnv(t)

	active := e.addDebt(t, "40.00")
	cancelled := e.addDebt(t, "25.00")

	state := StateCancelled
	_, err := e.debtSvc.Update(context.Background(), cancelled.ID, UpdateDebtInput{
		State:    &state,
		EditorID: e.operatorID,
	})
	require.NoError(t, err)

	e.addPayment(t, "30.00", &cancelled.ID)

	assert.True(t, e.outstanding(t, cancelled.ID).IsZero())
	assert.Equal(t, "10", e.outstanding(t, active.ID).String())
}

func TestPaymentWithoutDebtsBecomesCredit(t *testing.T) {
	e := newEnv(t)

	payment := e.addPayment(t, "75.50", nil)

	allocated, err := e.store.SumByPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.True(t, allocated.IsZero())
	assert.Equal(t, "75.5", e.balance(t).String())
}

func TestNewDebtAbsorbsExistingCredit(t *testing.T) {
	e := newEnv(t)

	payment := e.addPayment(t, "100.00", nil)
	debt := e.addDebt(t, "60.00")

	assert.True(t, e.outstanding(t, debt.ID).IsZero())
	assert.Equal(t, "40", e.balance(t).String())

	allocated, err := e.store.SumByPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "60", allocated.String())
	e.checkInvariants(t)
}

func TestCreditAbsorptionUsesOldestPaymentsFirst(t *testing.T) {
	e := newEnv(t)

	first := e.addPayment(t, "30.00", nil)
	second := e.addPayment(t, "30.00", nil)
	e.addDebt(t, "40.00")

	fromFirst, err := e.store.SumByPayment(context.Background(), first.ID)
	require.NoError(t, err)
	fromSecond, err := e.store.SumByPayment(context.Background(), second.ID)
	require.NoError(t, err)

	assert.Equal(t, "30", fromFirst.String())
	assert.Equal(t, "10", fromSecond.String())
	assert.Equal(t, "20", e.balance(t).String())
}

func TestPaymentValidationRejectsBeforeAnyWrite(t *testing.T) {
	e := newEnv(t)
	e.addDebt(t, "50.00")
	before := len(e.store.allocations)

	_, err := e.paymentSvc.Create(context.Background(), CreatePaymentInput{
		ClientID:  e.clientID,
		Amount:    types.Zero(),
		CreatorID: e.operatorID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	assert.Empty(t, e.store.payments)
	assert.Len(t, e.store.allocations, before)
}

func TestDebtValidationRejectsNonPositiveAmount(t *testing.T) {
	e := newEnv(t)

	_, err := e.debtSvc.Create(context.Background(), CreateDebtInput{
		ClientID:  e.clientID,
		Amount:    types.MustMoney("-5"),
		Reason:    "Mensualidad",
		CreatorID: e.operatorID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestAccessValidation(t *testing.T) {
	e := newEnv(t)
	otherOwner := id.New()

	_, err := e.debtSvc.Create(context.Background(), CreateDebtInput{
		ClientID:  id.New(),
		Amount:    types.MustMoney("10"),
		Reason:    "Mensualidad",
		CreatorID: e.operatorID,
	})
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.debtSvc.Create(context.Background(), CreateDebtInput{
		ClientID:  e.clientID,
		Amount:    types.MustMoney("10"),
		Reason:    "Mensualidad",
		OwnerID:   &otherOwner,
		CreatorID: e.operatorID,
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

// Allocate applied twice for one payment writes a second allocation
// set. The payment service calls it exactly once per creation; this
// test pins the behavior rather than blessing it.
func TestAllocateIsNotIdempotent(t *testing.T) {
	e := newEnv(t)

	e.addDebt(t, "100.00")
	payment := e.addPayment(t, "30.00", nil)

	_, err := e.allocator.Allocate(context.Background(), payment.ID, payment.Amount, e.clientID, nil)
	require.NoError(t, err)

	allocated, err := e.store.SumByPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "60", allocated.String())
}

func TestRoundingAcrossManySmallDebts(t *testing.T) {
	e := newEnv(t)

	for i := 0; i < 3; i++ {
		e.addDebt(t, "33.33")
	}
	e.addPayment(t, "99.99", nil)

	assert.True(t, e.balance(t).IsZero())
	for _, did := range e.store.debtOrder {
		assert.True(t, e.outstanding(t, did).IsZero())
	}
	e.checkInvariants(t)
}

func TestUpdateDebtAmountReconcilesBalance(t *testing.T) {
	e := newEnv(t)

	debt := e.addDebt(t, "50.00")
	amount := types.MustMoney("80.00")
	updated, err := e.debtSvc.Update(context.Background(), debt.ID, UpdateDebtInput{
		Amount:   &amount,
		EditorID: e.operatorID,
	})
	require.NoError(t, err)

	assert.Equal(t, "80", updated.Amount.String())
	assert.Equal(t, "-80", e.balance(t).String())
	require.NotNil(t, updated.EditedAt)
}

func TestUpdateMissingDebtReturnsNotFound(t *testing.T) {
	e := newEnv(t)

	amount := types.MustMoney("10")
	_, err := e.debtSvc.Update(context.Background(), id.New(), UpdateDebtInput{
		Amount:   &amount,
		EditorID: e.operatorID,
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestListOutstandingSkipsSettledDebts(t *testing.T) {
	e := newEnv(t)

	paid := e.addDebt(t, "20.00")
	open := e.addDebt(t, "35.00")
	e.addPayment(t, "20.00", &paid.ID)

	list, err := e.debtSvc.ListOutstanding(context.Background(), e.clientID, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
	assert.Equal(t, "35", list[0].Outstanding.String())

	all, err := e.debtSvc.ListByClient(context.Background(), e.clientID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListByClientKeepsCancelledDebtsWithZeroOutstanding(t *testing.T) {
	e := newEnv(t)

	active := e.addDebt(t, "50.00")
	cancelled := e.addDebt(t, "25.00")

	state := StateCancelled
	_, err := e.debtSvc.Update(context.Background(), cancelled.ID, UpdateDebtInput{
		State:    &state,
		EditorID: e.operatorID,
	})
	require.NoError(t, err)

	all, err := e.debtSvc.ListByClient(context.Background(), e.clientID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, active.ID, all[0].ID)
	assert.Equal(t, "50", all[0].Outstanding.String())
	assert.Equal(t, cancelled.ID, all[1].ID)
	assert.Equal(t, StateCancelled, all[1].State)
	assert.True(t, all[1].Outstanding.IsZero())

	open, err := e.debtSvc.ListOutstanding(context.Background(), e.clientID, nil)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, active.ID, open[0].ID)
}

func TestMutationsAreAudited(t *testing.T) {
	e := newEnv(t)

	debt := e.addDebt(t, "10.00")
	payment := e.addPayment(t, "10.00", nil)
	_, err := e.paymentSvc.Cancel(context.Background(), payment.ID, e.operatorID)
	require.NoError(t, err)
	reason := "Instalación"
	_, err = e.debtSvc.Update(context.Background(), debt.ID, UpdateDebtInput{
		Reason:   &reason,
		EditorID: e.operatorID,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"debt:create", "payment:create", "payment:cancel", "debt:update"}, e.audit.entries)
}
