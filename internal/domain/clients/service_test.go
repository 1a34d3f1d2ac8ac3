package clients

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
	"recaudo/internal/domain/billing"
)

type memRepo struct {
	clients map[id.ID]*Client
}

func newMemRepo() *memRepo {
	return &memRepo{clients: make(map[id.ID]*Client)}
}

func (r *memRepo) Create(ctx context.Context, c *Client) error {
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, clientID id.ID) (*Client, error) {
	c, ok := r.clients[clientID]
	if !ok {
		return nil, apperror.NewNotFound("client", clientID.String())
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) Update(ctx context.Context, c *Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return apperror.NewNotFound("client", c.ID.String())
	}
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	var out []Client
	for _, c := range r.clients {
		if filter.State != "" && c.State != filter.State {
			continue
		}
		if filter.OwnerID != nil && (c.OwnerID == nil || *c.OwnerID != *filter.OwnerID) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *memRepo) Search(ctx context.Context, term string) ([]Client, error) {
	var out []Client
	for _, c := range r.clients {
		if c.State == StateRetired {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *memRepo) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	for _, c := range r.clients {
		s.Total++
		switch c.State {
		case StateSuspended:
			s.Suspended++
		case StateRetired:
			s.Retired++
		}
	}
	return s, nil
}

func (r *memRepo) UpdateBalance(ctx context.Context, clientID id.ID, balance types.Money) error {
	c, ok := r.clients[clientID]
	if !ok {
		return apperror.NewNotFound("client", clientID.String())
	}
	c.Balance = balance
	return nil
}

func (r *memRepo) CountByPlan(ctx context.Context) (map[id.ID]int, error) {
	return map[id.ID]int{}, nil
}

func (r *memRepo) CountBySector(ctx context.Context) (map[id.ID]int, error) {
	return map[id.ID]int{}, nil
}

type emptyQueries struct{}

func (emptyQueries) ListPaymentsByClient(ctx context.Context, clientID id.ID) ([]billing.PaymentView, error) {
	return nil, nil
}

func (emptyQueries) LastPaymentsByClient(ctx context.Context, clientID id.ID, n int) ([]billing.PaymentView, error) {
	return nil, nil
}

func (emptyQueries) LastDebtsByClient(ctx context.Context, clientID id.ID, n int) ([]billing.Debt, error) {
	return nil, nil
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(repo, emptyQueries{})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	return svc, repo
}

func TestCreateRequiresNameAndDNI(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{DNI: "V-1", CreatorID: id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(ctx, CreateInput{Name: "Ana", CreatorID: id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateStartsActiveWithZeroBalance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{Name: "  Ana Pérez ", DNI: "V-123", CreatorID: id.New()})
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", c.Name)
	assert.Equal(t, StateActive, c.State)
	assert.True(t, c.Balance.IsZero())
}

func TestSuspendStampsTimeAndReason(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{Name: "Ana", DNI: "V-123", CreatorID: id.New()})
	require.NoError(t, err)

	suspended := StateSuspended
	reason := "falta de pago"
	_, err = svc.Update(ctx, c.ID, UpdateInput{
		State:           &suspended,
		SuspendedReason: &reason,
		EditorID:        id.New(),
	})
	require.NoError(t, err)

	stored := repo.clients[c.ID]
	require.NotNil(t, stored.SuspendedAt)
	assert.Equal(t, "falta de pago", stored.SuspendedReason)

	// Reactivating clears the suspension trail.
	active := StateActive
	_, err = svc.Update(ctx, c.ID, UpdateInput{State: &active, EditorID: id.New()})
	require.NoError(t, err)

	stored = repo.clients[c.ID]
	assert.Nil(t, stored.SuspendedAt)
	assert.Empty(t, stored.SuspendedReason)
}

func TestUpdateMissingClientReturnsNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), id.New(), UpdateInput{EditorID: id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSearchRejectsEmptyTerm(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestValidateAccessChecksOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	owner := id.New()
	other := id.New()
	c, err := svc.Create(ctx, CreateInput{Name: "Ana", DNI: "V-123", OwnerID: &owner, CreatorID: id.New()})
	require.NoError(t, err)

	require.NoError(t, svc.ValidateAccess(ctx, c.ID, nil))
	require.NoError(t, svc.ValidateAccess(ctx, c.ID, &owner))

	err = svc.ValidateAccess(ctx, c.ID, &other)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}
