package clients

import (
	"context"
	"strings"
	"time"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/entity"
	"recaudo/internal/core/id"
	"recaudo/internal/core/types"
	"recaudo/internal/domain/billing"
	"recaudo/pkg/logger"
)

// searchAnnotations is how many recent payments and debts a search
// result carries.
const searchAnnotations = 3

// CreateInput carries the fields accepted on client creation.
type CreateInput struct {
	Name        string
	DNI         string
	RIF         string
	Phone       string
	Address     string
	GPS         string
	IP          string
	SN          string
	MAC         string
	Type        string
	NPayment    types.Money
	Comment     string
	OwnerID     *id.ID
	InstallerID *id.ID
	PlanID      *id.ID
	SectorID    *id.ID
	CreatorID   id.ID
}

// UpdateInput carries the patchable client fields. Nil means leave
// unchanged.
type UpdateInput struct {
	Name            *string
	DNI             *string
	RIF             *string
	Phone           *string
	Address         *string
	GPS             *string
	IP              *string
	SN              *string
	MAC             *string
	Type            *string
	NPayment        *types.Money
	State           *State
	Comment         *string
	OwnerID         *id.ID
	InstallerID     *id.ID
	PlanID          *id.ID
	SectorID        *id.ID
	SuspendedReason *string
	EditorID        id.ID
}

// SearchResult is a client annotated with recent billing activity.
type SearchResult struct {
	Client
	LastPayments []billing.PaymentView `json:"lastPayments"`
	LastDebts    []billing.Debt        `json:"lastDebts"`
}

// Service manages the subscriber catalog and implements the access
// validation billing depends on.
type Service struct {
	repo    Repository
	billing billing.Queries

	now func() time.Time
}

// NewService wires the clients service.
func NewService(repo Repository, billingQueries billing.Queries) *Service {
	return &Service{
		repo:    repo,
		billing: billingQueries,
		now:     time.Now,
	}
}

// Create registers a new Active client.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Client, error) {
	client := &Client{
		ID:          id.New(),
		Name:        strings.TrimSpace(input.Name),
		DNI:         strings.TrimSpace(input.DNI),
		RIF:         input.RIF,
		Phone:       input.Phone,
		Address:     input.Address,
		GPS:         input.GPS,
		IP:          input.IP,
		SN:          input.SN,
		MAC:         input.MAC,
		Type:        input.Type,
		NPayment:    types.Round2(input.NPayment),
		State:       StateActive,
		Comment:     input.Comment,
		OwnerID:     input.OwnerID,
		InstallerID: input.InstallerID,
		PlanID:      input.PlanID,
		SectorID:    input.SectorID,
		Balance:     types.Zero(),
		Audit:       entity.NewAudit(input.CreatorID, s.now()),
	}
	if err := client.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	logger.Info(ctx, "client created", "client_id", client.ID, "name", client.Name)
	return client, nil
}

// Update patches a client. Moving into Suspended stamps the suspension
// time; moving out clears it.
func (s *Service) Update(ctx context.Context, clientID id.ID, input UpdateInput) (*Client, error) {
	client, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		client.Name = strings.TrimSpace(*input.Name)
	}
	if input.DNI != nil {
		client.DNI = strings.TrimSpace(*input.DNI)
	}
	if input.RIF != nil {
		client.RIF = *input.RIF
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.GPS != nil {
		client.GPS = *input.GPS
	}
	if input.IP != nil {
		client.IP = *input.IP
	}
	if input.SN != nil {
		client.SN = *input.SN
	}
	if input.MAC != nil {
		client.MAC = *input.MAC
	}
	if input.Type != nil {
		client.Type = *input.Type
	}
	if input.NPayment != nil {
		client.NPayment = types.Round2(*input.NPayment)
	}
	if input.Comment != nil {
		client.Comment = *input.Comment
	}
	if input.OwnerID != nil {
		client.OwnerID = input.OwnerID
	}
	if input.InstallerID != nil {
		client.InstallerID = input.InstallerID
	}
	if input.PlanID != nil {
		client.PlanID = input.PlanID
	}
	if input.SectorID != nil {
		client.SectorID = input.SectorID
	}
	if input.SuspendedReason != nil {
		client.SuspendedReason = *input.SuspendedReason
	}
	if input.State != nil && *input.State != client.State {
		client.State = *input.State
		if client.State == StateSuspended {
			t := s.now().UTC()
			client.SuspendedAt = &t
		} else {
			client.SuspendedAt = nil
			client.SuspendedReason = ""
		}
	}

	if err := client.Validate(ctx); err != nil {
		return nil, err
	}
	client.Touch(input.EditorID, s.now())

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}

	logger.Info(ctx, "client updated", "client_id", client.ID)
	return client, nil
}

// GetByID returns one client.
func (s *Service) GetByID(ctx context.Context, clientID id.ID) (*Client, error) {
	return s.repo.GetByID(ctx, clientID)
}

// List returns clients matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	return s.repo.List(ctx, filter)
}

// Stats returns catalog counts.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// Search finds non-retired clients by name, dni or phone and annotates
// each with its latest payments and debts.
func (s *Service) Search(ctx context.Context, term string) ([]SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperror.NewValidation("search term is required").
			WithDetail("field", "term")
	}

	found, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(found))
	for i := range found {
		payments, err := s.billing.LastPaymentsByClient(ctx, found[i].ID, searchAnnotations)
		if err != nil {
			return nil, err
		}
		debts, err := s.billing.LastDebtsByClient(ctx, found[i].ID, searchAnnotations)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{
			Client:       found[i],
			LastPayments: payments,
			LastDebts:    debts,
		})
	}
	return results, nil
}

// ValidateAccess checks that the client exists and, when ownerID is
// given, belongs to that owner. Satisfies billing.ClientValidator.
func (s *Service) ValidateAccess(ctx context.Context, clientID id.ID, ownerID *id.ID) error {
	client, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if ownerID != nil {
		if client.OwnerID == nil || *client.OwnerID != *ownerID {
			return apperror.NewForbidden("client belongs to another provider").
				WithDetail("client_id", clientID.String())
		}
	}
	return nil
}
