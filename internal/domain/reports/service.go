package reports

import (
	"context"
	"time"
)

const (
	latestPaymentsCount = 10
	chartDays           = 15
)

// Service exposes the dashboard queries.
type Service struct {
	repo Repository

	now func() time.Time
}

// NewService creates the reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// LatestPayments returns the 10 most recent payments.
func (s *Service) LatestPayments(ctx context.Context) ([]LatestPayment, error) {
	return s.repo.LatestPayments(ctx, latestPaymentsCount)
}

// MonthlyCollection summarizes the current month.
func (s *Service) MonthlyCollection(ctx context.Context) (*MonthlyCollection, error) {
	now := s.now()
	mc, err := s.repo.MonthlyCollection(ctx, now)
	if err != nil {
		return nil, err
	}
	mc.Month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return mc, nil
}

// ClientsStatus counts clients by solvency and state.
func (s *Service) ClientsStatus(ctx context.Context) (*ClientsStatus, error) {
	return s.repo.ClientsStatus(ctx)
}

// PaymentsChart returns the last 15 days of collections split by
// cash and transfer.
func (s *Service) PaymentsChart(ctx context.Context) ([]DailyCollection, error) {
	from := s.now().AddDate(0, 0, -chartDays+1).Truncate(24 * time.Hour)
	return s.repo.DailyCollections(ctx, from)
}
