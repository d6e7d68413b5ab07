package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Placeholder figures for panels whose data sources are not wired yet.
const (
	placeholderOpenings     = 150
	placeholderInstitutions = 75
	placeholderApplications = 300
)

// Counter provides the user counts backing the stats widget.
type Counter interface {
	CountUsers(ctx context.Context) (int64, error)
	CountActiveUsers(ctx context.Context) (int64, error)
}

// Stats aggregates the numbers shown on the admin dashboard.
type Stats struct {
	Users        int64 `json:"users"`
	ActiveUsers  int64 `json:"active_users"`
	Openings     int64 `json:"openings"`
	Institutions int64 `json:"institutions"`
	Applications int64 `json:"applications"`
}

// Service computes dashboard statistics.
type Service struct {
	counter Counter
}

// NewService wires the service with its user counter.
func NewService(counter Counter) *Service {
	return &Service{counter: counter}
}

// Stats fetches the user counts concurrently and fills in the
// placeholder panels.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Openings:     placeholderOpenings,
		Institutions: placeholderInstitutions,
		Applications: placeholderApplications,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.counter.CountUsers(gctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		stats.Users = total
		return nil
	})
	g.Go(func() error {
		active, err := s.counter.CountActiveUsers(gctx)
		if err != nil {
			return fmt.Errorf("count active users: %w", err)
		}
		stats.ActiveUsers = active
		return nil
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
