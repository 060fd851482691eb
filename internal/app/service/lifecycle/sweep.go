package lifecycle

import (
	"context"
	"fmt"

	"github.com/roadfile/compliance/pkg/tool"
)

// RunSweep flips every service and bundle past its expiry date into the
// expired terminal state. One UPDATE per table; a failure aborts the run and
// the next scheduled tick retries. Re-running matches only rows still not
// expired, so the sweep is idempotent by construction. The notification log
// is never touched here.
func (s *Service) RunSweep(ctx context.Context) error {
	today := tool.DateOnly(s.now())

	n, err := s.deps.Bundles.MarkExpired(ctx, today)
	if err != nil {
		return fmt.Errorf("sweep: bundles: %w", err)
	}
	if n > 0 {
		s.log.Infow("sweep: bundles expired", "count", n)
	}
	sweptTotal.WithLabelValues("bundle").Add(float64(n))

	for _, repo := range s.deps.Repos {
		st := repo.ServiceType()
		n, err := repo.MarkExpired(ctx, today)
		if err != nil {
			return fmt.Errorf("sweep: %s: %w", st, err)
		}
		if n > 0 {
			s.log.Infow("sweep: services expired", "service_type", st, "count", n)
		}
		sweptTotal.WithLabelValues(string(st)).Add(float64(n))
	}
	return nil
}
