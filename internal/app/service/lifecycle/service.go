package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roadfile/compliance/internal/platform/docgen"
	"github.com/roadfile/compliance/internal/platform/mail"
	"github.com/roadfile/compliance/internal/platform/payments"
	"github.com/roadfile/compliance/pkg/config"
)

// Job names for the manual invocation surface (cmd/jobs and the scheduler
// share these).
const (
	JobSweep    = "expire-services"
	JobNotifier = "expiration-check"
	JobRenewer  = "autopay"
)

// Deps collects the collaborators behind the three daily jobs. Everything is
// an interface so tests run against in-memory fakes.
type Deps struct {
	Repos   []ServiceRepository
	Bundles BundleRepository
	Users   UserDirectory
	Notes   NotificationLog
	Gateway payments.Gateway
	Docs    docgen.Generator
	Mailer  mail.Mailer
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Service runs the renewal/expiration/autopay lifecycle: the daily sweep,
// the threshold notifier, and the autopay renewer.
type Service struct {
	cfg  *config.Config
	log  *zap.SugaredLogger
	deps Deps
}

func NewService(deps Deps, cfg *config.Config, log *zap.SugaredLogger) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{cfg: cfg, log: log, deps: deps}
}

func (s *Service) now() time.Time { return s.deps.Now() }

// RunJob dispatches a lifecycle job by its operational name.
func (s *Service) RunJob(ctx context.Context, name string) error {
	switch name {
	case JobSweep:
		return s.RunSweep(ctx)
	case JobNotifier:
		return s.RunExpirationCheck(ctx)
	case JobRenewer:
		return s.RunAutopay(ctx)
	default:
		return fmt.Errorf("unknown job %q (want %s, %s or %s)", name, JobSweep, JobNotifier, JobRenewer)
	}
}
