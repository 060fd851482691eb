package lifecycle

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roadfile/compliance/internal/app/service/notification"
	"github.com/roadfile/compliance/internal/platform/docgen"
	"github.com/roadfile/compliance/internal/platform/mail"
	"github.com/roadfile/compliance/internal/platform/payments"
	"github.com/roadfile/compliance/pkg/config"
)

func newService(
	cfg *config.Config,
	log *zap.SugaredLogger,
	db *gorm.DB,
	gateway payments.Gateway,
	docs docgen.Generator,
	mailer mail.Mailer,
	notes *notification.Service,
) *Service {
	return NewService(Deps{
		Repos: []ServiceRepository{
			NewArbitrationRepository(db),
			NewTariffRepository(db),
			NewBoc3Repository(db),
		},
		Bundles: NewBundleRepository(db),
		Users:   NewUserDirectory(db),
		Notes:   notes,
		Gateway: gateway,
		Docs:    docs,
		Mailer:  mailer,
	}, cfg, log)
}

func registerScheduler(lc fx.Lifecycle, s *Scheduler, log *zap.SugaredLogger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping lifecycle scheduler")
			<-s.Stop().Done()
			return nil
		},
	})
}

// Module wires the lifecycle service and its cron scheduler via Fx.
var Module = fx.Options(
	fx.Provide(newService),
	fx.Provide(NewScheduler),
	fx.Invoke(registerScheduler),
)

// JobsModule wires the lifecycle service without the cron scheduler, for the
// one-shot manual job runner.
var JobsModule = fx.Options(
	fx.Provide(newService),
)
