package payments

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/roadfile/compliance/pkg/config"
	"github.com/roadfile/compliance/pkg/types"
)

// Gateway charges stored payment methods. Implementations: LiveGateway over
// the card processor's HTTP API, SimulatedGateway when no credentials are
// configured. The choice is made once at process start; callers never know
// which one they hold.
type Gateway interface {
	Charge(ctx context.Context, req *types.ChargeRequest) (*types.ChargeResult, error)
}

func NewGateway(cfg *cfgpkg.Config, log *zap.SugaredLogger) Gateway {
	if cfg.Gateway.APIKey == "" {
		log.Warnw("payment gateway unconfigured, charges will be simulated")
		return NewSimulatedGateway(log)
	}
	return NewLiveGateway(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, log)
}

var Module = fx.Options(
	fx.Provide(NewGateway),
)
