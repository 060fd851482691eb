package payments

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roadfile/compliance/pkg/tool"
	"github.com/roadfile/compliance/pkg/types"
)

// SimulatedGateway approves every charge with a synthetic payment reference.
// It is the first-class fallback when no gateway credentials are configured,
// so the renewal lifecycle stays exercisable without a live payment account.
type SimulatedGateway struct {
	log *zap.SugaredLogger
}

func NewSimulatedGateway(log *zap.SugaredLogger) *SimulatedGateway {
	return &SimulatedGateway{log: log}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req *types.ChargeRequest) (*types.ChargeResult, error) {
	ref := fmt.Sprintf("sim_%s", tool.GenerateUUIDV7())
	g.log.Infow("simulated charge approved",
		"customer", req.CustomerRef,
		"amount_cents", req.AmountCents,
		"memo", req.Memo,
		"payment_ref", ref,
	)
	return &types.ChargeResult{Success: true, PaymentRef: ref}, nil
}
