package notification

import "go.uber.org/fx"

// Module exposes the notification log via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
