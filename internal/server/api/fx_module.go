package api

import "go.uber.org/fx"

var Module = fx.Module("api",
	fx.Provide(NewPublicationHandlers),
	fx.Provide(NewAuditHandlers),
	fx.Provide(NewSystemHandlers),
)
