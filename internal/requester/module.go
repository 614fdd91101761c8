package requester

import (
	"go.uber.org/fx"
)

// Module provides the shared live transport
var Module = fx.Module("requester",
	fx.Provide(
		fx.Annotate(
			func() *HTTPRequester { return NewHTTPRequester(nil) },
			fx.As(new(Transport)),
		),
	),
)
