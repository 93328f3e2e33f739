package payment

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/adapters"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/adapters/payfast"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			payfast.NewFactory(),
		)
	}),
)
